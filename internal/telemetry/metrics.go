package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics is a per-run registry. Stages are batch jobs, so nothing is served;
// Flush writes a node-exporter textfile and/or pushes to a Pushgateway.
type Metrics struct {
	reg *prometheus.Registry

	RowsRead      *prometheus.CounterVec   // stage, dataset
	RowsWritten   *prometheus.CounterVec   // stage, dataset
	ValuesClipped *prometheus.CounterVec   // bound
	Groups        prometheus.Counter       // groups processed by the outlier stage
	Columns       *prometheus.GaugeVec     // dataset
	StageDuration *prometheus.HistogramVec // stage, status
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "churnprep",
			Name:      "rows_read_total",
			Help:      "Rows loaded by a stage.",
		}, []string{"stage", "dataset"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "churnprep",
			Name:      "rows_written_total",
			Help:      "Rows persisted by a stage.",
		}, []string{"stage", "dataset"}),
		ValuesClipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "churnprep",
			Name:      "outlier_values_clipped_total",
			Help:      "Salary values replaced by a group quartile.",
		}, []string{"bound"}),
		Groups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "churnprep",
			Name:      "outlier_groups_total",
			Help:      "Groups processed by the outlier stage.",
		}),
		Columns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "churnprep",
			Name:      "transformed_columns",
			Help:      "Columns in the transformed dataset, target included.",
		}, []string{"dataset"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "churnprep",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of one stage run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage", "status"}),
	}
	m.reg.MustRegister(m.RowsRead, m.RowsWritten, m.ValuesClipped, m.Groups, m.Columns, m.StageDuration)
	return m
}

// ObserveStage records one stage run.
func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StageDuration.WithLabelValues(stage, status).Observe(d.Seconds())
}

func (m *Metrics) Gatherer() prometheus.Gatherer { return m.reg }

// Flush exports the registry. Empty destinations are skipped.
func (m *Metrics) Flush(textfile, gateway, job string) error {
	if textfile != "" {
		if err := prometheus.WriteToTextfile(textfile, m.reg); err != nil {
			return fmt.Errorf("metrics textfile: %w", err)
		}
	}
	if gateway != "" {
		if err := push.New(gateway, job).Gatherer(m.reg).Push(); err != nil {
			return fmt.Errorf("metrics push: %w", err)
		}
	}
	return nil
}
