package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnprep/internal/logging"
	"churnprep/internal/telemetry"
)

type fakeStage struct {
	name  string
	err   error
	calls *[]string
}

func (f *fakeStage) Name() string { return f.name }
func (f *fakeStage) Run(context.Context) error {
	*f.calls = append(*f.calls, f.name)
	return f.err
}

func TestRunner_RunsInOrder(t *testing.T) {
	var calls []string
	r := NewRunner(logging.Discard(), telemetry.New())
	r.AddStage(&fakeStage{name: "a", calls: &calls})
	r.AddStage(&fakeStage{name: "b", calls: &calls})

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Equal(t, []string{"a", "b"}, r.Stages())
}

func TestRunner_StopsAtFirstError(t *testing.T) {
	var calls []string
	boom := wrap(ErrSchema, "transform", errors.New("boom"))
	r := NewRunner(logging.Discard(), telemetry.New())
	r.AddStage(&fakeStage{name: "a", calls: &calls, err: boom})
	r.AddStage(&fakeStage{name: "b", calls: &calls})

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "stage a")
	assert.Equal(t, []string{"a"}, calls)
}

func TestRunner_CancelledContext(t *testing.T) {
	var calls []string
	r := NewRunner(logging.Discard(), telemetry.New())
	r.AddStage(&fakeStage{name: "a", calls: &calls})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Run(ctx), context.Canceled)
	assert.Empty(t, calls)
}

func TestRunner_NoStages(t *testing.T) {
	assert.Error(t, NewRunner(logging.Discard(), telemetry.New()).Run(context.Background()))
}

func TestCompile(t *testing.T) {
	env := Env{Log: logging.Discard(), Metrics: telemetry.New()}
	r, err := Compile(env)
	require.NoError(t, err)
	assert.Equal(t, Order, r.Stages())

	r, err = Compile(env, "features")
	require.NoError(t, err)
	assert.Equal(t, []string{"features"}, r.Stages())

	_, err = Compile(env, "train")
	assert.ErrorIs(t, err, ErrConfig)
}
