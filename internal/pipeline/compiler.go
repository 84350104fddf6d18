package pipeline

// Compile builds a runner for the named stages, in the order given. An
// empty list means every stage in data-flow order.
func Compile(env Env, names ...string) (*Runner, error) {
	if len(names) == 0 {
		names = Order
	}
	r := NewRunner(env.Log, env.Metrics)
	for _, n := range names {
		st, err := Build(n, env)
		if err != nil {
			return nil, err
		}
		r.AddStage(st)
	}
	return r, nil
}
