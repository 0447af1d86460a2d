package service

// SourceHealth reports one source adapter's availability. Sources guarded by
// a circuit breaker report the breaker state; plain sources report "up".
type SourceHealth struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// HealthSnapshot is the engine's health view exposed by the health endpoint.
type HealthSnapshot struct {
	Sources []SourceHealth `json:"sources"`
	Stats   EngineStats    `json:"stats"`
}

// Health snapshots the state of every source adapter and the merger's
// cumulative counters.
func (e *Engine) Health() HealthSnapshot {
	adapters := e.merger.Adapters()
	snapshot := HealthSnapshot{
		Sources: make([]SourceHealth, 0, len(adapters)),
		Stats:   e.merger.Stats(),
	}
	for _, adapter := range adapters {
		state := "up"
		if reporter, ok := adapter.(interface{ HealthState() string }); ok {
			state = reporter.HealthState()
		}
		snapshot.Sources = append(snapshot.Sources, SourceHealth{
			Name:  adapter.Name(),
			State: state,
		})
	}
	return snapshot
}
