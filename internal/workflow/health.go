package workflow

import (
	"context"

	"scribe/internal/stage"
)

// Health reports the readiness of every configured stage.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	m.mu.RLock()
	stages := make([]pipelineStage, 0, len(m.stageOrder))
	for _, status := range m.stageOrder {
		stages = append(stages, m.stages[status])
	}
	m.mu.RUnlock()

	results := make([]stage.Health, 0, len(stages))
	for _, pipeline := range stages {
		if pipeline.handler == nil {
			results = append(results, stage.Unhealthy(pipeline.name, "missing handler"))
			continue
		}
		results = append(results, pipeline.handler.HealthCheck(ctx))
	}
	return results
}
