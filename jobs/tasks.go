package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogWarmup pre-populates the global catalog cache.
	TaskCatalogWarmup = "catalog:warmup"
)

// CatalogWarmupPayload describes a catalog warmup request.
type CatalogWarmupPayload struct {
	// Bump forces a cache version bump before warming, invalidating stale entries.
	Bump bool `json:"bump"`
}

// NewCatalogWarmupTask constructs an Asynq task.
func NewCatalogWarmupTask(payload CatalogWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}
