// internal/workers/intelligence/gather-intelligence/config.go
package gatherintelligence

import (
	"time"

	"intel-agent/internal/common/config"
	"intel-agent/pkg/registry"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	InputSchema   map[string]interface{}
	OutputSchema  map[string]interface{}
	Activity      *registry.Activity
}

// LoadConfig merges the worker settings with the activity's schemas. A nil
// registry falls back to the built-in activity description.
func LoadConfig(cfg *config.Config, reg *registry.ActivityRegistry) (*Config, error) {
	if reg == nil {
		reg = registry.Builtin()
	}
	activity, err := reg.Find(TaskType)
	if err != nil {
		return nil, err
	}

	wc, ok := cfg.Workers[TaskType]
	if !ok {
		wc = config.WorkerConfig{Enabled: true, MaxJobsActive: 5}
	}

	timeout := time.Duration(wc.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = activity.TimeoutDuration()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxJobs := wc.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 1
	}

	return &Config{
		Enabled:       wc.Enabled,
		MaxJobsActive: maxJobs,
		Timeout:       timeout,
		InputSchema:   activity.InputSchema,
		OutputSchema:  activity.OutputSchema,
		Activity:      activity,
	}, nil
}
