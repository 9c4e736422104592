package agent

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	apperrors "intel-agent/internal/common/errors"
	"intel-agent/internal/intel/interpreter"
	"intel-agent/internal/intel/sources"
)

// fetchTask is one provider call and the label wrapped around its text.
type fetchTask struct {
	source  sources.SourceID
	subject string
	label   func(text string) string
}

func plan(intent interpreter.Intent) []fetchTask {
	switch intent.Kind {
	case interpreter.KindURL:
		tasks := make([]fetchTask, 0, len(intent.URLs))
		for _, url := range intent.URLs {
			url := url
			tasks = append(tasks, fetchTask{
				source:  sources.Web,
				subject: url,
				label:   func(text string) string { return fmt.Sprintf("URL %s:\n%s", url, text) },
			})
		}
		return tasks

	case interpreter.KindCompany:
		return []fetchTask{{
			source:  sources.Company,
			subject: intent.Company,
			label:   func(text string) string { return "COMPANY RESEARCH:\n" + text },
		}}

	default:
		tasks := make([]fetchTask, 0, len(intent.Sources))
		for _, id := range intent.Sources {
			id := id
			tasks = append(tasks, fetchTask{
				source:  id,
				subject: intent.Name,
				label:   func(text string) string { return id.Label() + ": " + text },
			})
		}
		return tasks
	}
}

// fetchAll runs the tasks under the configured fan-out bound and returns the
// labeled blocks in task order. Sources without a provider are skipped.
func (a *Agent) fetchAll(ctx context.Context, tasks []fetchTask) ([]string, error) {
	blocks := make([]string, len(tasks))
	present := make([]bool, len(tasks))

	limit := a.config.Sources.MaxConcurrentFetches
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, task := range tasks {
		i, task := i, task

		provider, err := a.registry.Get(task.source)
		if err != nil {
			a.logger.Warn("Skipping source", map[string]interface{}{
				"source": string(task.source),
				"error":  err.Error(),
			})
			continue
		}

		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = apperrors.NewGatheringFailedError(fmt.Sprintf("%s provider: %v", task.source, r))
				}
			}()
			blocks[i] = task.label(provider.Fetch(gctx, task.subject))
			present[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(blocks))
	for i, block := range blocks {
		if present[i] {
			out = append(out, block)
		}
	}
	return out, nil
}
