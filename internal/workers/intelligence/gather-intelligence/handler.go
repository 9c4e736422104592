// internal/workers/intelligence/gather-intelligence/handler.go
package gatherintelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "intel-agent/internal/common/errors"
	"intel-agent/internal/common/logger"
	"intel-agent/internal/common/metrics"
	"intel-agent/internal/common/validation"
	"intel-agent/internal/intel/agent"
	"intel-agent/internal/intel/aggregator"
)

const TaskType = "gather-intelligence"

// Gatherer runs one intelligence-gathering pass.
type Gatherer interface {
	Gather(ctx context.Context, command string, format aggregator.OutputFormat) (*agent.Report, error)
}

type Handler struct {
	config       *Config
	agent        Gatherer
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, gatherer Gatherer, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		agent:        gatherer,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := validation.Validate(h.config.InputSchema, input)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Error())
	}

	format, err := aggregator.ParseOutputFormat(input.Format)
	if err != nil {
		return nil, err
	}

	report, err := h.agent.Gather(ctx, input.Command, format)
	if err != nil {
		return nil, err
	}

	output := &Output{
		RunID:       report.RunID,
		Intent:      string(report.Intent.Kind),
		Target:      report.Target,
		Report:      report.Output,
		ContactInfo: report.Summary.ContactInfo,
	}

	if result, err := validation.Validate(h.config.OutputSchema, output); err == nil && !result.Valid {
		h.logger.Warn("Output does not match activity schema", map[string]interface{}{
			"runId":  output.RunID,
			"errors": result.Error(),
		})
	}

	h.logger.Info("Intelligence gathered", map[string]interface{}{
		"runId":  output.RunID,
		"intent": output.Intent,
		"target": output.Target,
	})
	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := apperrors.Normalize(err)
	if h.config.Activity != nil && !h.config.Activity.RaisesCode(string(stdErr.Code)) {
		h.logger.Warn("Error code not declared by activity", map[string]interface{}{
			"jobKey": job.Key,
			"code":   stdErr.Code,
		})
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}

// Execute runs the job logic without a workflow engine.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
