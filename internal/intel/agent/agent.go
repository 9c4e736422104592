// Package agent wires the interpreter, the data sources and the summarizer
// into a single intelligence-gathering run.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"intel-agent/internal/common/config"
	apperrors "intel-agent/internal/common/errors"
	"intel-agent/internal/common/logger"
	"intel-agent/internal/common/metrics"
	"intel-agent/internal/common/observability"
	"intel-agent/internal/intel/aggregator"
	"intel-agent/internal/intel/interpreter"
	"intel-agent/internal/intel/sources"
)

// ErrorPrefix starts every error string returned by Run.
const ErrorPrefix = "Error gathering intelligence: "

// Agent is stateless apart from its read-only configuration; a single Agent
// may serve concurrent runs.
type Agent struct {
	config     *config.Config
	registry   *sources.Registry
	summarizer aggregator.Summarizer
	cache      sources.Cache
	obs        *observability.Observability
	logger     logger.Logger
}

type Option func(*Agent)

// WithSummarizer overrides the summarizer chosen from ai_provider.
func WithSummarizer(s aggregator.Summarizer) Option {
	return func(a *Agent) { a.summarizer = s }
}

// WithRegistry overrides the default provider registry.
func WithRegistry(r *sources.Registry) Option {
	return func(a *Agent) { a.registry = r }
}

// WithCache enables caching of web fetches.
func WithCache(c sources.Cache) Option {
	return func(a *Agent) { a.cache = c }
}

func WithObservability(o *observability.Observability) Option {
	return func(a *Agent) { a.obs = o }
}

// Report is the result of one run.
type Report struct {
	RunID   string
	Intent  interpreter.Intent
	Target  string
	Summary *aggregator.Summary
	Output  string
}

// New builds an Agent. A nil cfg means the defaults.
func New(cfg *config.Config, log logger.Logger, opts ...Option) (*Agent, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	a := &Agent{
		config: cfg,
		logger: log.With(map[string]interface{}{"component": "agent"}),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.summarizer == nil {
		s, err := newSummarizer(cfg, log)
		if err != nil {
			return nil, err
		}
		a.summarizer = s
	}

	if a.registry == nil {
		web := sources.NewWebProvider(sources.WebConfig{
			Timeout:      cfg.Sources.FetchTimeout(),
			UserAgent:    cfg.Sources.UserAgent,
			PreviewChars: cfg.Sources.PreviewChars,
			MaxEmails:    cfg.Sources.MaxEmails,
			MaxPhones:    cfg.Sources.MaxPhones,
			CacheTTL:     cfg.Cache.Expiration(),
		}, a.cache, log)
		a.registry = sources.NewDefaultRegistry(web)
	}

	return a, nil
}

func newSummarizer(cfg *config.Config, log logger.Logger) (aggregator.Summarizer, error) {
	switch cfg.ProviderName {
	case "", "mock":
		return aggregator.StubSummarizer{}, nil
	case "genai", "openai", "openrouter":
		return aggregator.NewGenAISummarizer(aggregator.GenAIConfig{
			BaseURL:     cfg.GenAI.BaseURL,
			Model:       cfg.GenAI.Model,
			APIKey:      cfg.APIKey(),
			Timeout:     cfg.GenAI.RequestTimeout(),
			MaxTokens:   cfg.GenAI.MaxTokens,
			Temperature: cfg.GenAI.Temperature,
		}, log), nil
	default:
		return nil, apperrors.NewUnsupportedAIProviderError(cfg.ProviderName)
	}
}

// Run gathers intelligence for command and always returns a string; any
// failure is rendered with ErrorPrefix.
func (a *Agent) Run(ctx context.Context, command string, format aggregator.OutputFormat) string {
	report, err := a.Gather(ctx, command, format)
	if err != nil {
		return ErrorPrefix + errorText(err)
	}
	return report.Output
}

// Gather performs one run and returns the full report. Panics raised during
// the run are returned as INTELLIGENCE_GATHERING_FAILED errors.
func (a *Agent) Gather(ctx context.Context, command string, format aggregator.OutputFormat) (report *Report, err error) {
	runID := uuid.NewString()
	start := time.Now()
	log := a.logger.With(map[string]interface{}{"runId": runID})

	ctx, span := a.obs.StartSpan(ctx, "intel.gather", attribute.String("format", string(format)))
	defer span.End()

	intentKind := "unknown"
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewGatheringFailedError(fmt.Sprint(r))
			report = nil
		}
		status := metrics.StatusOK
		if err != nil {
			status = metrics.StatusError
			span.RecordError(err)
			log.Error("Intelligence gathering failed", map[string]interface{}{"error": err.Error()})
		}
		metrics.Runs.WithLabelValues(string(format), status).Inc()
		a.obs.RecordRun(ctx, intentKind, status)
		a.obs.RecordRunDuration(ctx, time.Since(start), status)
	}()

	intent := interpreter.Classify(command)
	intentKind = string(intent.Kind)
	metrics.IntentsClassified.WithLabelValues(intentKind).Inc()
	log.Info("Command classified", map[string]interface{}{
		"intent": intentKind,
		"target": intent.Target(),
	})

	blocks, err := a.fetchAll(ctx, plan(intent))
	if err != nil {
		return nil, err
	}

	target := intent.Target()
	labeled := target + "\n\n" + strings.Join(blocks, "\n")

	summary, err := a.summarizer.Summarize(ctx, labeled, format)
	if err != nil {
		return nil, err
	}
	output, err := summary.Render()
	if err != nil {
		return nil, err
	}

	log.Info("Intelligence gathering completed", map[string]interface{}{
		"intent":     intentKind,
		"blocks":     len(blocks),
		"emails":     len(summary.ContactInfo.Emails),
		"phones":     len(summary.ContactInfo.Phones),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Report{
		RunID:   runID,
		Intent:  intent,
		Target:  target,
		Summary: summary,
		Output:  output,
	}, nil
}

func errorText(err error) string {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		if stdErr.Details != "" {
			return stdErr.Details
		}
		return stdErr.Message
	}
	return err.Error()
}
