package gatherintelligence

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intel-agent/internal/common/config"
	apperrors "intel-agent/internal/common/errors"
	"intel-agent/internal/common/logger"
	"intel-agent/internal/intel/agent"
	"intel-agent/internal/intel/aggregator"
	"intel-agent/internal/intel/contact"
	"intel-agent/internal/intel/interpreter"
	"intel-agent/pkg/registry"
)

type fakeGatherer struct {
	report  *agent.Report
	err     error
	command string
	format  aggregator.OutputFormat
}

func (f *fakeGatherer) Gather(_ context.Context, command string, format aggregator.OutputFormat) (*agent.Report, error) {
	f.command = command
	f.format = format
	return f.report, f.err
}

func createTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig(config.Default(), nil)
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(config.Default(), nil)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5, cfg.MaxJobsActive)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.NotEmpty(t, cfg.InputSchema)

	t.Run("falls back when worker section is absent", func(t *testing.T) {
		c := config.Default()
		c.Workers = map[string]config.WorkerConfig{}
		cfg, err := LoadConfig(c, nil)
		require.NoError(t, err)
		assert.Equal(t, 60*time.Second, cfg.Timeout)
	})

	t.Run("timeout from activity", func(t *testing.T) {
		c := config.Default()
		c.Workers = map[string]config.WorkerConfig{}
		activity := registry.GatherIntelligence()
		activity.Timeout = "2m"
		cfg, err := LoadConfig(c, &registry.ActivityRegistry{Activities: []registry.Activity{activity}})
		require.NoError(t, err)
		assert.Equal(t, 2*time.Minute, cfg.Timeout)
		assert.Equal(t, "2m", cfg.Activity.Timeout)
	})

	t.Run("task missing from registry", func(t *testing.T) {
		_, err := LoadConfig(config.Default(), &registry.ActivityRegistry{})
		assert.EqualError(t, err, "activity with task type gather-intelligence not found")
	})
}

func TestHandler_Execute_Success(t *testing.T) {
	g := &fakeGatherer{report: &agent.Report{
		RunID:  "run-1",
		Intent: interpreter.Intent{Kind: interpreter.KindCompany, Company: "Acme"},
		Target: "Company: Acme",
		Summary: &aggregator.Summary{
			Narrative:   aggregator.StubNarrative,
			ContactInfo: contact.Info{Emails: []string{"a@acme.com"}},
		},
		Output: "report body",
	}}
	h := NewHandler(createTestConfig(t), g, logger.NewTestLogger(t))

	output, err := h.execute(context.Background(), &Input{Command: "leads at Acme", Format: "Markdown"})
	require.NoError(t, err)

	assert.Equal(t, "leads at Acme", g.command)
	assert.Equal(t, aggregator.FormatMarkdown, g.format)
	assert.Equal(t, &Output{
		RunID:       "run-1",
		Intent:      "company",
		Target:      "Company: Acme",
		Report:      "report body",
		ContactInfo: contact.Info{Emails: []string{"a@acme.com"}},
	}, output)
}

func TestHandler_Execute_DefaultsToText(t *testing.T) {
	g := &fakeGatherer{report: &agent.Report{
		Intent:  interpreter.Intent{Kind: interpreter.KindPerson, Name: "Ada Lovelace"},
		Summary: &aggregator.Summary{},
	}}
	h := NewHandler(createTestConfig(t), g, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Command: "about Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, aggregator.FormatText, g.format)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		gatherer *fakeGatherer
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "empty command",
			input:    &Input{Command: ""},
			gatherer: &fakeGatherer{},
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:     "unknown format",
			input:    &Input{Command: "about Ada Lovelace", Format: "xml"},
			gatherer: &fakeGatherer{},
			wantCode: apperrors.ErrCodeInvalidOutputFormat,
		},
		{
			name:     "gathering fails",
			input:    &Input{Command: "about Ada Lovelace"},
			gatherer: &fakeGatherer{err: apperrors.NewLLMTimeoutError()},
			wantCode: apperrors.ErrCodeLLMTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(createTestConfig(t), tt.gatherer, logger.NewTestLogger(t))
			output, err := h.execute(context.Background(), tt.input)
			assert.Nil(t, output)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}

	t.Run("plain errors pass through", func(t *testing.T) {
		h := NewHandler(createTestConfig(t), &fakeGatherer{err: stderrors.New("disk full")}, logger.NewTestLogger(t))
		_, err := h.execute(context.Background(), &Input{Command: "about Ada Lovelace"})
		assert.EqualError(t, err, "disk full")
	})
}

func TestHandler_Execute_RealAgent(t *testing.T) {
	a, err := agent.New(config.Default(), logger.NewTestLogger(t))
	require.NoError(t, err)
	h := NewHandler(createTestConfig(t), a, logger.NewTestLogger(t))

	output, err := h.execute(context.Background(), &Input{Command: "employees from TechCorp Inc"})
	require.NoError(t, err)

	assert.NotEmpty(t, output.RunID)
	assert.Equal(t, "company", output.Intent)
	assert.Equal(t, "Company: TechCorp Inc", output.Target)
	assert.Contains(t, output.Report, aggregator.StubNarrative)
	assert.Equal(t, []string{"+1-555-0101", "+1-555-0102", "+1-555-0103"}, output.ContactInfo.Phones)
}
