package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "intel-agent/internal/common/errors"
	apphttp "intel-agent/internal/common/http"
	"intel-agent/internal/common/logger"
)

const systemPrompt = "You are a professional intelligence analyst. Summarize the gathered public data about the target " +
	"in one concise paragraph. Use ONLY the provided data, mention where each fact came from, and say so clearly " +
	"when the data is insufficient. Do not list raw contact details; they are reported separately."

// GenAIConfig configures an OpenAI-compatible chat completion endpoint.
type GenAIConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenAISummarizer asks a language model for the narrative. Contact extraction
// and rendering are the same as the stub's.
type GenAISummarizer struct {
	config GenAIConfig
	client *apphttp.Client
	logger logger.Logger
}

func NewGenAISummarizer(cfg GenAIConfig, log logger.Logger) *GenAISummarizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &GenAISummarizer{
		config: cfg,
		// the per-call context carries the deadline
		client: apphttp.NewClient(0, ""),
		logger: log.With(map[string]interface{}{"summarizer": "genai", "model": cfg.Model}),
	}
}

func (g *GenAISummarizer) Summarize(ctx context.Context, labeledText string, format OutputFormat) (*Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	start := time.Now()
	narrative, err := g.complete(ctx, labeledText)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || isTimeout(err) {
			return nil, apperrors.NewLLMTimeoutError()
		}
		return nil, apperrors.NewLLMSynthesisFailedError(err)
	}

	if narrative == "" {
		g.logger.Warn("Empty completion, using placeholder narrative", nil)
		narrative = StubNarrative
	}

	g.logger.Info("LLM summarization completed", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
	})
	return NewSummary(narrative, labeledText, format), nil
}

func (g *GenAISummarizer) complete(ctx context.Context, labeledText string) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: labeledText},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(g.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var cr chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode error: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout())
}
