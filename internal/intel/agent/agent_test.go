package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"intel-agent/internal/common/config"
	"intel-agent/internal/common/database"
	apperrors "intel-agent/internal/common/errors"
	"intel-agent/internal/common/logger"
	"intel-agent/internal/common/observability"
	"intel-agent/internal/intel/aggregator"
	"intel-agent/internal/intel/interpreter"
	"intel-agent/internal/intel/sources"
)

func newTestAgent(t *testing.T, opts ...Option) *Agent {
	t.Helper()
	a, err := New(config.Default(), logger.NewTestLogger(t), opts...)
	require.NoError(t, err)
	return a
}

func TestRun_PersonJSON(t *testing.T) {
	a := newTestAgent(t)

	report, err := a.Gather(context.Background(), "Tell me about John Doe", aggregator.FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, interpreter.Intent{
		Kind:    interpreter.KindPerson,
		Name:    "John Doe",
		Sources: []sources.SourceID{sources.LinkedIn, sources.Twitter, sources.GitHub},
	}, report.Intent)
	assert.NotEmpty(t, report.RunID)

	var decoded struct {
		Summary     string `json:"summary"`
		ContactInfo struct {
			Emails []string `json:"emails"`
			Phones []string `json:"phones"`
		} `json:"contact_info"`
		Confidence float64  `json:"confidence"`
		Sources    []string `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(report.Output), &decoded))
	assert.Contains(t, decoded.ContactInfo.Emails, "john.doe@techcorp.com")
	assert.Contains(t, decoded.ContactInfo.Emails, "johndoe@gmail.com")
	assert.Empty(t, decoded.ContactInfo.Phones)
	assert.Equal(t, 0.8, decoded.Confidence)
}

func TestRun_CompanyText(t *testing.T) {
	a := newTestAgent(t)

	report, err := a.Gather(context.Background(), "employees from TechCorp Inc", aggregator.FormatText)
	require.NoError(t, err)

	assert.Equal(t, interpreter.KindCompany, report.Intent.Kind)
	assert.Equal(t, "TechCorp Inc", report.Intent.Company)
	assert.Equal(t, aggregator.StubNarrative+
		"\n\n📞 CONTACT INFO:"+
		"\n📧 Emails: j.smith@techcorpinc.com, sarah.j@techcorpinc.com, m.chen@techcorpinc.com"+
		"\n📱 Phones: +1-555-0101, +1-555-0102, +1-555-0103", report.Output)
}

func TestRun_URLMarkdown(t *testing.T) {
	t.Run("page with contacts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<h1>Contact</h1><p>hello@example.com | +1-555-0142</p>"))
		}))
		defer server.Close()

		url := server.URL + "/contact"
		report, err := newTestAgent(t).Gather(context.Background(), url, aggregator.FormatMarkdown)
		require.NoError(t, err)

		assert.Equal(t, []string{url}, report.Intent.URLs)
		assert.Contains(t, report.Output, "## 📞 Contact Information\n**Emails**: hello@example.com\n\n**Phones**: +1-555-0142\n\n")
	})

	t.Run("page without contacts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<h1>About</h1><p>We make things.</p>"))
		}))
		defer server.Close()

		out := newTestAgent(t).Run(context.Background(), server.URL+"/contact", aggregator.FormatMarkdown)

		assert.True(t, strings.HasPrefix(out, "# Intelligence Summary\n\n"))
		assert.NotContains(t, out, "## 📞 Contact Information")
		assert.True(t, strings.HasSuffix(out, "- Company Directory"))
	})
}

type recordingSummarizer struct {
	mu    sync.Mutex
	input string
}

func (r *recordingSummarizer) Summarize(ctx context.Context, labeledText string, format aggregator.OutputFormat) (*aggregator.Summary, error) {
	r.mu.Lock()
	r.input = labeledText
	r.mu.Unlock()
	return aggregator.StubSummarizer{}.Summarize(ctx, labeledText, format)
}

func TestGather_LabeledInput(t *testing.T) {
	rec := &recordingSummarizer{}
	a := newTestAgent(t, WithSummarizer(rec))

	_, err := a.Gather(context.Background(), "twitter and github about Jane Roe", aggregator.FormatText)
	require.NoError(t, err)

	assert.Equal(t, "Person: Jane Roe\n\n"+
		"TWITTER: "+sources.TwitterProvider{}.Fetch(context.Background(), "Jane Roe")+"\n"+
		"GITHUB: "+sources.GitHubProvider{}.Fetch(context.Background(), "Jane Roe"), rec.input)

	_, err = a.Gather(context.Background(), "leads from Acme Corporation", aggregator.FormatText)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rec.input, "Company: Acme Corporation\n\nCOMPANY RESEARCH:\nCompany: Acme Corporation - Employee Directory\n"))
}

func TestFetchAll_PreservesOrderUnderConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	slowFirst := func(delay time.Duration, text string) sources.Provider {
		return sources.ProviderFunc(func(ctx context.Context, subject string) string {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(delay)
			inFlight.Add(-1)
			return text
		})
	}

	reg := sources.NewRegistry()
	reg.Register(sources.LinkedIn, slowFirst(60*time.Millisecond, "first"))
	reg.Register(sources.Twitter, slowFirst(20*time.Millisecond, "second"))
	reg.Register(sources.GitHub, slowFirst(0, "third"))

	cfg := config.Default()
	cfg.Sources.MaxConcurrentFetches = 2
	rec := &recordingSummarizer{}
	a, err := New(cfg, logger.NewTestLogger(t), WithRegistry(reg), WithSummarizer(rec))
	require.NoError(t, err)

	_, err = a.Gather(context.Background(), "about Jane Roe", aggregator.FormatText)
	require.NoError(t, err)

	assert.Equal(t, "Person: Jane Roe\n\nLINKEDIN: first\nTWITTER: second\nGITHUB: third", rec.input)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestFetchAll_SkipsUnregisteredSources(t *testing.T) {
	reg := sources.NewRegistry()
	reg.Register(sources.GitHub, sources.GitHubProvider{})
	rec := &recordingSummarizer{}

	a := newTestAgent(t, WithRegistry(reg), WithSummarizer(rec))
	_, err := a.Gather(context.Background(), "about Jane Roe", aggregator.FormatText)
	require.NoError(t, err)

	assert.Equal(t, "Person: Jane Roe\n\nGITHUB: "+sources.GitHubProvider{}.Fetch(context.Background(), "Jane Roe"), rec.input)
}

type failingSummarizer struct{ err error }

func (f failingSummarizer) Summarize(context.Context, string, aggregator.OutputFormat) (*aggregator.Summary, error) {
	return nil, f.err
}

type panickingSummarizer struct{}

func (panickingSummarizer) Summarize(context.Context, string, aggregator.OutputFormat) (*aggregator.Summary, error) {
	panic("boom")
}

func TestRun_ErrorsBecomeStrings(t *testing.T) {
	t.Run("summarizer error", func(t *testing.T) {
		a := newTestAgent(t, WithSummarizer(failingSummarizer{err: apperrors.NewLLMTimeoutError()}))
		out := a.Run(context.Background(), "about John Doe", aggregator.FormatText)
		assert.Equal(t, "Error gathering intelligence: LLM call exceeded timeout", out)
	})

	t.Run("summarizer panic", func(t *testing.T) {
		a := newTestAgent(t, WithSummarizer(panickingSummarizer{}))
		out := a.Run(context.Background(), "about John Doe", aggregator.FormatText)
		assert.Equal(t, "Error gathering intelligence: boom", out)
	})

	t.Run("provider panic", func(t *testing.T) {
		reg := sources.NewRegistry()
		reg.Register(sources.Company, sources.ProviderFunc(func(context.Context, string) string { panic("directory down") }))

		a := newTestAgent(t, WithRegistry(reg))
		report, err := a.Gather(context.Background(), "staff at Initech", aggregator.FormatText)
		assert.Nil(t, report)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeGatheringFailed))
		assert.Equal(t, "Error gathering intelligence: company provider: directory down",
			a.Run(context.Background(), "staff at Initech", aggregator.FormatText))
	})

	t.Run("invalid format", func(t *testing.T) {
		out := newTestAgent(t).Run(context.Background(), "about John Doe", aggregator.OutputFormat("xml"))
		assert.True(t, strings.HasPrefix(out, ErrorPrefix))
	})
}

func TestNew_SummarizerSelection(t *testing.T) {
	tests := []struct {
		provider string
		wantErr  bool
		genai    bool
	}{
		{"mock", false, false},
		{"", false, false},
		{"openrouter", false, true},
		{"genai", false, true},
		{"openai", false, true},
		{"anthropic-magic", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := config.Default()
			cfg.ProviderName = tt.provider

			a, err := New(cfg, nil)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnsupportedAIProvider))
				return
			}
			require.NoError(t, err)
			_, isGenAI := a.summarizer.(*aggregator.GenAISummarizer)
			assert.Equal(t, tt.genai, isGenAI)
		})
	}
}

func TestNew_GenAIUsesProviderKey(t *testing.T) {
	var auth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Analyst narrative."}}]}`))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.ProviderName = "openrouter"
	cfg.APIKeys = map[string]string{"openrouter": "sk-or"}
	cfg.GenAI.BaseURL = server.URL

	a, err := New(cfg, logger.NewTestLogger(t))
	require.NoError(t, err)

	out := a.Run(context.Background(), "employees from TechCorp Inc", aggregator.FormatText)
	assert.True(t, strings.HasPrefix(out, "Analyst narrative.\n\n📞 CONTACT INFO:"))
	assert.Equal(t, "Bearer sk-or", auth.Load())
}

func TestGather_CachesWebFetchesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Cache.Redis.Address = mr.Addr()
	cache := database.NewRedis(cfg.Cache.Redis)
	defer cache.Close()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<p>sales@example.com</p>"))
	}))
	defer server.Close()

	a, err := New(cfg, logger.NewTestLogger(t), WithCache(cache))
	require.NoError(t, err)

	first := a.Run(context.Background(), "check "+server.URL, aggregator.FormatText)
	second := a.Run(context.Background(), "check "+server.URL, aggregator.FormatText)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "sales@example.com")
	assert.Equal(t, int32(1), hits.Load())
	assert.True(t, mr.Exists("intel:web:"+server.URL))
	assert.Equal(t, cfg.Cache.Expiration(), mr.TTL("intel:web:"+server.URL))
}

func TestGather_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := observability.New("intel-agent-test", logger.NewTestLogger(t), observability.WithSpanProcessor(recorder))
	defer obs.Shutdown()

	a := newTestAgent(t, WithObservability(obs))
	_, err := a.Gather(context.Background(), "Tell me about John Doe", aggregator.FormatMarkdown)
	require.NoError(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "intel.gather", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("format", "markdown"))
}
