package sources

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"

	apperrors "intel-agent/internal/common/errors"
	apphttp "intel-agent/internal/common/http"
	"intel-agent/internal/common/logger"
	"intel-agent/internal/common/metrics"
	"intel-agent/internal/intel/contact"
)

const cacheKeyPrefix = "intel:web:"

// Cache stores rendered web fetches keyed by URL.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// WebConfig tunes the web provider.
type WebConfig struct {
	Timeout      time.Duration
	UserAgent    string
	PreviewChars int
	MaxEmails    int
	MaxPhones    int
	CacheTTL     time.Duration
}

// WebProvider fetches an arbitrary URL, strips markup and reports any contact
// tokens found in the raw page.
type WebProvider struct {
	client *apphttp.Client
	config WebConfig
	cache  Cache
	logger logger.Logger
}

func NewWebProvider(cfg WebConfig, cache Cache, log logger.Logger) *WebProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = 800
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &WebProvider{
		client: apphttp.NewClient(cfg.Timeout, cfg.UserAgent),
		config: cfg,
		cache:  cache,
		logger: log,
	}
}

func (p *WebProvider) Fetch(ctx context.Context, url string) string {
	start := time.Now()
	defer func() {
		metrics.ProviderFetchDuration.WithLabelValues(string(Web)).Observe(time.Since(start).Seconds())
	}()

	if cached, ok := p.fromCache(ctx, url); ok {
		metrics.ProviderFetches.WithLabelValues(string(Web), metrics.StatusCache).Inc()
		return cached
	}

	content, err := p.client.GetText(ctx, url)
	if err != nil {
		fetchErr := classifyFetchError(url, err)
		p.logger.Warn("Web fetch failed", map[string]interface{}{
			"url":       url,
			"errorCode": fetchErr.Code,
			"error":     fetchErr.Details,
		})
		metrics.ProviderFetches.WithLabelValues(string(Web), metrics.StatusError).Inc()
		return fmt.Sprintf("Error fetching URL %s: %s", url, fetchErr.Details)
	}

	result := p.render(url, content)
	metrics.ProviderFetches.WithLabelValues(string(Web), metrics.StatusOK).Inc()
	p.toCache(ctx, url, result)
	return result
}

func (p *WebProvider) render(url, content string) string {
	preview := truncate(collapseWhitespace(stripMarkup(content)), p.config.PreviewChars)

	var b strings.Builder
	fmt.Fprintf(&b, "Web Content from %s:\n%s\n\n", url, preview)
	if emails := contact.Emails(content, p.config.MaxEmails); len(emails) > 0 {
		fmt.Fprintf(&b, "📧 Found emails: %s\n", strings.Join(emails, ", "))
	}
	if phones := contact.Phones(content, p.config.MaxPhones); len(phones) > 0 {
		fmt.Fprintf(&b, "📱 Found phones: %s\n", strings.Join(phones, ", "))
	}
	return b.String()
}

func (p *WebProvider) fromCache(ctx context.Context, url string) (string, bool) {
	if p.cache == nil {
		return "", false
	}
	value, ok, err := p.cache.Get(ctx, cacheKeyPrefix+url)
	if err != nil {
		p.logger.Warn("Web cache read failed", map[string]interface{}{"url": url, "error": err.Error()})
		return "", false
	}
	return value, ok
}

func (p *WebProvider) toCache(ctx context.Context, url, value string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Set(ctx, cacheKeyPrefix+url, value, p.config.CacheTTL); err != nil {
		p.logger.Warn("Web cache write failed", map[string]interface{}{"url": url, "error": err.Error()})
	}
}

func classifyFetchError(url string, err error) *apperrors.StandardError {
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewFetchTimeoutError(url)
	}
	return apperrors.NewFetchFailedError(url, err)
}

// stripMarkup replaces every tag with a space and drops script and style bodies.
func stripMarkup(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))

	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed document; either way keep what was read.
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if isInvisible(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if isInvisible(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isInvisible(tag string) bool {
	return tag == "script" || tag == "style" || tag == "noscript"
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to limit runes, appending "..." when anything was dropped.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
