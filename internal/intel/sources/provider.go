// Package sources implements the data-source providers consulted by the agent.
// Every provider turns a subject (person, company or URL) into unstructured
// text and reports its own failures inside that text.
package sources

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"intel-agent/internal/common/metrics"
)

// SourceID names a data-source provider.
type SourceID string

const (
	LinkedIn SourceID = "linkedin"
	Twitter  SourceID = "twitter"
	GitHub   SourceID = "github"
	Web      SourceID = "web"
	Company  SourceID = "company"
)

// PersonSources lists the person-oriented providers in lookup order.
var PersonSources = []SourceID{LinkedIn, Twitter, GitHub}

// All lists every provider in the order they are advertised to users.
var All = []SourceID{LinkedIn, Twitter, GitHub, Web, Company}

// Label is the upper-cased tag used to prefix a provider's block.
func (id SourceID) Label() string {
	return strings.ToUpper(string(id))
}

// Provider fetches text about a subject. Implementations never return an
// error: failures are rendered into the returned text.
type Provider interface {
	Fetch(ctx context.Context, subject string) string
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, subject string) string

func (f ProviderFunc) Fetch(ctx context.Context, subject string) string {
	return f(ctx, subject)
}

// Registry maps each SourceID to exactly one Provider.
type Registry struct {
	mu        sync.RWMutex
	providers map[SourceID]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[SourceID]Provider)}
}

// NewDefaultRegistry registers the mock providers plus the given web provider.
func NewDefaultRegistry(web Provider) *Registry {
	r := NewRegistry()
	r.Register(LinkedIn, Instrument(LinkedIn, LinkedInProvider{}))
	r.Register(Twitter, Instrument(Twitter, TwitterProvider{}))
	r.Register(GitHub, Instrument(GitHub, GitHubProvider{}))
	r.Register(Company, Instrument(Company, CompanyDirectoryProvider{}))
	if web != nil {
		r.Register(Web, web)
	}
	return r
}

// Register binds a provider, replacing any previous binding for id.
func (r *Registry) Register(id SourceID, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[id] = p
}

func (r *Registry) Get(id SourceID) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("no provider registered for source %q", id)
	}
	return p, nil
}

// Instrument records fetch count and duration for providers that cannot fail.
// WebProvider reports its own outcome and is not wrapped.
func Instrument(id SourceID, p Provider) Provider {
	return ProviderFunc(func(ctx context.Context, subject string) string {
		start := time.Now()
		out := p.Fetch(ctx, subject)
		metrics.ProviderFetchDuration.WithLabelValues(string(id)).Observe(time.Since(start).Seconds())
		metrics.ProviderFetches.WithLabelValues(string(id), metrics.StatusOK).Inc()
		return out
	})
}
