package courier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultQuoteTimeout bounds each provider's quote call. Quotes expire in
// five minutes and the caller usually waits synchronously, so a slow provider
// degrades the result set rather than the whole operation.
const DefaultQuoteTimeout = 10 * time.Second

// Registry manages registered courier providers and fans quote requests out
// to all of them.
type Registry struct {
	providers    map[string]Provider
	mu           sync.RWMutex
	quoteTimeout time.Duration
	logger       *otelzap.Logger
}

// NewRegistry creates a new provider registry.
func NewRegistry(logger *otelzap.Logger) *Registry {
	return &Registry{
		providers:    make(map[string]Provider),
		quoteTimeout: DefaultQuoteTimeout,
		logger:       logger,
	}
}

// SetQuoteTimeout overrides the per-provider quote timeout.
func (r *Registry) SetQuoteTimeout(d time.Duration) {
	if d > 0 {
		r.quoteTimeout = d
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

// All returns all registered providers.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	return result
}

// Names returns the names of all registered providers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// CollectQuotes fetches quotes from every registered provider in parallel.
// Each call is isolated: one provider's failure is recorded and excluded from
// the result set without aborting the other in-flight calls. Output order is
// unspecified; callers must not assume provider order.
func (r *Registry) CollectQuotes(ctx context.Context, req *DeliveryRequest) ([]*Quote, []error) {
	providers := r.All()
	if len(providers) == 0 {
		return nil, []error{ErrProviderNotFound}
	}

	quotes := make([]*Quote, 0, len(providers))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	g := &errgroup.Group{}

	for _, p := range providers {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, r.quoteTimeout)
			defer cancel()

			quote, err := p.Quote(callCtx, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Warn("Provider quote failed",
					zap.String("provider", p.Name()),
					zap.Error(err),
				)
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				return nil // don't fail the group, continue with other providers
			}
			quotes = append(quotes, quote)
			return nil
		})
	}

	g.Wait()
	return quotes, errs
}

// Aggregate fans out to every provider and returns the normalized quote set.
// It fails with ErrNoQuotesAvailable when no provider produced a quote, so
// callers can tell "no provider can serve this route" from a partial result.
func (r *Registry) Aggregate(ctx context.Context, req *DeliveryRequest) ([]*Quote, error) {
	if r.Count() == 0 {
		return nil, ErrProviderNotFound
	}

	quotes, errs := r.CollectQuotes(ctx, req)
	if len(quotes) == 0 {
		if len(errs) == 1 {
			return nil, fmt.Errorf("%w: %w", ErrNoQuotesAvailable, errs[0])
		}
		return nil, fmt.Errorf("%w: %d providers failed", ErrNoQuotesAvailable, len(errs))
	}
	return quotes, nil
}
