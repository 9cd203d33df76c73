// Package quote holds the quote providers the engine can be wired with: a TTL
// cache in front of a remote feed, and a fixed price table for local runs.
package quote

import (
	"context"
	"strings"

	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/platform/cache"
)

// CachedProvider serves quotes from a scoped TTL store and collapses concurrent
// misses for the same symbol into one upstream call.
type CachedProvider struct {
	next  quote.Provider
	store *cache.Store[quote.Quote]
}

func NewCachedProvider(next quote.Provider, store *cache.Store[quote.Quote]) *CachedProvider {
	return &CachedProvider{next: next, store: store}
}

func (p *CachedProvider) GetQuote(ctx context.Context, symbol string) (quote.Quote, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	return p.store.GetOrLoad(ctx, "quote:"+key, func(ctx context.Context) (quote.Quote, error) {
		return p.next.GetQuote(ctx, key)
	})
}

// Invalidate drops a cached symbol.
func (p *CachedProvider) Invalidate(ctx context.Context, symbol string) {
	p.store.Delete(ctx, "quote:"+strings.ToUpper(strings.TrimSpace(symbol)))
}
