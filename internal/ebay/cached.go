package ebay

import (
	"context"
	"log"
	"time"

	"dealscout/internal/cache"
	"dealscout/internal/model"
)

// Cached API responses stay valid briefly; listing prices move too fast for
// anything longer.
const responseTTL = 10 * time.Minute

// CachedProvider wraps a Provider with a file-backed response cache so
// repeated runs of the same query skip the network. Cache failures degrade to
// a plain upstream call.
type CachedProvider struct {
	inner Provider
	store *cache.Cache
}

// NewCachedProvider wraps provider with the cache at path.
func NewCachedProvider(provider Provider, path string) (*CachedProvider, error) {
	store, err := cache.New(path)
	if err != nil {
		return nil, err
	}
	return &CachedProvider{inner: provider, store: store}, nil
}

// Available reports the wrapped provider's availability.
func (p *CachedProvider) Available() bool {
	return p != nil && p.inner.Available()
}

// Search serves from cache when a live entry exists, otherwise calls upstream
// and stores the envelope. Error responses are never cached.
func (p *CachedProvider) Search(ctx context.Context, query string, limit, offset int, mode SearchMode) (*model.SearchEnvelope, error) {
	key := cache.SearchKey(query, string(mode), limit, offset)

	var cached model.SearchEnvelope
	if found, err := p.store.Get(key, &cached); err == nil && found {
		return &cached, nil
	}

	envelope, err := p.inner.Search(ctx, query, limit, offset, mode)
	if err != nil {
		return nil, err
	}
	if err := p.store.Put(key, envelope, responseTTL); err != nil {
		log.Printf("[ebay] caching search %q failed: %v", query, err)
	}
	return envelope, nil
}

// DealItems serves the Deal API page from cache when possible.
func (p *CachedProvider) DealItems(ctx context.Context, categoryIDs string, limit, offset int) (*model.DealEnvelope, error) {
	key := cache.DealItemsKey(categoryIDs, limit, offset)

	var cached model.DealEnvelope
	if found, err := p.store.Get(key, &cached); err == nil && found {
		return &cached, nil
	}

	envelope, err := p.inner.DealItems(ctx, categoryIDs, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := p.store.Put(key, envelope, responseTTL); err != nil {
		log.Printf("[ebay] caching deal items failed: %v", err)
	}
	return envelope, nil
}

// Clear drops every cached response.
func (p *CachedProvider) Clear() error {
	return p.store.Clear()
}
