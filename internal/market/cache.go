package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/Amongalen/albion-profit-calculator/internal/config"
	"github.com/Amongalen/albion-profit-calculator/internal/logger"
)

// Store is a persistent L2 cache for raw price records. A feed failure
// for a chunk falls back to whatever the store last saw for those items.
type Store interface {
	SavePrices(records map[string]RawItemPrices) error
	LoadPrices(itemIDs []string) (map[string]RawItemPrices, error)
}

// Fetcher serves raw price records through two cache layers: an
// in-memory TTL cache of recently fetched chunks, and the persistent
// store as the fallback when the upstream feed fails. Concurrent
// requests for the same chunk are coalesced.
type Fetcher struct {
	client    *Client
	mem       *gocache.Cache
	group     singleflight.Group
	store     Store
	chunkSize int
}

// NewFetcher wires the client, the in-memory cache and the optional
// persistent store together.
func NewFetcher(client *Client, store Store, cfg *config.Config) *Fetcher {
	ttl := time.Duration(cfg.PriceCacheHours) * time.Hour
	if ttl <= 0 {
		ttl = time.Hour
	}
	chunkSize := cfg.DownloadChunkSize
	if chunkSize <= 0 {
		chunkSize = 16
	}
	return &Fetcher{
		client:    client,
		mem:       gocache.New(ttl, ttl/2),
		store:     store,
		chunkSize: chunkSize,
	}
}

// Records returns raw records for all requested items. Items the feed
// and the fallback store both know nothing about come back as empty
// records, never as an error; a failed chunk is logged and degrades to
// the previous snapshot.
func (f *Fetcher) Records(ctx context.Context, itemIDs []string) (map[string]RawItemPrices, error) {
	records := make(map[string]RawItemPrices, len(itemIDs))
	failed := 0
	for start := 0; start < len(itemIDs); start += f.chunkSize {
		end := start + f.chunkSize
		if end > len(itemIDs) {
			end = len(itemIDs)
		}
		chunk, err := f.chunkRecords(ctx, itemIDs[start:end])
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			continue
		}
		for id, record := range chunk {
			records[id] = record
		}
	}
	if failed > 0 {
		logger.Warn("Market", fmt.Sprintf("%d chunk(s) unavailable, using previous snapshot where possible", failed))
	}
	return records, nil
}

// chunkRecords serves one chunk: memory cache, then the feed, then the
// persistent store as the feed-failure fallback.
func (f *Fetcher) chunkRecords(ctx context.Context, itemIDs []string) (map[string]RawItemPrices, error) {
	key := strings.Join(itemIDs, ",")
	if cached, ok := f.mem.Get(key); ok {
		return cached.(map[string]RawItemPrices), nil
	}

	result, err, _ := f.group.Do(key, func() (interface{}, error) {
		if cached, ok := f.mem.Get(key); ok {
			return cached.(map[string]RawItemPrices), nil
		}
		fetched, err := f.client.FetchChunk(ctx, itemIDs)
		if err != nil {
			return f.fallback(itemIDs, err)
		}
		f.mem.Set(key, fetched, gocache.DefaultExpiration)
		if f.store != nil {
			if err := f.store.SavePrices(fetched); err != nil {
				logger.Warn("Market", fmt.Sprintf("Snapshot save failed: %v", err))
			}
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]RawItemPrices), nil
}

// fallback loads the last persisted records for the chunk's items.
// The stale rows are deliberately not put in the memory cache, so the
// feed is retried on the next refresh.
func (f *Fetcher) fallback(itemIDs []string, cause error) (map[string]RawItemPrices, error) {
	if f.store == nil {
		return nil, cause
	}
	stored, err := f.store.LoadPrices(itemIDs)
	if err != nil || len(stored) == 0 {
		return nil, cause
	}
	logger.Warn("Market", fmt.Sprintf("Feed failed (%v), serving %d item(s) from the previous snapshot", cause, len(stored)))
	return stored, nil
}
