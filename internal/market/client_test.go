package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Amongalen/albion-profit-calculator/internal/cities"
	"github.com/Amongalen/albion-profit-calculator/internal/config"
)

func testClient(serverURL string) *Client {
	cfg := config.Default()
	cfg.APIAddress = serverURL
	cfg.RequestsPerMinute = 100000 // no throttling in tests
	return NewClient(cfg)
}

func TestFetchChunk(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	stamp := func(d time.Duration) string {
		return now.Add(d).Format(historyTimeLayout)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/prices/T4_PLANKS.json":
			fmt.Fprint(w, `[
			 {"item_id": "T4_PLANKS", "city": "Lymhurst", "quality": 1, "sell_price_min": 120},
			 {"item_id": "T4_PLANKS", "city": "Lymhurst", "quality": 2, "sell_price_min": 110},
			 {"item_id": "T4_PLANKS", "city": "Lymhurst", "quality": 3, "sell_price_min": 0},
			 {"item_id": "T4_PLANKS", "city": "Caerleon", "quality": 1, "sell_price_min": 140},
			 {"item_id": "T4_PLANKS", "city": "Black Market", "quality": 1, "sell_price_min": 999}
			]`)
		case r.URL.Path == "/history/T4_PLANKS.json":
			fmt.Fprintf(w, `[
			 {"item_id": "T4_PLANKS", "location": "Lymhurst", "quality": 1,
			  "data": [
			   {"item_count": 10, "avg_price": 100, "timestamp": %q},
			   {"item_count": 30, "avg_price": 120, "timestamp": %q},
			   {"item_count": 50, "avg_price": 200, "timestamp": %q}
			  ]},
			 {"item_id": "T4_PLANKS", "location": "Lymhurst", "quality": 2,
			  "data": [{"item_count": 20, "avg_price": 130, "timestamp": %q}]}
			]`, stamp(-time.Hour), stamp(-23*time.Hour), stamp(-48*time.Hour), stamp(-2*time.Hour))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	records, err := testClient(server.URL).FetchChunk(context.Background(), []string{"T4_PLANKS"})
	if err != nil {
		t.Fatalf("FetchChunk: %v", err)
	}
	record, ok := records["T4_PLANKS"]
	if !ok {
		t.Fatal("no record for T4_PLANKS")
	}

	lym := record[cities.Lymhurst]
	// Lowest nonzero ask across qualities.
	if lym.SellPriceMin != 110 {
		t.Errorf("SellPriceMin = %v, want 110", lym.SellPriceMin)
	}
	// Volume-weighted over the 24h window, both qualities merged, the
	// 48h-old bucket excluded: (10*100 + 30*120 + 20*130) / 60.
	want := (10*100.0 + 30*120 + 20*130) / 60
	if diff := lym.AvgPrice24h - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AvgPrice24h = %v, want %v", lym.AvgPrice24h, want)
	}
	if lym.ItemsSold != 60 {
		t.Errorf("ItemsSold = %v, want 60", lym.ItemsSold)
	}

	if record[cities.Caerleon].SellPriceMin != 140 {
		t.Errorf("Caerleon ask = %v, want 140", record[cities.Caerleon].SellPriceMin)
	}
	// Unknown locations are ignored, cities without data stay empty.
	if !record[cities.Martlock].Empty() {
		t.Errorf("Martlock record not empty: %+v", record[cities.Martlock])
	}
}

func TestFetchChunk_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchChunk(context.Background(), []string{"T4_PLANKS"})
	if err == nil {
		t.Fatal("expected error from failing upstream")
	}
}

func TestSummarize_AllStale(t *testing.T) {
	old := time.Now().UTC().Add(-72 * time.Hour)
	avg, sold := summarize([]bucket{{count: 10, price: 100, at: old}})
	// The newest bucket anchors the window, so a lone stale bucket still
	// counts relative to itself.
	if avg != 100 || sold != 10 {
		t.Errorf("summarize = (%v, %v), want (100, 10)", avg, sold)
	}
}
