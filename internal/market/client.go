package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Amongalen/albion-profit-calculator/internal/cities"
	"github.com/Amongalen/albion-profit-calculator/internal/config"
)

// Client is a rate-limited HTTP client for the albion-online-data
// market API. Item ids are fetched in chunks because the API caps the
// URL-embedded id list.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	baseURL   string
	locations string
	qualities string
	timeScale int
}

// NewClient builds a client from the API settings in cfg.
func NewClient(cfg *config.Config) *Client {
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	qualities := make([]string, 0, len(cfg.APIQualities))
	for _, q := range cfg.APIQualities {
		qualities = append(qualities, strconv.Itoa(q))
	}
	return &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		baseURL:   strings.TrimRight(cfg.APIAddress, "/"),
		locations: strings.Join(cities.Names(), ","),
		qualities: strings.Join(qualities, ","),
		timeScale: cfg.APITimeScale,
	}
}

// priceResponse is one row of the /prices endpoint: the current order
// book extremes for one item in one city at one quality.
type priceResponse struct {
	ItemID       string  `json:"item_id"`
	City         string  `json:"city"`
	Quality      int     `json:"quality"`
	SellPriceMin float64 `json:"sell_price_min"`
}

// historyResponse is one row of the /history endpoint: a series of
// hourly buckets for one item in one city at one quality.
type historyResponse struct {
	ItemID   string `json:"item_id"`
	Location string `json:"location"`
	Quality  int    `json:"quality"`
	Data     []struct {
		ItemCount float64 `json:"item_count"`
		AvgPrice  float64 `json:"avg_price"`
		Timestamp string  `json:"timestamp"`
	} `json:"data"`
}

const historyTimeLayout = "2006-01-02T15:04:05"

// FetchChunk fetches the current prices and recent history for one
// chunk of item ids and merges them into per-city records.
func (c *Client) FetchChunk(ctx context.Context, itemIDs []string) (map[string]RawItemPrices, error) {
	idList := strings.Join(itemIDs, ",")

	var prices []priceResponse
	if err := c.getJSON(ctx, c.pricesURL(idList), &prices); err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	var history []historyResponse
	if err := c.getJSON(ctx, c.historyURL(idList), &history); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	records := make(map[string]RawItemPrices, len(itemIDs))
	for _, id := range itemIDs {
		records[id] = RawItemPrices{}
	}
	mergePrices(records, prices)
	mergeHistory(records, history)
	return records, nil
}

func (c *Client) pricesURL(idList string) string {
	q := url.Values{}
	q.Set("locations", c.locations)
	q.Set("qualities", c.qualities)
	return fmt.Sprintf("%s/prices/%s.json?%s", c.baseURL, idList, q.Encode())
}

func (c *Client) historyURL(idList string) string {
	q := url.Values{}
	q.Set("locations", c.locations)
	q.Set("qualities", c.qualities)
	q.Set("time-scale", strconv.Itoa(c.timeScale))
	return fmt.Sprintf("%s/history/%s.json?%s", c.baseURL, idList, q.Encode())
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("market API %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// mergePrices keeps, per item and city, the lowest live ask seen across
// qualities. Zero asks mean "no listing" and are skipped.
func mergePrices(records map[string]RawItemPrices, prices []priceResponse) {
	for _, row := range prices {
		city, ok := cities.Index(row.City)
		if !ok || row.SellPriceMin <= 0 {
			continue
		}
		record := records[row.ItemID]
		if record[city].SellPriceMin == 0 || row.SellPriceMin < record[city].SellPriceMin {
			record[city].SellPriceMin = row.SellPriceMin
		}
		records[row.ItemID] = record
	}
}

// bucket is one usable history data point.
type bucket struct {
	count float64
	price float64
	at    time.Time
}

// mergeHistory folds all qualities' history buckets per item and city
// into one 24h volume-weighted average plus a total sold count.
func mergeHistory(records map[string]RawItemPrices, history []historyResponse) {
	grouped := make(map[string]map[int][]bucket)
	for _, row := range history {
		city, ok := cities.Index(row.Location)
		if !ok {
			continue
		}
		byCity := grouped[row.ItemID]
		if byCity == nil {
			byCity = make(map[int][]bucket)
			grouped[row.ItemID] = byCity
		}
		for _, point := range row.Data {
			at, err := time.Parse(historyTimeLayout, point.Timestamp)
			if err != nil || point.ItemCount <= 0 {
				continue
			}
			byCity[city] = append(byCity[city], bucket{point.ItemCount, point.AvgPrice, at})
		}
	}

	for itemID, byCity := range grouped {
		record, ok := records[itemID]
		if !ok {
			continue
		}
		for city, buckets := range byCity {
			avg, sold := summarize(buckets)
			record[city].AvgPrice24h = avg
			record[city].ItemsSold = sold
		}
		records[itemID] = record
	}
}

// summarize keeps buckets within 24h of the newest one and returns
// their volume-weighted mean price and total sold count.
func summarize(buckets []bucket) (avg, sold float64) {
	var newest time.Time
	for _, b := range buckets {
		if b.at.After(newest) {
			newest = b.at
		}
	}
	cutoff := newest.Add(-24 * time.Hour)

	var weighted, total float64
	for _, b := range buckets {
		if b.at.Before(cutoff) {
			continue
		}
		weighted += b.price * b.count
		total += b.count
	}
	if total == 0 {
		return 0, 0
	}
	return weighted / total, total
}
