package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Amongalen/albion-profit-calculator/internal/catalog"
	"github.com/Amongalen/albion-profit-calculator/internal/cities"
	"github.com/Amongalen/albion-profit-calculator/internal/config"
	"github.com/Amongalen/albion-profit-calculator/internal/logger"
	"github.com/Amongalen/albion-profit-calculator/internal/market"
)

// RecordSource supplies raw market records for a set of item ids.
type RecordSource interface {
	Records(ctx context.Context, itemIDs []string) (map[string]market.RawItemPrices, error)
}

// ReportStore persists published batches so a restart can serve the
// previous results until the first refresh finishes.
type ReportStore interface {
	SaveBatch(batch Batch) error
	LoadBatches() ([]Batch, error)
}

// group is one calculation family: all recipes of a kind under one
// policy and focus setting.
type group struct {
	kind     catalog.RecipeKind
	policy   Policy
	useFocus bool
}

// Calculator owns the price snapshot and the published report batches.
// Refresh replaces both wholesale; queries only ever see a complete
// snapshot.
type Calculator struct {
	data      *catalog.Data
	source    RecordSource
	store     ReportStore
	estimator market.Estimator
	returns   *ReturnRates

	oneTile     float64
	profitLimit float64

	mu      sync.RWMutex
	prices  *Snapshot
	batches map[string]*Batch
}

// New wires a calculator. store may be nil; previously persisted
// batches, if any, are served until the first refresh completes.
func New(data *catalog.Data, source RecordSource, store ReportStore, cfg *config.Config) *Calculator {
	c := &Calculator{
		data:   data,
		source: source,
		store:  store,
		estimator: market.Estimator{
			DeviationTolerance: cfg.DeviationTolerance,
			OutlierBandFactor:  cfg.OutlierBandFactor,
			FallbackIQRWidth:   cfg.FallbackIQRWidth,
		},
		returns:     NewReturnRates(data, cfg),
		oneTile:     cfg.OneTileCost,
		profitLimit: cfg.ProfitPercentageLimit,
		batches:     make(map[string]*Batch),
	}
	c.restoreBatches()
	return c
}

func (c *Calculator) restoreBatches() {
	if c.store == nil {
		return
	}
	batches, err := c.store.LoadBatches()
	if err != nil {
		logger.Warn("Engine", fmt.Sprintf("Could not restore reports: %v", err))
		return
	}
	for i := range batches {
		c.batches[batches[i].Key] = &batches[i]
	}
	if len(batches) > 0 {
		logger.Info("Engine", fmt.Sprintf("Restored %d result set(s) from previous run", len(batches)))
	}
}

// Refresh runs one whole pass: fetch raw records, estimate prices, swap
// the price snapshot, recompute every calculation group and republish
// all batches. Partial failures degrade to missing data; only a broken
// record source fails the pass.
func (c *Calculator) Refresh(ctx context.Context) error {
	start := time.Now()

	records, err := c.source.Records(ctx, c.data.PriceItemIDs())
	if err != nil {
		return fmt.Errorf("refresh prices: %w", err)
	}
	snapshot := NewSnapshot(c.estimator.EstimateAll(records), time.Now())
	c.mu.Lock()
	c.prices = snapshot
	c.mu.Unlock()

	calc := calculation{data: c.data, prices: snapshot, returns: c.returns}
	published := make(map[string]*Batch)
	for _, g := range calculationGroups() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, batch := range c.computeGroup(calc, g) {
			published[batch.Key] = batch
		}
	}

	c.mu.Lock()
	c.batches = published
	c.mu.Unlock()

	c.persistBatches(published)
	logger.Success("Engine", fmt.Sprintf("Refresh done in %s: %d result sets", time.Since(start).Round(time.Millisecond), len(published)))
	return nil
}

func (c *Calculator) persistBatches(published map[string]*Batch) {
	if c.store == nil {
		return
	}
	for _, batch := range published {
		if err := c.store.SaveBatch(*batch); err != nil {
			logger.Warn("Engine", fmt.Sprintf("Could not persist %s: %v", batch.Key, err))
		}
	}
}

// calculationGroups lists every published calculation family. Focus
// only matters for crafting; transport never changes its kind-specific
// policies.
func calculationGroups() []group {
	groups := []group{
		{catalog.Transport, PolicyTravel, false},
		{catalog.Transport, PolicyNoRisk, false},
	}
	for _, policy := range Policies {
		groups = append(groups, group{catalog.Upgrade, policy, false})
	}
	for _, policy := range Policies {
		groups = append(groups,
			group{catalog.Crafting, policy, true},
			group{catalog.Crafting, policy, false},
		)
	}
	return groups
}

// computeGroup computes one group's batches: one batch per key, where
// PER_CITY expands into six single-city keys.
func (c *Calculator) computeGroup(calc calculation, g group) []*Batch {
	recipes := c.data.RecipesOfKind(g.kind)
	baseKey := calculationKey(g.kind, g.policy, g.useFocus)

	if g.policy == PolicyPerCity {
		batches := make([]*Batch, 0, cities.Count)
		for city := 0; city < cities.Count; city++ {
			batches = append(batches,
				c.computeBatch(calc, recipes, PerCityMatrix(city), g.useFocus, perCityKey(baseKey, city)))
		}
		return batches
	}

	var m Matrix
	switch g.policy {
	case PolicyTravel:
		m = TravelMatrix(c.oneTile)
	case PolicyNoRisk:
		m = NoRiskMatrix(c.oneTile)
	case PolicyNoTravel:
		m = NoTravelMatrix()
	}
	return []*Batch{c.computeBatch(calc, recipes, m, g.useFocus, baseKey)}
}

// computeBatch runs every recipe against one matrix in parallel, then
// filters and ranks the survivors. Recipe calculations share only
// read-only inputs, so they need no locking.
func (c *Calculator) computeBatch(calc calculation, recipes []catalog.Recipe, m Matrix, useFocus bool, key string) *Batch {
	results := make([]*ProfitReport, len(recipes))

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, recipe := range recipes {
		eg.Go(func() error {
			if report, ok := calc.reportFor(recipe, m, useFocus); ok {
				results[i] = &report
			}
			return nil
		})
	}
	eg.Wait() // workers never return errors

	reports := make([]ProfitReport, 0, len(results))
	for _, report := range results {
		if report == nil {
			continue
		}
		// Absurd percentages are division-by-near-zero artifacts, not
		// real opportunities.
		if report.ProfitPercentage >= c.profitLimit {
			continue
		}
		reports = append(reports, *report)
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].ProfitPercentage > reports[j].ProfitPercentage
	})
	return &Batch{Key: key, UpdatedAt: calc.prices.At(), Reports: reports}
}

// Reports returns the latest published batch for a calculation key,
// optionally filtered to one product subcategory. city is only used for
// the PER_CITY policy.
func (c *Calculator) Reports(kind catalog.RecipeKind, policy Policy, city int, useFocus bool, category string) ([]ProfitReport, time.Time, bool) {
	key := calculationKey(kind, policy, useFocus)
	if policy == PolicyPerCity {
		key = perCityKey(key, city)
	}

	c.mu.RLock()
	batch := c.batches[key]
	c.mu.RUnlock()
	if batch == nil {
		return nil, time.Time{}, false
	}
	if category == "" {
		return batch.Reports, batch.UpdatedAt, true
	}
	filtered := make([]ProfitReport, 0, len(batch.Reports))
	for _, report := range batch.Reports {
		if report.ProductSubcategory == category {
			filtered = append(filtered, report)
		}
	}
	return filtered, batch.UpdatedAt, true
}

// PricesAt reports the current snapshot's timestamp, zero before the
// first refresh.
func (c *Calculator) PricesAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prices.At()
}

func calculationKey(kind catalog.RecipeKind, policy Policy, useFocus bool) string {
	focus := "NO_FOCUS"
	if useFocus {
		focus = "WITH_FOCUS"
	}
	return fmt.Sprintf("%s_%s_%s", kind, policy, focus)
}

func perCityKey(baseKey string, city int) string {
	name := strings.ReplaceAll(strings.ToUpper(cities.Name(city)), " ", "_")
	return baseKey + "_" + name
}
