package engine

import (
	"time"

	"github.com/Amongalen/albion-profit-calculator/internal/market"
)

// Snapshot is one immutable, versioned price table: every item's
// estimated price vector as of a single refresh. Readers always see a
// whole snapshot, never a half-updated one.
type Snapshot struct {
	prices map[string]market.PriceVector
	at     time.Time
}

// NewSnapshot wraps an estimated price table.
func NewSnapshot(prices map[string]market.PriceVector, at time.Time) *Snapshot {
	return &Snapshot{prices: prices, at: at}
}

// Vector returns the item's price vector; unknown items are all missing.
func (s *Snapshot) Vector(itemID string) market.PriceVector {
	if s == nil {
		return market.MissingVector()
	}
	if v, ok := s.prices[itemID]; ok {
		return v
	}
	return market.MissingVector()
}

// At returns when the snapshot was taken.
func (s *Snapshot) At() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.at
}
