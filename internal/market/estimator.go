package market

import (
	"github.com/Amongalen/albion-profit-calculator/internal/nanmath"
)

// Estimator turns raw per-city records into estimated price vectors.
// It is pure: no network or disk access, missing data stays missing.
type Estimator struct {
	// DeviationTolerance is the factor K: the live minimum ask is trusted
	// only while min/avg lies within [1/K, K].
	DeviationTolerance float64
	// OutlierBandFactor scales the IQR when building the per-item
	// outlier rejection band.
	OutlierBandFactor float64
	// FallbackIQRWidth replaces a zero-width IQR when an item's six
	// estimates are (near-)identical.
	FallbackIQRWidth float64
}

// EstimateAll estimates one price vector per item and applies the
// per-item outlier correction across cities.
func (e Estimator) EstimateAll(raw map[string]RawItemPrices) map[string]PriceVector {
	estimated := make(map[string]PriceVector, len(raw))
	for itemID, records := range raw {
		estimated[itemID] = e.correctOutliers(e.estimateItem(records))
	}
	return estimated
}

func (e Estimator) estimateItem(records RawItemPrices) PriceVector {
	var v PriceVector
	for city, record := range records {
		v[city] = e.estimateCity(record)
	}
	return v
}

// estimateCity picks between the live minimum ask and the smoothed 24h
// average. The live ask wins only when it does not deviate from the
// average by more than the tolerance factor in either direction; a lone
// mispriced listing would otherwise dominate the estimate.
func (e Estimator) estimateCity(record CityRecord) float64 {
	if record.Empty() {
		return nanmath.Missing()
	}
	avg := record.AvgPrice24h
	if avg == 0 {
		return nanmath.Missing()
	}
	min := record.SellPriceMin
	if min == 0 {
		// No live ask at all; the average is the only signal.
		return avg
	}
	deviation := min / avg
	if deviation >= 1/e.DeviationTolerance && deviation <= e.DeviationTolerance {
		return min
	}
	return avg
}

// correctOutliers drops per-city estimates that sit far outside the
// item's own cross-city distribution. The quartiles are computed with
// deliberately narrow interpolation, so the band stays conservative.
func (e Estimator) correctOutliers(v PriceVector) PriceVector {
	q1, q3 := nanmath.NarrowQuartiles(v[:])
	if nanmath.IsMissing(q1) || nanmath.IsMissing(q3) {
		return v
	}
	iqr := q3 - q1
	if iqr == 0 {
		iqr = e.FallbackIQRWidth
	}
	lower := q1 - e.OutlierBandFactor*iqr
	upper := q3 + e.OutlierBandFactor*iqr
	for city, price := range v {
		if nanmath.IsMissing(price) {
			continue
		}
		if price < lower || price > upper {
			v[city] = nanmath.Missing()
		}
	}
	return v
}
