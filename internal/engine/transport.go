// Package engine turns price vectors and the recipe catalog into ranked
// profit reports: per-recipe cost matrices over the six-city network,
// return-rate discounts, journal income and the refresh pass that
// publishes the results as immutable snapshots.
package engine

import (
	"github.com/Amongalen/albion-profit-calculator/internal/cities"
	"github.com/Amongalen/albion-profit-calculator/internal/nanmath"
)

// Policy selects which transport multiplier matrix a calculation uses.
type Policy string

const (
	// PolicyTravel allows every route, priced by distance.
	PolicyTravel Policy = "TRAVEL"
	// PolicyNoRisk is PolicyTravel with the high-risk city unreachable
	// from the outside.
	PolicyNoRisk Policy = "NO_RISK"
	// PolicyNoTravel restricts production and sale to the same city.
	PolicyNoTravel Policy = "NO_TRAVEL"
	// PolicyPerCity evaluates each city in isolation, one matrix per city.
	PolicyPerCity Policy = "PER_CITY"
)

// Policies lists every transport policy.
var Policies = []Policy{PolicyTravel, PolicyNoRisk, PolicyNoTravel, PolicyPerCity}

// ParsePolicy maps a request string to a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch Policy(s) {
	case PolicyTravel, PolicyNoRisk, PolicyNoTravel, PolicyPerCity:
		return Policy(s), true
	}
	return "", false
}

// Matrix is a 6x6 transport cost multiplier table, M[destination][source].
// Missing entries mark routes the policy forbids and must stay missing
// through all arithmetic.
type Matrix [cities.Count][cities.Count]float64

// The five royal cities form a ring; Caerleon sits in the center, one
// tile from everything but cut off entirely under PolicyNoRisk.
const ringSize = cities.Count - 1

// tileDistance returns how many map tiles separate two cities.
func tileDistance(a, b int) int {
	if a == b {
		return 0
	}
	if a == cities.Caerleon || b == cities.Caerleon {
		return 1
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	if ringSize-d < d {
		d = ringSize - d
	}
	return d
}

// TravelMatrix prices every route: 1.0 locally, oneTile for adjacent
// cities, oneTile squared beyond that.
func TravelMatrix(oneTile float64) Matrix {
	var m Matrix
	for to := range m {
		for from := range m[to] {
			switch tileDistance(to, from) {
			case 0:
				m[to][from] = 1
			case 1:
				m[to][from] = oneTile
			default:
				m[to][from] = oneTile * oneTile
			}
		}
	}
	return m
}

// NoRiskMatrix is TravelMatrix with every route touching the high-risk
// city removed, except its own diagonal.
func NoRiskMatrix(oneTile float64) Matrix {
	m := TravelMatrix(oneTile)
	for i := 0; i < cities.Count; i++ {
		if i == cities.Caerleon {
			continue
		}
		m[cities.Caerleon][i] = nanmath.Missing()
		m[i][cities.Caerleon] = nanmath.Missing()
	}
	return m
}

// NoTravelMatrix keeps only same-city production and sale.
func NoTravelMatrix() Matrix {
	var m Matrix
	for to := range m {
		for from := range m[to] {
			if to == from {
				m[to][from] = 1
			} else {
				m[to][from] = nanmath.Missing()
			}
		}
	}
	return m
}

// PerCityMatrix keeps a single city's diagonal entry and nothing else.
func PerCityMatrix(city int) Matrix {
	var m Matrix
	for to := range m {
		for from := range m[to] {
			if to == city && from == city {
				m[to][from] = 1
			} else {
				m[to][from] = nanmath.Missing()
			}
		}
	}
	return m
}
