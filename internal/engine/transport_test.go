package engine

import (
	"testing"

	"github.com/Amongalen/albion-profit-calculator/internal/cities"
	"github.com/Amongalen/albion-profit-calculator/internal/nanmath"
)

func TestTravelMatrix(t *testing.T) {
	m := TravelMatrix(1.05)

	want := Matrix{
		{1.00, 1.05, 1.1025, 1.1025, 1.05, 1.05},
		{1.05, 1.00, 1.05, 1.1025, 1.1025, 1.05},
		{1.1025, 1.05, 1.00, 1.05, 1.1025, 1.05},
		{1.1025, 1.1025, 1.05, 1.00, 1.05, 1.05},
		{1.05, 1.1025, 1.1025, 1.05, 1.00, 1.05},
		{1.05, 1.05, 1.05, 1.05, 1.05, 1.00},
	}
	for to := range m {
		for from := range m[to] {
			if diff := m[to][from] - want[to][from]; diff > 1e-12 || diff < -1e-12 {
				t.Errorf("M[%d][%d] = %v, want %v", to, from, m[to][from], want[to][from])
			}
		}
	}
}

func TestTravelMatrix_Symmetric(t *testing.T) {
	m := TravelMatrix(1.07)
	for to := range m {
		for from := range m[to] {
			if m[to][from] != m[from][to] {
				t.Errorf("M[%d][%d] = %v but M[%d][%d] = %v", to, from, m[to][from], from, to, m[from][to])
			}
		}
	}
}

func TestNoRiskMatrix(t *testing.T) {
	m := NoRiskMatrix(1.05)

	for i := 0; i < cities.Count; i++ {
		if m[i][i] != 1 {
			t.Errorf("diagonal [%d][%d] = %v, want 1", i, i, m[i][i])
		}
		if i == cities.Caerleon {
			continue
		}
		if !nanmath.IsMissing(m[cities.Caerleon][i]) || !nanmath.IsMissing(m[i][cities.Caerleon]) {
			t.Errorf("route between %d and Caerleon not cut", i)
		}
	}
	// Routes among the royal cities are untouched.
	if m[0][1] != 1.05 {
		t.Errorf("M[0][1] = %v, want 1.05", m[0][1])
	}
}

func TestNoTravelMatrix(t *testing.T) {
	m := NoTravelMatrix()
	for to := range m {
		for from := range m[to] {
			if to == from {
				if m[to][from] != 1 {
					t.Errorf("diagonal [%d] = %v, want 1", to, m[to][from])
				}
			} else if !nanmath.IsMissing(m[to][from]) {
				t.Errorf("off-diagonal [%d][%d] = %v, want missing", to, from, m[to][from])
			}
		}
	}
}

func TestPerCityMatrix(t *testing.T) {
	for city := 0; city < cities.Count; city++ {
		m := PerCityMatrix(city)
		for to := range m {
			for from := range m[to] {
				if to == city && from == city {
					if m[to][from] != 1 {
						t.Errorf("city %d: own entry = %v, want 1", city, m[to][from])
					}
				} else if !nanmath.IsMissing(m[to][from]) {
					t.Errorf("city %d: [%d][%d] = %v, want missing", city, to, from, m[to][from])
				}
			}
		}
	}
}

func TestParsePolicy(t *testing.T) {
	for _, policy := range Policies {
		got, ok := ParsePolicy(string(policy))
		if !ok || got != policy {
			t.Errorf("ParsePolicy(%q) = %v, %v", policy, got, ok)
		}
	}
	if _, ok := ParsePolicy("TELEPORT"); ok {
		t.Error("accepted unknown policy")
	}
}
