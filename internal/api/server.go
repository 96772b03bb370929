// Package api exposes the published profit reports over a small JSON
// HTTP interface: query the latest batches, trigger a refresh pass,
// list the craftable categories.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Amongalen/albion-profit-calculator/internal/catalog"
	"github.com/Amongalen/albion-profit-calculator/internal/cities"
	"github.com/Amongalen/albion-profit-calculator/internal/engine"
	"github.com/Amongalen/albion-profit-calculator/internal/logger"
)

// Server wires the catalog and the calculator to the HTTP handlers.
type Server struct {
	data       *catalog.Data
	calc       *engine.Calculator
	refreshing atomic.Bool
}

// NewServer creates a Server over a loaded catalog and calculator.
func NewServer(data *catalog.Data, calc *engine.Calculator) *Server {
	return &Server{data: data, calc: calc}
}

// Handler returns the API routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/reports", s.handleReports)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"items":     len(s.data.Items),
		"crafting":  len(s.data.CraftingRecipes),
		"upgrade":   len(s.data.UpgradeRecipes),
		"transport": len(s.data.TransportRecipes),
		"prices_at": s.calc.PricesAt(),
	})
}

// reportsResponse is the payload of GET /api/reports.
type reportsResponse struct {
	Key       string                `json:"key"`
	UpdatedAt time.Time             `json:"updated_at"`
	Reports   []engine.ProfitReport `json:"reports"`
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	kind := catalog.RecipeKind(query.Get("kind"))
	switch kind {
	case catalog.Crafting, catalog.Upgrade, catalog.Transport:
	case "":
		writeError(w, http.StatusBadRequest, "missing kind")
		return
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown kind %q", kind))
		return
	}

	policyParam := query.Get("policy")
	if policyParam == "" {
		policyParam = string(engine.PolicyTravel)
	}
	policy, ok := engine.ParsePolicy(policyParam)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown policy %q", policyParam))
		return
	}

	city := 0
	if policy == engine.PolicyPerCity {
		cityParam := query.Get("city")
		if cityParam == "" {
			writeError(w, http.StatusBadRequest, "policy PER_CITY needs a city")
			return
		}
		city, ok = cities.Index(cityParam)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown city %q", cityParam))
			return
		}
	}

	useFocus := query.Get("focus") == "true" || query.Get("focus") == "1"
	category := query.Get("category")

	reports, updatedAt, ok := s.calc.Reports(kind, policy, city, useFocus, category)
	if !ok {
		writeError(w, http.StatusNotFound, "no results published yet for this selection")
		return
	}
	writeJSON(w, reportsResponse{
		Key:       fmt.Sprintf("%s_%s", kind, policy),
		UpdatedAt: updatedAt,
		Reports:   reports,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories := make(map[string]string)
	for _, subcategory := range s.data.CraftableSubcategories() {
		name := s.data.CategoryName(subcategory)
		if name == "" {
			name = subcategory
		}
		categories[subcategory] = name
	}
	writeJSON(w, categories)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.refreshing.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "refresh already running")
		return
	}
	defer s.refreshing.Store(false)

	logger.Info("API", "Manual refresh requested")
	if err := s.calc.Refresh(r.Context()); err != nil {
		logger.Error("API", fmt.Sprintf("Refresh failed: %v", err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{
		"status":    "ok",
		"prices_at": s.calc.PricesAt(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
