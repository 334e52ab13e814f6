package costs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"despensa/internal/config"
	"despensa/internal/warehouse"
)

type quoteFunc func(ctx context.Context, date string) (float64, error)

func (f quoteFunc) USDToARS(ctx context.Context, date string) (float64, error) {
	return f(ctx, date)
}

func costServer(t *testing.T, quotes QuoteSource) *Server {
	t.Helper()
	cfg, _ := config.Load()
	cfg.WarehousePath = filepath.Join(t.TempDir(), "data_warehouse.json")
	if err := warehouse.Write(cfg.WarehousePath, sampleWarehouse()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return NewServer(cfg, quotes)
}

func TestHandleCalculate(t *testing.T) {
	s := costServer(t, quoteFunc(func(_ context.Context, date string) (float64, error) {
		if date != "2025-03-01" {
			t.Fatalf("quote date = %q", date)
		}
		return 1000, nil
	}))

	rec := httptest.NewRecorder()
	s.handleCalculate(rec, httptest.NewRequest(http.MethodGet, "/api/calculate?date=2025-03-01", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Date != "2025-03-01" || report.USDRate == nil || *report.USDRate != 1000 {
		t.Fatalf("report = %+v", report)
	}
	if len(report.Recipes) != 1 || report.Recipes[0].TotalCostARS != 8600 {
		t.Fatalf("recipes = %+v", report.Recipes)
	}
}

func TestHandleCalculateRejectsBadDate(t *testing.T) {
	s := costServer(t, quoteFunc(func(_ context.Context, _ string) (float64, error) {
		t.Fatal("no quote expected for a malformed date")
		return 0, nil
	}))

	rec := httptest.NewRecorder()
	s.handleCalculate(rec, httptest.NewRequest(http.MethodGet, "/api/calculate?date=hoy", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCalculateDefaultsToToday(t *testing.T) {
	var asked string
	s := costServer(t, quoteFunc(func(_ context.Context, date string) (float64, error) {
		asked = date
		return 1000, nil
	}))

	rec := httptest.NewRecorder()
	s.handleCalculate(rec, httptest.NewRequest(http.MethodGet, "/api/calculate", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := time.Parse(reportDateLayout, asked); err != nil {
		t.Fatalf("quote date = %q: %v", asked, err)
	}
}

func TestHandleCalculateSurvivesQuoteFailure(t *testing.T) {
	s := costServer(t, quoteFunc(func(_ context.Context, _ string) (float64, error) {
		return 0, errors.New("cdn down")
	}))

	rec := httptest.NewRecorder()
	s.handleCalculate(rec, httptest.NewRequest(http.MethodGet, "/api/calculate?date=2025-03-01", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 without usd totals", rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.USDRate != nil {
		t.Fatalf("usd rate = %v, want null", *report.USDRate)
	}
	if report.Recipes[0].TotalCostUSD != nil {
		t.Fatalf("total usd = %v, want null", *report.Recipes[0].TotalCostUSD)
	}
	if report.Recipes[0].TotalCostARS != 8600 {
		t.Fatalf("total ars = %v", report.Recipes[0].TotalCostARS)
	}
}

func TestHandleHealth(t *testing.T) {
	s := costServer(t, quoteFunc(func(_ context.Context, _ string) (float64, error) {
		return 0, errors.New("unused")
	}))

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
