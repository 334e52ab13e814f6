package pipeline

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"despensa/internal"
	"despensa/internal/canon"
	"despensa/internal/config"
	"despensa/internal/logger"
	"despensa/internal/storage"
	"despensa/internal/warehouse"
)

// PriceSource is the capability every price extractor provides.
type PriceSource interface {
	Extract(path string) (internal.PriceMap, error)
}

var (
	_ PriceSource = (*LayoutPriceExtractor)(nil)
	_ PriceSource = (*GridPriceExtractor)(nil)
)

// ETLService runs one extract-normalize-load pass over the configured
// input documents and replaces the warehouse artifact.
type ETLService struct {
	cfg     config.Config
	layout  *LayoutPriceExtractor
	grid    *GridPriceExtractor
	recipes *RecipeExtractor
	db      *storage.DB
	entropy *ulid.MonotonicEntropy
}

// NewETLService wires the three extractors around one resolver. db may
// be nil; runs are then not recorded in the ledger.
func NewETLService(cfg config.Config, resolver *canon.Resolver, db *storage.DB) *ETLService {
	return &ETLService{
		cfg:     cfg,
		layout:  NewLayoutPriceExtractor(resolver),
		grid:    NewGridPriceExtractor(resolver),
		recipes: NewRecipeExtractor(resolver),
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

type RunResult struct {
	RunID      string
	Warehouse  warehouse.Warehouse
	DurationMs int64
}

func (s *ETLService) Run(trigger string) (RunResult, error) {
	start := time.Now()
	runID := ulid.MustNew(ulid.Now(), s.entropy).String()
	logger.Info("pipeline run started", "run_id", runID, "trigger", trigger)

	// grid prices overwrite layout prices for overlapping keys
	prices := internal.PriceMap{}
	mergePrices(prices, s.extractPrices(s.layout, s.cfg.LayoutSourcePath()))
	mergePrices(prices, s.extractPrices(s.grid, s.cfg.GridSourcePath()))
	logger.Info("prices consolidated", "items", len(prices))

	recipes, err := s.recipes.Extract(s.cfg.RecipesSourcePath())
	if err != nil {
		logger.Error("recipe extraction failed", "path", s.cfg.RecipesSourcePath(), "err", err)
		recipes = nil
	}
	logger.Info("recipes processed", "count", len(recipes))

	wh := warehouse.New(runID, prices, recipes)
	if err := warehouse.Write(s.cfg.WarehousePath, wh); err != nil {
		return RunResult{}, err
	}
	logger.Info("warehouse written", "path", s.cfg.WarehousePath)

	res := RunResult{RunID: runID, Warehouse: wh, DurationMs: time.Since(start).Milliseconds()}
	if s.db != nil {
		rec := internal.RunRecord{
			RunID:       runID,
			StartedAt:   start.UTC().Format(time.RFC3339),
			DurationMs:  res.DurationMs,
			PriceCount:  len(prices),
			RecipeCount: len(recipes),
			Trigger:     trigger,
		}
		if err := s.db.InsertRun(rec); err != nil {
			logger.Warn("run not recorded", "err", err)
		}
	}
	return res, nil
}

// extractPrices contains one source's failure: a broken document
// contributes nothing instead of aborting the run.
func (s *ETLService) extractPrices(src PriceSource, path string) internal.PriceMap {
	prices, err := src.Extract(path)
	if err != nil {
		logger.Error("price extraction failed", "path", path, "err", err)
		return internal.PriceMap{}
	}
	return prices
}

func mergePrices(dst, src internal.PriceMap) {
	for k, v := range src {
		dst[k] = v
	}
}
