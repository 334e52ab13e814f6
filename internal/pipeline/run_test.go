package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"despensa/internal"
	"despensa/internal/canon"
	"despensa/internal/config"
	"despensa/internal/warehouse"
)

func runConfig(dir string) config.Config {
	return config.Config{
		InputDir:      dir,
		LayoutFile:    "verduleria.pdf",
		GridFile:      "Carnes y Pescados.xlsx",
		RecipesFile:   "Recetas.md",
		WarehousePath: filepath.Join(dir, "data_warehouse.json"),
	}
}

func TestRunConsolidatesSources(t *testing.T) {
	dir := t.TempDir()
	csv := "Lomo,$ 9.500\nAsado,$ 7.800\n"
	if err := os.WriteFile(filepath.Join(dir, "Carnes y Pescados.xlsx - Hoja1.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	catalog := "# Lista de Recetas\n- Puchero\n\n# Puchero\n2 kg de Papa\nMorrón: 1,5 kg\n"
	if err := os.WriteFile(filepath.Join(dir, "Recetas.md"), []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewETLService(runConfig(dir), canon.NewResolver(nil), nil)
	res, err := svc.Run("manual")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.RunID) != 26 {
		t.Fatalf("run id = %q, want 26-char ULID", res.RunID)
	}

	wh, err := warehouse.Load(filepath.Join(dir, "data_warehouse.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if wh.Metadata.RunID != res.RunID {
		t.Fatalf("metadata run id = %q, want %q", wh.Metadata.RunID, res.RunID)
	}
	if wh.Prices["lomo"] != 9500 || wh.Prices["asado_de_tira"] != 7800 {
		t.Fatalf("prices = %v", wh.Prices)
	}
	if len(wh.Recipes) != 1 || wh.Recipes[0].Name != "Puchero" {
		t.Fatalf("recipes = %+v", wh.Recipes)
	}
	ings := wh.Recipes[0].Ingredients
	if len(ings) != 2 || ings[0].ID != "papa" || ings[0].QtyG != 2000 || ings[1].ID != "morron" || ings[1].QtyG != 1500 {
		t.Fatalf("ingredients = %+v", ings)
	}
}

func TestRunEmptyInputsStillWritesWarehouse(t *testing.T) {
	dir := t.TempDir()

	svc := NewETLService(runConfig(dir), canon.NewResolver(nil), nil)
	res, err := svc.Run("manual")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wh, err := warehouse.Load(filepath.Join(dir, "data_warehouse.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if wh.Metadata.Version != warehouse.SchemaVersion {
		t.Fatalf("version = %q, want %q", wh.Metadata.Version, warehouse.SchemaVersion)
	}
	if wh.Metadata.RunID != res.RunID {
		t.Fatalf("metadata run id = %q, want %q", wh.Metadata.RunID, res.RunID)
	}
	if len(wh.Prices) != 0 || len(wh.Recipes) != 0 {
		t.Fatalf("warehouse = %+v, want empty collections", wh)
	}
}

func TestMergePricesLaterSourceWins(t *testing.T) {
	dst := internal.PriceMap{"tomate": 500, "papa": 900}
	mergePrices(dst, internal.PriceMap{"tomate": 600})
	if dst["tomate"] != 600 || dst["papa"] != 900 {
		t.Fatalf("merged = %v", dst)
	}
}
