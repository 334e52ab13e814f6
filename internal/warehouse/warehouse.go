// Package warehouse owns the single JSON artifact the pipeline produces
// and downstream consumers read.
package warehouse

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"despensa/internal"
)

const SchemaVersion = "2.0"

const generatedBy = "despensa-etl"

type Metadata struct {
	Version     string `json:"version"`
	GeneratedBy string `json:"generated_by"`
	RunID       string `json:"run_id,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`
}

type Warehouse struct {
	Metadata Metadata          `json:"metadata"`
	Prices   internal.PriceMap `json:"prices"`
	Recipes  []internal.Recipe `json:"recipes"`
}

func New(runID string, prices internal.PriceMap, recipes []internal.Recipe) Warehouse {
	if prices == nil {
		prices = internal.PriceMap{}
	}
	if recipes == nil {
		recipes = []internal.Recipe{}
	}
	return Warehouse{
		Metadata: Metadata{
			Version:     SchemaVersion,
			GeneratedBy: generatedBy,
			RunID:       runID,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Prices:  prices,
		Recipes: recipes,
	}
}

// Write replaces the artifact at path with one complete document. The
// write goes through a temp file in the same directory so a reader never
// observes a partial artifact.
func Write(path string, wh Warehouse) error {
	if wh.Prices == nil {
		wh.Prices = internal.PriceMap{}
	}
	if wh.Recipes == nil {
		wh.Recipes = []internal.Recipe{}
	}
	data, err := json.MarshalIndent(wh, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal warehouse: %w", err)
	}
	if err := writeAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("write warehouse: %w", err)
	}
	return nil
}

// Load reads the artifact at path. A missing file is not an error: the
// consumer contract treats it as an empty warehouse.
func Load(path string) (Warehouse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Warehouse{Prices: internal.PriceMap{}, Recipes: []internal.Recipe{}}, nil
		}
		return Warehouse{}, fmt.Errorf("read warehouse: %w", err)
	}
	var wh Warehouse
	if err := json.Unmarshal(data, &wh); err != nil {
		return Warehouse{}, fmt.Errorf("parse warehouse %s: %w", path, err)
	}
	if wh.Prices == nil {
		wh.Prices = internal.PriceMap{}
	}
	if wh.Recipes == nil {
		wh.Recipes = []internal.Recipe{}
	}
	return wh, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
