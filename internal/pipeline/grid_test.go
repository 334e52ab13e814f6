package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"despensa/internal/canon"
)

func mkXLSX(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestGridExtractXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Carnes y Pescados.xlsx")
	mkXLSX(t, path, [][]any{
		{"Producto", "Precio x kg"},
		{"Lomo", "$ 9.500"},
		{"Pechuga", "4.200"},
		{"Falda", 5400},
		{"Cuaderno", "100"},
		{"Bife de Chorizo", "$ 11.300,50"},
	})

	e := NewGridPriceExtractor(canon.NewResolver(nil))
	prices, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := map[string]float64{
		"lomo":            9500,
		"pechuga":         4200,
		"falda":           5400,
		"bife_de_chorizo": 11300.50,
	}
	if len(prices) != len(want) {
		t.Fatalf("prices = %v, want %v", prices, want)
	}
	for k, v := range want {
		if prices[k] != v {
			t.Fatalf("prices[%q] = %v, want %v", k, prices[k], v)
		}
	}
}

func TestGridLastRowWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lista.xlsx")
	mkXLSX(t, path, [][]any{
		{"Lomo", "$ 1.000"},
		{"Lomo", "$ 2.000"},
	})

	e := NewGridPriceExtractor(canon.NewResolver(nil))
	prices, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if prices["lomo"] != 2000 {
		t.Fatalf("prices = %v, want lomo=2000", prices)
	}
}

func TestGridRequiresAdjacentPrice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lista.xlsx")
	mkXLSX(t, path, [][]any{
		{"Tomate", "rojo", "$ 1.200"},
	})

	e := NewGridPriceExtractor(canon.NewResolver(nil))
	prices, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(prices) != 0 {
		t.Fatalf("prices = %v, want empty", prices)
	}
}

func TestGridCSVFallback(t *testing.T) {
	dir := t.TempDir()
	csv := "Lomo,$ 9.500\nMerluza fresca,6.800\n"
	if err := os.WriteFile(filepath.Join(dir, "Carnes y Pescados.xlsx - Hoja1.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewGridPriceExtractor(canon.NewResolver(nil))
	prices, err := e.Extract(filepath.Join(dir, "Carnes y Pescados.xlsx"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if prices["lomo"] != 9500 || prices["merluza"] != 6800 {
		t.Fatalf("prices = %v", prices)
	}
}

func TestGridHTMLTable(t *testing.T) {
	dir := t.TempDir()
	html := `<html><body><table>
<tr><th>Producto</th><th>Precio</th></tr>
<tr><td>Pollo entero</td><td>$ 3.900</td></tr>
<tr><td>Salmon</td><td>12.500</td></tr>
</table></body></html>`
	path := filepath.Join(dir, "lista.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewGridPriceExtractor(canon.NewResolver(nil))
	prices, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if prices["pollo"] != 3900 || prices["salmon"] != 12500 {
		t.Fatalf("prices = %v", prices)
	}
}

func TestGridExtractMissingFile(t *testing.T) {
	e := NewGridPriceExtractor(canon.NewResolver(nil))

	prices, err := e.Extract(filepath.Join(t.TempDir(), "no existe.xlsx"))
	if err != nil {
		t.Fatalf("Extract missing: %v", err)
	}
	if len(prices) != 0 {
		t.Fatalf("prices = %v, want empty", prices)
	}
}
