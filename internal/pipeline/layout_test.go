package pipeline

import (
	"path/filepath"
	"strings"
	"testing"

	"despensa/internal"
	"despensa/internal/canon"
)

func TestLayoutScanText(t *testing.T) {
	e := NewLayoutPriceExtractor(canon.NewResolver(nil))

	text := strings.Join([]string{
		"VERDULERIA DON PEPE - LISTA SEMANAL",
		"Tomate redondo x kg ... $ 1.500,50",
		"Lechuga criolla $ 980",
		"Papa lavada $1.200",
		"Zanahoria $800 y promo $700",
		"Oferta sin precio",
		"Lechuga mala $ abc",
		"$ 900",
	}, "\n")

	prices := internal.PriceMap{}
	e.scanText(text, prices)

	want := internal.PriceMap{
		"tomate":    1500.50,
		"lechuga":   980,
		"papa":      1200,
		"zanahoria": 800,
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

func TestLayoutPriceTokenBetweenMarkers(t *testing.T) {
	e := NewLayoutPriceExtractor(canon.NewResolver(nil))

	// the numeric token must come from the segment after the first "$"
	prices := internal.PriceMap{}
	e.scanText("Morron rojo $ 950,5 (antes $ 1.100)", prices)

	if len(prices) != 1 || prices["morron"] != 950.5 {
		t.Fatalf("prices = %v, want morron=950.5", prices)
	}
}

func TestLayoutExtractMissingFile(t *testing.T) {
	e := NewLayoutPriceExtractor(canon.NewResolver(nil))

	prices, err := e.Extract(filepath.Join(t.TempDir(), "verduleria.pdf"))
	if err != nil {
		t.Fatalf("Extract missing: %v", err)
	}
	if len(prices) != 0 {
		t.Fatalf("prices = %v, want empty", prices)
	}
}
