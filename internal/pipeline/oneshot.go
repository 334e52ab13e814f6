package pipeline

import (
	"fmt"

	"despensa/internal"
	"despensa/internal/canon"
)

type OneshotResult struct {
	Prices  internal.PriceMap `json:"prices,omitempty"`
	Recipes []internal.Recipe `json:"recipes,omitempty"`
}

// ExtractFromSource runs a single extractor against one file, for
// inspection from the CLI.
func ExtractFromSource(resolver *canon.Resolver, sourceType, path string) (OneshotResult, error) {
	switch sourceType {
	case "layout":
		prices, err := NewLayoutPriceExtractor(resolver).Extract(path)
		return OneshotResult{Prices: prices}, err
	case "grid":
		prices, err := NewGridPriceExtractor(resolver).Extract(path)
		return OneshotResult{Prices: prices}, err
	case "recipes":
		recipes, err := NewRecipeExtractor(resolver).Extract(path)
		return OneshotResult{Recipes: recipes}, err
	default:
		return OneshotResult{}, fmt.Errorf("unsupported source type: %s", sourceType)
	}
}
