// Package costs prices the warehouse's recipes and serves the result
// over HTTP.
package costs

import (
	"despensa/internal/util"
	"despensa/internal/warehouse"
)

type IngredientCost struct {
	Name    string  `json:"name"`
	QtyG    float64 `json:"qty_g"`
	CostARS float64 `json:"cost_ars"`
	Found   bool    `json:"found"`
}

type RecipeCost struct {
	Name         string           `json:"name"`
	TotalCostARS float64          `json:"total_cost_ars"`
	TotalCostUSD *float64         `json:"total_cost_usd"`
	HasMissing   bool             `json:"has_missing"`
	Ingredients  []IngredientCost `json:"ingredients"`
}

type Report struct {
	Date    string       `json:"date"`
	USDRate *float64     `json:"usd_rate"`
	Recipes []RecipeCost `json:"recipes"`
}

// BuildReport prices every recipe against the warehouse's price map.
// An ingredient without a (non-zero) price contributes nothing to the
// total and flags the recipe. usdRate <= 0 means no quote is available:
// ARS totals still compute, USD fields stay null.
func BuildReport(wh warehouse.Warehouse, date string, usdRate float64) Report {
	report := Report{Date: date, Recipes: make([]RecipeCost, 0, len(wh.Recipes))}
	if usdRate > 0 {
		report.USDRate = util.FloatPtr(usdRate)
	}

	for _, recipe := range wh.Recipes {
		rc := RecipeCost{
			Name:        recipe.Name,
			Ingredients: make([]IngredientCost, 0, len(recipe.Ingredients)),
		}
		for _, ing := range recipe.Ingredients {
			price := wh.Prices[ing.ID]
			cost := 0.0
			if price != 0 {
				cost = ing.QtyG / 1000 * price
				rc.TotalCostARS += cost
			} else {
				rc.HasMissing = true
			}
			rc.Ingredients = append(rc.Ingredients, IngredientCost{
				Name:    ing.Name,
				QtyG:    ing.QtyG,
				CostARS: cost,
				Found:   price != 0,
			})
		}
		if usdRate > 0 {
			rc.TotalCostUSD = util.FloatPtr(rc.TotalCostARS / usdRate)
		}
		report.Recipes = append(report.Recipes, rc)
	}
	return report
}
