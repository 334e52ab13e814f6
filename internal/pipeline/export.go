package pipeline

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"despensa/internal/warehouse"
)

// ExportWarehouseXLSX writes a review workbook for a warehouse: one
// sheet of prices, one of recipe ingredients.
func ExportWarehouseXLSX(wh warehouse.Warehouse, outputPath string) error {
	f := excelize.NewFile()

	pricesSheet := f.GetSheetName(0)
	if err := f.SetSheetName(pricesSheet, "Precios"); err != nil {
		return err
	}
	pricesSheet = "Precios"

	setCell := func(sheet string, col, row int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, value)
	}

	setCell(pricesSheet, 1, 1, "ingrediente")
	setCell(pricesSheet, 2, 1, "precio_ars_kg")

	keys := make([]string, 0, len(wh.Prices))
	for k := range wh.Prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		setCell(pricesSheet, 1, i+2, k)
		setCell(pricesSheet, 2, i+2, wh.Prices[k])
	}

	recipesSheet := "Recetas"
	if _, err := f.NewSheet(recipesSheet); err != nil {
		return err
	}
	setCell(recipesSheet, 1, 1, "receta")
	setCell(recipesSheet, 2, 1, "ingrediente")
	setCell(recipesSheet, 3, 1, "nombre_original")
	setCell(recipesSheet, 4, 1, "cantidad_g")

	row := 2
	for _, recipe := range wh.Recipes {
		for _, ing := range recipe.Ingredients {
			setCell(recipesSheet, 1, row, recipe.Name)
			setCell(recipesSheet, 2, row, ing.ID)
			setCell(recipesSheet, 3, row, ing.Name)
			setCell(recipesSheet, 4, row, ing.QtyG)
			row++
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
