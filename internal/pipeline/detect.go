package pipeline

import (
	"path/filepath"
	"strings"

	"despensa/internal"
	"despensa/internal/canon"
)

type ClassifyResult struct {
	Kind  internal.SourceKind
	Score float64
}

const minClassifyScore = 0.45

var (
	priceKeywords  = []string{"precio", "lista", "verduleria", "carniceria", "pescaderia", "oferta"}
	recipeKeywords = []string{"receta", "recetario", "ingrediente"}
)

// ClassifyDocument decides what role a mail attachment plays in the
// pipeline from its filename, the message subject and a content sample
// (empty for binary formats).
func ClassifyDocument(filename, subject, content string) ClassifyResult {
	name := canon.Fold(strings.ToLower(filename))
	subj := canon.Fold(strings.ToLower(subject))
	body := canon.Fold(strings.ToLower(content))

	layout, grid, recipes := 0.0, 0.0, 0.0
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		layout += 0.5
	case ".xlsx", ".xls", ".csv", ".html", ".htm":
		grid += 0.5
	case ".md", ".txt":
		recipes += 0.35
	}

	for _, kw := range priceKeywords {
		if strings.Contains(name, kw) || strings.Contains(subj, kw) {
			layout += 0.15
			grid += 0.15
		}
	}
	for _, kw := range recipeKeywords {
		if strings.Contains(name, kw) || strings.Contains(subj, kw) {
			recipes += 0.3
		}
	}

	if strings.Count(body, "$") >= 2 {
		layout += 0.2
		grid += 0.2
	}
	if strings.Contains(body, "# ") && (strings.Contains(body, " kg ") || strings.Contains(body, " grs ") || strings.Contains(body, " g de ")) {
		recipes += 0.4
	}

	layout = clampScore(layout)
	grid = clampScore(grid)
	recipes = clampScore(recipes)

	kind := internal.KindLayoutPrices
	score := layout
	if grid >= score {
		kind = internal.KindGridPrices
		score = grid
	}
	if recipes > score {
		kind = internal.KindRecipes
		score = recipes
	}
	if score < minClassifyScore {
		return ClassifyResult{Kind: internal.KindUnknown, Score: score}
	}
	return ClassifyResult{Kind: kind, Score: score}
}

func clampScore(s float64) float64 {
	if s > 1 {
		return 1
	}
	return s
}
