package pipeline

import (
	"os"
	"regexp"
	"strings"

	"despensa/internal"
	"despensa/internal/canon"
	"despensa/internal/logger"
	"despensa/internal/util"
)

var (
	headingSplit = regexp.MustCompile(`(?m)^#\s+`)
	// "1 kg de Tomate" / "250 grs zanahoria"
	ingQtyFirst = regexp.MustCompile(`(?i)([\d.,]+)\s*(kg|g|kgs|grs)\s*(?:de)?\s*(.+)`)
	// "Tomate: 500 g", tried only when the first grammar fails
	ingNameFirst = regexp.MustCompile(`(?i)(.+):\s*([\d.,]+)\s*(kg|g|kgs|grs)`)
)

const indexTitleMarker = "Lista"

// RecipeExtractor parses the recipe catalog: one "# Titulo" block per
// recipe, one ingredient per line.
type RecipeExtractor struct {
	resolver *canon.Resolver
}

func NewRecipeExtractor(resolver *canon.Resolver) *RecipeExtractor {
	return &RecipeExtractor{resolver: resolver}
}

func (e *RecipeExtractor) Extract(path string) ([]internal.Recipe, error) {
	if _, err := os.Stat(path); err != nil {
		logger.Warn("recipe source skipped", "path", path)
		return nil, nil
	}

	logger.Info("extracting recipes", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.parse(string(data)), nil
}

func (e *RecipeExtractor) parse(content string) []internal.Recipe {
	var recipes []internal.Recipe
	for _, block := range headingSplit.Split(content, -1) {
		lines := splitLines(block)
		if len(lines) == 0 {
			continue
		}
		title := lines[0]
		if strings.Contains(title, indexTitleMarker) {
			continue
		}

		var ingredients []internal.IngredientItem
		for _, line := range lines[1:] {
			if item, ok := e.parseIngredientLine(line); ok {
				ingredients = append(ingredients, item)
			}
		}
		// a block with no parseable ingredients is not a recipe
		if len(ingredients) == 0 {
			continue
		}
		recipes = append(recipes, internal.Recipe{Name: title, Ingredients: ingredients})
	}
	return recipes
}

func (e *RecipeExtractor) parseIngredientLine(line string) (internal.IngredientItem, bool) {
	var nameTok, qtyTok, unitTok string
	if m := ingQtyFirst.FindStringSubmatch(line); m != nil {
		qtyTok, unitTok, nameTok = m[1], m[2], m[3]
	} else if m := ingNameFirst.FindStringSubmatch(line); m != nil {
		nameTok, qtyTok, unitTok = m[1], m[2], m[3]
	} else {
		return internal.IngredientItem{}, false
	}

	key, ok := e.resolver.Resolve(nameTok)
	if !ok {
		return internal.IngredientItem{}, false
	}
	qty, err := util.ParseQuantity(qtyTok)
	if err != nil {
		return internal.IngredientItem{}, false
	}
	if strings.HasPrefix(strings.ToLower(unitTok), "kg") {
		qty *= 1000
	}
	return internal.IngredientItem{ID: key, Name: strings.TrimSpace(nameTok), QtyG: qty}, true
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
