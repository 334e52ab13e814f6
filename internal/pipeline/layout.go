package pipeline

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"despensa/internal"
	"despensa/internal/canon"
	"despensa/internal/logger"
	"despensa/internal/util"
)

var priceToken = regexp.MustCompile(`[\d.,]+`)

// LayoutPriceExtractor pulls per-kilogram prices out of price lists that
// arrive as flowing text, one "name ... $ precio" line at a time.
type LayoutPriceExtractor struct {
	resolver *canon.Resolver
}

func NewLayoutPriceExtractor(resolver *canon.Resolver) *LayoutPriceExtractor {
	return &LayoutPriceExtractor{resolver: resolver}
}

func (e *LayoutPriceExtractor) Extract(path string) (internal.PriceMap, error) {
	prices := internal.PriceMap{}
	if _, err := os.Stat(path); err != nil {
		logger.Warn("layout source skipped", "path", path)
		return prices, nil
	}

	logger.Info("extracting layout prices", "path", path)
	text, err := readPDFText(path)
	if err != nil {
		return prices, err
	}
	e.scanText(text, prices)
	return prices, nil
}

func (e *LayoutPriceExtractor) scanText(text string, prices internal.PriceMap) {
	for _, line := range strings.Split(text, "\n") {
		// name before the first "$", price between the first and second
		segs := strings.Split(line, "$")
		if len(segs) < 2 {
			continue
		}
		token := priceToken.FindString(segs[1])
		if token == "" {
			continue
		}
		key, ok := e.resolver.Resolve(segs[0])
		if !ok {
			continue
		}
		price, err := util.ParseMoney(token)
		if err != nil {
			continue
		}
		prices[key] = price
	}
}

// readPDFText reconstructs per-line text from every page. Rows are
// rebuilt from glyph positions so the "name $ price" line grammar
// survives extraction.
func readPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
