package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"despensa/internal"
	"despensa/internal/canon"
	"despensa/internal/logger"
	"despensa/internal/util"
)

// GridPriceExtractor scans spreadsheet-like price lists for adjacent
// (name, price) cell pairs. Header rows carry no special meaning: every
// row is scanned and a later hit for the same key overwrites an earlier
// one.
type GridPriceExtractor struct {
	resolver *canon.Resolver
}

func NewGridPriceExtractor(resolver *canon.Resolver) *GridPriceExtractor {
	return &GridPriceExtractor{resolver: resolver}
}

func (e *GridPriceExtractor) Extract(path string) (internal.PriceMap, error) {
	prices := internal.PriceMap{}
	path, ok := locateGridSource(path)
	if !ok {
		logger.Warn("grid source skipped", "path", path)
		return prices, nil
	}

	logger.Info("extracting grid prices", "path", path)
	grid, err := readGrid(path)
	if err != nil {
		return prices, err
	}
	e.scanGrid(grid, prices)
	return prices, nil
}

// Sheet exports tend to land as "<name>.xlsx - Hoja1.csv"; try that
// alternate before declaring a missing workbook absent.
func locateGridSource(path string) (string, bool) {
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	if strings.HasSuffix(path, ".xlsx") {
		alt := strings.TrimSuffix(path, ".xlsx") + ".xlsx - Hoja1.csv"
		if _, err := os.Stat(alt); err == nil {
			return alt, true
		}
	}
	return path, false
}

func (e *GridPriceExtractor) scanGrid(grid [][]string, prices internal.PriceMap) {
	for _, row := range grid {
		for c := 0; c+1 < len(row); c++ {
			key, ok := e.resolver.Resolve(row[c])
			if !ok {
				continue
			}
			candidate := row[c+1]
			if !util.IsPriceCandidate(candidate) {
				continue
			}
			price, err := util.ParseMoney(candidate)
			if err != nil {
				continue
			}
			prices[key] = price
		}
	}
}

func readGrid(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVGrid(path)
	case ".html", ".htm":
		return readHTMLGrid(path)
	default:
		return readXLSXGrid(path)
	}
}

func readXLSXGrid(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	grid := [][]string{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			grid = append(grid, normalizeCells(row))
		}
	}
	return grid, nil
}

func readCSVGrid(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	grid := make([][]string, 0, len(rows))
	for i, row := range rows {
		if i == 0 && len(row) > 0 {
			row[0] = strings.TrimPrefix(row[0], "\uFEFF")
		}
		grid = append(grid, normalizeCells(row))
	}
	return grid, nil
}

func readHTMLGrid(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	grid := [][]string{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			row := []string{}
			tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				row = append(row, util.CollapseSpaces(cell.Text()))
			})
			if len(row) > 0 {
				grid = append(grid, row)
			}
		})
	})
	return grid, nil
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, util.CollapseSpaces(c))
	}
	return out
}
