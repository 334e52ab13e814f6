package util

import (
	"strconv"
	"strings"
)

var moneyCleaner = strings.NewReplacer("$", "", " ", "", " ", "", ".", "")

// ParseMoney parses a price token written in the es-AR convention:
// "." groups thousands, "," marks decimals ("1.234,50" -> 1234.50).
func ParseMoney(token string) (float64, error) {
	s := moneyCleaner.Replace(strings.TrimSpace(token))
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

// ParseQuantity parses a recipe quantity. Only the decimal comma is
// normalized; a dot is kept as a decimal point ("1.5" -> 1.5).
func ParseQuantity(token string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(token), ",", ".")
	return strconv.ParseFloat(s, 64)
}

// IsPriceCandidate reports whether a grid cell looks like money: either
// it carries a currency marker or it is purely numeric once thousands
// dots are removed.
func IsPriceCandidate(cell string) bool {
	if strings.Contains(cell, "$") {
		return true
	}
	s := strings.ReplaceAll(strings.TrimSpace(cell), ".", "")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
