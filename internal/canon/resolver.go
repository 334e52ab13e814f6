package canon

import "strings"

// Resolver maps free-text ingredient descriptions to canonical keys.
type Resolver struct {
	table *Table
}

func NewResolver(table *Table) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	return &Resolver{table: table}
}

// Resolve tries an exact lookup of the cleaned input first, then falls
// back to the first table entry whose name occurs inside the input.
func (r *Resolver) Resolve(raw string) (string, bool) {
	clean := strings.ToLower(strings.TrimSpace(raw))
	if clean == "" {
		return "", false
	}
	if key, ok := r.table.exact[clean]; ok {
		return key, true
	}
	for _, e := range r.table.entries {
		if strings.Contains(clean, e.Name) {
			return e.Key, true
		}
	}
	return "", false
}
