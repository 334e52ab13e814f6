package canon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Entry struct {
	Name string
	Key  string
}

// Table is a read-only ingredient lookup. Entry order is part of the
// contract: partial matching scans entries in declaration order and the
// first hit wins.
type Table struct {
	entries []Entry
	exact   map[string]string
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func Fold(s string) string {
	out, _, err := transform.String(foldAccents, s)
	if err != nil {
		return s
	}
	return out
}

func NewTable(entries []Entry) *Table {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		exact:   make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if name == "" || e.Key == "" {
			continue
		}
		t.entries = append(t.entries, Entry{Name: name, Key: e.Key})
		if _, ok := t.exact[name]; !ok {
			t.exact[name] = e.Key
		}
	}
	// Accent-stripped aliases go after every declared entry so that
	// declared spellings keep priority in the partial scan.
	declared := t.entries
	for _, e := range declared {
		folded := Fold(e.Name)
		if folded == e.Name {
			continue
		}
		if _, ok := t.exact[folded]; ok {
			continue
		}
		t.entries = append(t.entries, Entry{Name: folded, Key: e.Key})
		t.exact[folded] = e.Key
	}
	return t
}

func (t *Table) Len() int {
	return len(t.entries)
}

var defaultEntries = []Entry{
	// verduras
	{"tomate", "tomate"},
	{"lechuga", "lechuga"},
	{"zanahoria", "zanahoria"},
	{"papa", "papa"},
	{"cebolla", "cebolla"},
	{"morron", "morron"},
	{"morrón", "morron"},
	{"zapallo", "zapallo"},
	{"acelga", "acelga"},
	{"espinaca", "espinaca"},
	{"brócoli", "brocoli"},
	{"brocoli", "brocoli"},
	{"coli", "brocoli"},
	{"berenjena", "berenjena"},
	{"calabaza", "calabaza"},
	{"pepino", "pepino"},
	{"remolacha", "remolacha"},
	{"batata", "batata"},
	{"choclo", "choclo"},

	// carnes y pescados
	{"asado de tira", "asado_de_tira"},
	{"asado", "asado_de_tira"},
	{"vacio", "vacio"},
	{"vacío", "vacio"},
	{"bife de chorizo", "bife_de_chorizo"},
	{"lomo", "lomo"},
	{"cuadril", "cuadril"},
	{"roast beef", "roast_beef"},
	{"falda", "falda"},
	{"matambre", "matambre"},
	{"entraña", "entrana"},
	{"carne picada", "carne_picada"},
	{"carne picada especial", "carne_picada"},
	{"bondiola", "bondiola"},
	{"costillas", "costillas"},
	{"lomo de cerdo", "lomo_cerdo"},
	{"jamón fresco", "jamon"},
	{"jamon fresco", "jamon"},
	{"panceta", "panceta"},
	{"pollo entero", "pollo"},
	{"pollo", "pollo"},
	{"pechuga", "pechuga"},
	{"muslo", "muslo"},
	{"ala", "ala"},
	{"patamuslo", "patamuslo"},
	{"supremas", "supremas"},
	{"merluza fresca", "merluza"},
	{"merluza", "merluza"},
	{"salmón rosado", "salmon"},
	{"salmon", "salmon"},
	{"corvina", "corvina"},
	{"lenguado", "lenguado"},
	{"pejerrey", "pejerrey"},
	{"filet de abadejo", "abadejo"},
	{"abadejo", "abadejo"},
	{"calamar limpio", "calamar"},
	{"calamar", "calamar"},
	{"mejillones", "mejillones"},
}

var defaultTable = NewTable(defaultEntries)

func DefaultTable() *Table {
	return defaultTable
}
