package canon

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

type tableFile struct {
	Ingredients []struct {
		Key   string   `yaml:"key"`
		Names []string `yaml:"names"`
	} `yaml:"ingredients"`
}

// LoadTable reads an ingredient table from YAML. Ingredient and name
// order in the file becomes entry order in the table.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read canon table: %w", err)
	}

	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse canon table %s: %w", path, err)
	}
	if len(tf.Ingredients) == 0 {
		return nil, fmt.Errorf("canon table %s: no ingredients", path)
	}

	var entries []Entry
	for i, ing := range tf.Ingredients {
		if !keyPattern.MatchString(ing.Key) {
			return nil, fmt.Errorf("canon table %s: ingredient %d: bad key %q", path, i, ing.Key)
		}
		if len(ing.Names) == 0 {
			return nil, fmt.Errorf("canon table %s: ingredient %q: no names", path, ing.Key)
		}
		for _, name := range ing.Names {
			entries = append(entries, Entry{Name: name, Key: ing.Key})
		}
	}
	return NewTable(entries), nil
}
