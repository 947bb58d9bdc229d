package organize

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// rulesFile is the YAML shape of a rules override file:
//
//	categories:
//	  - name: Images
//	    extensions: [.png, .jpg]
//	  - name: Datasets
//	    extensions: [.parquet, .arrow]
type rulesFile struct {
	Categories []struct {
		Name       string   `yaml:"name"`
		Extensions []string `yaml:"extensions"`
	} `yaml:"categories"`
}

// LoadRules reads a YAML override file. Extensions are lowercased and
// get a leading dot if the file omitted it.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("rules %s: %w: %v", path, ErrBadRules, err)
	}

	var rules Rules
	for i, c := range file.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("rules %s: %w: category %d has no name", path, ErrBadRules, i)
		}
		exts := make([]string, 0, len(c.Extensions))
		for _, e := range c.Extensions {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts = append(exts, e)
		}
		rules = append(rules, Category{Name: name, Extensions: exts})
	}
	return rules, nil
}

// Merge folds overrides into the table. A category with a known name
// replaces that category's extensions; a new name is inserted ahead of
// the trailing catch-all so it can still claim extensions.
func (r Rules) Merge(overrides Rules) Rules {
	out := make(Rules, len(r))
	copy(out, r)
	for _, oc := range overrides {
		idx := -1
		for i, c := range out {
			if c.Name == oc.Name {
				idx = i
				break
			}
		}
		if idx >= 0 {
			out[idx].Extensions = oc.Extensions
			continue
		}
		insert := len(out)
		if insert > 0 && out[insert-1].Name == CategoryOther {
			insert--
		}
		out = append(out[:insert], append(Rules{oc}, out[insert:]...)...)
	}
	return out
}
