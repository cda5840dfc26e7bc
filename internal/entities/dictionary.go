package entities

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDictionary []byte

// Entity is a canonical programme name and the literal variants that identify it.
type Entity struct {
	Name     string   `yaml:"name" json:"name"`
	Variants []string `yaml:"variants" json:"variants"`
}

// Dictionary is a versioned pair of curated entity lists. Order is
// significant: entities and their variants are scanned in declaration order
// and the first hit wins. Treat a Dictionary as immutable; WithVariant
// returns a copy.
type Dictionary struct {
	Version    string   `yaml:"version" json:"version"`
	Relevant   []Entity `yaml:"relevant" json:"relevant"`
	Irrelevant []Entity `yaml:"irrelevant" json:"irrelevant"`
}

// Default returns the built-in curated dictionary.
func Default() Dictionary {
	d, err := Parse(defaultDictionary)
	if err != nil {
		panic(fmt.Sprintf("entities: built-in dictionary: %v", err))
	}
	return d
}

// Load reads and validates a YAML dictionary from path.
func Load(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return Dictionary{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes and validates a YAML dictionary.
func Parse(data []byte) (Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Dictionary{}, fmt.Errorf("%w: %w", ErrInvalidDictionary, err)
	}
	if err := d.Validate(); err != nil {
		return Dictionary{}, err
	}
	return d, nil
}

// Validate rejects unversioned dictionaries, empty names or variants, and
// canonical names that appear more than once across both lists.
func (d Dictionary) Validate() error {
	if strings.TrimSpace(d.Version) == "" {
		return fmt.Errorf("%w: version required", ErrInvalidDictionary)
	}

	seen := make(map[string]bool)
	check := func(list string, entities []Entity) error {
		for i, e := range entities {
			if strings.TrimSpace(e.Name) == "" {
				return fmt.Errorf("%w: %s[%d]: name required", ErrInvalidDictionary, list, i)
			}
			if seen[e.Name] {
				return fmt.Errorf("%w: duplicate entity %q", ErrInvalidDictionary, e.Name)
			}
			seen[e.Name] = true

			if len(e.Variants) == 0 {
				return fmt.Errorf("%w: %s: no variants", ErrInvalidDictionary, e.Name)
			}
			for _, v := range e.Variants {
				if Normalize(v) == "" {
					return fmt.Errorf("%w: %s: empty variant", ErrInvalidDictionary, e.Name)
				}
			}
		}
		return nil
	}

	if err := check("relevant", d.Relevant); err != nil {
		return err
	}
	return check("irrelevant", d.Irrelevant)
}

// WithVariant returns a copy of d with variant appended to the named entity
// and version set to the given value. Existing variants keep their order.
func (d Dictionary) WithVariant(name, variant, version string) (Dictionary, error) {
	if Normalize(variant) == "" {
		return Dictionary{}, fmt.Errorf("%w: empty variant", ErrInvalidDictionary)
	}

	out := Dictionary{
		Version:    version,
		Relevant:   cloneEntities(d.Relevant),
		Irrelevant: cloneEntities(d.Irrelevant),
	}

	for _, list := range [][]Entity{out.Relevant, out.Irrelevant} {
		for i := range list {
			if list[i].Name == name {
				list[i].Variants = append(list[i].Variants, variant)
				return out, out.Validate()
			}
		}
	}

	return Dictionary{}, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
}

func cloneEntities(in []Entity) []Entity {
	out := make([]Entity, len(in))
	for i, e := range in {
		out[i] = Entity{
			Name:     e.Name,
			Variants: append([]string(nil), e.Variants...),
		}
	}
	return out
}
