package plugins

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"composer/internal/domain"
	"composer/internal/service"
)

// Catalog is the YAML file that seeds extra definitions at startup.
//
//	definitions:
//	  - id: submit-button
//	    name: Submit
//	    category: basic
//	    defaultProps: {label: Submit}
type Catalog struct {
	Definitions []domain.ComponentDefinition `yaml:"definitions"`
}

// LoadCatalog reads a catalog file. A missing file yields an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	seen := make(map[string]bool, len(c.Definitions))
	for i, d := range c.Definitions {
		if d.ID == "" {
			return nil, fmt.Errorf("catalog %s: definition %d has no id", path, i)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("catalog %s: duplicate definition %q", path, d.ID)
		}
		seen[d.ID] = true
		if d.Name == "" {
			c.Definitions[i].Name = d.ID
		}
	}
	return &c, nil
}

// RegisterCatalog registers the catalog definitions into reg, reusing a
// built-in preview matched by id or category. Ids already registered are
// skipped and logged.
func RegisterCatalog(reg *service.Registry, c *Catalog) int {
	n := 0
	for _, d := range c.Definitions {
		if _, exists := reg.Lookup(d.ID); exists {
			log.Printf("[PLUGINS] catalog definition %q already registered, skipping", d.ID)
			continue
		}
		reg.Register(d, previewFor(d))
		n++
	}
	log.Printf("[PLUGINS] Registered %d catalog definitions", n)
	return n
}
