// Package promise models the declared expectations a scan judges against.
// Promises arrive via catalog files produced by static analysis upstream;
// this package owns the shape and the loader, not the extraction.
package promise

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/odavlstudio/verax-sub011/internal/canonical"
)

//go:embed default_promises.yaml
var defaultCatalog []byte

// Kind is the observable effect a code path promises.
type Kind string

const (
	KindFeedback   Kind = "feedback"    // toast, status text, validation message
	KindNavigation Kind = "navigation"  // URL or history change
	KindNetwork    Kind = "network"     // request issued
	KindState      Kind = "state"       // store keys mutated
	KindUIState    Kind = "ui-state"    // dialog/tab/expand/checked flip
)

// Promise is one declared expectation: interacting with Selector should
// produce the promised effect. File/Line/Column point at the code that made
// the promise.
type Promise struct {
	ID          string `yaml:"id" json:"id"`
	File        string `yaml:"file" json:"file"`
	Line        int    `yaml:"line" json:"line"`
	Column      int    `yaml:"column" json:"column"`
	Selector    string `yaml:"selector" json:"selector"`
	Interaction string `yaml:"interaction" json:"interaction"` // click, fill, submit
	Value       string `yaml:"value,omitempty" json:"value,omitempty"`
	Kind        Kind   `yaml:"kind" json:"kind"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Catalog is the set of promises for one target.
type Catalog struct {
	Target   string    `yaml:"target" json:"target"`
	Promises []Promise `yaml:"promises" json:"promises"`
}

// Load reads and validates a promise catalog. Promises without an explicit
// ID get a deterministic content-derived one, so artifact ordering never
// depends on catalog file order.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read promise catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog bytes.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse promise catalog: %w", err)
	}
	seen := map[string]bool{}
	for i := range c.Promises {
		p := &c.Promises[i]
		if p.Selector == "" {
			return nil, fmt.Errorf("promise %d: selector is required", i)
		}
		if p.Interaction == "" {
			p.Interaction = "click"
		}
		if p.Kind == "" {
			p.Kind = KindFeedback
		}
		if p.ID == "" {
			p.ID = canonical.ContentID("prm", map[string]any{
				"file":        p.File,
				"line":        p.Line,
				"column":      p.Column,
				"selector":    p.Selector,
				"interaction": p.Interaction,
				"kind":        string(p.Kind),
			})
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate promise id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return &c, nil
}

// Default returns the built-in smoke catalog, used when a scan starts
// without a project-specific catalog file.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// ByID indexes the catalog for judgment lookups.
func (c *Catalog) ByID() map[string]Promise {
	m := make(map[string]Promise, len(c.Promises))
	for _, p := range c.Promises {
		m[p.ID] = p
	}
	return m
}
