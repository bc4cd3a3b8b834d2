// Package practices holds the crop-practice catalog and the budget filter
// that picks practices a farmer can afford.
package practices

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"khetmitra-workers/internal/common/validation"
)

//go:embed data/catalog.json
var defaultCatalog []byte

//go:embed data/catalog.schema.json
var catalogSchema []byte

var ErrInvalidCatalog = errors.New("invalid practice catalog")

type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

type InvestmentRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Practice struct {
	ID                      string          `json:"id"`
	Name                    string          `json:"name"`
	Difficulty              Difficulty      `json:"difficulty"`
	InvestmentRange         InvestmentRange `json:"investmentRange"`
	ExpectedIncreasePercent float64         `json:"expectedIncreasePercent"`
	Category                string          `json:"category"`
	Suitability             string          `json:"suitability"`
	Rationale               string          `json:"rationale"`
	Steps                   []string        `json:"steps"`
	EligibleBudgetTiers     []Tier          `json:"eligibleBudgetTiers"`
}

// EligibleFor reports whether tier is one of the practice's budget tiers.
func (p Practice) EligibleFor(tier Tier) bool {
	for _, t := range p.EligibleBudgetTiers {
		if t == tier {
			return true
		}
	}
	return false
}

func (p Practice) clone() Practice {
	p.Steps = append([]string(nil), p.Steps...)
	p.EligibleBudgetTiers = append([]Tier(nil), p.EligibleBudgetTiers...)
	return p
}

type catalogDoc struct {
	Version   int        `json:"version"`
	Practices []Practice `json:"practices"`
}

// Catalog is immutable once loaded. Accessors return copies.
type Catalog struct {
	version   int
	practices []Practice
	byID      map[string]int
}

// LoadDefault loads the catalog compiled into the binary.
func LoadDefault() (*Catalog, error) {
	return Load(defaultCatalog)
}

// LoadFile loads a catalog override; an empty path means the default.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return LoadDefault()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(raw)
}

// Load validates raw against the catalog schema and builds a Catalog.
func Load(raw []byte) (*Catalog, error) {
	v, err := validation.CompileRaw(catalogSchema)
	if err != nil {
		return nil, err
	}
	if res := v.ValidateJSON(raw); !res.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, res.Summary())
	}

	var doc catalogDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		version:   doc.Version,
		practices: make([]Practice, 0, len(doc.Practices)),
		byID:      make(map[string]int, len(doc.Practices)),
	}
	for _, p := range doc.Practices {
		if p.InvestmentRange.Min > p.InvestmentRange.Max {
			return nil, fmt.Errorf("%w: %s has min %.0f above max %.0f", ErrInvalidCatalog, p.ID, p.InvestmentRange.Min, p.InvestmentRange.Max)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidCatalog, p.ID)
		}
		c.byID[p.ID] = len(c.practices)
		c.practices = append(c.practices, p.clone())
	}
	return c, nil
}

func (c *Catalog) Version() int { return c.version }

func (c *Catalog) Len() int { return len(c.practices) }

// Practices returns the catalog in its declared order.
func (c *Catalog) Practices() []Practice {
	out := make([]Practice, len(c.practices))
	for i, p := range c.practices {
		out[i] = p.clone()
	}
	return out
}

func (c *Catalog) Get(id string) (Practice, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Practice{}, false
	}
	return c.practices[i].clone(), true
}
