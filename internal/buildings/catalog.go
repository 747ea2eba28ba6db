package buildings

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/talgya/hive-economy/internal/economy"
)

// Built-in type ids referenced by the simulation.
const (
	TypeRoad    = "road"
	TypeObelisk = "obelisk"
)

// ErrUnknownType is returned when a type id is not in the catalog.
var ErrUnknownType = errors.New("unknown building type")

// Catalog is the table of building definitions keyed by type id.
type Catalog struct {
	defs  map[string]*Definition
	order []string // Insertion order for listing
}

// NewCatalog builds a catalog from definitions. Later rows replace earlier
// rows with the same id.
func NewCatalog(defs ...Definition) *Catalog {
	c := &Catalog{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		c.Put(d)
	}
	return c
}

// Put inserts or replaces a definition.
func (c *Catalog) Put(d Definition) {
	if _, exists := c.defs[d.ID]; !exists {
		c.order = append(c.order, d.ID)
	}
	def := d
	c.defs[d.ID] = &def
}

// Get returns the definition for id.
func (c *Catalog) Get(id string) (*Definition, error) {
	d, ok := c.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	return d, nil
}

// All returns every definition in insertion order.
func (c *Catalog) All() []*Definition {
	out := make([]*Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// Validate checks every definition's struct tags and the numeric invariants
// tags cannot express.
func (c *Catalog) Validate() error {
	v := validator.New()
	var errs []error
	obelisks := 0
	for _, d := range c.All() {
		if err := v.Struct(d); err != nil {
			errs = append(errs, fmt.Errorf("building %q: %w", d.ID, err))
			continue
		}
		if d.MaxLevel() > MaxLevels {
			errs = append(errs, fmt.Errorf("building %q: %d levels exceeds %d", d.ID, d.MaxLevel(), MaxLevels))
		}
		for _, b := range []economy.Bundle{d.Cost, d.Consumption, d.Production} {
			if err := checkBundle(b); err != nil {
				errs = append(errs, fmt.Errorf("building %q: %w", d.ID, err))
			}
		}
		for i, l := range d.Levels {
			for _, b := range []economy.Bundle{l.AddedConsumption, l.ProductionBonus, l.UpgradeCost} {
				if err := checkBundle(b); err != nil {
					errs = append(errs, fmt.Errorf("building %q level %d: %w", d.ID, i+2, err))
				}
			}
		}
		if d.Kind == KindObelisk {
			obelisks++
		}
	}
	if _, ok := c.defs[TypeRoad]; !ok {
		errs = append(errs, fmt.Errorf("catalog: missing %q type", TypeRoad))
	}
	if obelisks == 0 {
		errs = append(errs, errors.New("catalog: no obelisk type"))
	}
	return errors.Join(errs...)
}

func checkBundle(b economy.Bundle) error {
	for _, r := range b.Resources() {
		if b[r] < 0 {
			return fmt.Errorf("negative quantity for %s", r)
		}
	}
	return nil
}

// catalogFile is the YAML layout of a catalog override file.
type catalogFile struct {
	Buildings []Definition `yaml:"buildings"`
}

// LoadCatalog returns the default catalog with the rows of the YAML file at
// path merged over it. An empty path returns the defaults.
func LoadCatalog(path string) (*Catalog, error) {
	c := DefaultCatalog()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, d := range f.Buildings {
		c.Put(d)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// IDs returns the catalog's type ids sorted alphabetically.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.defs))
	for id := range c.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
