// Package catalog holds the static plant-species catalog. The catalog is
// read once at startup and cached for the process lifetime; a missing or
// corrupt catalog file is a startup failure, never a per-request one.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/smartplant/smartplant/internal/model"
)

type Catalog struct {
	profiles []model.PlantProfile
	byID     map[string]int
}

// Load reads the catalog file and caches its entries. Order is preserved:
// the first entry acts as the system default profile.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plant catalog %s: %w", path, err)
	}
	var profiles []model.PlantProfile
	if err := json.Unmarshal(b, &profiles); err != nil {
		return nil, fmt.Errorf("plant catalog %s: %w", path, err)
	}
	return New(profiles), nil
}

// New builds a catalog from an in-memory profile list.
func New(profiles []model.PlantProfile) *Catalog {
	byID := make(map[string]int, len(profiles))
	for i, p := range profiles {
		byID[p.ID] = i
	}
	return &Catalog{profiles: profiles, byID: byID}
}

// Profiles returns all cataloged profiles in catalog order.
func (c *Catalog) Profiles() []model.PlantProfile {
	return c.profiles
}

// Get resolves a plant-type id to its profile. An empty id yields the
// default (first) profile. Unknown ids return nil; callers must treat
// that as invalid input, not a crash.
func (c *Catalog) Get(id string) *model.PlantProfile {
	if len(c.profiles) == 0 {
		return nil
	}
	if id == "" {
		return &c.profiles[0]
	}
	if i, ok := c.byID[id]; ok {
		return &c.profiles[i]
	}
	return nil
}
