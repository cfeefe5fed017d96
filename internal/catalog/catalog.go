package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sudsy/pkg/model"
	"sudsy/pkg/sanitizer"
)

// Catalog is the read-only reference data the pricing engine consumes:
// service types, add-ons, and the city-keyed metro multiplier table.
// It is loaded once at startup; lookups never mutate it, so it is safe
// for unlimited concurrent callers.
type Catalog struct {
	serviceTypes     map[string]model.ServiceType
	addOns           map[string]model.AddOn
	metroMultipliers map[string]float64
}

type fileFormat struct {
	ServiceTypes     []model.ServiceType `json:"service_types"`
	AddOns           []model.AddOn       `json:"add_ons"`
	MetroMultipliers map[string]float64  `json:"metro_multipliers"`
}

// Load reads the catalog from a JSON file, or returns the built-in
// defaults when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return New(ff.ServiceTypes, ff.AddOns, ff.MetroMultipliers), nil
}

func New(serviceTypes []model.ServiceType, addOns []model.AddOn, metroMultipliers map[string]float64) *Catalog {
	c := &Catalog{
		serviceTypes:     make(map[string]model.ServiceType, len(serviceTypes)),
		addOns:           make(map[string]model.AddOn, len(addOns)),
		metroMultipliers: make(map[string]float64, len(metroMultipliers)),
	}
	for _, st := range serviceTypes {
		c.serviceTypes[st.ID] = st
	}
	for _, ao := range addOns {
		c.addOns[ao.ID] = ao
	}
	for city, multiplier := range metroMultipliers {
		c.metroMultipliers[sanitizer.NormalizeCityKey(city)] = multiplier
	}
	return c
}

func (c *Catalog) ServiceType(id string) (model.ServiceType, bool) {
	st, ok := c.serviceTypes[id]
	return st, ok
}

func (c *Catalog) AddOn(id string) (model.AddOn, bool) {
	ao, ok := c.addOns[id]
	return ao, ok
}

// MetroMultiplier looks up the pricing adjustment for a city. Keys are
// normalized case-insensitively; unknown cities get 1.0.
func (c *Catalog) MetroMultiplier(city string) float64 {
	if m, ok := c.metroMultipliers[sanitizer.NormalizeCityKey(city)]; ok {
		return m
	}
	return 1.0
}

func (c *Catalog) ServiceTypes() []model.ServiceType {
	out := make([]model.ServiceType, 0, len(c.serviceTypes))
	for _, st := range c.serviceTypes {
		out = append(out, st)
	}
	return out
}

func (c *Catalog) AddOns() []model.AddOn {
	out := make([]model.AddOn, 0, len(c.addOns))
	for _, ao := range c.addOns {
		out = append(out, ao)
	}
	return out
}

// Defaults is the seed catalog used in development and tests.
func Defaults() *Catalog {
	return New(
		[]model.ServiceType{
			{ID: "standard", Description: "Standard clean", RateCentsPerSqft: 10,
				IncludedTasks: []string{"dusting", "vacuuming", "mopping", "bathrooms", "kitchen surfaces"}},
			{ID: "deep", Description: "Deep clean", RateCentsPerSqft: 18,
				IncludedTasks: []string{"baseboards", "inside appliances", "window sills", "grout scrub"}},
			{ID: "move_out", Description: "Move-out clean", RateCentsPerSqft: 22,
				IncludedTasks: []string{"inside cabinets", "inside fridge", "inside oven", "wall spot cleaning"}},
		},
		[]model.AddOn{
			{ID: "inside_oven", Name: "Inside oven", FlatPriceCents: 2500},
			{ID: "inside_fridge", Name: "Inside fridge", FlatPriceCents: 2500},
			{ID: "interior_windows", Name: "Interior windows", RateCentsPerSqft: 2},
			{ID: "laundry", Name: "Laundry", FlatPriceCents: 2000},
			{ID: "garage", Name: "Garage sweep", RateCentsPerSqft: 3},
		},
		map[string]float64{
			"san francisco": 1.35,
			"new york":      1.30,
			"seattle":       1.20,
			"austin":        1.10,
			"denver":        1.05,
		},
	)
}
