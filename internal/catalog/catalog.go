// Package catalog is the static fleet, route list and the two price tables.
// It is loaded once at start and never mutated.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
)

//go:embed data/catalog.json
var defaultCatalog []byte

type Vehicle struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NameAr        string `json:"nameAr"`
	Type          string `json:"type"`
	TypeAr        string `json:"typeAr"`
	Capacity      int    `json:"capacity"`
	Description   string `json:"description"`
	DescriptionAr string `json:"descriptionAr"`
	Image         string `json:"image"`
	Featured      bool   `json:"featured,omitempty"`
}

type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NameAr string `json:"nameAr"`
	Icon   string `json:"icon"`
}

// Service is a bookable route or rental.
type Service struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NameAr   string `json:"nameAr"`
	Category string `json:"category"`
	Popular  bool   `json:"popular,omitempty"`
}

// PriceTable maps vehicle id -> service id -> price in whole SAR.
// A missing pair means the route is not offered for that vehicle.
type PriceTable map[string]map[string]int64

func (t PriceTable) Lookup(vehicleID, serviceID string) (int64, bool) {
	row, ok := t[vehicleID]
	if !ok {
		return 0, false
	}
	p, ok := row[serviceID]
	return p, ok
}

type Catalog struct {
	Currency   string     `json:"currency"`
	Vehicles   []Vehicle  `json:"vehicles"`
	Categories []Category `json:"categories"`
	Services   []Service  `json:"services"`
	Standard   PriceTable `json:"standard"`
	Surge      PriceTable `json:"surge"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog override from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Vehicles) == 0 {
		return errors.New("catalog: no vehicles")
	}
	for name, table := range map[string]PriceTable{"standard": c.Standard, "surge": c.Surge} {
		for v, row := range table {
			for s, p := range row {
				if p < 0 {
					return fmt.Errorf("catalog: %s price for %s/%s is negative", name, v, s)
				}
			}
		}
	}
	return nil
}

func (c *Catalog) VehicleByID(id string) (Vehicle, bool) {
	for _, v := range c.Vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}

func (c *Catalog) ServiceByID(id string) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

func (c *Catalog) ServicesByCategory(categoryID string) []Service {
	out := []Service{}
	for _, s := range c.Services {
		if s.Category == categoryID {
			out = append(out, s)
		}
	}
	return out
}

// FormatPrice renders an amount the way it is shown to customers, e.g. "1,250 SAR".
func FormatPrice(amount int64) string {
	return humanize.Comma(amount) + " SAR"
}
