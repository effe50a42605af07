// Package catalog holds the storefront's static product data and turns a
// shopper's option choices into a priced cart selection.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/example/storefront/internal/cart"
)

//go:embed catalog.yaml
var defaultData []byte

var (
	// ErrProductNotFound is returned when no product matches a type and id.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidOption is returned when a requested option is not offered by the product.
	ErrInvalidOption = errors.New("invalid product option")
)

// Option is a selectable color or size.
type Option struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Charm is an add-on for bracelets.
type Charm struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// SubBracelet is one bracelet of a matching set.
type SubBracelet struct {
	ID     string   `yaml:"id" json:"id"`
	Name   string   `yaml:"name" json:"name"`
	Charms []string `yaml:"charms" json:"charms"`
}

// Product is an immutable catalog entry. Which option fields are populated
// depends on Type.
type Product struct {
	ID          string           `json:"id"`
	Type        cart.ProductType `json:"type"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	// Price is the unit price for apparel, the base price for bracelets and
	// the fixed set price for matching sets.
	Price     decimal.Decimal `json:"price"`
	Colors    []Option        `json:"colors,omitempty"`
	Sizes     []Option        `json:"sizes,omitempty"`
	Charms    []string        `json:"charms,omitempty"`
	Bracelets []SubBracelet   `json:"bracelets,omitempty"`
}

type productKey struct {
	t  cart.ProductType
	id string
}

// Catalog is a read-only product lookup.
type Catalog struct {
	currency   string
	products   []Product
	index      map[productKey]int
	charms     []Charm
	charmIndex map[string]int
}

type catalogFile struct {
	Currency     string        `yaml:"currency"`
	Charms       []charmYAML   `yaml:"charms"`
	Hoodies      []productYAML `yaml:"hoodies"`
	Sweatpants   []productYAML `yaml:"sweatpants"`
	Bracelets    []productYAML `yaml:"bracelets"`
	MatchingSets []productYAML `yaml:"matchingSets"`
}

type charmYAML struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

type productYAML struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Image       string        `yaml:"image"`
	Price       string        `yaml:"price"`
	Colors      []Option      `yaml:"colors"`
	Sizes       []Option      `yaml:"sizes"`
	Charms      []string      `yaml:"charms"`
	Bracelets   []SubBracelet `yaml:"bracelets"`
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultData))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data is invalid: %v", err))
	}
	return c
}

// Load parses a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		currency:   f.Currency,
		index:      make(map[productKey]int),
		charmIndex: make(map[string]int),
	}
	if c.currency == "" {
		c.currency = "USD"
	}

	for _, raw := range f.Charms {
		price, err := decimal.NewFromString(raw.Price)
		if err != nil {
			return nil, fmt.Errorf("charm %q: invalid price %q: %w", raw.ID, raw.Price, err)
		}
		if _, dup := c.charmIndex[raw.ID]; dup {
			return nil, fmt.Errorf("duplicate charm %q", raw.ID)
		}
		c.charmIndex[raw.ID] = len(c.charms)
		c.charms = append(c.charms, Charm{ID: raw.ID, Name: raw.Name, Price: price})
	}

	groups := []struct {
		t     cart.ProductType
		items []productYAML
	}{
		{cart.ProductHoodie, f.Hoodies},
		{cart.ProductSweatpants, f.Sweatpants},
		{cart.ProductBracelet, f.Bracelets},
		{cart.ProductMatchingSet, f.MatchingSets},
	}
	for _, g := range groups {
		for _, raw := range g.items {
			if err := c.add(g.t, raw); err != nil {
				return nil, err
			}
		}
	}

	return c, nil
}

func (c *Catalog) add(t cart.ProductType, raw productYAML) error {
	key := productKey{t: t, id: raw.ID}
	if raw.ID == "" {
		return fmt.Errorf("%s without id", t)
	}
	if _, dup := c.index[key]; dup {
		return fmt.Errorf("duplicate %s %q", t, raw.ID)
	}

	price, err := decimal.NewFromString(raw.Price)
	if err != nil {
		return fmt.Errorf("%s %q: invalid price %q: %w", t, raw.ID, raw.Price, err)
	}

	for _, id := range raw.Charms {
		if _, ok := c.charmIndex[id]; !ok {
			return fmt.Errorf("%s %q: unknown charm %q", t, raw.ID, id)
		}
	}
	for _, b := range raw.Bracelets {
		for _, id := range b.Charms {
			if _, ok := c.charmIndex[id]; !ok {
				return fmt.Errorf("%s %q bracelet %q: unknown charm %q", t, raw.ID, b.ID, id)
			}
		}
	}

	c.index[key] = len(c.products)
	c.products = append(c.products, Product{
		ID:          raw.ID,
		Type:        t,
		Name:        raw.Name,
		Description: raw.Description,
		Image:       raw.Image,
		Price:       price,
		Colors:      raw.Colors,
		Sizes:       raw.Sizes,
		Charms:      raw.Charms,
		Bracelets:   raw.Bracelets,
	})
	return nil
}

// Currency is the ISO code all catalog prices are expressed in.
func (c *Catalog) Currency() string {
	return c.currency
}

// Lookup returns the product with the given type and id.
func (c *Catalog) Lookup(t cart.ProductType, id string) (Product, error) {
	i, ok := c.index[productKey{t: t, id: id}]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s %q", ErrProductNotFound, t, id)
	}
	return c.products[i], nil
}

// Products lists products of one type, or all products when t is empty.
func (c *Catalog) Products(t cart.ProductType) []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if t == "" || p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

// Charms lists every charm.
func (c *Catalog) Charms() []Charm {
	return append([]Charm(nil), c.charms...)
}

// Charm returns a charm by id.
func (c *Catalog) Charm(id string) (Charm, bool) {
	i, ok := c.charmIndex[id]
	if !ok {
		return Charm{}, false
	}
	return c.charms[i], true
}
