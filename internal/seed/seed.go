// Package seed reads the catalog file loaded by `storefront seed`.
package seed

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/egannguyen/vayam-storefront/internal/entity"
)

type catalogFile struct {
	Products []productDoc `yaml:"products"`
}

// productDoc is one catalog entry. Prices are strings so they stay exact.
type productDoc struct {
	ID             string               `yaml:"id"`
	Slug           string               `yaml:"slug"`
	Name           string               `yaml:"name"`
	Category       string               `yaml:"category"`
	Subcategory    string               `yaml:"subcategory"`
	Price          string               `yaml:"price"`
	StartingPrice  string               `yaml:"startingPrice"`
	Description    string               `yaml:"description"`
	Features       []string             `yaml:"features"`
	Specifications entity.Specification `yaml:"specifications"`
	Images         []string             `yaml:"images"`
	InStock        *bool                `yaml:"inStock"`
	Tags           []string             `yaml:"tags"`
	Weight         string               `yaml:"weight"`
	Material       string               `yaml:"material"`
	Purity         string               `yaml:"purity"`
}

func LoadFile(path string) ([]entity.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a catalog document. Unknown keys are rejected.
func Parse(r io.Reader) ([]entity.Product, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc catalogFile
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(doc.Products))
	products := make([]entity.Product, 0, len(doc.Products))
	for i, d := range doc.Products {
		p, err := d.toProduct()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i+1, err)
		}
		if seen[p.Slug] {
			return nil, fmt.Errorf("catalog entry %d: duplicate slug %q", i+1, p.Slug)
		}
		seen[p.Slug] = true
		products = append(products, p)
	}
	return products, nil
}

func (d productDoc) toProduct() (entity.Product, error) {
	slug := strings.TrimSpace(d.Slug)
	name := strings.TrimSpace(d.Name)
	if slug == "" || name == "" {
		return entity.Product{}, fmt.Errorf("slug and name are required")
	}
	category, err := entity.ParseCategory(d.Category)
	if err != nil {
		return entity.Product{}, err
	}
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return entity.Product{}, fmt.Errorf("invalid price %q: %w", d.Price, err)
	}
	if price.IsNegative() {
		return entity.Product{}, fmt.Errorf("negative price %s", price)
	}

	p := entity.Product{
		ID:             strings.TrimSpace(d.ID),
		Slug:           slug,
		Name:           name,
		Category:       category,
		Subcategory:    d.Subcategory,
		Price:          price,
		Description:    d.Description,
		Features:       d.Features,
		Specifications: d.Specifications,
		Images:         d.Images,
		InStock:        d.InStock == nil || *d.InStock,
		Tags:           d.Tags,
		Weight:         optional(d.Weight),
		Material:       optional(d.Material),
		Purity:         optional(d.Purity),
	}
	if d.StartingPrice != "" {
		sp, err := decimal.NewFromString(d.StartingPrice)
		if err != nil {
			return entity.Product{}, fmt.Errorf("invalid startingPrice %q: %w", d.StartingPrice, err)
		}
		p.StartingPrice = &sp
	}
	return p, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
