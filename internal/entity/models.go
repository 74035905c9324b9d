package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, the storefront client does arithmetic on them.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category is the top-level grouping of the jewelry catalog.
type Category string

const (
	CategoryGold    Category = "gold"
	CategoryDiamond Category = "diamond"
	CategorySilver  Category = "silver"
	CategoryCustom  Category = "custom"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryGold, CategoryDiamond, CategorySilver, CategoryCustom}

// ParseCategory accepts any casing of a known category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Specification holds the structured details printed on a product page.
type Specification struct {
	Dimensions       string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Weight           string `json:"weight,omitempty" yaml:"weight,omitempty"`
	Material         string `json:"material,omitempty" yaml:"material,omitempty"`
	Purity           string `json:"purity,omitempty" yaml:"purity,omitempty"`
	Hallmark         *bool  `json:"hallmark,omitempty" yaml:"hallmark,omitempty"`
	Finish           string `json:"finish,omitempty" yaml:"finish,omitempty"`
	CareInstructions string `json:"careInstructions,omitempty" yaml:"careInstructions,omitempty"`
}

// Product represents a product in the store.
type Product struct {
	ID             string           `json:"id"`
	Slug           string           `json:"slug"`
	Name           string           `json:"name"`
	Category       Category         `json:"category"`
	Subcategory    string           `json:"subcategory"`
	Price          decimal.Decimal  `json:"price"`
	StartingPrice  *decimal.Decimal `json:"startingPrice"`
	Description    string           `json:"description"`
	Features       []string         `json:"features"`
	Specifications Specification    `json:"specifications"`
	Images         []string         `json:"images"`
	InStock        bool             `json:"inStock"`
	Tags           []string         `json:"tags"`
	Weight         *string          `json:"weight"`
	Material       *string          `json:"material"`
	Purity         *string          `json:"purity"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// Snapshot returns the minimal live view of the product embedded in cart and
// wishlist lines.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:      p.ID,
		Name:    p.Name,
		Slug:    p.Slug,
		Price:   p.Price,
		Images:  p.Images,
		InStock: p.InStock,
	}
}

// ProductSnapshot is the subset of product fields joined onto cart lines.
type ProductSnapshot struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Images  []string        `json:"images"`
	Slug    string          `json:"slug"`
	InStock bool            `json:"inStock"`
}

// ProductRef identifies a product in diagnostics.
type ProductRef struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	Category    Category
	InStockOnly bool
}

// CacheKey is stable for equal filters.
func (f ProductFilter) CacheKey() string {
	c := string(f.Category)
	if c == "" {
		c = "all"
	}
	return fmt.Sprintf("category=%s:instock=%t", c, f.InStockOnly)
}
