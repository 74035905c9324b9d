package seed

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/vayam-storefront/internal/entity"
)

const sample = `
products:
  - id: gold-1
    slug: lakshmi-coin-pendant
    name: Lakshmi Coin Pendant
    category: Gold
    subcategory: pendants
    price: "24999.50"
    startingPrice: "22999"
    features: [BIS hallmarked]
    specifications:
      purity: 22K
      hallmark: true
    images: [/images/gold/lakshmi.jpg]
    tags: [festive]
    purity: 22K
  - slug: oxidised-anklet
    name: Oxidised Anklet
    category: silver
    price: "1499"
    inStock: false
`

func TestParse(t *testing.T) {
	products, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, products, 2)

	pendant := products[0]
	assert.Equal(t, "gold-1", pendant.ID)
	assert.Equal(t, entity.CategoryGold, pendant.Category)
	assert.True(t, decimal.RequireFromString("24999.50").Equal(pendant.Price))
	require.NotNil(t, pendant.StartingPrice)
	assert.True(t, decimal.NewFromInt(22999).Equal(*pendant.StartingPrice))
	assert.True(t, pendant.InStock)
	require.NotNil(t, pendant.Purity)
	assert.Equal(t, "22K", *pendant.Purity)
	require.NotNil(t, pendant.Specifications.Hallmark)
	assert.True(t, *pendant.Specifications.Hallmark)
	assert.Nil(t, pendant.Weight)

	anklet := products[1]
	assert.Empty(t, anklet.ID)
	assert.False(t, anklet.InStock)
	assert.Nil(t, anklet.StartingPrice)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown category": "products:\n  - {slug: a, name: A, category: platinum, price: \"1\"}\n",
		"bad price":        "products:\n  - {slug: a, name: A, category: gold, price: lots}\n",
		"missing slug":     "products:\n  - {name: A, category: gold, price: \"1\"}\n",
		"duplicate slug":   "products:\n  - {slug: a, name: A, category: gold, price: \"1\"}\n  - {slug: a, name: B, category: gold, price: \"2\"}\n",
		"unknown field":    "products:\n  - {slug: a, name: A, category: gold, price: \"1\", colour: red}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_ShippedCatalog(t *testing.T) {
	products, err := LoadFile("../../data/products.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, products)
	for _, p := range products {
		assert.NotEmpty(t, p.ID, p.Slug)
	}
}
