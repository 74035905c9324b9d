package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/vayam-storefront/internal/entity"
)

func TestNopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c ProductCache = Nop{}

	require.NoError(t, c.SetProducts(ctx, entity.ProductFilter{}, []entity.Product{{ID: "p1"}}))
	products, ok, err := c.GetProducts(ctx, entity.ProductFilter{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, products)
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisCache("not-a-url://", time.Minute)
	assert.Error(t, err)

	c, err := NewRedisCache("redis://localhost:6379/0", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
