package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository/memory"
)

func TestWishlistService(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	_, err := store.Products().Upsert(ctx, []entity.Product{
		{ID: "e1", Slug: "jhumka-earrings", Name: "Jhumka Earrings", Category: entity.CategoryGold, Price: decimal.NewFromInt(75), InStock: true},
	})
	require.NoError(t, err)
	u := newUser(t, store, "meera@example.com")
	other := newUser(t, store, "other@example.com")
	svc := NewWishlistService(store.Wishlist(), store.Products(), zap.NewNop())

	item, created, err := svc.Add(ctx, u.ID, "jhumka-earrings")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "e1", item.ProductID)
	assert.Equal(t, "Jhumka Earrings", item.Product.Name)

	again, created, err := svc.Add(ctx, u.ID, "e1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, item.ID, again.ID)

	_, _, err = svc.Add(ctx, u.ID, "missing")
	assert.ErrorIs(t, err, entity.ErrProductNotFound)
	_, _, err = svc.Add(ctx, u.ID, "")
	assert.ErrorIs(t, err, entity.ErrProductIDRequired)

	list, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.ErrorIs(t, svc.Remove(ctx, other.ID, item.ID), entity.ErrWishlistNotFound)
	require.NoError(t, svc.Remove(ctx, u.ID, item.ID))
	assert.ErrorIs(t, svc.Remove(ctx, u.ID, item.ID), entity.ErrWishlistNotFound)
}
