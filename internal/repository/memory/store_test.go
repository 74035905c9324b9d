package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	_, err := s.Products().Upsert(context.Background(), []entity.Product{
		{ID: "p1", Slug: "gold-ring", Name: "Gold Ring", Category: entity.CategoryGold, Price: decimal.NewFromInt(100), InStock: true},
		{ID: "p2", Slug: "silver-idol", Name: "Silver Idol", Category: entity.CategorySilver, Price: decimal.NewFromInt(50), InStock: false},
	})
	require.NoError(t, err)
	return s
}

func TestCartRepository_CreateIsUniquePerOwner(t *testing.T) {
	ctx := context.Background()
	carts := seededStore(t).Carts()
	owner := entity.GuestIdentity("guest_1")

	_, err := carts.Create(ctx, owner)
	require.NoError(t, err)

	_, err = carts.Create(ctx, owner)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, 1, carts.CartCount(owner))

	_, err = carts.Create(ctx, entity.Identity{})
	assert.Error(t, err)
}

func TestCartRepository_AddItemMergesAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	carts := s.Carts()
	cart, err := carts.Create(ctx, entity.GuestIdentity("guest_1"))
	require.NoError(t, err)

	first, err := carts.AddItem(ctx, cart.ID, "p1", 1)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, cart.ID, "p2", 3)
	require.NoError(t, err)
	merged, err := carts.AddItem(ctx, cart.ID, "p1", 2)
	require.NoError(t, err)

	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 3, merged.Quantity)

	lines, err := carts.Lines(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, "p2", lines[1].ProductID)

	_, err = carts.AddItem(ctx, cart.ID, "missing", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCartRepository_MergeStaysWithinCap(t *testing.T) {
	ctx := context.Background()
	carts := seededStore(t).Carts()
	cart, err := carts.Create(ctx, entity.GuestIdentity("guest_1"))
	require.NoError(t, err)

	_, err = carts.AddItem(ctx, cart.ID, "p1", math.MaxInt)
	assert.ErrorIs(t, err, repository.ErrQuantityLimit)

	item, err := carts.AddItem(ctx, cart.ID, "p1", entity.MaxLineQuantity)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, cart.ID, "p1", 1)
	assert.ErrorIs(t, err, repository.ErrQuantityLimit)
	_, err = carts.SetItemQuantity(ctx, item.ID, entity.MaxLineQuantity+1)
	assert.ErrorIs(t, err, repository.ErrQuantityLimit)

	stored, err := carts.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MaxLineQuantity, stored.Quantity)
}

func TestCartRepository_ItemWritesTouchCart(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	carts := s.Carts()

	cart, err := carts.Create(ctx, entity.GuestIdentity("guest_1"))
	require.NoError(t, err)
	assert.Equal(t, clock, cart.UpdatedAt)

	updatedAt := func() time.Time {
		t.Helper()
		c, err := carts.FindByID(ctx, cart.ID)
		require.NoError(t, err)
		return c.UpdatedAt
	}

	clock = clock.Add(time.Minute)
	item, err := carts.AddItem(ctx, cart.ID, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, clock, updatedAt())

	clock = clock.Add(time.Minute)
	_, err = carts.AddItem(ctx, cart.ID, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, clock, updatedAt())

	clock = clock.Add(time.Minute)
	_, err = carts.SetItemQuantity(ctx, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, clock, updatedAt())

	clock = clock.Add(time.Minute)
	require.NoError(t, carts.DeleteItem(ctx, item.ID))
	assert.Equal(t, clock, updatedAt())
	assert.Equal(t, cart.CreatedAt, clock.Add(-4*time.Minute))
}

func TestCartRepository_DeleteItemTwice(t *testing.T) {
	ctx := context.Background()
	carts := seededStore(t).Carts()
	cart, err := carts.Create(ctx, entity.GuestIdentity("guest_1"))
	require.NoError(t, err)
	item, err := carts.AddItem(ctx, cart.ID, "p1", 1)
	require.NoError(t, err)

	require.NoError(t, carts.DeleteItem(ctx, item.ID))
	assert.ErrorIs(t, carts.DeleteItem(ctx, item.ID), repository.ErrNotFound)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	u := &entity.User{Email: "a@vayam.com", PasswordHash: "x"}
	require.NoError(t, s.Users().Create(ctx, u))
	assert.ErrorIs(t, s.Users().Create(ctx, &entity.User{Email: "a@vayam.com"}), repository.ErrConflict)

	cart, err := s.Carts().Create(ctx, entity.UserIdentity(u.ID))
	require.NoError(t, err)
	item, err := s.Carts().AddItem(ctx, cart.ID, "p1", 1)
	require.NoError(t, err)
	require.NoError(t, s.Addresses().Save(ctx, &entity.Address{UserID: u.ID, City: "Mumbai"}))
	_, err = s.Wishlist().Add(ctx, u.ID, "p1")
	require.NoError(t, err)

	require.NoError(t, s.Users().Delete(ctx, u.ID))

	_, err = s.Carts().FindByID(ctx, cart.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Carts().FindItem(ctx, item.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	addrs, err := s.Addresses().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, addrs)
	wl, err := s.Wishlist().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, wl)
}

func TestAddressRepository_SingleDefault(t *testing.T) {
	ctx := context.Background()
	addrs := NewStore().Addresses()

	a := &entity.Address{UserID: "u1", City: "Pune", IsDefault: true}
	b := &entity.Address{UserID: "u1", City: "Goa"}
	c := &entity.Address{UserID: "u1", City: "Delhi", IsDefault: true}
	require.NoError(t, addrs.Save(ctx, a))
	require.NoError(t, addrs.Save(ctx, b))
	require.NoError(t, addrs.Save(ctx, c))

	list, err := addrs.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Delhi", list[0].City)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)
	assert.False(t, list[2].IsDefault)
	assert.Equal(t, "Goa", list[1].City)

	assert.ErrorIs(t, addrs.Save(ctx, &entity.Address{ID: a.ID, UserID: "u2"}), repository.ErrNotFound)
}
