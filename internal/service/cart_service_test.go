package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
	"github.com/egannguyen/vayam-storefront/internal/repository/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const eventsTopic = "cart-events"

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.Event
	keys   []string
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event entity.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if topic != eventsTopic {
		return fmt.Errorf("unexpected topic %q", topic)
	}
	p.events = append(p.events, event)
	p.keys = append(p.keys, key)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type cartFixture struct {
	store     *memory.Store
	svc       *CartService
	publisher *recordingPublisher
}

func newCartFixture(t *testing.T) cartFixture {
	t.Helper()
	store := memory.NewStore()
	_, err := store.Products().Upsert(context.Background(), []entity.Product{
		{ID: "ring-1", Slug: "gold-temple-ring", Name: "Gold Temple Ring", Category: entity.CategoryGold, Price: decimal.NewFromInt(100), InStock: true},
		{ID: "idol-1", Slug: "silver-ganesha-idol", Name: "Silver Ganesha Idol", Category: entity.CategorySilver, Price: decimal.NewFromInt(50), InStock: true},
		{ID: "solitaire-1", Slug: "diamond-solitaire", Name: "Diamond Solitaire", Category: entity.CategoryDiamond, Price: decimal.NewFromInt(900), InStock: false},
	})
	require.NoError(t, err)

	pub := &recordingPublisher{}
	svc := NewCartService(store.Carts(), store.Products(), pub,
		CartOptions{EventsTopic: eventsTopic, ProductDiagnostics: true}, zap.NewNop())
	return cartFixture{store: store, svc: svc, publisher: pub}
}

// barrierCarts holds the first n FindByOwner callers until all of them have
// seen the store, so every caller goes on to Create.
type barrierCarts struct {
	*memory.CartRepository
	n       int32
	calls   atomic.Int32
	arrived sync.WaitGroup
}

func newBarrierCarts(inner *memory.CartRepository, n int) *barrierCarts {
	b := &barrierCarts{CartRepository: inner, n: int32(n)}
	b.arrived.Add(n)
	return b
}

func (b *barrierCarts) FindByOwner(ctx context.Context, owner entity.Identity) (*entity.Cart, error) {
	cart, err := b.CartRepository.FindByOwner(ctx, owner)
	if b.calls.Add(1) <= b.n {
		b.arrived.Done()
		b.arrived.Wait()
	}
	return cart, err
}

func TestEnsureCart_ConcurrentCallsCreateOneCart(t *testing.T) {
	const callers = 8
	f := newCartFixture(t)
	carts := newBarrierCarts(f.store.Carts(), callers)
	svc := NewCartService(carts, f.store.Products(), f.publisher,
		CartOptions{EventsTopic: eventsTopic}, zap.NewNop())

	owner := entity.GuestIdentity("guest_race")
	ids := make([]string, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		i := i
		g.Go(func() error {
			cart, err := svc.EnsureCart(context.Background(), owner)
			if err != nil {
				return err
			}
			ids[i] = cart.ID
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, f.store.Carts().CartCount(owner))
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, []string{"CartCreated"}, f.publisher.types())
}

func TestEnsureCart_RejectsInvalidIdentity(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.EnsureCart(context.Background(), entity.Identity{})
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	_, err = f.svc.EnsureCart(context.Background(), entity.Identity{UserID: "u", SessionToken: "guest_x"})
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestAddItem_MergesDuplicateProduct(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	owner := entity.GuestIdentity("guest_a")

	first, err := f.svc.AddItem(ctx, owner, "ring-1", 1)
	require.NoError(t, err)
	second, err := f.svc.AddItem(ctx, owner, "ring-1", 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)

	view, err := f.svc.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 2, view.ItemCount)

	assert.Equal(t, []string{"CartCreated", "ItemAddedToCart", "ItemAddedToCart"}, f.publisher.types())
	added := f.publisher.events[2].(entity.ItemAddedToCart)
	assert.Equal(t, 1, added.Quantity)
	assert.Equal(t, 2, added.NewQuantity)
	assert.Equal(t, view.ID, f.publisher.keys[2])
}

func TestAddItem_OutOfStockRegardlessOfQuantity(t *testing.T) {
	f := newCartFixture(t)
	for _, qty := range []int{1, 2, 10, 1000} {
		t.Run(fmt.Sprint(qty), func(t *testing.T) {
			_, err := f.svc.AddItem(context.Background(), entity.GuestIdentity("guest_a"), "solitaire-1", qty)
			require.Error(t, err)
			assert.Equal(t, entity.KindInvalidState, entity.KindOf(err))
			assert.ErrorIs(t, err, entity.ErrOutOfStock)
		})
	}
	assert.Equal(t, 0, f.store.Carts().CartCount(entity.GuestIdentity("guest_a")))
}

func TestAddItem_Validation(t *testing.T) {
	f := newCartFixture(t)
	owner := entity.GuestIdentity("guest_a")

	tests := []struct {
		name    string
		ref     string
		qty     int
		wantErr error
	}{
		{"missing product", "", 1, entity.ErrProductIDRequired},
		{"blank product", "   ", 1, entity.ErrProductIDRequired},
		{"zero quantity", "ring-1", 0, entity.ErrInvalidQuantity},
		{"negative quantity", "ring-1", -3, entity.ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddItem(context.Background(), owner, tt.ref, tt.qty)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, entity.KindInvalidArgument, entity.KindOf(err))
		})
	}
}

func TestGetCart_TotalsUseLivePrices(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	user := &entity.User{Email: "buyer@vayam.com", PasswordHash: "x"}
	require.NoError(t, f.store.Users().Create(ctx, user))
	owner := entity.UserIdentity(user.ID)

	_, err := f.svc.AddItem(ctx, owner, "ring-1", 2)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, owner, "idol-1", 1)
	require.NoError(t, err)

	view, err := f.svc.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(view.Total), "total = %s", view.Total)
	assert.Equal(t, 3, view.ItemCount)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "ring-1", view.Items[0].ProductID)
	assert.Equal(t, "idol-1", view.Items[1].ProductID)

	// A price change is reflected on the next read.
	ring, err := f.store.Products().FindByID(ctx, "ring-1")
	require.NoError(t, err)
	ring.Price = decimal.NewFromInt(120)
	f.store.Products().Put(*ring)

	view, err = f.svc.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(290).Equal(view.Total), "total = %s", view.Total)
}

func TestGetCart_EmptyCart(t *testing.T) {
	f := newCartFixture(t)

	view, err := f.svc.GetCart(context.Background(), entity.GuestIdentity("guest_new"))
	require.NoError(t, err)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
	assert.Equal(t, 0, view.ItemCount)
}

func TestUpdateItemQuantity_RejectsBelowOne(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	owner := entity.GuestIdentity("guest_a")
	line, err := f.svc.AddItem(ctx, owner, "ring-1", 2)
	require.NoError(t, err)

	for _, qty := range []int{0, -1} {
		_, err := f.svc.UpdateItemQuantity(ctx, owner, line.ID, qty)
		assert.ErrorIs(t, err, entity.ErrInvalidQuantity)
	}

	item, err := f.store.Carts().FindItem(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
}

func TestUpdateItemQuantity(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	owner := entity.GuestIdentity("guest_a")
	line, err := f.svc.AddItem(ctx, owner, "idol-1", 1)
	require.NoError(t, err)

	updated, err := f.svc.UpdateItemQuantity(ctx, owner, line.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
	assert.True(t, decimal.NewFromInt(50).Equal(updated.Price))

	_, err = f.svc.UpdateItemQuantity(ctx, owner, "missing", 1)
	assert.ErrorIs(t, err, entity.ErrCartItemNotFound)

	assert.Equal(t, "CartItemQuantityChanged", f.publisher.types()[2])
}

func TestLineQuantityIsCapped(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	owner := entity.GuestIdentity("guest_bulk")

	for _, q := range []int{entity.MaxLineQuantity + 1, math.MaxInt} {
		_, err := f.svc.AddItem(ctx, owner, "ring-1", q)
		assert.ErrorIs(t, err, entity.ErrQuantityTooLarge, "quantity %d", q)
	}

	line, err := f.svc.AddItem(ctx, owner, "ring-1", entity.MaxLineQuantity-1)
	require.NoError(t, err)
	merged, err := f.svc.AddItem(ctx, owner, "ring-1", 1)
	require.NoError(t, err)
	assert.Equal(t, entity.MaxLineQuantity, merged.Quantity)

	_, err = f.svc.AddItem(ctx, owner, "ring-1", 1)
	assert.ErrorIs(t, err, entity.ErrQuantityTooLarge)
	assert.Equal(t, entity.KindInvalidArgument, entity.KindOf(err))

	_, err = f.svc.UpdateItemQuantity(ctx, owner, line.ID, math.MaxInt)
	assert.ErrorIs(t, err, entity.ErrQuantityTooLarge)

	view, err := f.svc.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, entity.MaxLineQuantity, view.ItemCount)
	assert.True(t, view.Total.IsPositive(), "total = %s", view.Total)
}

func TestForeignItemAccessIsUnauthorized(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	owner := entity.GuestIdentity("guest_owner")
	intruder := entity.GuestIdentity("guest_intruder")
	line, err := f.svc.AddItem(ctx, owner, "ring-1", 3)
	require.NoError(t, err)

	_, err = f.svc.UpdateItemQuantity(ctx, intruder, line.ID, 1)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.RemoveItem(ctx, intruder, line.ID), entity.ErrUnauthorized)

	// The zero identity owns nothing either.
	assert.ErrorIs(t, f.svc.RemoveItem(ctx, entity.Identity{}, line.ID), entity.ErrUnauthorized)

	item, err := f.store.Carts().FindItem(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
}

func TestRemoveItem(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	owner := entity.GuestIdentity("guest_a")
	line, err := f.svc.AddItem(ctx, owner, "ring-1", 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveItem(ctx, owner, line.ID))
	assert.ErrorIs(t, f.svc.RemoveItem(ctx, owner, line.ID), entity.ErrCartItemNotFound)

	view, err := f.svc.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, []string{"CartCreated", "ItemAddedToCart", "ItemRemovedFromCart"}, f.publisher.types())
}

func TestAddItem_ResolvesSlug(t *testing.T) {
	f := newCartFixture(t)

	line, err := f.svc.AddItem(context.Background(), entity.GuestIdentity("guest_a"), "silver-ganesha-idol", 1)
	require.NoError(t, err)
	assert.Equal(t, "idol-1", line.ProductID)
	assert.Equal(t, "silver-ganesha-idol", line.Product.Slug)
}

func TestAddItem_UnknownProductCarriesDiagnostics(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.AddItem(context.Background(), entity.GuestIdentity("guest_a"), "no-such-thing", 1)
	require.Error(t, err)
	assert.Equal(t, entity.KindNotFound, entity.KindOf(err))

	var derr *entity.Error
	require.True(t, errors.As(err, &derr))
	refs, ok := derr.Details["availableProducts"].([]entity.ProductRef)
	require.True(t, ok)
	want := []entity.ProductRef{
		{ID: "solitaire-1", Slug: "diamond-solitaire", Name: "Diamond Solitaire"},
		{ID: "ring-1", Slug: "gold-temple-ring", Name: "Gold Temple Ring"},
		{ID: "idol-1", Slug: "silver-ganesha-idol", Name: "Silver Ganesha Idol"},
	}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Errorf("availableProducts mismatch (-want +got):\n%s", diff)
	}
}

func TestAddItem_DiagnosticsDisabled(t *testing.T) {
	f := newCartFixture(t)
	svc := NewCartService(f.store.Carts(), f.store.Products(), nil, CartOptions{}, zap.NewNop())

	_, err := svc.AddItem(context.Background(), entity.GuestIdentity("guest_a"), "no-such-thing", 1)
	var derr *entity.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, entity.KindNotFound, derr.Kind)
	assert.Nil(t, derr.Details)
}

func TestGuestCartsAreIsolated(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	alice := entity.GuestIdentity("guest_alice")
	bob := entity.GuestIdentity("guest_bob")

	_, err := f.svc.AddItem(ctx, alice, "ring-1", 1)
	require.NoError(t, err)

	first, err := f.svc.GetCart(ctx, alice)
	require.NoError(t, err)
	again, err := f.svc.GetCart(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, again.Items, 1)

	other, err := f.svc.GetCart(ctx, bob)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Empty(t, other.Items)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newCartFixture(t)
	f.publisher.err = errors.New("broker down")

	line, err := f.svc.AddItem(context.Background(), entity.GuestIdentity("guest_a"), "ring-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
}

// failingCarts fails every cart lookup.
type failingCarts struct {
	repository.CartRepository
}

func (failingCarts) FindByOwner(context.Context, entity.Identity) (*entity.Cart, error) {
	return nil, errors.New("connection reset")
}

func TestEnsureCart_StorageFailureIsInternal(t *testing.T) {
	f := newCartFixture(t)
	svc := NewCartService(failingCarts{f.store.Carts()}, f.store.Products(), nil, CartOptions{}, zap.NewNop())

	_, err := svc.EnsureCart(context.Background(), entity.GuestIdentity("guest_a"))
	require.Error(t, err)
	assert.Equal(t, entity.KindInternal, entity.KindOf(err))
}
