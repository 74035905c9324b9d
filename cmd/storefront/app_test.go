package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/cache"
	"github.com/egannguyen/vayam-storefront/internal/config"
	"github.com/egannguyen/vayam-storefront/internal/messaging"
)

func TestNewApp_Memory(t *testing.T) {
	c := &config.Config{StorageDriver: config.DriverMemory}

	a, err := newApp(context.Background(), c, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.db)
	assert.IsType(t, cache.Nop{}, a.cache)
	assert.IsType(t, messaging.NopPublisher{}, a.publisher)
	assert.NoError(t, a.products.Ping(context.Background()))
	assert.Error(t, requirePostgres(c))
}

func TestNewApp_BadRedisURL(t *testing.T) {
	c := &config.Config{StorageDriver: config.DriverMemory, RedisURL: "://nope"}

	_, err := newApp(context.Background(), c, zap.NewNop())
	assert.Error(t, err)
}

func TestPrepareStorage_MemorySeedsCatalog(t *testing.T) {
	cfg = &config.Config{StorageDriver: config.DriverMemory, SeedFile: "../../data/products.yaml"}
	log = zap.NewNop()
	t.Cleanup(func() { cfg, log = nil, nil })

	a, err := newApp(context.Background(), cfg, log)
	require.NoError(t, err)
	require.NoError(t, prepareStorage(context.Background(), a))

	p, err := a.products.FindBySlug(context.Background(), "silver-ganesha-idol")
	require.NoError(t, err)
	assert.Equal(t, "silver-ganesha-idol", p.ID)

	cfg.SeedFile = "missing.yaml"
	assert.NoError(t, prepareStorage(context.Background(), a))
}
