package kafka

import (
	"encoding/json"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/vayam-storefront/internal/entity"
)

func TestEncode(t *testing.T) {
	event := entity.ItemAddedToCart{
		CartID:      "c1",
		ItemID:      "i1",
		ProductID:   "p1",
		Quantity:    1,
		NewQuantity: 3,
		OccurredAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := Encode(event)
	require.NoError(t, err)

	var env entity.EventEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "ItemAddedToCart", env.Type)

	var decoded entity.ItemAddedToCart
	require.NoError(t, json.Unmarshal(env.Payload, &decoded))
	assert.Equal(t, event, decoded)
}

func TestNewWriter_FlushesPromptly(t *testing.T) {
	w := newWriter([]string{"localhost:9092"})
	defer w.Close()

	assert.False(t, w.Async)
	assert.Equal(t, kafkaGo.RequireOne, w.RequiredAcks)
	assert.LessOrEqual(t, w.BatchTimeout, 50*time.Millisecond)
	assert.IsType(t, &kafkaGo.Hash{}, w.Balancer)
}
