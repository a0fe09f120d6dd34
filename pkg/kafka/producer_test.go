package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewEvent_BuildsEnvelope(t *testing.T) {
	payload := map[string]any{"order_id": "o-1", "total": 3998}

	event, err := NewEvent("order.created", "o-1", "order", "shop-backend", payload)

	require.NoError(t, err)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "order.created", event.EventType)
	assert.Equal(t, "o-1", event.AggregateID)
	assert.Equal(t, "order", event.AggregateType)
	assert.Equal(t, "shop-backend", event.Source)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, time.Second)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a, err := NewEvent("cart.updated", "c-1", "cart", "shop-backend", nil)
	require.NoError(t, err)
	b, err := NewEvent("cart.updated", "c-1", "cart", "shop-backend", nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestNewEvent_RejectsUnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("order.created", "o-1", "order", "shop-backend", func() {})

	assert.Error(t, err)
}

func TestEvent_MarshalKeepsPayloadVerbatim(t *testing.T) {
	event, err := NewEvent("order.created", "o-1", "order", "shop-backend",
		map[string]any{"checkout_key": "c-1:3"})
	require.NoError(t, err)

	raw, err := event.Marshal()
	require.NoError(t, err)

	var decoded struct {
		EventType string          `json:"event_type"`
		Data      json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "order.created", decoded.EventType)
	assert.JSONEq(t, `{"checkout_key":"c-1:3"}`, string(decoded.Data))
}

func TestPing_NoBrokersConfigured(t *testing.T) {
	p := NewProducer(nil, discardLogger())
	t.Cleanup(func() { _ = p.Close() })

	err := p.Ping(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestPing_UnreachableBroker(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, discardLogger())
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := p.Ping(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no broker reachable")
}
