package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/DylanJC13/movil-2/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	sent []published
	err  error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewPublisher(ch, "")

	ev := events.New(events.InvoiceCreated, events.InvoiceCreatedPayload{InvoiceID: 7, Number: "INV-000007", Total: "16.80"})
	require.NoError(t, pub.Publish(context.Background(), ev))

	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, DefaultExchange, got.exchange)
	assert.Equal(t, "invoice.created", got.key)
	assert.Equal(t, ev.ID, got.msg.MessageId)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "invoice.created", body["type"])
	payload := body["payload"].(map[string]any)
	assert.Equal(t, "INV-000007", payload["number"])
}

func TestPublisher_PropagatesChannelError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	pub := NewPublisher(ch, "custom")
	err := pub.Publish(context.Background(), events.New(events.ProductLowStock, events.LowStockPayload{ProductID: 1}))
	assert.EqualError(t, err, "channel closed")
}

func TestPublisher_Integration(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL not set, skipping integration test")
	}
	conn, ch, err := SetupConn(url, "billing_test")
	require.NoError(t, err)
	defer conn.Close()
	defer ch.Close()

	pub := NewPublisher(ch, "billing_test")
	require.NoError(t, pub.Publish(context.Background(), events.New(events.ProductLowStock, events.LowStockPayload{ProductID: 1, SKU: "W-1"})))
}
