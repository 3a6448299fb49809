package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeWriter) messages() []kafka.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]kafka.Message, len(f.msgs))
	copy(out, f.msgs)
	return out
}

func TestPublish_WrapsInEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "storefront-api", 16)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	p.Publish(EventCartItemAdded, "u1", CartItemAddedPayload{
		UserID:    "u1",
		ProductID: "bat-1",
		Quantity:  2,
		UnitPrice: 5999,
		CartTotal: 14157.64,
	})

	require.Eventually(t, func() bool {
		return len(w.messages()) == 1
	}, time.Second, 10*time.Millisecond)

	msg := w.messages()[0]
	assert.Equal(t, []byte("u1"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "x-event-type", msg.Headers[0].Key)
	assert.Equal(t, []byte(EventCartItemAdded), msg.Headers[0].Value)

	var ev Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, EventCartItemAdded, ev.EventType)
	assert.Equal(t, 1, ev.EventVersion)
	assert.Equal(t, "storefront-api", ev.Producer)
	assert.Equal(t, "u1", ev.CorrelationID)

	var payload CartItemAddedPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "bat-1", payload.ProductID)
	assert.Equal(t, 2, payload.Quantity)

	cancel()
	p.WaitClosed()
	assert.True(t, w.closed)
}

func TestPublish_FlushesInboxOnShutdown(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "storefront-api", 16)

	// queue before the loop starts so they are flushed on cancel
	for i := 0; i < 5; i++ {
		p.Publish(EventCartCleared, "u1", map[string]string{"user_id": "u1"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.WaitClosed()

	assert.Len(t, w.messages(), 5)
	assert.True(t, w.closed)
}

func TestPublish_AfterShutdownDropsWithoutPanic(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "storefront-api", 16)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.WaitClosed()

	assert.NotPanics(t, func() {
		p.Publish(EventCartCleared, "u1", map[string]string{"user_id": "u1"})
	})
	assert.Empty(t, w.messages())
}

func TestPublish_DropsWhenInboxFull(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "storefront-api", 1)

	// no Start: the inbox drains nowhere, the second publish must not block
	done := make(chan struct{})
	go func() {
		p.Publish(EventCartCleared, "u1", map[string]string{})
		p.Publish(EventCartCleared, "u1", map[string]string{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full inbox")
	}
}
