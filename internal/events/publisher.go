package events

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits storefront activity events, fire-and-forget. Publishing
// failures are logged and never fail the mutation that produced the event.
// Messages are keyed by user id so one user's events keep their order.
type Publisher struct {
	w       messageWriter
	service string
	inbox   chan kafka.Message
	done    chan struct{}
	closeCh chan struct{}
}

func NewPublisher(brokers []string, topic, service string, buf int) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, service, buf)
}

func newPublisher(w messageWriter, service string, buf int) *Publisher {
	return &Publisher{
		w:       w,
		service: service,
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

// Start runs the writer loop until ctx is cancelled, flushing whatever is
// left in the inbox before closing the writer.
func (p *Publisher) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				// The inbox stays open so a concurrent Publish can never
				// send on a closed channel; it checks done and drops instead.
				close(p.done)
				for {
					select {
					case m := <-p.inbox:
						p.write(m)
					default:
						_ = p.w.Close()
						return
					}
				}
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Publisher) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Printf("event publish failed: %v", err)
	}
}

// Publish wraps the payload in a versioned envelope keyed by userID. When
// the inbox is full, or the publisher has been stopped, the event is
// dropped rather than blocking the caller.
func (p *Publisher) Publish(eventType, userID string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.service,
		CorrelationID: userID,
		Payload:       MustMarshal(payload),
	}

	msg := kafka.Message{
		Key:   []byte(userID),
		Value: MustMarshal(ev),
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}

	select {
	case <-p.done:
		log.Printf("publisher stopped, dropping %s for user %s", eventType, userID)
		return
	default:
	}

	select {
	case p.inbox <- msg:
	default:
		log.Printf("event inbox full, dropping %s for user %s", eventType, userID)
	}
}

// WaitClosed blocks until the writer loop has flushed and exited.
func (p *Publisher) WaitClosed() { <-p.closeCh }
