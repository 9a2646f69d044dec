// Package redis is a StatusBroker over Redis pub/sub, so events reach
// subscribers connected to any API instance.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"clientportal/internal/domain"
	"clientportal/internal/events"
	"clientportal/internal/metrics"
	"clientportal/internal/port"
)

const (
	channelPrefix = "kyc-status:"
	bufferSize    = 16
)

// Channel returns the pub/sub channel carrying ownerID's events.
func Channel(ownerID uuid.UUID) string {
	return channelPrefix + ownerID.String()
}

// Broker publishes and subscribes to per-owner channels.
type Broker struct {
	client *redis.Client
}

// NewBroker creates a Broker on an existing client. The client lifecycle is managed by the caller.
func NewBroker(client *redis.Client) *Broker {
	return &Broker{client: client}
}

var _ port.StatusBroker = (*Broker)(nil)

func (b *Broker) Publish(ctx context.Context, event domain.StatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redisBroker.Publish marshal: %w", err)
	}
	if err := b.client.Publish(ctx, Channel(event.OwnerID), payload).Err(); err != nil {
		return fmt.Errorf("redisBroker.Publish: %w", err)
	}
	metrics.RecordStatusEvent(string(event.Status))
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, ownerID uuid.UUID) (port.Subscription, error) {
	ps := b.client.Subscribe(ctx, Channel(ownerID))
	// Wait for the subscription to be confirmed so no event published after
	// Subscribe returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redisBroker.Subscribe: %w", err)
	}

	s := &subscription{
		ps:       ps,
		out:      make(chan domain.StatusEvent, bufferSize),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	metrics.SubscriptionOpened()
	go s.pump(ctx)
	return s, nil
}

type subscription struct {
	ps       *redis.PubSub
	out      chan domain.StatusEvent
	done     chan struct{}
	finished chan struct{}
	once     sync.Once
}

func (s *subscription) Events() <-chan domain.StatusEvent {
	return s.out
}

func (s *subscription) pump(ctx context.Context) {
	defer close(s.finished)
	defer close(s.out)

	in := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			go func() { _ = s.Close() }()
			return
		case <-s.done:
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			var event domain.StatusEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("redisBroker: dropping malformed event on %s: %v", msg.Channel, err)
				continue
			}
			if events.Offer(s.out, event) {
				log.Printf("redisBroker: subscriber on %s is behind, dropped its oldest event", msg.Channel)
			}
		}
	}
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
		<-s.finished
		metrics.SubscriptionClosed()
	})
	return err
}
