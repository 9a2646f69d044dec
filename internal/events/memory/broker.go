// Package memory is an in-process StatusBroker for single-instance deployments and tests.
package memory

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"clientportal/internal/domain"
	"clientportal/internal/events"
	"clientportal/internal/metrics"
	"clientportal/internal/port"
)

const bufferSize = 16

// Broker fans events out to subscribers of the same owner. A subscriber that
// is not keeping up loses its oldest events instead of blocking the publisher.
type Broker struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[*subscription]struct{}
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[uuid.UUID]map[*subscription]struct{})}
}

var _ port.StatusBroker = (*Broker)(nil)

func (b *Broker) Publish(_ context.Context, event domain.StatusEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs[event.OwnerID] {
		s.deliver(event)
	}
	metrics.RecordStatusEvent(string(event.Status))
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, ownerID uuid.UUID) (port.Subscription, error) {
	s := &subscription{
		broker:  b,
		ownerID: ownerID,
		ch:      make(chan domain.StatusEvent, bufferSize),
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.subs[ownerID] == nil {
		b.subs[ownerID] = make(map[*subscription]struct{})
	}
	b.subs[ownerID][s] = struct{}{}
	b.mu.Unlock()
	metrics.SubscriptionOpened()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

// Subscribers returns the number of open subscriptions for ownerID.
func (b *Broker) Subscribers(ownerID uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[ownerID])
}

func (b *Broker) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs[s.ownerID], s)
	if len(b.subs[s.ownerID]) == 0 {
		delete(b.subs, s.ownerID)
	}
}

type subscription struct {
	broker  *Broker
	ownerID uuid.UUID
	ch      chan domain.StatusEvent
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

func (s *subscription) Events() <-chan domain.StatusEvent {
	return s.ch
}

func (s *subscription) deliver(event domain.StatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if events.Offer(s.ch, event) {
		log.Printf("memoryBroker: subscriber for %s is behind, dropped its oldest event", s.ownerID)
	}
}

func (s *subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	close(s.done)
	s.mu.Unlock()

	metrics.SubscriptionClosed()
	s.broker.remove(s)
	return nil
}
