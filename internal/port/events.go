package port

import (
	"context"

	"github.com/google/uuid"

	"clientportal/internal/domain"
)

// StatusBroker carries document status changes to the owner's open sessions.
type StatusBroker interface {
	Publish(ctx context.Context, event domain.StatusEvent) error
	Subscribe(ctx context.Context, ownerID uuid.UUID) (Subscription, error)
}

// Subscription delivers events for one owner until closed. Close is idempotent
// and closes the Events channel.
type Subscription interface {
	Events() <-chan domain.StatusEvent
	Close() error
}
