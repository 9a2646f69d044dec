package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientportal/internal/domain"
	"clientportal/internal/events/memory"
)

func TestBroker_DeliversOnlyToOwner(t *testing.T) {
	b := memory.NewBroker()
	owner := uuid.New()
	other := uuid.New()

	sub, err := b.Subscribe(context.Background(), owner)
	require.NoError(t, err)
	defer sub.Close()
	otherSub, err := b.Subscribe(context.Background(), other)
	require.NoError(t, err)
	defer otherSub.Close()

	require.NoError(t, b.Publish(context.Background(), domain.StatusEvent{OwnerID: owner, DocType: "passport", Status: domain.StatusApproved}))

	select {
	case ev := <-sub.Events():
		assert.Equal(t, "passport", ev.DocType)
		assert.Equal(t, domain.StatusApproved, ev.Status)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case ev := <-otherSub.Events():
		t.Fatalf("unexpected event for other owner: %+v", ev)
	default:
	}
}

func TestBroker_CloseIsIdempotentAndClosesChannel(t *testing.T) {
	b := memory.NewBroker()
	owner := uuid.New()

	sub, err := b.Subscribe(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Subscribers(owner))

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Equal(t, 0, b.Subscribers(owner))

	_, open := <-sub.Events()
	assert.False(t, open)

	// Publishing after close must not panic.
	assert.NoError(t, b.Publish(context.Background(), domain.StatusEvent{OwnerID: owner}))
}

func TestBroker_ContextCancelClosesSubscription(t *testing.T) {
	b := memory.NewBroker()
	owner := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := b.Subscribe(ctx, owner)
	require.NoError(t, err)
	cancel()

	select {
	case _, open := <-sub.Events():
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed on context cancel")
	}
	assert.Eventually(t, func() bool { return b.Subscribers(owner) == 0 }, time.Second, 5*time.Millisecond)
}

func TestBroker_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	b := memory.NewBroker()
	owner := uuid.New()

	sub, err := b.Subscribe(context.Background(), owner)
	require.NoError(t, err)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = b.Publish(context.Background(), domain.StatusEvent{OwnerID: owner, Status: domain.StatusPending})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}

func TestBroker_FullBufferKeepsLatestStatus(t *testing.T) {
	b := memory.NewBroker()
	owner := uuid.New()

	sub, err := b.Subscribe(context.Background(), owner)
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 20; i++ {
		require.NoError(t, b.Publish(context.Background(), domain.StatusEvent{OwnerID: owner, DocType: "passport", Status: domain.StatusPending}))
	}
	require.NoError(t, b.Publish(context.Background(), domain.StatusEvent{OwnerID: owner, DocType: "passport", Status: domain.StatusApproved}))

	var last domain.StatusEvent
	for len(sub.Events()) > 0 {
		last = <-sub.Events()
	}
	assert.Equal(t, domain.StatusApproved, last.Status)
}

func TestBroker_TracksActiveSubscriptionsGauge(t *testing.T) {
	b := memory.NewBroker()
	owner := uuid.New()
	before := activeSubscriptions(t)

	sub, err := b.Subscribe(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, before+1, activeSubscriptions(t))

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Equal(t, before, activeSubscriptions(t))
}

func activeSubscriptions(t *testing.T) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "portal_status_subscriptions_active" {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatal("portal_status_subscriptions_active not registered")
	return 0
}
