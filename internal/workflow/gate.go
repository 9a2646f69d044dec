package workflow

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"clientportal/internal/domain"
)

// Action is the deferred work behind a ticket. It runs at most once.
type Action func(ctx context.Context) (any, error)

// Ticket is a staged or finished action as seen by its owner.
type Ticket struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"-"`
	Kind      Kind      `json:"kind"`
	SlotKey   string    `json:"-"`
	Summary   string    `json:"summary"`
	State     State     `json:"state"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type entry struct {
	ticket Ticket
	run    Action
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithOperationTimeout bounds how long a confirmed action may run.
func WithOperationTimeout(d time.Duration) Option {
	return func(g *Gate) { g.opTimeout = d }
}

// Gate holds staged actions until their owner confirms or cancels them.
type Gate struct {
	mu        sync.Mutex
	ttl       time.Duration
	opTimeout time.Duration
	now       func() time.Time
	entries   map[uuid.UUID]*entry
	running   map[string]uuid.UUID // slot key -> ticket in flight
}

// NewGate creates a Gate whose staged actions expire after ttl.
func NewGate(ttl time.Duration, opts ...Option) *Gate {
	g := &Gate{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[uuid.UUID]*entry),
		running: make(map[string]uuid.UUID),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Stage registers run under slotKey and returns a ticket awaiting confirmation.
// A previously staged, unconfirmed action of the same owner on the same slot
// is replaced. Staging on a slot with an action in flight fails with ErrSlotBusy.
func (g *Gate) Stage(ownerID uuid.UUID, kind Kind, slotKey, summary string, run Action) (Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweepLocked(now)

	if _, busy := g.running[slotKey]; busy {
		return Ticket{}, domain.ErrSlotBusy
	}

	for id, e := range g.entries {
		if e.ticket.OwnerID == ownerID && e.ticket.SlotKey == slotKey && e.ticket.State == StateAwaitingConfirmation {
			delete(g.entries, id)
		}
	}

	t := Ticket{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Kind:      kind,
		SlotKey:   slotKey,
		Summary:   summary,
		State:     StateIdle,
		CreatedAt: now,
		ExpiresAt: now.Add(g.ttl),
	}
	if kind == KindUpload {
		if err := advance(&t, StateFileSelected); err != nil {
			return Ticket{}, err
		}
	}
	if err := advance(&t, StateAwaitingConfirmation); err != nil {
		return Ticket{}, err
	}

	g.entries[t.ID] = &entry{ticket: t, run: run}
	return t, nil
}

// Confirm runs the staged action. The returned ticket reflects the final
// state; the action's error is returned unchanged.
func (g *Gate) Confirm(ctx context.Context, ownerID, ticketID uuid.UUID) (Ticket, error) {
	g.mu.Lock()
	e, err := g.lookupLocked(ownerID, ticketID)
	if err != nil {
		g.mu.Unlock()
		return Ticket{}, err
	}
	if e.ticket.State != StateAwaitingConfirmation {
		g.mu.Unlock()
		return e.ticket, fmt.Errorf("confirm ticket in state %s: %w", e.ticket.State, domain.ErrInvalidTransition)
	}
	if _, busy := g.running[e.ticket.SlotKey]; busy {
		g.mu.Unlock()
		return e.ticket, domain.ErrSlotBusy
	}
	if err := advance(&e.ticket, runningState(e.ticket.Kind)); err != nil {
		g.mu.Unlock()
		return e.ticket, err
	}
	g.running[e.ticket.SlotKey] = e.ticket.ID
	run := e.run
	e.run = nil
	g.mu.Unlock()

	runCtx := ctx
	if g.opTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, g.opTimeout)
		defer cancel()
	}

	result, runErr := run(runCtx)

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, e.ticket.SlotKey)

	next := StateSuccess
	if runErr != nil {
		next = StateFailed
		e.ticket.Error = runErr.Error()
		log.Printf("workflow.Confirm: %s %s failed: %v", e.ticket.Kind, e.ticket.SlotKey, runErr)
	}
	_ = advance(&e.ticket, next)
	e.ticket.Result = result
	// Finished tickets stay readable for another ttl.
	e.ticket.ExpiresAt = g.now().Add(g.ttl)

	return e.ticket, runErr
}

// Cancel drops a staged action without running it.
func (g *Gate) Cancel(ownerID, ticketID uuid.UUID) (Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, err := g.lookupLocked(ownerID, ticketID)
	if err != nil {
		return Ticket{}, err
	}
	if e.ticket.State != StateAwaitingConfirmation {
		return e.ticket, fmt.Errorf("cancel ticket in state %s: %w", e.ticket.State, domain.ErrInvalidTransition)
	}
	_ = advance(&e.ticket, StateIdle)
	delete(g.entries, ticketID)
	return e.ticket, nil
}

// Get returns the current view of a ticket.
func (g *Gate) Get(ownerID, ticketID uuid.UUID) (Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, err := g.lookupLocked(ownerID, ticketID)
	if err != nil {
		return Ticket{}, err
	}
	return e.ticket, nil
}

// InFlight reports whether an action is currently running on slotKey.
func (g *Gate) InFlight(slotKey string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.running[slotKey]
	return busy
}

// Sweep removes expired tickets that are not running and returns how many were removed.
func (g *Gate) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sweepLocked(g.now())
}

// Run sweeps expired tickets every interval until ctx is canceled.
func (g *Gate) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("workflow.Gate: sweeper started (interval=%s, ttl=%s)", interval, g.ttl)
	for {
		select {
		case <-ctx.Done():
			log.Printf("workflow.Gate: sweeper stopped")
			return
		case <-ticker.C:
			if n := g.Sweep(); n > 0 {
				log.Printf("workflow.Gate: swept %d expired tickets", n)
			}
		}
	}
}

func (g *Gate) lookupLocked(ownerID, ticketID uuid.UUID) (*entry, error) {
	e, ok := g.entries[ticketID]
	if !ok || e.ticket.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	if e.ticket.State == StateAwaitingConfirmation && !g.now().Before(e.ticket.ExpiresAt) {
		delete(g.entries, ticketID)
		return nil, domain.ErrTicketExpired
	}
	return e, nil
}

func (g *Gate) sweepLocked(now time.Time) int {
	n := 0
	for id, e := range g.entries {
		if e.ticket.State == StateUploading || e.ticket.State == StateDeleting {
			continue
		}
		if !now.Before(e.ticket.ExpiresAt) {
			delete(g.entries, id)
			n++
		}
	}
	return n
}

func advance(t *Ticket, next State) error {
	if !CanTransition(t.State, next) {
		return fmt.Errorf("%s -> %s: %w", t.State, next, domain.ErrInvalidTransition)
	}
	t.State = next
	return nil
}
