package stream

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/config"
)

// Event is one frame pushed to a live subscription
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Event types emitted on the live channel
const (
	EventConnected      = "connected"
	EventTrackingUpdate = "tracking_update"
	EventStatusChange   = "status_change"
	EventHeartbeat      = "heartbeat"
	EventError          = "error"
)

// PollResult is one observation of a subscription's subject
type PollResult struct {
	Status  string
	Payload interface{}
}

// PollFunc fetches the current state of a subject. Called once per cycle per
// subscription.
type PollFunc func(ctx context.Context) (*PollResult, error)

// Subscription is one client's live channel. Events is closed when the
// subscription ends, on any exit path.
type Subscription struct {
	Subject string
	Events  chan Event

	cancel context.CancelFunc
	once   sync.Once
}

// Close terminates the subscription from the client side
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// Hub owns the registry of live subscriptions. It is constructed once at
// process start and passed to handlers; there is no package-level state. Each
// subscription runs its own poll timer, diffs carrier status between cycles,
// and self-terminates at the lifetime ceiling or on client disconnect, both
// converging on the same cleanup path.
type Hub struct {
	interval    time.Duration
	maxLifetime time.Duration
	logger      *zap.Logger
	now         func() time.Time

	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub creates a live update hub
func NewHub(cfg config.StreamConfig, logger *zap.Logger) *Hub {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	maxLifetime := cfg.MaxLifetime
	if maxLifetime <= 0 {
		maxLifetime = 10 * time.Minute
	}
	return &Hub{
		interval:    interval,
		maxLifetime: maxLifetime,
		logger:      logger,
		now:         time.Now,
		subs:        make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a live subscription for a subject and starts its poll
// loop. The returned subscription's Events channel receives a connected
// event, then per-cycle tracking_update/heartbeat events (plus status_change
// when the polled status differs from the previous cycle), until the client
// closes it, ctx ends, or the lifetime ceiling passes.
func (h *Hub) Subscribe(ctx context.Context, subject string, poll PollFunc) *Subscription {
	subCtx, cancel := context.WithTimeout(ctx, h.maxLifetime)
	sub := &Subscription{
		Subject: subject,
		Events:  make(chan Event, 16),
		cancel:  cancel,
	}

	h.mu.Lock()
	if h.subs[subject] == nil {
		h.subs[subject] = make(map[*Subscription]struct{})
	}
	h.subs[subject][sub] = struct{}{}
	h.mu.Unlock()

	go h.run(subCtx, sub, poll)
	return sub
}

func (h *Hub) run(ctx context.Context, sub *Subscription, poll PollFunc) {
	defer h.cleanup(sub)

	h.push(sub, Event{Type: EventConnected, Timestamp: h.now(), Data: map[string]string{"subject": sub.Subject}})

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var lastStatus string
	var seeded bool

	// First cycle runs immediately so the client is not left waiting a full
	// interval for initial state.
	lastStatus, seeded = h.cycle(ctx, sub, poll, lastStatus, seeded)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lastStatus, seeded = h.cycle(ctx, sub, poll, lastStatus, seeded)
		}
	}
}

// cycle performs one poll and pushes its events: tracking_update always,
// status_change only when the status moved since the last cycle, heartbeat
// unconditionally.
func (h *Hub) cycle(ctx context.Context, sub *Subscription, poll PollFunc, lastStatus string, seeded bool) (string, bool) {
	if ctx.Err() != nil {
		return lastStatus, seeded
	}

	result, err := poll(ctx)
	if err != nil {
		h.logger.Warn("Live subscription poll failed",
			zap.String("subject", sub.Subject),
			zap.Error(err),
		)
		h.push(sub, Event{Type: EventError, Timestamp: h.now(), Data: map[string]string{"message": "failed to refresh tracking"}})
		h.push(sub, Event{Type: EventHeartbeat, Timestamp: h.now()})
		return lastStatus, seeded
	}

	h.push(sub, Event{Type: EventTrackingUpdate, Timestamp: h.now(), Data: result.Payload})

	if seeded && result.Status != lastStatus {
		h.push(sub, Event{Type: EventStatusChange, Timestamp: h.now(), Data: map[string]string{
			"previous": lastStatus,
			"status":   result.Status,
		}})
	}

	h.push(sub, Event{Type: EventHeartbeat, Timestamp: h.now()})
	return result.Status, true
}

// push delivers an event without ever blocking the poll loop. A slow consumer
// loses events rather than wedging the hub.
func (h *Hub) push(sub *Subscription, event Event) {
	select {
	case sub.Events <- event:
	default:
		h.logger.Debug("Dropping event for slow subscriber", zap.String("subject", sub.Subject))
	}
}

// cleanup releases the subscription's resources: registry entry, timer (via
// the deferred ticker stop in run), and the events channel. The channel is
// closed under the registry lock so Broadcast can never send on it after the
// subscription has been removed.
func (h *Hub) cleanup(sub *Subscription) {
	sub.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.Subject]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.Subject)
		}
	}
	close(sub.Events)
}

// Broadcast pushes an event to every live subscription of a subject. Sends
// happen under the registry lock, so a broadcast sees each subscription
// either registered with an open channel or already gone; push never blocks,
// so the lock is held only briefly.
func (h *Hub) Broadcast(subject string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[subject] {
		h.push(sub, event)
	}
}

// OrderChanged implements the order service's change notifier: a persisted
// order mutation is pushed immediately to subscribers of the order id and of
// the order number, without waiting for their next poll cycle.
func (h *Hub) OrderChanged(orderID, orderNumber string, status string, updatedAt time.Time) {
	event := Event{
		Type:      EventStatusChange,
		Timestamp: h.now(),
		Data: map[string]interface{}{
			"orderId":     orderID,
			"orderNumber": orderNumber,
			"status":      status,
			"updatedAt":   updatedAt,
		},
	}
	h.Broadcast(orderID, event)
	h.Broadcast(orderNumber, event)
}

// ActiveSubscriptions reports how many live subscriptions exist, for
// diagnostics
func (h *Hub) ActiveSubscriptions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	count := 0
	for _, set := range h.subs {
		count += len(set)
	}
	return count
}
