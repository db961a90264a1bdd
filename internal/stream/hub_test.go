package stream_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/config"
	"github.com/fitkart/storefront-api/internal/stream"
)

func testHub(interval, maxLifetime time.Duration) *stream.Hub {
	return stream.NewHub(config.StreamConfig{PollInterval: interval, MaxLifetime: maxLifetime}, zap.NewNop())
}

// drain collects every event until the subscription channel closes.
func drain(sub *stream.Subscription) []stream.Event {
	var events []stream.Event
	for event := range sub.Events {
		events = append(events, event)
	}
	return events
}

func countByType(events []stream.Event) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Type]++
	}
	return counts
}

func staticPoll(status string) stream.PollFunc {
	return func(ctx context.Context) (*stream.PollResult, error) {
		return &stream.PollResult{Status: status, Payload: map[string]string{"status": status}}, nil
	}
}

func TestHub_SteadyStateEmitsNoStatusChange(t *testing.T) {
	hub := testHub(20*time.Millisecond, 110*time.Millisecond)

	sub := hub.Subscribe(context.Background(), "FK-20260825-QX7R2M", staticPoll("In Transit"))
	events := drain(sub)

	counts := countByType(events)
	assert.Equal(t, 1, counts[stream.EventConnected])
	// Lifetime admits the immediate first cycle plus several ticks; the status
	// never moves, so no status_change frames appear.
	assert.GreaterOrEqual(t, counts[stream.EventTrackingUpdate], 3)
	assert.Equal(t, counts[stream.EventTrackingUpdate], counts[stream.EventHeartbeat])
	assert.Zero(t, counts[stream.EventStatusChange])
}

func TestHub_StatusChangeEmittedOnTransition(t *testing.T) {
	hub := testHub(20*time.Millisecond, 150*time.Millisecond)

	var polls int32
	poll := func(ctx context.Context) (*stream.PollResult, error) {
		n := atomic.AddInt32(&polls, 1)
		status := "In Transit"
		if n >= 3 {
			status = "Out For Delivery"
		}
		return &stream.PollResult{Status: status}, nil
	}

	sub := hub.Subscribe(context.Background(), "sub-1", poll)
	events := drain(sub)

	counts := countByType(events)
	assert.Equal(t, 1, counts[stream.EventStatusChange])

	for _, e := range events {
		if e.Type == stream.EventStatusChange {
			data := e.Data.(map[string]string)
			assert.Equal(t, "In Transit", data["previous"])
			assert.Equal(t, "Out For Delivery", data["status"])
		}
	}
}

func TestHub_FirstCycleNeverEmitsStatusChange(t *testing.T) {
	hub := testHub(time.Hour, 80*time.Millisecond)

	sub := hub.Subscribe(context.Background(), "sub-first", staticPoll("Delivered"))
	events := drain(sub)

	counts := countByType(events)
	// Only the immediate cycle fits before the ceiling: its status is the
	// baseline, not a change.
	assert.Equal(t, 1, counts[stream.EventTrackingUpdate])
	assert.Zero(t, counts[stream.EventStatusChange])
}

func TestHub_PollErrorEmitsErrorAndHeartbeat(t *testing.T) {
	hub := testHub(time.Hour, 80*time.Millisecond)

	poll := func(ctx context.Context) (*stream.PollResult, error) {
		return nil, fmt.Errorf("carrier timeout")
	}

	sub := hub.Subscribe(context.Background(), "sub-err", poll)
	events := drain(sub)

	counts := countByType(events)
	assert.Equal(t, 1, counts[stream.EventError])
	assert.Equal(t, 1, counts[stream.EventHeartbeat])
	assert.Zero(t, counts[stream.EventTrackingUpdate])
}

func TestHub_ClientCloseCleansUp(t *testing.T) {
	hub := testHub(10*time.Millisecond, time.Hour)

	sub := hub.Subscribe(context.Background(), "sub-close", staticPoll("In Transit"))
	require.Eventually(t, func() bool { return hub.ActiveSubscriptions() == 1 }, time.Second, 5*time.Millisecond)

	sub.Close()
	drain(sub)

	assert.Eventually(t, func() bool { return hub.ActiveSubscriptions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_LifetimeCeilingCleansUp(t *testing.T) {
	hub := testHub(10*time.Millisecond, 60*time.Millisecond)

	sub := hub.Subscribe(context.Background(), "sub-ceiling", staticPoll("In Transit"))
	drain(sub)

	assert.Eventually(t, func() bool { return hub.ActiveSubscriptions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_ContextCancelCleansUp(t *testing.T) {
	hub := testHub(10*time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	sub := hub.Subscribe(ctx, "sub-ctx", staticPoll("In Transit"))
	cancel()
	drain(sub)

	assert.Eventually(t, func() bool { return hub.ActiveSubscriptions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_OrderChangedReachesBothSubjects(t *testing.T) {
	hub := testHub(time.Hour, time.Hour)

	byID := hub.Subscribe(context.Background(), "7e2f8a6c-order-id", staticPoll("pending"))
	byNumber := hub.Subscribe(context.Background(), "FK-20260825-QX7R2M", staticPoll("pending"))
	defer byID.Close()
	defer byNumber.Close()

	// Let both connected frames and first cycles flush.
	time.Sleep(20 * time.Millisecond)

	hub.OrderChanged("7e2f8a6c-order-id", "FK-20260825-QX7R2M", "confirmed", time.Now())

	expect := func(sub *stream.Subscription) {
		deadline := time.After(time.Second)
		for {
			select {
			case event := <-sub.Events:
				if event.Type == stream.EventStatusChange {
					data := event.Data.(map[string]interface{})
					assert.Equal(t, "confirmed", data["status"])
					return
				}
			case <-deadline:
				t.Fatal("no status_change broadcast received")
			}
		}
	}
	expect(byID)
	expect(byNumber)
}

func TestHub_BroadcastRacingTeardownNeverPanics(t *testing.T) {
	hub := testHub(time.Hour, time.Hour)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					hub.OrderChanged("7e2f8a6c-order-id", "FK-20260825-QX7R2M", "confirmed", time.Now())
				}
			}
		}()
	}

	// Churn subscriptions for the broadcast subject while broadcasts fire; a
	// send landing between registry removal and channel close would panic the
	// broadcasting goroutine.
	for i := 0; i < 500; i++ {
		sub := hub.Subscribe(context.Background(), "7e2f8a6c-order-id", staticPoll("pending"))
		sub.Close()
		drain(sub)
	}
	close(stop)
	wg.Wait()

	assert.Eventually(t, func() bool { return hub.ActiveSubscriptions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_SlowConsumerDoesNotBlockPolling(t *testing.T) {
	hub := testHub(5*time.Millisecond, 150*time.Millisecond)

	var polls int32
	poll := func(ctx context.Context) (*stream.PollResult, error) {
		atomic.AddInt32(&polls, 1)
		return &stream.PollResult{Status: "In Transit"}, nil
	}

	// Never read from the channel; the buffer fills and pushes drop.
	sub := hub.Subscribe(context.Background(), "sub-slow", poll)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&polls) >= 10 }, time.Second, 5*time.Millisecond)
	sub.Close()
}
