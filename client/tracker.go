// README: Polling coordinator: one cancellable watch per tracked order.
package client

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultPollInterval is how often a tracked order is re-fetched.
const DefaultPollInterval = 30 * time.Second

// OrderFetcher is the read path a watch polls; *Client satisfies it.
type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}

type watch struct {
	cancel context.CancelFunc
}

// Tracker owns the registry of polling watches, keyed by order id. It is
// passed explicitly to whatever drives it; there is no package-level
// singleton.
type Tracker struct {
	fetcher  OrderFetcher
	interval time.Duration
	onUpdate func(Order)

	mu      sync.Mutex
	watches map[string]*watch
}

// NewTracker builds a coordinator. onUpdate is invoked after every
// successful fetch, including the terminal one; it may be nil.
func NewTracker(fetcher OrderFetcher, interval time.Duration, onUpdate func(Order)) *Tracker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Tracker{
		fetcher:  fetcher,
		interval: interval,
		onUpdate: onUpdate,
		watches:  make(map[string]*watch),
	}
}

// Start begins polling an order. If a watch already exists for this id it is
// cancelled first, so there is never more than one watch per order.
func (t *Tracker) Start(orderID string) {
	t.mu.Lock()
	if w, ok := t.watches[orderID]; ok {
		w.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &watch{cancel: cancel}
	t.watches[orderID] = w
	t.mu.Unlock()

	go t.run(ctx, orderID, w)
}

// Stop cancels and removes the watch for an order; no-op if absent.
func (t *Tracker) Stop(orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if w, ok := t.watches[orderID]; ok {
		w.cancel()
		delete(t.watches, orderID)
	}
}

// StopAll cancels every watch; used on teardown such as logout.
func (t *Tracker) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, w := range t.watches {
		w.cancel()
		delete(t.watches, id)
	}
}

// Watching reports whether an order currently has an active watch.
func (t *Tracker) Watching(orderID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.watches[orderID]
	return ok
}

func (t *Tracker) run(ctx context.Context, orderID string, w *watch) {
	// Registry cleanup happens on every exit path. Only remove the entry if
	// it is still this watch; Start may have replaced it already.
	defer func() {
		t.mu.Lock()
		if cur, ok := t.watches[orderID]; ok && cur == w {
			delete(t.watches, orderID)
		}
		t.mu.Unlock()
	}()

	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	for {
		// Check cancellation before the wait so a stop requested between
		// iterations is honored without another fetch.
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// And again after waking: a cancel during the wait must win over
		// one more fetch.
		select {
		case <-ctx.Done():
			return
		default:
		}

		o, err := t.fetcher.GetOrder(ctx, orderID)
		if err != nil {
			// Transient failures must not abandon tracking.
			log.Printf("tracker: fetch order %s: %v", orderID, err)
			timer.Reset(t.interval)
			continue
		}
		if t.onUpdate != nil {
			t.onUpdate(*o)
		}
		if o.IsTerminal() {
			return
		}
		timer.Reset(t.interval)
	}
}
