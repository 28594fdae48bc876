package browser

import (
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
)

// requestTracker counts in-flight requests from CDP network events
type requestTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	last     time.Time
	now      func() time.Time
}

func newRequestTracker() *requestTracker {
	return &requestTracker{
		inflight: make(map[network.RequestID]struct{}),
		last:     time.Now(),
		now:      time.Now,
	}
}

// handle is registered with chromedp.ListenTarget
func (t *requestTracker) handle(ev interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		// long-lived channels never finish and would block idle forever
		if e.Type == network.ResourceTypeWebSocket || e.Type == network.ResourceTypeEventSource {
			return
		}
		t.inflight[e.RequestID] = struct{}{}
		t.last = t.now()
	case *network.EventLoadingFinished:
		t.finish(e.RequestID)
	case *network.EventLoadingFailed:
		t.finish(e.RequestID)
	}
}

func (t *requestTracker) finish(id network.RequestID) {
	if _, ok := t.inflight[id]; !ok {
		return
	}
	delete(t.inflight, id)
	t.last = t.now()
}

// idle reports whether nothing has been in flight for at least quiet
func (t *requestTracker) idle(quiet time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && t.now().Sub(t.last) >= quiet
}

func (t *requestTracker) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}
