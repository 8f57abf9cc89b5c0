package search

import (
	"net/url"
	"sync"
	"time"
)

// DefaultDelay is the debounce window applied to search input.
const DefaultDelay = 300 * time.Millisecond

// Normalize returns a copy of params adjusted for a new search term:
// page is reset to 1 whenever the term changes, and query is set to
// the term when non-empty or dropped entirely when cleared. The input
// is never mutated and repeated calls with the same term are stable.
func Normalize(params url.Values, term string) url.Values {
	out := make(url.Values, len(params)+2)
	for key, values := range params {
		out[key] = append([]string(nil), values...)
	}

	out.Set("page", "1")
	if term != "" {
		out.Set("query", term)
	} else {
		out.Del("query")
	}
	return out
}

// Debouncer collapses bursts of calls into the last one: each Call
// cancels any pending invocation and schedules the new one after the
// fixed delay. Superseded calls produce no effect at all.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
