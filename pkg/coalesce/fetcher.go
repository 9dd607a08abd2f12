package coalesce

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/thebartekbanach/imgurproxy/pkg/fetcher"
	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
)

// Fetcher lets concurrent requests for the same origin resource share one
// in-flight origin call. Nothing is kept once the call completes.
type Fetcher struct {
	origin fetcher.Fetcher
	calls  map[string]*call
	lock   sync.Mutex
}

var _ fetcher.Fetcher = (*Fetcher)(nil)

// call is released when it completes or when its last waiter leaves.
type call struct {
	done    chan struct{}
	outcome fetcher.FetchOutcome
	waiters int
	cancel  context.CancelFunc
}

func NewFetcher(origin fetcher.Fetcher) *Fetcher {
	return &Fetcher{
		origin: origin,
		calls:  make(map[string]*call),
	}
}

func (f *Fetcher) Fetch(ctx context.Context, target resolver.ResolvedTarget) fetcher.FetchOutcome {
	return f.do(ctx, http.MethodGet+" "+target.URL, func(ctx context.Context) fetcher.FetchOutcome {
		return f.origin.Fetch(ctx, target)
	})
}

func (f *Fetcher) Head(ctx context.Context, target resolver.ResolvedTarget) fetcher.FetchOutcome {
	return f.do(ctx, http.MethodHead+" "+target.URL, func(ctx context.Context) fetcher.FetchOutcome {
		return f.origin.Head(ctx, target)
	})
}

func (f *Fetcher) InFlight() int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return len(f.calls)
}

func (f *Fetcher) do(ctx context.Context, key string, fetch func(ctx context.Context) fetcher.FetchOutcome) fetcher.FetchOutcome {
	f.lock.Lock()
	c, exists := f.calls[key]
	if !exists {
		c = f.start(ctx, key, fetch)
	}
	c.waiters++
	f.lock.Unlock()

	select {
	case <-c.done:
		outcome := c.outcome
		outcome.Body = bytes.Clone(outcome.Body)
		return outcome

	case <-ctx.Done():
		f.leave(key, c)
		return fetcher.Failed(reasonFor(ctx.Err()), ctx.Err())
	}
}

// start must be called with f.lock held.
func (f *Fetcher) start(ctx context.Context, key string, fetch func(ctx context.Context) fetcher.FetchOutcome) *call {
	// the shared call outlives the waiter that started it, so it only
	// keeps the values of its context, not its cancellation
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &call{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	f.calls[key] = c

	go func() {
		outcome := fetch(callCtx)
		cancel()

		f.lock.Lock()
		c.outcome = outcome
		f.forget(key, c)
		f.lock.Unlock()

		close(c.done)
	}()

	return c
}

func (f *Fetcher) leave(key string, c *call) {
	f.lock.Lock()
	defer f.lock.Unlock()

	c.waiters--
	if c.waiters == 0 {
		c.cancel()
		f.forget(key, c)
	}
}

// forget must be called with f.lock held.
func (f *Fetcher) forget(key string, c *call) {
	if f.calls[key] == c {
		delete(f.calls, key)
	}
}

func reasonFor(err error) fetcher.FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return fetcher.ReasonTimeout
	}

	return fetcher.ReasonCanceled
}
