package parser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"drawsheet/internal/port"
)

// circuitState tracks rate-limit backoff for a single backend.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackBackend is an opt-in multi-provider strategy, not a retry: it makes
// at most one call per configured provider, in order, skipping those with
// open circuits. It moves on only when a provider is rate limited or
// unreachable; a rejection or a bad envelope ends the request. A single
// configured provider is never wrapped. It implements port.VisionBackend.
type FallbackBackend struct {
	backends []port.VisionBackend
	circuits []*circuitState
	names    []string
}

// NewFallbackBackend creates a FallbackBackend from an ordered list of backends and their names.
func NewFallbackBackend(backends []port.VisionBackend, names []string) *FallbackBackend {
	circuits := make([]*circuitState, len(backends))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackBackend{
		backends: backends,
		circuits: circuits,
		names:    names,
	}
}

func (f *FallbackBackend) Submit(ctx context.Context, req port.VisionRequest) (*port.VisionResponse, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, b := range f.backends {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("parser.FallbackBackend: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := b.Submit(ctx, req)
		if err == nil {
			return out, nil
		}

		log.Printf("parser.FallbackBackend: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		allRateLimited = false
		if be, ok := AsBackendError(err); !ok || be.Kind != BackendUnreachable {
			return nil, err
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		rejected := &BackendError{
			Kind:       BackendRejected,
			Provider:   "all",
			StatusCode: 429,
			Err:        fmt.Errorf("all backends rate limited"),
		}
		return nil, NewRateLimitError("all", rejected, int(retryAfter.Seconds()))
	}

	return nil, lastErr
}
