package comicvine

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"runarr/internal/logging"
	"runarr/internal/services"
)

const (
	// StatusThrottled is the status Comic Vine uses to reject rate-limited
	// callers. 429 is treated identically.
	StatusThrottled = 420

	minCallInterval = 4 * time.Second
	hourlyCallLimit = 199
	throttleBackoff = time.Hour
)

// Throttle wraps a Doer and enforces the catalog's pacing rules: a minimum
// inter-call interval, a rolling hourly call budget, and a long cancellable
// wait-and-retry on throttling responses. All callers of one Throttle share
// its budget; the pacing state is guarded by a mutex so a future concurrent
// caller cannot corrupt the call log's read-modify-write sequence.
type Throttle struct {
	base        Doer
	waiter      Waiter
	logger      *slog.Logger
	minInterval time.Duration
	hourlyLimit int
	backoff     time.Duration
	now         func() time.Time
	sleep       func(time.Duration)

	mu       sync.Mutex
	lastCall time.Time
	callLog  []time.Time
}

// ThrottleOption configures a Throttle.
type ThrottleOption func(*Throttle)

// WithClock substitutes the wall clock and sleep, so tests can drive pacing
// with a synthetic clock.
func WithClock(now func() time.Time, sleep func(time.Duration)) ThrottleOption {
	return func(t *Throttle) {
		if now != nil {
			t.now = now
		}
		if sleep != nil {
			t.sleep = sleep
		}
	}
}

// WithLimits overrides the pacing interval and hourly ceiling.
func WithLimits(minInterval time.Duration, hourlyLimit int) ThrottleOption {
	return func(t *Throttle) {
		if minInterval > 0 {
			t.minInterval = minInterval
		}
		if hourlyLimit > 0 {
			t.hourlyLimit = hourlyLimit
		}
	}
}

// WithBackoff overrides the initial throttling-recovery wait.
func WithBackoff(d time.Duration) ThrottleOption {
	return func(t *Throttle) {
		if d > 0 {
			t.backoff = d
		}
	}
}

// NewThrottle wraps base with catalog pacing. A nil waiter waits full
// durations without an interrupt option.
func NewThrottle(base Doer, waiter Waiter, logger *slog.Logger, opts ...ThrottleOption) *Throttle {
	if waiter == nil {
		waiter = FullWaiter{}
	}
	t := &Throttle{
		base:        base,
		waiter:      waiter,
		logger:      logging.NewComponentLogger(logger, "throttle"),
		minInterval: minCallInterval,
		hourlyLimit: hourlyCallLimit,
		backoff:     throttleBackoff,
		now:         time.Now,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do executes the request under the pacing rules. Throttling responses enter
// the backoff state machine WAITING(remaining) -> RETRYING -> SUCCESS |
// WAITING | FAILED: the wait can be shortened by the waiter's interrupt, a
// throttled retry resumes waiting out the remaining duration, and any other
// error surfaces immediately.
func (t *Throttle) Do(req *http.Request) (*http.Response, error) {
	resp, err := t.attempt(req)
	if err != nil {
		return nil, err
	}
	if !isThrottled(resp.StatusCode) {
		return resp, nil
	}

	remaining := t.backoff
	for {
		resp.Body.Close()
		t.logger.Warn("catalog throttled, backing off",
			logging.Int("status", resp.StatusCode),
			logging.Duration("wait", remaining),
			logging.String(logging.FieldHint, "press any key to retry immediately"))

		waited, err := t.waiter.Wait(req.Context(), remaining)
		if err != nil {
			return nil, services.Wrap(services.ErrThrottled, "comicvine", "backoff", "wait interrupted", err)
		}

		resp, err = t.attempt(req)
		if err != nil {
			return nil, err
		}
		if !isThrottled(resp.StatusCode) {
			return resp, nil
		}

		remaining -= waited
		if remaining <= 0 {
			remaining = t.backoff
		}
	}
}

func (t *Throttle) attempt(req *http.Request) (*http.Response, error) {
	t.pace()
	resp, err := t.base.Do(req)
	t.record()
	return resp, err
}

// pace blocks until both the minimum inter-call interval and the hourly
// budget allow another call.
func (t *Throttle) pace() {
	t.mu.Lock()
	now := t.now()

	cutoff := now.Add(-time.Hour)
	pruned := t.callLog[:0]
	for _, ts := range t.callLog {
		if ts.After(cutoff) {
			pruned = append(pruned, ts)
		}
	}
	t.callLog = pruned

	var wait time.Duration
	if len(t.callLog) >= t.hourlyLimit {
		oldest := t.callLog[0]
		wait = oldest.Add(time.Hour).Sub(now)
		if wait > 0 {
			t.logger.Warn("hourly call budget reached",
				logging.Int("calls", len(t.callLog)),
				logging.Duration("wait", wait))
		}
	}
	if !t.lastCall.IsZero() {
		if sinceLast := now.Sub(t.lastCall); sinceLast < t.minInterval {
			if gap := t.minInterval - sinceLast; gap > wait {
				wait = gap
			}
		}
	}
	t.mu.Unlock()

	if wait > 0 {
		t.sleep(wait)
	}
}

func (t *Throttle) record() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastCall = t.now()
	t.callLog = append(t.callLog, t.lastCall)
}

func isThrottled(status int) bool {
	return status == StatusThrottled || status == http.StatusTooManyRequests
}
