// Package health serves liveness and readiness probes.
//
// Every check is polled by its own goroutine. A check flips to unhealthy only
// after FailureThreshold consecutive failures and back to healthy after
// SuccessThreshold consecutive successes, so a single slow query does not
// pull the server out of rotation.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// CheckFunc reports the health of one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Kind tells which endpoint a check contributes to.
type Kind int

const (
	// Liveness checks gate /livez.
	Liveness Kind = iota
	// Readiness checks gate /readyz.
	Readiness
)

func (k Kind) String() string {
	if k == Liveness {
		return "liveness"
	}
	return "readiness"
}

// Thresholds configure flap damping for a check.
type Thresholds struct {
	FailureThreshold int
	SuccessThreshold int
}

// DefaultThresholds mark a check unhealthy after three failures in a row.
var DefaultThresholds = Thresholds{FailureThreshold: 3, SuccessThreshold: 1}

// probe is one registered check. run is only called from the probe's own
// goroutine, so the streak counters are unsynchronized; healthy and lastErr
// are read by HTTP handlers and are atomic.
type probe struct {
	name       string
	kind       Kind
	timeout    time.Duration
	check      CheckFunc
	thresholds Thresholds

	healthy atomic.Bool
	lastErr atomic.Pointer[string]

	fails int
	oks   int
}

func (p *probe) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(checkCtx)
	was := p.healthy.Load()

	if err != nil {
		msg := err.Error()
		p.lastErr.Store(&msg)
		p.oks = 0
		p.fails++
		if p.fails >= p.thresholds.FailureThreshold {
			p.healthy.Store(false)
		}
	} else {
		p.lastErr.Store(nil)
		p.fails = 0
		p.oks++
		if p.oks >= p.thresholds.SuccessThreshold {
			p.healthy.Store(true)
		}
	}

	if now := p.healthy.Load(); now != was {
		zctx.From(ctx).Warn("Health check changed state",
			zap.String("check", p.name),
			zap.Stringer("kind", p.kind),
			zap.Bool("healthy", now),
			zap.Error(err),
		)
	}
}

// failure returns the message reported for an unhealthy probe.
func (p *probe) failure() string {
	if msg := p.lastErr.Load(); msg != nil {
		return *msg
	}
	return "check is unhealthy"
}

// Health aggregates the probes of a server.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	probes []*probe
	cancel context.CancelFunc
}

// New creates a Health that reports not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// Add registers a check of the given kind with DefaultThresholds.
func (h *Health) Add(kind Kind, name string, timeout time.Duration, check CheckFunc) {
	h.AddWithThresholds(kind, name, timeout, DefaultThresholds, check)
}

// AddWithThresholds registers a check with custom flap damping. Checks start
// healthy.
func (h *Health) AddWithThresholds(kind Kind, name string, timeout time.Duration, t Thresholds, check CheckFunc) {
	if t.FailureThreshold < 1 {
		t.FailureThreshold = 1
	}
	if t.SuccessThreshold < 1 {
		t.SuccessThreshold = 1
	}
	p := &probe{name: name, kind: kind, timeout: timeout, check: check, thresholds: t}
	p.healthy.Store(true)

	h.mu.Lock()
	h.probes = append(h.probes, p)
	h.mu.Unlock()
}

// Start polls every registered check at interval until Stop is called or ctx
// is cancelled.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := append([]*probe(nil), h.probes...)
	h.mu.Unlock()

	for _, p := range probes {
		go poll(ctx, p, interval)
	}
}

func poll(ctx context.Context, p *probe, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

// Stop ends polling. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady marks the server as able (or no longer able) to take traffic.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the server is marked ready and every readiness
// check passes.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(h.failures(Readiness)) == 0
}

func (h *Health) failures(kind Kind) map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	failures := make(map[string]string)
	for _, p := range h.probes {
		if p.kind == kind && !p.healthy.Load() {
			failures[p.name] = p.failure()
		}
	}
	return failures
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(Liveness))
}

// ReadyEndpoint serves /readyz. It fails while the server is not marked ready
// even when every check passes.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(Readiness)
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// writeStatus renders {"status":"ok"} or
// {"status":"unhealthy","checks":{name:error}} with a 503.
func writeStatus(w http.ResponseWriter, failures map[string]string) {
	status := http.StatusOK
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.Obj(func(e *jx.Encoder) {
		if len(failures) == 0 {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		status = http.StatusServiceUnavailable
		e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })

		names := make([]string, 0, len(failures))
		for name := range failures {
			names = append(names, name)
		}
		sort.Strings(names)
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, name := range names {
					e.Field(name, func(e *jx.Encoder) { e.Str(failures[name]) })
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
