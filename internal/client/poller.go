package client

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pollTicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "keepsake_poll_ticks_total",
	Help: "Polling tick outcomes",
}, []string{"outcome"}) // outcome: suppressed, refreshed, snap_back, error

// State is the listing session's load state.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Poller periodically re-queries the listing to pick up uploads made
// out-of-band while the dashboard is open. Ticks are suppressed unless the
// session sits on the default view: refreshing a filtered or paged-away
// view would silently mutate what the user is looking at.
type Poller struct {
	client   *Client
	session  *Session
	interval time.Duration
	logger   *slog.Logger
	state    atomic.Int32

	// OnUpdate receives every successful refresh result.
	OnUpdate func(*ListResult)
	// OnSnapBack fires when a total increase forced the view back to page 1.
	OnSnapBack func()

	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller over the given client and session.
func NewPoller(c *Client, s *Session, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		client:   c,
		session:  s,
		interval: interval,
		logger:   logger.With(slog.String("component", "poller")),
	}
}

// State returns the current load state.
func (p *Poller) State() State {
	return State(p.state.Load())
}

// Start launches the polling goroutine. Call once.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)

		p.logger.Info("polling started", slog.String("interval", p.interval.String()))

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("polling stopped")
				return
			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}()
}

// Stop cancels the polling goroutine and waits for it to exit.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.done != nil {
		<-p.done
	}
}

// Refresh runs one load of the current view immediately, regardless of the
// suppression predicate. The UI calls this on filter or page changes.
func (p *Poller) Refresh(ctx context.Context) (*ListResult, error) {
	prev := p.state.Load()
	p.state.Store(int32(StateLoading))
	result, err := p.client.ListImages(ctx, p.session.View())
	if err != nil {
		// A failed load never promotes the state: a view that has not
		// loaded yet stays idle.
		p.state.Store(prev)
		return nil, err
	}
	p.session.ObserveTotal(result.Total)
	p.state.Store(int32(StateReady))
	if p.OnUpdate != nil {
		p.OnUpdate(result)
	}
	return result, nil
}

// tick performs one conditional poll. Failures are logged, never surfaced:
// the next scheduled tick retries.
func (p *Poller) tick(ctx context.Context) {
	view := p.session.View()
	if !view.IsDefault() {
		pollTicksTotal.WithLabelValues("suppressed").Inc()
		return
	}

	prev := p.state.Load()
	p.state.Store(int32(StateLoading))
	result, err := p.client.ListImages(ctx, view)
	if err != nil {
		pollTicksTotal.WithLabelValues("error").Inc()
		p.logger.Warn("poll failed", slog.String("error", err.Error()))
		p.state.Store(prev)
		return
	}

	if p.session.ObserveTotal(result.Total) {
		p.session.SnapBack()
		pollTicksTotal.WithLabelValues("snap_back").Inc()
		if p.OnSnapBack != nil {
			p.OnSnapBack()
		}
	} else {
		pollTicksTotal.WithLabelValues("refreshed").Inc()
	}

	p.state.Store(int32(StateReady))
	if p.OnUpdate != nil {
		p.OnUpdate(result)
	}
}
