package weave

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/weaveframe/weave/logging"
)

// Closer is anything the shutdown controller must stop: an http.Server,
// a ListenerSet, a QUICServer. All three satisfy this with their own
// Close method.
type Closer interface {
	Close() error
}

// GracefulShutdown is C6: it watches for SIGINT/SIGTERM, gives in-flight
// requests a grace period to finish, and force-aborts everything still
// running when the grace period elapses or a second signal arrives.
// Grounded on the framework's startServerWithGracefulShutdown, generalized
// from a single *http.Server to an arbitrary set of closers since weave
// may be running HTTP/1.1, HTTP/2, and HTTP/3 listeners at once.
type GracefulShutdown struct {
	grace time.Duration
	log *logging.Logger
	metrics *Metrics
	mu sync.Mutex
	closers []Closer
	forced bool
	shutdown func(ctx context.Context) error
}

// NewGracefulShutdown builds a controller with the given grace period.
// shutdownHTTP, if non-nil, is called first so in-flight HTTP/1.1 and
// HTTP/2 connections get net/http's own graceful drain (stop accepting,
// let active handlers finish) before the remaining closers are closed.
func NewGracefulShutdown(grace time.Duration, log *logging.Logger, metrics *Metrics, shutdownHTTP func(ctx context.Context) error) *GracefulShutdown {
	return &GracefulShutdown{grace: grace, log: log, metrics: metrics, shutdown: shutdownHTTP}
}

// Watch registers a Closer to be stopped when shutdown runs. Order is
// not significant: all registered closers are closed concurrently.
func (g *GracefulShutdown) Watch(c Closer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closers = append(g.closers, c)
}

// Run blocks until ctx is cancelled or a termination signal arrives,
// then drains for up to the configured grace period before forcing every
// registered closer shut. A second signal during the grace period
// collapses straight to a forced abort, matching how operators expect
// "stuck, hit it again" to behave.
func (g *GracefulShutdown) Run(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	if g.log != nil {
		g.log.Info("shutdown signal received, draining")
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), g.grace)
	defer cancel()

	second := make(chan os.Signal, 1)
	signal.Notify(second, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(second)

	done := make(chan error, 1)
	go func() { done <- g.drain(drainCtx) }()

	var err error
	select {
	case err = <-done:
	case <-second:
		if g.log != nil {
			g.log.Warn("second shutdown signal received, forcing abort")
		}
		err = g.force()
	}

	if g.metrics != nil {
		if g.Forced() {
			g.metrics.ForcedShutdowns.Inc()
		} else {
			g.metrics.GracefulShutdowns.Inc()
		}
	}
	return err
}

// drain stops every registered listener (raw ListenerSets, QUIC) from
// accepting new connections immediately, concurrently with — not after
// — net/http's own Shutdown waiting out in-flight HTTP/1.1 and HTTP/2
// connections, bounded by ctx's deadline (§4.C6 step 2: listeners close
// immediately; in-flight connections drain separately). A timed-out or
// failed http Shutdown escalates to force.
func (g *GracefulShutdown) drain(ctx context.Context) error {
	httpDone := make(chan error, 1)
	if g.shutdown != nil {
		go func() { httpDone <- g.shutdown(ctx) }()
	} else {
		httpDone <- nil
	}

	closeErr := g.closeAll()

	if err := <-httpDone; err != nil {
		// closeAll already ran above; only mark the abort, don't close
		// every listener a second time.
		g.mu.Lock()
		g.forced = true
		g.mu.Unlock()
		if g.log != nil {
			g.log.Warn("forcing shutdown")
		}
		return closeErr
	}
	return closeErr
}

// force marks this shutdown as an abort and closes every registered
// closer concurrently, ignoring already-closed errors. Used both when a
// second signal arrives mid-drain and when the http Shutdown call itself
// times out or fails.
func (g *GracefulShutdown) force() error {
	g.mu.Lock()
	g.forced = true
	g.mu.Unlock()
	if g.log != nil {
		g.log.Warn("forcing shutdown")
	}
	return g.closeAll()
}

func (g *GracefulShutdown) closeAll() error {
	g.mu.Lock()
	closers := append([]Closer(nil), g.closers...)
	g.mu.Unlock()

	var wg sync.WaitGroup
	errs := make([]error, len(closers))
	for i, c := range closers {
		wg.Add(1)
		go func(i int, c Closer) {
			defer wg.Done()
			errs[i] = c.Close()
		}(i, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}
	return nil
}

// Forced reports whether the most recent Run call ended in a forced
// abort rather than a clean drain.
func (g *GracefulShutdown) Forced() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.forced
}
