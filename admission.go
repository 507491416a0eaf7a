package weave

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// AdmissionController is C2: a connection-level gate ahead of C3's
// dispatcher, distinct from middleware/limiter's per-route, per-key
// request-rate limiter. It combines a token bucket (bounding how fast new
// connections are accepted) with a capacity-sized semaphore (bounding how
// many may be in flight at once) — the rate limiter alone only throttles
// the accept rate and lets concurrency climb past capacity once admitted
// connections outlive refillEvery, so the semaphore's slot is held by the
// caller until Release is called on connection close.
//
// capacity == 0 means reject every connection outright — a deliberate
// "drain mode" switch rather than an error, as an internal policy choice
// for that edge case.
type AdmissionController struct {
	limiter *rate.Limiter
	sem chan struct{}
	maxWait time.Duration
	capacity int
}

// NewAdmissionController builds a token bucket of the given capacity,
// refilling one token every refillEvery, plus a semaphore of the same
// capacity enforcing the hard concurrency cap. maxWait bounds how long
// Admit will wait for both before giving up.
func NewAdmissionController(capacity int, refillEvery, maxWait time.Duration) *AdmissionController {
	var limiter *rate.Limiter
	var sem chan struct{}
	if capacity > 0 {
		limiter = rate.NewLimiter(rate.Every(refillEvery), capacity)
		sem = make(chan struct{}, capacity)
	}
	return &AdmissionController{limiter: limiter, sem: sem, maxWait: maxWait, capacity: capacity}
}

// Admit blocks until an accept-rate token and a concurrency slot are both
// available, the maxWait deadline elapses, or ctx is cancelled, returning
// whether the connection may proceed. A true return holds a concurrency
// slot that the caller must free with Release once the connection closes.
func (a *AdmissionController) Admit(ctx context.Context) bool {
	if a.capacity == 0 {
		return false
	}
	waitCtx, cancel := context.WithTimeout(ctx, a.maxWait)
	defer cancel()
	if a.limiter.Wait(waitCtx) != nil {
		return false
	}
	select {
	case a.sem <- struct{}{}:
		return true
	case <-waitCtx.Done():
		return false
	}
}

// Release frees the concurrency slot an Admit call acquired. Safe to call
// even when Admit was never called or returned false (a no-op in both
// cases); callers that wrap it around connection close should still guard
// against calling it more than once per admitted connection.
func (a *AdmissionController) Release() {
	if a.sem == nil {
		return
	}
	select {
	case <-a.sem:
	default:
	}
}
