// Package latency estimates round-trip time between sending a zone change and
// receiving its acknowledgement. The estimate is used only for display
// compensation and never affects protocol decisions.
package latency

import (
	"sync"
	"time"
)

// Estimator keeps a bounded window of RTT samples and smooths them with an
// exponential moving average.
type Estimator struct {
	samples []time.Duration // кольцевое окно последних замеров
	next    int
	full    bool
	alpha   float64
	mu      sync.RWMutex
}

// NewEstimator creates an estimator holding at most window samples.
func NewEstimator(window int, alpha float64) *Estimator {
	if window < 2 {
		window = 2
	}
	return &Estimator{
		samples: make([]time.Duration, window),
		alpha:   alpha,
	}
}

// Add records a single RTT sample. Negative samples are ignored.
func (e *Estimator) Add(rtt time.Duration) {
	if rtt < 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.samples[e.next] = rtt
	e.next = (e.next + 1) % len(e.samples)
	if e.next == 0 {
		e.full = true
	}
}

// Len returns the number of samples currently in the window.
func (e *Estimator) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.lenLocked()
}

// Compensation returns the smoothed RTT estimate. With fewer than two samples
// there is not enough signal and zero is returned.
func (e *Estimator) Compensation() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := e.lenLocked()
	if n < 2 {
		return 0
	}

	// Проходим окно от самого старого замера к самому новому
	start := 0
	if e.full {
		start = e.next
	}
	ema := float64(e.samples[start])
	for i := 1; i < n; i++ {
		s := float64(e.samples[(start+i)%len(e.samples)])
		ema = e.alpha*s + (1-e.alpha)*ema
	}

	return time.Duration(ema)
}

// Resize changes the window size and smoothing factor, keeping the newest samples.
func (e *Estimator) Resize(window int, alpha float64) {
	if window < 2 {
		window = 2
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.alpha = alpha
	if window == len(e.samples) {
		return
	}

	n := e.lenLocked()
	start := 0
	if e.full {
		start = e.next
	}
	ordered := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		ordered = append(ordered, e.samples[(start+i)%len(e.samples)])
	}
	if len(ordered) > window {
		ordered = ordered[len(ordered)-window:]
	}

	e.samples = make([]time.Duration, window)
	copy(e.samples, ordered)
	e.next = len(ordered) % window
	e.full = len(ordered) == window
}

// Reset drops every sample.
func (e *Estimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	clear(e.samples)
	e.next = 0
	e.full = false
}

func (e *Estimator) lenLocked() int {
	if e.full {
		return len(e.samples)
	}
	return e.next
}
