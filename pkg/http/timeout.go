package http

import (
	"io"
	"sync/atomic"
	"time"
)

// idleTimeoutReader cancels the request when no read completes within the
// timeout. The transport only bounds the wait for headers; this bounds every
// stall in the body.
type idleTimeoutReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
	expired atomic.Bool
}

func newIdleTimeoutReader(r io.Reader, timeout time.Duration, cancel func()) *idleTimeoutReader {
	itr := &idleTimeoutReader{r: r, timeout: timeout}
	itr.timer = time.AfterFunc(timeout, func() {
		itr.expired.Store(true)
		cancel()
	})
	return itr
}

func (itr *idleTimeoutReader) Read(p []byte) (int, error) {
	n, err := itr.r.Read(p)
	if n > 0 && !itr.expired.Load() {
		itr.timer.Reset(itr.timeout)
	}
	return n, err
}

// Expired reports whether the reader gave up on a stalled body.
func (itr *idleTimeoutReader) Expired() bool { return itr.expired.Load() }

// Stop disarms the timer.
func (itr *idleTimeoutReader) Stop() { itr.timer.Stop() }
