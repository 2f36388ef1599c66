package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

var interrupted atomic.Bool

// setInterrupted records that the scheduler asked the job to stop.
func setInterrupted(v bool) {
	interrupted.Store(v)
}

// Interrupted reports whether SIGINT/SIGTERM arrived, so a failed run can be
// told apart from one the CI runner cancelled.
func Interrupted() bool {
	return interrupted.Load()
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM. The
// returned stop releases the signal handler.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigs:
			setInterrupted(true)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigs)
		cancel()
	}
}
