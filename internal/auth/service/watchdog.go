package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/tabgate/pkg/kvx"
)

// KVWatchdog retries the revocation store connection in the background while
// it is Disconnected, and swaps the store in once it answers.
type KVWatchdog struct {
	Revocations *RevocationService
	Connect     func(ctx context.Context) kvx.Store
	Logger      *slog.Logger
	Interval    time.Duration

	started atomic.Bool
	stopped atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewKVWatchdog creates a watchdog. A non-positive interval defaults to 30s.
func NewKVWatchdog(
	revocations *RevocationService,
	connect func(ctx context.Context) kvx.Store,
	logger *slog.Logger,
	interval time.Duration,
) *KVWatchdog {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &KVWatchdog{
		Revocations: revocations,
		Connect:     connect,
		Logger:      logger,
		Interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start runs the loop in a goroutine. Call Stop to end it. A watchdog runs
// at most once.
func (w *KVWatchdog) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run()
	w.Logger.Info("revocation store watchdog started", "interval", w.Interval)
}

// Stop ends the loop and waits for an in-flight attempt to finish. It is a
// no-op if Start was never called.
func (w *KVWatchdog) Stop() {
	if !w.started.Load() || !w.stopped.CompareAndSwap(false, true) {
		return
	}
	close(w.stopCh)
	<-w.doneCh
	w.Logger.Info("revocation store watchdog stopped")
}

func (w *KVWatchdog) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stopCh:
			return
		}
	}
}

// check reconnects once if the store is Disconnected. It reports whether the
// store is connected afterwards.
func (w *KVWatchdog) check() bool {
	if w.Revocations.Connected() {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.Interval)
	defer cancel()

	kv := w.Connect(ctx)
	if !kv.Connected() {
		w.Logger.Debug("revocation store still unreachable")
		return false
	}

	old := w.Revocations.Swap(kv)
	_ = old.Close()
	w.Logger.Info("revocation store reconnected, token revocation enabled")
	return true
}
