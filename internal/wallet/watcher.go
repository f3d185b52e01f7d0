package wallet

import (
	"context"
	"log/slog"
	"time"
)

// Change signals that the provider's active account set differs from the last
// observation. Consumers must fully re-resolve session state rather than
// patch it in place; a stale in-flight flow is superseded, not reconciled.
type Change struct {
	Accounts []Address
}

// Watcher polls the provider's account list and emits a Change whenever the
// primary account differs from the previous poll. It replaces the original
// accountsChanged/chainChanged page reload with an explicit invalidate signal.
type Watcher struct {
	adapter  *Adapter
	interval time.Duration
	logger   *slog.Logger
	changes  chan Change
	last     Address
	primed   bool
}

func NewWatcher(adapter *Adapter, interval time.Duration, logger *slog.Logger) *Watcher {
	return &Watcher{
		adapter:  adapter,
		interval: interval,
		logger:   logger,
		// Buffer of one: consumers re-resolve the whole session on any
		// change, so coalescing bursts loses nothing.
		changes: make(chan Change, 1),
	}
}

// Changes is the notification channel. Closed when Run returns.
func (w *Watcher) Changes() <-chan Change { return w.changes }

// Run polls until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	accounts, err := w.adapter.ActiveAccounts(ctx)
	if err != nil {
		// A flaky provider is not a change; keep the last observation.
		if w.logger != nil {
			w.logger.DebugContext(ctx, "account poll failed", "error", err)
		}
		return
	}

	var primary Address
	if len(accounts) > 0 {
		primary = accounts[0]
	}
	if !w.primed {
		w.primed = true
		w.last = primary
		return
	}
	if primary == w.last {
		return
	}
	w.last = primary

	select {
	case w.changes <- Change{Accounts: accounts}:
	default:
		// A change is already pending; the re-resolution it triggers will
		// observe the latest accounts anyway.
	}
}
