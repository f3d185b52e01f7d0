// Package notify is the best-effort observability side channel. Recording an
// event must never fail, block, or alter the control flow of the caller; an
// uninitialized recorder is a legal, silent no-op.
package notify

import "context"

// Events recorded by the registration flow.
const (
	EventConnectAttempt   = "wallet_connect_attempt"
	EventConnected        = "wallet_connected"
	EventConnectFailed    = "wallet_connect_failed"
	EventUserRegistration = "user_registration"
	EventRoleSelected     = "role_selected"
)

// Attr is one event attribute.
type Attr struct {
	Key   string
	Value string
}

// String builds an attribute.
func String(key, value string) Attr { return Attr{Key: key, Value: value} }

// Recorder accepts events fire-and-forget. Implementations must not block and
// must swallow their own failures.
type Recorder interface {
	Record(ctx context.Context, event string, attrs ...Attr)
}

// Record is the nil-safe entry point services use, mirroring how an absent
// analytics script is simply skipped.
func Record(ctx context.Context, r Recorder, event string, attrs ...Attr) {
	if r == nil {
		return
	}
	r.Record(ctx, event, attrs...)
}

// Noop discards every event.
type Noop struct{}

func (Noop) Record(context.Context, string, ...Attr) {}

// Multi fans one event out to several recorders.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, event string, attrs ...Attr) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, event, attrs...)
		}
	}
}
