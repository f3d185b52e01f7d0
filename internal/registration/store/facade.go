package store

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"evidgate/internal/platform/metrics"
	"evidgate/internal/registration/models"
	"evidgate/pkg/platform/circuit"
	"evidgate/pkg/platform/sentinel"
)

// Facade unifies the ranked persistence tiers behind one read/write surface.
//
// Reads query the remote tier first; a remote failure is never surfaced and a
// remote "absent" is not authoritative — both continue to the local tier, and
// only when both tiers report absence does GetUser return ErrNotFound. When a
// record exists in both tiers, the remote one wins.
//
// Writes go local-first (the durability backstop; its errors surface) and then
// remote best-effort (failures are swallowed, logged and counted). A crash
// between the two leaves local authoritative and remote stale, which is
// self-healing on the next remote write.
//
// A circuit breaker guards the remote tier: repeated failures stop read
// attempts so a dead backend costs nothing per request, while best-effort
// writes keep probing and close the breaker once the tier recovers.
type Facade struct {
	remote  RecordStore
	local   LocalStore
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Facade.
type Option func(*Facade)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Facade) { f.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Facade) { f.metrics = m }
}

// NewFacade builds a facade over the given tiers. remote may be nil when no
// remote tier is configured; local is required.
func NewFacade(remote RecordStore, local LocalStore, opts ...Option) (*Facade, error) {
	if local == nil {
		return nil, errors.New("local store is required")
	}
	f := &Facade{
		remote: remote,
		local:  local,
		// Three straight failures stop remote attempts; two straight
		// successes restore them.
		breaker: circuit.New("remote-store",
			circuit.WithFailureThreshold(3),
			circuit.WithSuccessThreshold(2),
		),
		tracer: otel.Tracer("evidgate/registration/store"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// GetUser resolves the record for an address across both tiers.
//
// Errors: sentinel.ErrNotFound when both tiers report absence; a local tier
// failure propagates as-is.
func (f *Facade) GetUser(ctx context.Context, address string) (*models.UserRecord, error) {
	ctx, span := f.tracer.Start(ctx, "facade.GetUser")
	defer span.End()

	if f.remote != nil && !f.breaker.IsOpen() {
		record, err := f.remote.Get(ctx, address)
		switch {
		case err == nil:
			f.recordRemoteSuccess(ctx)
			record.Source = models.SourceRemote
			normalizeRole(record)
			return record, nil
		case errors.Is(err, sentinel.ErrNotFound):
			// Remote absence is not authoritative; the local tier may
			// still hold a record written while remote was unreachable.
			f.recordRemoteSuccess(ctx)
		default:
			f.logWarn(ctx, "remote tier unavailable, falling back to local", "error", err)
			f.metrics.IncrementFallbackReads()
			f.recordRemoteFailure(ctx)
		}
	} else if f.remote != nil {
		f.metrics.IncrementFallbackReads()
	}

	record, err := f.local.Get(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	record.Source = models.SourceLocal
	normalizeRole(record)
	return record, nil
}

// SaveUser persists a record to both tiers: local always (errors surface),
// remote best-effort.
func (f *Facade) SaveUser(ctx context.Context, record *models.UserRecord) error {
	ctx, span := f.tracer.Start(ctx, "facade.SaveUser")
	defer span.End()

	if err := f.local.Put(ctx, record); err != nil {
		return err
	}
	if f.remote != nil {
		// Writes probe the remote tier even while the breaker is open;
		// they are already best-effort, and their successes are what
		// closes the breaker again.
		if err := f.remote.Put(ctx, record); err != nil {
			f.logWarn(ctx, "remote save failed, record kept locally", "error", err)
			f.metrics.IncrementRemoteWriteFailures()
			f.recordRemoteFailure(ctx)
		} else {
			f.recordRemoteSuccess(ctx)
		}
	}
	return nil
}

func (f *Facade) recordRemoteFailure(ctx context.Context) {
	if _, change := f.breaker.RecordFailure(); change.Opened {
		f.logWarn(ctx, "remote tier circuit opened, reads served locally")
	}
}

func (f *Facade) recordRemoteSuccess(ctx context.Context) {
	if _, change := f.breaker.RecordSuccess(); change.Closed {
		if f.logger != nil {
			f.logger.InfoContext(ctx, "remote tier circuit closed")
		}
	}
}

// SessionPointer reads the persisted session pointer from the local tier.
func (f *Facade) SessionPointer(ctx context.Context) (string, error) {
	return f.local.SessionPointer(ctx)
}

// SetSessionPointer records the active session address in the local tier.
func (f *Facade) SetSessionPointer(ctx context.Context, address string) error {
	return f.local.SetSessionPointer(ctx, address)
}

// ClearSessionPointer removes the session pointer; user records stay put.
func (f *Facade) ClearSessionPointer(ctx context.Context) error {
	return f.local.ClearSessionPointer(ctx)
}

func (f *Facade) logWarn(ctx context.Context, msg string, args ...any) {
	if f.logger != nil {
		f.logger.WarnContext(ctx, msg, args...)
	}
}

// normalizeRole rewrites legacy numeric role encodings ("8") that slipped
// through a tier's codec to the canonical string form.
func normalizeRole(record *models.UserRecord) {
	if record.Role.IsValid() {
		return
	}
	if id, err := strconv.Atoi(record.Role.String()); err == nil {
		if role, err := models.RoleFromID(id); err == nil {
			record.Role = role
		}
	}
}
