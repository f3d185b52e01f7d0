// Package service holds the registration state machine: given a wallet
// identity and the persisted record tiers, it decides which view a session
// sees and which dashboard a registered role navigates to.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"evidgate/internal/notify"
	"evidgate/internal/platform/metrics"
	"evidgate/internal/registration/models"
	"evidgate/internal/routes"
	dErrors "evidgate/pkg/domain-errors"
	"evidgate/pkg/platform/sentinel"
	"evidgate/pkg/requestcontext"
)

// Facade is the two-tier persistence surface the machine drives. Declared
// consumer-side so tests can substitute fakes per tier behavior.
type Facade interface {
	GetUser(ctx context.Context, address string) (*models.UserRecord, error)
	SaveUser(ctx context.Context, record *models.UserRecord) error
	SetSessionPointer(ctx context.Context, address string) error
	ClearSessionPointer(ctx context.Context) error
}

// Connector obtains a wallet account, prompting if the provider requires it.
type Connector interface {
	Connect(ctx context.Context) (string, error)
}

// TokenIssuer mints the session token returned to connected clients.
type TokenIssuer interface {
	Issue(address string, now time.Time) (string, error)
}

// Result is the machine's answer to one operation: the state it landed in,
// the view to present, and everything the client needs to act on it.
type Result struct {
	State       models.State
	Section     models.Section
	User        *models.UserRecord
	Destination routes.Destination
	Token       string
	Alert       *models.Alert
}

// Machine reconciles wallet identity, persisted records and navigation for
// one session at a time. The session context is passed in explicitly and owns
// all mutable session state; the machine itself holds only collaborators.
type Machine struct {
	facade   Facade
	wallet   Connector
	tokens   TokenIssuer
	recorder notify.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer

	// inFlight models the disabled connect control: a second connect while
	// one is suspended on I/O is refused, not queued.
	inFlight atomic.Bool
}

// Option configures a Machine.
type Option func(*Machine)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

func WithRecorder(recorder notify.Recorder) Option {
	return func(m *Machine) { m.recorder = recorder }
}

func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Machine) { m.metrics = mx }
}

func WithTokens(tokens TokenIssuer) Option {
	return func(m *Machine) { m.tokens = tokens }
}

func New(facade Facade, wallet Connector, opts ...Option) (*Machine, error) {
	if facade == nil {
		return nil, errors.New("persistence facade is required")
	}
	if wallet == nil {
		return nil, errors.New("wallet connector is required")
	}
	m := &Machine{
		facade: facade,
		wallet: wallet,
		tracer: otel.Tracer("evidgate/registration/service"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Connect runs the connect transition and, on success, immediately resolves
// registration status for the obtained account.
//
// Errors: CodeConflict when a connect is already in flight for this machine;
// CodeNoAccounts and CodeProviderFailure pass through from the adapter, with
// the session left logically disconnected so the control can be retried.
func (m *Machine) Connect(ctx context.Context, sess *models.Session) (*Result, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return nil, dErrors.New(dErrors.CodeConflict, "a connection attempt is already in progress")
	}
	defer m.inFlight.Store(false)

	ctx, span := m.tracer.Start(ctx, "machine.Connect")
	defer span.End()

	sess.State = models.StateConnecting
	m.record(ctx, notify.EventConnectAttempt, notify.String("category", "authentication"))

	address, err := m.wallet.Connect(ctx)
	if err != nil {
		m.record(ctx, notify.EventConnectFailed, notify.String("category", "authentication"))
		sess.Reset()
		return nil, err
	}

	sess.Address = address
	m.metrics.IncrementWalletConnects()
	m.record(ctx, notify.EventConnected, notify.String("category", "authentication"))

	if m.tokens != nil {
		token, err := m.tokens.Issue(address, requestcontext.Now(ctx))
		if err != nil {
			m.logWarn(ctx, "session token issue failed", "error", err)
		} else {
			sess.Token = token
		}
	}

	return m.CheckStatus(ctx, sess)
}

// CheckStatus resolves the registration state for the session's account.
//
// The facade failing is never terminal: the session lands in Unregistered
// with an error alert rather than stranding the user. A deactivated record
// forces a logout and returns the session to Disconnected.
func (m *Machine) CheckStatus(ctx context.Context, sess *models.Session) (*Result, error) {
	if !sess.Connected() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "connect your wallet first")
	}

	ctx, span := m.tracer.Start(ctx, "machine.CheckStatus")
	defer span.End()
	start := time.Now()
	defer func() { m.metrics.ObserveStatusCheck(time.Since(start).Seconds()) }()

	sess.State = models.StateCheckingStatus

	record, err := m.facade.GetUser(ctx, sess.Address)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		sess.State = models.StateUnregistered
		return m.result(sess, nil), nil

	case err != nil:
		// Error state is transient: fall through to the registration form
		// so the user is never stuck on a blank view.
		m.logWarn(ctx, "registration check failed", "error", err)
		sess.State = models.StateUnregistered
		res := m.result(sess, nil)
		res.Alert = models.NewAlert("Error checking registration. Please try again.", models.SeverityError)
		return res, nil
	}

	if !record.IsActive {
		return m.forceLogout(ctx, sess)
	}

	if record.Role.IsAdmin() {
		sess.State = models.StateRegisteredAdmin
	} else {
		sess.State = models.StateRegisteredUser
	}
	if err := m.facade.SetSessionPointer(ctx, sess.Address); err != nil {
		m.logWarn(ctx, "session pointer write failed", "error", err)
	}
	return m.result(sess, record), nil
}

// Register handles a registration submission for the connected account.
//
// Errors: CodeInvalidInput for missing required fields and CodePolicyViolation
// for admin self-registration, both with zero state mutation and zero writes;
// CodePersistence when the local tier rejects the write.
func (m *Machine) Register(ctx context.Context, sess *models.Session, form *models.RegistrationForm) (*Result, error) {
	if !sess.Connected() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "connect your wallet first")
	}

	ctx, span := m.tracer.Start(ctx, "machine.Register")
	defer span.End()

	role, err := form.Validate()
	if err != nil {
		return nil, err
	}

	record := form.ToRecord(sess.Address, role, requestcontext.Now(ctx))
	if err := m.facade.SaveUser(ctx, &record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "registration could not be saved")
	}
	if err := m.facade.SetSessionPointer(ctx, sess.Address); err != nil {
		m.logWarn(ctx, "session pointer write failed", "error", err)
	}

	m.metrics.IncrementRegistrations(role.String())
	m.record(ctx, notify.EventRoleSelected,
		notify.String("category", "registration"),
		notify.String("role_type", role.String()),
	)
	m.record(ctx, notify.EventUserRegistration,
		notify.String("category", "registration"),
		notify.String("role_type", role.String()),
		notify.String("user_type", "new_user"),
		notify.String("department", record.Department),
	)

	sess.State = models.StateRegisteredUser
	res := m.result(sess, &record)
	res.Alert = models.NewAlert("Registration successful! Redirecting to dashboard...", models.SeveritySuccess)
	return res, nil
}

// Logout clears the persisted session pointer and resets the session. User
// records are never deleted here.
func (m *Machine) Logout(ctx context.Context, sess *models.Session) (*Result, error) {
	ctx, span := m.tracer.Start(ctx, "machine.Logout")
	defer span.End()

	if err := m.facade.ClearSessionPointer(ctx); err != nil {
		m.logWarn(ctx, "session pointer clear failed", "error", err)
	}
	sess.Reset()
	res := m.result(sess, nil)
	res.Alert = models.NewAlert("Wallet disconnected. You can now connect a different account.", models.SeveritySuccess)
	return res, nil
}

// Invalidate discards the session and re-resolves it from the given account
// list. It is the explicit replacement for the reload the original client
// performed on provider account or network changes; an in-flight flow for the
// previous account is superseded wholesale.
func (m *Machine) Invalidate(ctx context.Context, sess *models.Session, accounts []string) (*Result, error) {
	ctx, span := m.tracer.Start(ctx, "machine.Invalidate")
	defer span.End()

	sess.Reset()
	if len(accounts) == 0 {
		if err := m.facade.ClearSessionPointer(ctx); err != nil {
			m.logWarn(ctx, "session pointer clear failed", "error", err)
		}
		return m.result(sess, nil), nil
	}

	sess.Address = accounts[0]
	if m.tokens != nil {
		if token, err := m.tokens.Issue(sess.Address, requestcontext.Now(ctx)); err == nil {
			sess.Token = token
		}
	}
	return m.CheckStatus(ctx, sess)
}

// ResolveRole answers the role-resolution lookup used for dashboard routing.
//
// Errors: CodeNotFound when no record exists in either tier.
func (m *Machine) ResolveRole(ctx context.Context, address string) (models.Role, error) {
	record, err := m.facade.GetUser(ctx, address)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.New(dErrors.CodeNotFound, "user not registered")
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodePersistence, "failed to resolve user role")
	}
	if !record.IsActive {
		return "", dErrors.New(dErrors.CodeDeactivated, "account has been deactivated")
	}
	return record.Role, nil
}

func (m *Machine) forceLogout(ctx context.Context, sess *models.Session) (*Result, error) {
	if err := m.facade.ClearSessionPointer(ctx); err != nil {
		m.logWarn(ctx, "session pointer clear failed", "error", err)
	}
	sess.Reset()
	sess.State = models.StateDisconnected
	res := m.result(sess, nil)
	res.Alert = models.NewAlert("Your account has been deactivated. Contact administrator.", models.SeverityError)
	return res, nil
}

func (m *Machine) result(sess *models.Session, record *models.UserRecord) *Result {
	res := &Result{
		State:   sess.State,
		Section: models.SectionFor(sess.State),
		User:    record,
		Token:   sess.Token,
	}
	if record != nil && (sess.State == models.StateRegisteredUser || sess.State == models.StateRegisteredAdmin) {
		res.Destination = routes.ForRole(record.Role)
	}
	return res
}

// record mirrors the analytics side channel: attach request correlation and
// client metadata, then hand off fire-and-forget.
func (m *Machine) record(ctx context.Context, event string, attrs ...notify.Attr) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, notify.String("request_id", requestID))
	}
	if browser := requestcontext.UserAgent(ctx); browser != "" {
		attrs = append(attrs, notify.String("browser", browser))
	}
	notify.Record(ctx, m.recorder, event, attrs...)
}

func (m *Machine) logWarn(ctx context.Context, msg string, args ...any) {
	if m.logger != nil {
		m.logger.WarnContext(ctx, msg, args...)
	}
}
