package models

import "time"

// RecordSource identifies which persistence tier answered a read.
type RecordSource string

const (
	SourceRemote RecordSource = "remote"
	SourceLocal  RecordSource = "local"
)

// UserRecord is one registered identity, keyed by wallet address.
//
// Invariants:
//   - Exactly one record per wallet address per store; writes are idempotent
//     upserts keyed by address.
//   - Addresses are case-sensitive exactly as supplied by the wallet provider.
//   - Admin records are never created through self-registration.
type UserRecord struct {
	WalletAddress    string    `json:"wallet_address"`
	FullName         string    `json:"full_name"`
	Role             Role      `json:"role"`
	Department       string    `json:"department"`
	Jurisdiction     string    `json:"jurisdiction"`
	BadgeNumber      string    `json:"badge_number"`
	IsActive         bool      `json:"is_active"`
	RegistrationDate time.Time `json:"registration_date"`

	// Source is set by the persistence facade on reads and never persisted.
	// A remote record always wins over a local record for the same address.
	Source RecordSource `json:"-"`
}

// Session is the ephemeral association between one client and a connected
// wallet address. It is re-derived on every load and owns nothing beyond the
// life of that client; Reset clears it on logout or disconnect.
type Session struct {
	Address string
	State   State
	Token   string
}

// Reset returns the session to its pre-connect state.
func (s *Session) Reset() {
	s.Address = ""
	s.State = StateDisconnected
	s.Token = ""
}

// Connected reports whether the session has a resolved wallet address.
func (s *Session) Connected() bool { return s.Address != "" }
