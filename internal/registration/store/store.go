package store

import (
	"context"

	"evidgate/internal/registration/models"
)

// RecordStore is one persistence tier for user records. Implementations must
// treat Put as an idempotent upsert keyed by wallet address and return
// sentinel.ErrNotFound (optionally wrapped) for absence, so the facade can
// distinguish "absent" from "tier failed".
type RecordStore interface {
	Get(ctx context.Context, address string) (*models.UserRecord, error)
	Put(ctx context.Context, record *models.UserRecord) error
}

// LocalStore is the durability backstop. On top of record storage it keeps the
// single session pointer used for cross-page continuity; the pointer is the
// only thing logout clears.
type LocalStore interface {
	RecordStore

	SessionPointer(ctx context.Context) (string, error)
	SetSessionPointer(ctx context.Context, address string) error
	ClearSessionPointer(ctx context.Context) error
}

// Local store key layout, kept compatible with the legacy client storage.
const (
	recordKeyPrefix   = "user_"
	sessionPointerKey = "currentSessionUser"
)
