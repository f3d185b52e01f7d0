package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"evidgate/internal/registration/models"
	"evidgate/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) SetupSubTest() {
	s.SetupTest()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func newTestRecord(address string, role models.Role) *models.UserRecord {
	return &models.UserRecord{
		WalletAddress:    address,
		FullName:         "Dana Reyes",
		Role:             role,
		Department:       "Major Crimes",
		Jurisdiction:     "State",
		BadgeNumber:      "MC-1042",
		IsActive:         true,
		RegistrationDate: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func (s *MemoryStoreSuite) TestRecords() {
	s.Run("stores and retrieves a record", func() {
		record := newTestRecord("0xAB", models.RoleInvestigator)
		s.Require().NoError(s.store.Put(s.ctx, record))

		found, err := s.store.Get(s.ctx, "0xAB")
		s.Require().NoError(err)
		s.Equal(record.FullName, found.FullName)
		s.Equal(models.RoleInvestigator, found.Role)
	})

	s.Run("returns ErrNotFound for unknown address", func() {
		_, err := s.store.Get(s.ctx, "0xFF")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("addresses are case-sensitive", func() {
		record := newTestRecord("0xAb", models.RoleAuditor)
		s.Require().NoError(s.store.Put(s.ctx, record))

		_, err := s.store.Get(s.ctx, "0xAB")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("put is an idempotent upsert", func() {
		first := newTestRecord("0xAB", models.RoleInvestigator)
		s.Require().NoError(s.store.Put(s.ctx, first))

		second := newTestRecord("0xAB", models.RoleAuditor)
		second.FullName = "Dana R. Reyes"
		s.Require().NoError(s.store.Put(s.ctx, second))

		found, err := s.store.Get(s.ctx, "0xAB")
		s.Require().NoError(err)
		s.Equal("Dana R. Reyes", found.FullName)
		s.Equal(models.RoleAuditor, found.Role)
	})

	s.Run("returned record is a copy", func() {
		record := newTestRecord("0xAB", models.RoleInvestigator)
		s.Require().NoError(s.store.Put(s.ctx, record))

		found, err := s.store.Get(s.ctx, "0xAB")
		s.Require().NoError(err)
		found.FullName = "mutated"

		again, err := s.store.Get(s.ctx, "0xAB")
		s.Require().NoError(err)
		s.Equal("Dana Reyes", again.FullName)
	})
}

func (s *MemoryStoreSuite) TestSessionPointer() {
	s.Run("absent pointer is ErrNotFound", func() {
		_, err := s.store.SessionPointer(s.ctx)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("set then read", func() {
		s.Require().NoError(s.store.SetSessionPointer(s.ctx, "0xAB"))
		pointer, err := s.store.SessionPointer(s.ctx)
		s.Require().NoError(err)
		s.Equal("0xAB", pointer)
	})

	s.Run("clear removes only the pointer", func() {
		record := newTestRecord("0xAB", models.RoleInvestigator)
		s.Require().NoError(s.store.Put(s.ctx, record))
		s.Require().NoError(s.store.SetSessionPointer(s.ctx, "0xAB"))

		s.Require().NoError(s.store.ClearSessionPointer(s.ctx))

		_, err := s.store.SessionPointer(s.ctx)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.Get(s.ctx, "0xAB")
		s.Require().NoError(err)
	})
}
