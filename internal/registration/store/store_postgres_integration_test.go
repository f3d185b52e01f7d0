//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"evidgate/internal/registration/models"
	"evidgate/internal/registration/store"
	"evidgate/pkg/platform/sentinel"
	"evidgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgresStore(s.postgres.Pool)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "wallet_users"))
}

func pgTestRecord(address string) *models.UserRecord {
	return &models.UserRecord{
		WalletAddress:    address,
		FullName:         "Dana Reyes",
		Role:             models.RoleInvestigator,
		Department:       "Major Crimes",
		Jurisdiction:     "State",
		BadgeNumber:      "MC-1042",
		IsActive:         true,
		RegistrationDate: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	record := pgTestRecord("0xAB")

	s.Require().NoError(s.store.Put(ctx, record))

	found, err := s.store.Get(ctx, "0xAB")
	s.Require().NoError(err)
	s.Equal(record.FullName, found.FullName)
	s.Equal(models.RoleInvestigator, found.Role)
	s.True(found.IsActive)
	s.True(found.RegistrationDate.Equal(record.RegistrationDate))
}

func (s *PostgresStoreSuite) TestAbsenceIsNotFound() {
	_, err := s.store.Get(context.Background(), "0xFF")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestPutIsUpsert() {
	ctx := context.Background()

	first := pgTestRecord("0xAB")
	s.Require().NoError(s.store.Put(ctx, first))

	second := pgTestRecord("0xAB")
	second.FullName = "Dana R. Reyes"
	second.Role = models.RoleAuditor
	second.IsActive = false
	s.Require().NoError(s.store.Put(ctx, second))

	found, err := s.store.Get(ctx, "0xAB")
	s.Require().NoError(err)
	s.Equal("Dana R. Reyes", found.FullName)
	s.Equal(models.RoleAuditor, found.Role)
	s.False(found.IsActive)
}

func (s *PostgresStoreSuite) TestAddressesAreCaseSensitive() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, pgTestRecord("0xAb")))

	_, err := s.store.Get(ctx, "0xAB")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
