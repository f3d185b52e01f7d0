package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"evidgate/internal/registration/models"
	"evidgate/pkg/platform/sentinel"
)

// failingStore simulates an unreachable tier.
type failingStore struct {
	err error
}

func (f *failingStore) Get(context.Context, string) (*models.UserRecord, error) {
	return nil, f.err
}

func (f *failingStore) Put(context.Context, *models.UserRecord) error {
	return f.err
}

type FacadeSuite struct {
	suite.Suite
	remote *InMemory
	local  *InMemory
	ctx    context.Context
}

func (s *FacadeSuite) SetupTest() {
	s.remote = NewInMemory()
	s.local = NewInMemory()
	s.ctx = context.Background()
}

func (s *FacadeSuite) SetupSubTest() {
	s.SetupTest()
}

func TestFacadeSuite(t *testing.T) {
	suite.Run(t, new(FacadeSuite))
}

func (s *FacadeSuite) newFacade(remote RecordStore) *Facade {
	facade, err := NewFacade(remote, s.local)
	s.Require().NoError(err)
	return facade
}

func (s *FacadeSuite) TestRequiresLocalTier() {
	_, err := NewFacade(s.remote, nil)
	s.Require().Error(err)
}

func (s *FacadeSuite) TestGetUser() {
	s.Run("remote record wins over local", func() {
		remoteRecord := newTestRecord("0xAB", models.RoleInvestigator)
		localRecord := newTestRecord("0xAB", models.RoleAuditor)
		localRecord.FullName = "Stale Local"
		s.Require().NoError(s.remote.Put(s.ctx, remoteRecord))
		s.Require().NoError(s.local.Put(s.ctx, localRecord))

		found, err := s.newFacade(s.remote).GetUser(s.ctx, "0xAB")
		s.Require().NoError(err)
		s.Equal(models.RoleInvestigator, found.Role)
		s.Equal(models.SourceRemote, found.Source)
	})

	s.Run("remote absence still consults local", func() {
		s.Require().NoError(s.local.Put(s.ctx, newTestRecord("0xAB", models.RoleAuditor)))

		found, err := s.newFacade(s.remote).GetUser(s.ctx, "0xAB")
		s.Require().NoError(err)
		s.Equal(models.SourceLocal, found.Source)
	})

	s.Run("remote failure falls back to local", func() {
		s.Require().NoError(s.local.Put(s.ctx, newTestRecord("0xAB", models.RoleAuditor)))
		remote := &failingStore{err: errors.New("connection refused")}

		found, err := s.newFacade(remote).GetUser(s.ctx, "0xAB")
		s.Require().NoError(err)
		s.Equal(models.RoleAuditor, found.Role)
		s.Equal(models.SourceLocal, found.Source)
	})

	s.Run("absent in both tiers is ErrNotFound", func() {
		_, err := s.newFacade(s.remote).GetUser(s.ctx, "0xFF")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("remote failure with no local record is ErrNotFound", func() {
		remote := &failingStore{err: errors.New("connection refused")}
		_, err := s.newFacade(remote).GetUser(s.ctx, "0xFF")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("works without a remote tier", func() {
		s.Require().NoError(s.local.Put(s.ctx, newTestRecord("0xAB", models.RoleAuditor)))

		found, err := s.newFacade(nil).GetUser(s.ctx, "0xAB")
		s.Require().NoError(err)
		s.Equal(models.SourceLocal, found.Source)
	})

	s.Run("legacy numeric role is normalized on read", func() {
		record := newTestRecord("0xAB", models.Role("8"))
		s.Require().NoError(s.local.Put(s.ctx, record))

		found, err := s.newFacade(nil).GetUser(s.ctx, "0xAB")
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, found.Role)
	})
}

func (s *FacadeSuite) TestSaveUser() {
	s.Run("writes both tiers", func() {
		record := newTestRecord("0xAB", models.RoleInvestigator)
		s.Require().NoError(s.newFacade(s.remote).SaveUser(s.ctx, record))

		_, err := s.local.Get(s.ctx, "0xAB")
		s.Require().NoError(err)
		_, err = s.remote.Get(s.ctx, "0xAB")
		s.Require().NoError(err)
	})

	s.Run("remote write failure is swallowed", func() {
		remote := &failingStore{err: errors.New("connection refused")}
		record := newTestRecord("0xAB", models.RoleInvestigator)

		s.Require().NoError(s.newFacade(remote).SaveUser(s.ctx, record))

		_, err := s.local.Get(s.ctx, "0xAB")
		s.Require().NoError(err)
	})

	s.Run("local write failure surfaces", func() {
		facade, err := NewFacade(s.remote, failingLocal{err: errors.New("disk full")})
		s.Require().NoError(err)

		err = facade.SaveUser(s.ctx, newTestRecord("0xAB", models.RoleInvestigator))
		s.Require().Error(err)
	})
}

func (s *FacadeSuite) TestSessionPointer() {
	facade := s.newFacade(s.remote)

	s.Require().NoError(facade.SetSessionPointer(s.ctx, "0xAB"))
	pointer, err := facade.SessionPointer(s.ctx)
	s.Require().NoError(err)
	s.Equal("0xAB", pointer)

	s.Require().NoError(facade.ClearSessionPointer(s.ctx))
	_, err = facade.SessionPointer(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *FacadeSuite) TestRemoteCircuitBreaker() {
	s.Require().NoError(s.local.Put(s.ctx, newTestRecord("0xAB", models.RoleAuditor)))

	remote := &countingRemote{inner: &failingStore{err: errors.New("connection refused")}}
	facade := s.newFacade(remote)

	// Three straight failures open the breaker.
	for range 3 {
		_, err := facade.GetUser(s.ctx, "0xAB")
		s.Require().NoError(err)
	}
	s.Equal(3, remote.gets)

	// Open breaker: reads stop hitting the remote tier but still resolve.
	found, err := facade.GetUser(s.ctx, "0xAB")
	s.Require().NoError(err)
	s.Equal(models.SourceLocal, found.Source)
	s.Equal(3, remote.gets)

	// Writes keep probing; two successes close the breaker again.
	remote.inner = s.remote
	s.Require().NoError(facade.SaveUser(s.ctx, newTestRecord("0xAB", models.RoleAuditor)))
	s.Require().NoError(facade.SaveUser(s.ctx, newTestRecord("0xAB", models.RoleAuditor)))

	found, err = facade.GetUser(s.ctx, "0xAB")
	s.Require().NoError(err)
	s.Equal(models.SourceRemote, found.Source)
	s.Equal(4, remote.gets)
}

// countingRemote counts tier calls and delegates to a swappable inner store.
type countingRemote struct {
	inner RecordStore
	gets  int
	puts  int
}

func (c *countingRemote) Get(ctx context.Context, address string) (*models.UserRecord, error) {
	c.gets++
	return c.inner.Get(ctx, address)
}

func (c *countingRemote) Put(ctx context.Context, record *models.UserRecord) error {
	c.puts++
	return c.inner.Put(ctx, record)
}

// failingLocal fails record writes but satisfies the full local interface.
type failingLocal struct {
	err error
}

func (f failingLocal) Get(context.Context, string) (*models.UserRecord, error) {
	return nil, sentinel.ErrNotFound
}
func (f failingLocal) Put(context.Context, *models.UserRecord) error { return f.err }
func (f failingLocal) SessionPointer(context.Context) (string, error) {
	return "", sentinel.ErrNotFound
}
func (f failingLocal) SetSessionPointer(context.Context, string) error { return f.err }
func (f failingLocal) ClearSessionPointer(context.Context) error       { return f.err }
