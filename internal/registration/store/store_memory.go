package store

import (
	"context"
	"sync"

	"evidgate/internal/registration/models"
	"evidgate/pkg/platform/sentinel"
)

// InMemory keeps records in a map. It backs tests and demo deployments and
// satisfies both tier interfaces so it can stand in for either side.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]models.UserRecord
	pointer string
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]models.UserRecord)}
}

func (s *InMemory) Get(_ context.Context, address string) (*models.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[address]; ok {
		copied := record
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Put(_ context.Context, record *models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.WalletAddress] = *record
	return nil
}

func (s *InMemory) SessionPointer(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pointer == "" {
		return "", sentinel.ErrNotFound
	}
	return s.pointer, nil
}

func (s *InMemory) SetSessionPointer(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = address
	return nil
}

func (s *InMemory) ClearSessionPointer(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = ""
	return nil
}
