package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"evidgate/internal/registration/models"
	"evidgate/pkg/platform/sentinel"
)

// FileStore is the local fallback tier: a single JSON document of string keys,
// modeled on the browser profile storage it replaces. Records live under
// "user_" + address and the session pointer under "currentSessionUser", which
// keeps documents written by the legacy client readable, including their
// numeric role encoding.
//
// The store is a single-writer, single-reader key-value space; the mutex
// serializes all access. A missing file reads as empty, never as an error.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(_ context.Context, address string) (*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	raw, ok := doc[recordKeyPrefix+address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	record, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *FileStore) Put(_ context.Context, record *models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}
	doc[recordKeyPrefix+record.WalletAddress] = data
	return s.save(doc)
}

func (s *FileStore) SessionPointer(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", err
	}
	raw, ok := doc[sessionPointerKey]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	var address string
	if err := json.Unmarshal(raw, &address); err != nil {
		return "", fmt.Errorf("decode session pointer: %w", err)
	}
	if address == "" {
		return "", sentinel.ErrNotFound
	}
	return address, nil
}

func (s *FileStore) SetSessionPointer(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(address)
	if err != nil {
		return fmt.Errorf("encode session pointer: %w", err)
	}
	doc[sessionPointerKey] = raw
	return s.save(doc)
}

func (s *FileStore) ClearSessionPointer(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[sessionPointerKey]; !ok {
		return nil
	}
	delete(doc, sessionPointerKey)
	return s.save(doc)
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local store: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]json.RawMessage), nil
	}
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode local store: %w", err)
	}
	return doc, nil
}

// save writes through a temp file and renames, so a crash mid-write leaves the
// previous document intact.
func (s *FileStore) save(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	if err := os.Rename(tmp, filepath.Clean(s.path)); err != nil {
		return fmt.Errorf("replace local store: %w", err)
	}
	return nil
}
