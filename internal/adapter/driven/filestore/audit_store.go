package filestore

import (
	"fmt"
	"sync"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
)

// AuditStateStore keeps the last audit projection between invocations.
type AuditStateStore struct {
	path string
	mu   sync.Mutex
}

func NewAuditStateStore(path string) repository.AuditStateRepository {
	return &AuditStateStore{path: path}
}

func (s *AuditStateStore) Load() (*entity.AuditState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state entity.AuditState
	found, err := readJSON(s.path, &state)
	if err != nil {
		return nil, fmt.Errorf("load audit state: %w", err)
	}
	if !found {
		return nil, nil
	}
	if state.Status == "" {
		state.Status = entity.AuditIdle
	}
	return &state, nil
}

func (s *AuditStateStore) Save(state entity.AuditState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.path, state, 0o600); err != nil {
		return fmt.Errorf("save audit state: %w", err)
	}
	return nil
}

func (s *AuditStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := removeFile(s.path); err != nil {
		return fmt.Errorf("clear audit state: %w", err)
	}
	return nil
}
