package filestore

import (
	"fmt"
	"sync"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
)

// TokenStore keeps the access and refresh tokens in a 0600 JSON file.
type TokenStore struct {
	path string
	mu   sync.Mutex
}

// NewTokenStore creates a token store backed by path.
func NewTokenStore(path string) repository.TokenRepository {
	return &TokenStore{path: path}
}

// Load returns the stored tokens; a missing file yields empty tokens.
func (s *TokenStore) Load() (entity.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tokens entity.Tokens
	if _, err := readJSON(s.path, &tokens); err != nil {
		return entity.Tokens{}, fmt.Errorf("load tokens: %w", err)
	}
	return tokens, nil
}

func (s *TokenStore) Save(tokens entity.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.path, tokens, 0o600); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

// Clear removes both tokens.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := removeFile(s.path); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
