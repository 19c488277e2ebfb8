package repository

import "github.com/opticini/opticini-cli/internal/domain/entity"

// TokenRepository persists the bearer tokens between invocations.
type TokenRepository interface {
	Load() (entity.Tokens, error)
	Save(tokens entity.Tokens) error
	Clear() error
}

// AuditStateRepository persists the last audit projection. Load returns nil
// when nothing was saved.
type AuditStateRepository interface {
	Load() (*entity.AuditState, error)
	Save(state entity.AuditState) error
	Clear() error
}
