package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

func TestTokenStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := NewTokenStore(path)

	tokens, err := store.Load()
	require.NoError(t, err)
	assert.True(t, tokens.IsEmpty())

	require.NoError(t, store.Save(entity.Tokens{AccessToken: "a1", RefreshToken: "r1"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"access_token": "a1"`)
	assert.Contains(t, string(raw), `"refresh_token": "r1"`)

	tokens, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, entity.Tokens{AccessToken: "a1", RefreshToken: "r1"}, tokens)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is fine")
	tokens, err = store.Load()
	require.NoError(t, err)
	assert.True(t, tokens.IsEmpty())
}

func TestTokenStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	_, err := NewTokenStore(path).Load()
	assert.Error(t, err)
}

func TestAuditStateStore(t *testing.T) {
	store := NewAuditStateStore(filepath.Join(t.TempDir(), "audit.json"))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)

	saved := entity.AuditState{
		AuditID: "42",
		URL:     "https://example.com",
		Status:  entity.AuditRunning,
		Scans: map[string][]entity.Scan{
			"ssl": {{ID: "s1", Category: "ssl", Status: entity.ScanRunning}},
		},
		Counts: entity.SeverityCounts{High: 2},
	}
	require.NoError(t, store.Save(saved))

	state, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "42", state.AuditID)
	assert.Equal(t, entity.AuditRunning, state.Status)
	assert.Equal(t, 2, state.Counts.High)
	assert.Equal(t, entity.ScanRunning, state.Scans["ssl"][0].Status)

	require.NoError(t, store.Clear())
	state, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)
}
