package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/shared/types"
	"github.com/opticini/opticini-cli/pkg/console"
)

func TestNewWire(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{
		APIBaseURL:     "http://localhost:8000",
		TokenFile:      filepath.Join(dir, "tokens.json"),
		StateFile:      filepath.Join(dir, "audit.json"),
		RequestTimeout: 5,
		PageSpeedURL:   types.DefaultPageSpeedURL,
	}

	w := NewWire(cfg, nil, console.NewConsole())
	require.NotNil(t, w)
	assert.NotNil(t, w.Logger)
	assert.NotNil(t, w.API)
	assert.NotNil(t, w.Deals)
	assert.NotNil(t, w.Monitor)
	assert.NotNil(t, w.Audit)
	assert.NotNil(t, w.Workspace)
	assert.NotNil(t, w.Discovery)

	// tokens written through the wire land in the configured file
	require.NoError(t, w.Tokens.Save(entity.Tokens{AccessToken: "a", RefreshToken: "r"}))
	assert.FileExists(t, cfg.TokenFile)
	assert.Equal(t, entity.AuditIdle, w.Orchestrator.Snapshot().Status)
}
