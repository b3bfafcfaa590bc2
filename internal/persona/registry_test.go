package persona

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "agent-orchestrator/internal/common/errors"
	"agent-orchestrator/internal/common/logger"
)

func writePersonaFile(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
	require.NoError(t, err)
}

func newTestRegistry(t *testing.T, dir string) *Registry {
	t.Helper()
	r, err := NewRegistry(dir, logger.NewTestLogger(t))
	require.NoError(t, err)
	return r
}

func TestLoadExactMatch(t *testing.T) {
	dir := t.TempDir()
	writePersonaFile(t, dir, "teller-v1.json", `{
		"id": "teller-v1",
		"displayName": "Terry the Teller",
		"tools": ["rag.search", "crm.lookup"],
		"ragNamespaces": ["bank-policies"],
		"voice": {"tone": "friendly"}
	}`)

	r := newTestRegistry(t, dir)
	p, err := r.Load("teller-v1")
	require.NoError(t, err)

	assert.Equal(t, "teller-v1", p.ID)
	assert.Equal(t, "Terry the Teller", p.DisplayName)
	assert.True(t, p.Allows("rag.search"))
	assert.True(t, p.Allows("crm.lookup"))
	assert.False(t, p.Allows("kyc.verify"))
	assert.Equal(t, "friendly", p.Voice.Tone)
}

func TestLoadPrefixFallback(t *testing.T) {
	dir := t.TempDir()
	writePersonaFile(t, dir, "teller-v1-draft.json", `{"displayName": "Draft Teller"}`)

	r := newTestRegistry(t, dir)
	p, err := r.Load("teller")
	require.NoError(t, err)
	assert.Equal(t, "Draft Teller", p.DisplayName)
}

func TestLoadPrefixFallbackIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writePersonaFile(t, dir, "exec-v2.json", `{"displayName": "Exec Two"}`)
	writePersonaFile(t, dir, "exec-v1.json", `{"displayName": "Exec One"}`)

	r := newTestRegistry(t, dir)
	for i := 0; i < 5; i++ {
		p, err := r.Load("exec")
		require.NoError(t, err)
		assert.Equal(t, "Exec One", p.DisplayName, "lexically first file wins")
	}
}

func TestLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	writePersonaFile(t, dir, "teller-v1.json", `{"displayName": "Terry"}`)

	r := newTestRegistry(t, dir)
	_, err := r.Load("nonexistent-v9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPersonaNotFound))
	assert.True(t, apperrors.IsClientError(err))
}

func TestLoadEmptyID(t *testing.T) {
	r := newTestRegistry(t, t.TempDir())
	_, err := r.Load("")
	assert.True(t, errors.Is(err, apperrors.ErrPersonaNotFound))
}

func TestLoadRejectsMissingDisplayName(t *testing.T) {
	dir := t.TempDir()
	writePersonaFile(t, dir, "broken-v1.json", `{"id": "broken-v1", "tools": ["rag.search"]}`)

	r := newTestRegistry(t, dir)
	_, err := r.Load("broken-v1")
	require.Error(t, err)

	var se *apperrors.StandardError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, apperrors.ErrCodePersonaInvalid, se.Code)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writePersonaFile(t, dir, "minimal-v1.json", `{"displayName": "Minimal"}`)

	r := newTestRegistry(t, dir)
	p, err := r.Load("minimal-v1")
	require.NoError(t, err)

	assert.Equal(t, "minimal-v1", p.ID)
	assert.Empty(t, p.Tools)
	assert.NotNil(t, p.Tools)
	assert.Empty(t, p.RagNamespaces)
	assert.Equal(t, "neutral", p.Voice.Tone)
}

func TestLoadRereadsEachCall(t *testing.T) {
	dir := t.TempDir()
	writePersonaFile(t, dir, "live-v1.json", `{"displayName": "Before"}`)

	r := newTestRegistry(t, dir)
	p1, err := r.Load("live-v1")
	require.NoError(t, err)
	assert.Equal(t, "Before", p1.DisplayName)

	writePersonaFile(t, dir, "live-v1.json", `{"displayName": "After"}`)
	p2, err := r.Load("live-v1")
	require.NoError(t, err)
	assert.Equal(t, "After", p2.DisplayName)
}
