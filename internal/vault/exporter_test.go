package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notebox-backend/internal/items"
	"notebox-backend/internal/lifecycle"
)

func TestExporter_Unconfigured(t *testing.T) {
	e := New("")
	assert.False(t, e.Configured())

	_, err := e.Export(items.Item{Title: "x"})
	assert.Error(t, err)
}

func TestExporter_WritesFrontmatterAndContent(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	require.True(t, e.Configured())

	path, err := e.Export(items.Item{
		ID:        "abc-123",
		Type:      lifecycle.TypeNote,
		Status:    lifecycle.StatusPermanent,
		Title:     "Zettelkasten",
		Content:   "body text",
		Tags:      []string{"pkm", "notes"},
		Source:    "https://example.com",
		CreatedAt: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Zettelkasten.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "---\n")
	assert.Contains(t, text, "id: abc-123")
	assert.Contains(t, text, "- pkm")
	assert.Contains(t, text, "source: https://example.com")
	assert.Contains(t, text, "2026-02-14")
	assert.Contains(t, text, "# Zettelkasten")
	assert.Contains(t, text, "body text")

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExporter_SanitizesFilename(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	path, err := e.Export(items.Item{ID: "x", Title: "a/b:c?d"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a-b-c-d.md"), path)
}

func TestExporter_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	_, err := e.Export(items.Item{ID: "x", Title: "note", Content: "v1"})
	require.NoError(t, err)
	path, err := e.Export(items.Item{ID: "x", Title: "note", Content: "v2"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "v2")
	assert.NotContains(t, string(data), "v1")
}
