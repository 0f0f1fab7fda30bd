package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON_Missing(t *testing.T) {
	var v map[string]any
	found, err := ReadJSON(filepath.Join(t.TempDir(), "nope.json"), &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReadJSON_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var v map[string]any
	found, err := ReadJSON(path, &v)
	assert.True(t, found)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestWriteJSON_RoundTripAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	in := map[string]string{"title": "Brüssel & <EU> ETS"}
	require.NoError(t, WriteJSON(path, in, "  "))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Brüssel & <EU> ETS")

	var out map[string]string
	found, err := ReadJSON(path, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.True(t, Exists(path))
	assert.False(t, Exists(filepath.Dir(path)))
}

func TestManifest_RoundTripAndEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.json")

	require.NoError(t, SaveManifest[map[string]string](path, nil))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"posts":[]}`, string(raw))

	posts := []map[string]string{{"slug": "a"}, {"slug": "b"}}
	require.NoError(t, SaveManifest(path, posts))

	got, err := LoadManifest[map[string]string](path, nil)
	require.NoError(t, err)
	assert.Equal(t, posts, got)
}

func TestLoadManifest_MalformedIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog_drafts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"posts": [`), 0o644))

	got, err := LoadManifest[map[string]string](path, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
