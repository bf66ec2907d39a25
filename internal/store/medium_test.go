package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileMedium(t *testing.T) {
	state := State{
		Books: map[string]Book{
			"29452c48": {
				ID:            "29452c48",
				Title:         "The Go Programming Language",
				OriginalTitle: "The Go Programming Language",
				Author:        "Alan A. A. Donovan",
			},
		},
		Highlights: []Highlight{
			{
				ID:        "8849d4000",
				BookID:    "29452c48",
				Content:   "Concurrency is not parallelism.",
				ClipIndex: 0,
			},
		},
	}

	t.Run("missing file reports no state", func(t *testing.T) {
		medium := NewFileMedium(filepath.Join(t.TempDir(), "missing.json"))
		_, ok, err := medium.Load()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("json round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "highlights.json")
		medium := NewFileMedium(path)
		require.NoError(t, medium.Save(state))

		contents, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(contents), `"book_title": "The Go Programming Language"`)

		got, ok, err := medium.Load()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, state, got)
	})

	t.Run("yaml by extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "highlights.yml")
		medium := NewFileMedium(path)
		require.NoError(t, medium.Save(state))

		contents, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(contents), "book_title: The Go Programming Language")

		got, ok, err := medium.Load()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, state, got)
	})

	t.Run("save leaves no temporary files behind", func(t *testing.T) {
		dir := t.TempDir()
		medium := NewFileMedium(filepath.Join(dir, "highlights.json"))
		require.NoError(t, medium.Save(state))
		require.NoError(t, medium.Save(state))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.False(t, strings.Contains(entries[0].Name(), ".tmp-"))
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "highlights.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

		_, _, err := NewFileMedium(path).Load()
		assert.Error(t, err)
	})
}
