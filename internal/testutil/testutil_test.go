package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestConfig(t *testing.T) {
	tmpDir := t.TempDir()
	got := SetupTestConfig(t, tmpDir)

	want := filepath.Join(tmpDir, "config.yml")
	assert.Equal(t, want, got)

	// Verify config file exists and is readable.
	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Contains(t, string(content), "driver: file")
	assert.Contains(t, string(content), "output_directory")

	// Verify all required directories were created.
	for _, d := range []string{"data", "exports", "covers"} {
		info, err := os.Stat(filepath.Join(tmpDir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestMemoryMedium(t *testing.T) {
	medium := NewMemoryMedium()

	_, ok, err := medium.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	st := PopulatedStore(t)
	assert.Len(t, st.Data().Highlights, 5)
	assert.Len(t, st.Data().Books, 4)
	assert.Len(t, st.Data().Active(), 4)
}
