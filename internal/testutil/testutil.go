// Package testutil provides shared test helpers for creating config files
// and clippings fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/klip/internal/store"
)

// SetupTestConfig creates a minimal config file and the data directory for
// testing. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	for _, d := range []string{"data", "exports", "covers"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`data:
  driver: file
  path: %s
export:
  language: en
  output_directory: %s
covers:
  directory: %s
`,
		filepath.Join(tmpDir, "data", "highlights.json"),
		filepath.Join(tmpDir, "exports"),
		filepath.Join(tmpDir, "covers"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SampleClippingsText is a small bilingual "My Clippings" export used across
// parser and command tests. It contains two English highlights with a note
// on the first, plus one Chinese highlight.
const SampleClippingsText = `The Go Programming Language (Alan A. A. Donovan)
- Your Highlight on Location 120-121 | Added on Monday, March 2, 2020 10:15:30 AM

Concurrency is not parallelism.
==========
The Go Programming Language (Alan A. A. Donovan)
- Your Note on Location 120-121 | Added on Monday, March 2, 2020 10:16:05 AM

Keep this in mind.
==========
Atomic Habits (James Clear)
- Your Highlight on page 27 | Location 409-411 | Added on Tuesday, April 7, 2020 9:05:12 PM

You do not rise to the level of your goals. You fall to the level of your systems.
==========
小王子 (安托万·德·圣埃克苏佩里)
- 您在位置 #210-212的标注 | 添加于 2021年3月14日星期日 下午2:30:45

真正重要的东西，用眼睛是看不见的。
==========
`

// WriteSampleClippings writes SampleClippingsText to a file under tmpDir and
// returns its path.
func WriteSampleClippings(t *testing.T, tmpDir string) string {
	t.Helper()

	path := filepath.Join(tmpDir, "My Clippings.txt")
	require.NoError(t, os.WriteFile(path, []byte(SampleClippingsText), 0644))
	return path
}

// NewMemoryMedium returns a persistence medium backed by process memory,
// for store tests that do not care about files.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{}
}

// MemoryMedium keeps the last saved state in memory.
type MemoryMedium struct {
	state store.State
	saved bool
	Saves int
}

func (m *MemoryMedium) Load() (store.State, bool, error) {
	if !m.saved {
		return store.NewState(), false, nil
	}
	return m.state.Clone(), true, nil
}

func (m *MemoryMedium) Save(state store.State) error {
	m.state = state.Clone()
	m.saved = true
	m.Saves++
	return nil
}

// PopulatedStore returns an open store seeded with highlights across three
// books plus one deleted and one undated record.
func PopulatedStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(NewMemoryMedium())
	require.NoError(t, err)

	highlights := []store.Highlight{
		{
			ID:           "8849d4000",
			BookID:       "29452c48",
			BookTitle:    "The Go Programming Language",
			Author:       "Alan A. A. Donovan",
			Content:      "Concurrency is not parallelism.",
			NoteContent:  "Keep this in mind.",
			Location:     "120-121",
			DateAdded:    "2020-03-02T10:15:30Z",
			DateAddedRaw: "Monday, March 2, 2020 10:15:30 AM",
			ClipIndex:    0,
		},
		{
			ID:           "fb04ec021",
			BookID:       "b7818514",
			BookTitle:    "Atomic Habits",
			Author:       "James Clear",
			Content:      "You do not rise to the level of your goals. You fall to the level of your systems.",
			Location:     "409-411",
			DateAdded:    "2020-04-07T21:05:12Z",
			DateAddedRaw: "Tuesday, April 7, 2020 9:05:12 PM",
			ClipIndex:    1,
		},
		{
			ID:           "a53ff18d2",
			BookID:       "fde481c5",
			BookTitle:    "Deep Work",
			Author:       "Cal Newport",
			Content:      "Clarity about what matters provides clarity about what does not.",
			Location:     "88-90",
			DateAdded:    "2020-04-08T08:30:00Z",
			DateAddedRaw: "Wednesday, April 8, 2020 8:30:00 AM",
			ClipIndex:    2,
		},
		{
			ID:           "7851c3c43",
			BookID:       "0167ed74",
			BookTitle:    "小王子",
			Author:       "安托万·德·圣埃克苏佩里",
			Content:      "真正重要的东西，用眼睛是看不见的。",
			Location:     "210-212",
			DateAdded:    "2021-03-14T14:30:45",
			DateAddedRaw: "2021年3月14日星期日 下午2:30:45",
			ClipIndex:    3,
		},
		{
			ID:           "fb04ec024",
			BookID:       "b7818514",
			BookTitle:    "Atomic Habits",
			Author:       "James Clear",
			Content:      "You do not rise to the level of your goals. You fall to the level of your systems.",
			Location:     "samepage",
			DateAddedRaw: "sometime",
			ClipIndex:    4,
		},
	}
	_, err = st.Ingest(highlights)
	require.NoError(t, err)

	require.NoError(t, st.DeleteHighlight("fb04ec024"))
	return st
}
