package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/klip/internal/store"
	"github.com/at-ishikawa/klip/internal/testutil"
)

func TestComputeOverview(t *testing.T) {
	state := testutil.PopulatedStore(t).Data()

	overview := ComputeOverview(state)

	assert.Equal(t, 4, overview.TotalHighlights)
	assert.Equal(t, 4, overview.BooksWithHighlights)
	assert.Equal(t, 4, overview.ActiveDays)

	require.Len(t, overview.TopBooks, 4)
	// All counts tie at one, so the ranking falls back to title order.
	assert.Equal(t, "Atomic Habits", overview.TopBooks[0].Title)
	assert.Equal(t, 1, overview.TopBooks[0].Count)

	require.Len(t, overview.TopAuthors, 4)
	for _, author := range overview.TopAuthors {
		assert.Equal(t, 1, author.Count)
	}
}

func TestComputeOverview_empty(t *testing.T) {
	overview := ComputeOverview(store.NewState())

	assert.Zero(t, overview.TotalHighlights)
	assert.Zero(t, overview.ActiveDays)
	assert.Empty(t, overview.TopBooks)
	assert.Empty(t, overview.TopAuthors)
}

func TestComputeRecent(t *testing.T) {
	state := testutil.PopulatedStore(t).Data()
	now := time.Date(2021, 3, 20, 12, 0, 0, 0, time.UTC)

	recent := ComputeRecent(state, now)

	// Only the Chinese highlight (2021-03-14) falls in the last 30 days.
	require.Len(t, recent.ByDay30, 1)
	assert.Equal(t, "2021-03-14", recent.ByDay30[0].Day)
	assert.Equal(t, 1, recent.ByDay30[0].Count)

	// The 12-month window starts 2020-04-01, so the March 2020 highlight is
	// outside it.
	require.Len(t, recent.ByMonth12, 2)
	assert.Equal(t, "2020-04", recent.ByMonth12[0].Month)
	assert.Equal(t, 2, recent.ByMonth12[0].Count)
	assert.Equal(t, "2021-03", recent.ByMonth12[1].Month)

	// Years cover everything.
	require.Len(t, recent.ByYear, 2)
	assert.Equal(t, YearCount{Year: 2020, Count: 3}, recent.ByYear[0])
	assert.Equal(t, YearCount{Year: 2021, Count: 1}, recent.ByYear[1])
}

func TestComputeTemporalBreakdown(t *testing.T) {
	state := testutil.PopulatedStore(t).Data()

	breakdown := ComputeTemporalBreakdown(state)

	assert.Equal(t, 4, breakdown.Total)
	require.Len(t, breakdown.ByHour, 24)
	require.Len(t, breakdown.ByWeekday, 7)
	require.Len(t, breakdown.ByMonth, 12)

	sum := func() (hours, weekdays, months int) {
		for _, b := range breakdown.ByHour {
			hours += b.Count
		}
		for _, b := range breakdown.ByWeekday {
			weekdays += b.Count
		}
		for _, b := range breakdown.ByMonth {
			months += b.Count
		}
		return hours, weekdays, months
	}
	hours, weekdays, months := sum()
	// Every dated highlight lands in exactly one bucket per histogram.
	assert.Equal(t, 4, hours)
	assert.Equal(t, 4, weekdays)
	assert.Equal(t, 4, months)

	// 2021-03-14 was a Sunday, weekday 0.
	assert.Equal(t, 1, breakdown.ByWeekday[0].Count)
	// 10:15, 08:30 and 14:30 land in their hours.
	assert.Equal(t, 1, breakdown.ByHour[10].Count)
	assert.Equal(t, 1, breakdown.ByHour[8].Count)
	assert.Equal(t, 1, breakdown.ByHour[14].Count)
	// March counts both 2020-03-02 and 2021-03-14.
	assert.Equal(t, 2, breakdown.ByMonth[2].Count)
}

func TestComputeMonthlyMatrix(t *testing.T) {
	state := testutil.PopulatedStore(t).Data()

	t.Run("all time", func(t *testing.T) {
		rows := ComputeMonthlyMatrix(state, 0)

		require.Len(t, rows, 2)
		assert.Equal(t, 2020, rows[0].Year)
		assert.Equal(t, 2021, rows[1].Year)
		require.Len(t, rows[0].Months, 12)

		assert.Equal(t, 1, rows[0].Months[2].Count) // March 2020
		assert.Equal(t, 2, rows[0].Months[3].Count) // April 2020
		assert.Equal(t, 1, rows[1].Months[2].Count) // March 2021
	})

	t.Run("window keeps only the latest years", func(t *testing.T) {
		rows := ComputeMonthlyMatrix(state, 1)

		require.Len(t, rows, 1)
		assert.Equal(t, 2021, rows[0].Year)
	})

	t.Run("window larger than the data adds no empty years", func(t *testing.T) {
		rows := ComputeMonthlyMatrix(state, 10)
		assert.Len(t, rows, 2)
	})

	t.Run("oversized window clamps to ten years", func(t *testing.T) {
		state := store.NewState()
		state.Highlights = append(state.Highlights,
			store.Highlight{ID: "old0", BookID: "b", DateAdded: "2005-06-01T10:00:00Z"},
			store.Highlight{ID: "new0", BookID: "b", DateAdded: "2021-06-01T10:00:00Z"},
		)

		rows := ComputeMonthlyMatrix(state, 50)
		require.Len(t, rows, 10)
		assert.Equal(t, 2012, rows[0].Year)
		assert.Equal(t, 2021, rows[9].Year)
	})

	t.Run("no dated highlights", func(t *testing.T) {
		assert.Empty(t, ComputeMonthlyMatrix(store.NewState(), 0))
	})
}

func TestComputeAuthorsWordcloud(t *testing.T) {
	state := testutil.PopulatedStore(t).Data()

	authors := ComputeAuthorsWordcloud(state)
	require.Len(t, authors, 4)
	for _, a := range authors {
		assert.Equal(t, 1, a.Count)
		assert.Equal(t, 1, a.Books)
	}
	// Ties rank alphabetically.
	assert.Equal(t, "Alan A. A. Donovan", authors[0].Author)
}

func TestComputeAuthorsByHighlights(t *testing.T) {
	state := store.NewState()
	state.Books["b1"] = store.Book{ID: "b1", Title: "One", Author: "Twice"}
	state.Books["b2"] = store.Book{ID: "b2", Title: "Two", Author: "Once"}
	state.Highlights = append(state.Highlights,
		store.Highlight{ID: "h1", BookID: "b1"},
		store.Highlight{ID: "h2", BookID: "b1"},
		store.Highlight{ID: "h3", BookID: "b2"},
	)

	authors := ComputeAuthorsByHighlights(state)
	require.Len(t, authors, 2)
	assert.Equal(t, AuthorCount{Author: "Twice", Count: 2}, authors[0])
	assert.Equal(t, AuthorCount{Author: "Once", Count: 1}, authors[1])
}

func TestComputeTitleWordcloud(t *testing.T) {
	state := testutil.PopulatedStore(t).Data()

	titles := ComputeTitleWordcloud(state)
	require.Len(t, titles, 4)
	assert.Equal(t, "Atomic Habits", titles[0].Title)
	assert.Equal(t, 1, titles[0].Count)
}

func TestComputeHeatmapYear(t *testing.T) {
	state := testutil.PopulatedStore(t).Data()

	now := time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)
	days := ComputeHeatmapYear(state, now)

	// 2020-03-02 is more than 365 days before now; the rest qualify.
	require.Len(t, days, 3)
	assert.Equal(t, "2020-04-07", days[0].Day)
	assert.Equal(t, "2021-03-14", days[2].Day)
}

func TestComputeActiveDays(t *testing.T) {
	state := testutil.PopulatedStore(t).Data()

	active := ComputeActiveDays(state)
	assert.Equal(t, 4, active.ActiveDays)
	require.Len(t, active.Days, 4)
	assert.Equal(t, "2020-03-02", active.Days[0].Day)
}

func TestComputeAuthorBooks(t *testing.T) {
	state := testutil.PopulatedStore(t).Data()

	t.Run("author match ignores case", func(t *testing.T) {
		books := ComputeAuthorBooks(state, "james clear")
		require.Len(t, books, 1)
		assert.Equal(t, "Atomic Habits", books[0].Title)
		assert.Equal(t, 1, books[0].Count)
	})

	t.Run("unknown author", func(t *testing.T) {
		assert.Empty(t, ComputeAuthorBooks(state, "nobody"))
	})

	t.Run("empty author", func(t *testing.T) {
		assert.Empty(t, ComputeAuthorBooks(state, ""))
	})
}
