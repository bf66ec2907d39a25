// Package statistics derives calendar and rollup aggregates from the active
// highlight set. Everything is recomputed per call over the in-memory
// collection; highlights without a parsable date are excluded from every
// date-bucketed figure but still count toward totals.
package statistics

import (
	"sort"
	"strings"
	"time"

	"github.com/at-ishikawa/klip/internal/store"
)

// DayCount is a per-day bucket, keyed YYYY-MM-DD.
type DayCount struct {
	Day   string `json:"d"`
	Count int    `json:"cnt"`
}

// MonthCount is a per-month bucket, keyed YYYY-MM.
type MonthCount struct {
	Month string `json:"ym"`
	Count int    `json:"cnt"`
}

// YearCount is a per-year bucket.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"cnt"`
}

// BookCount ranks one book by its active-highlight count.
type BookCount struct {
	BookID string `json:"book_id"`
	Title  string `json:"book_title"`
	Author string `json:"author,omitempty"`
	Count  int    `json:"highlight_count"`
}

// AuthorCount ranks one author by highlight count.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// AuthorAggregate adds the author's distinct-book count.
type AuthorAggregate struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
	Books  int    `json:"books"`
}

// Overview is the dashboard headline figures.
type Overview struct {
	TotalHighlights     int           `json:"total_highlights"`
	BooksWithHighlights int           `json:"books_with_highlights"`
	ActiveDays          int           `json:"active_days"`
	TopBooks            []BookCount   `json:"top_books"`
	TopAuthors          []AuthorCount `json:"top_authors"`
}

// Recent is the recent-activity trend: last 30 days daily, last 12 months
// monthly, and all-time yearly counts.
type Recent struct {
	ByDay30   []DayCount   `json:"by_day_30"`
	ByMonth12 []MonthCount `json:"by_month_12"`
	ByYear    []YearCount  `json:"by_year"`
}

// HourBucket, WeekdayBucket, and MonthBucket form the temporal breakdown
// histograms. Weekdays are numeric with 0 = Sunday.
type HourBucket struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type WeekdayBucket struct {
	Weekday int `json:"weekday"`
	Count   int `json:"count"`
}

type MonthBucket struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

// TemporalBreakdown is the hour-of-day, day-of-week, and month-of-year view
// over all active highlights with a parsed date.
type TemporalBreakdown struct {
	Total     int             `json:"total"`
	ByHour    []HourBucket    `json:"by_hour"`
	ByWeekday []WeekdayBucket `json:"by_weekday"`
	ByMonth   []MonthBucket   `json:"by_month"`
}

// YearRow is one heatmap row: a year with its twelve month counts.
type YearRow struct {
	Year   int           `json:"year"`
	Months []MonthBucket `json:"months"`
}

// ActiveDays lists every distinct day with at least one highlight.
type ActiveDays struct {
	ActiveDays int        `json:"active_days"`
	Days       []DayCount `json:"days"`
}

// TitleCount ranks one book title for the word-cloud view.
type TitleCount struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Count  int    `json:"count"`
}

// AuthorBookCount is one book in a per-author breakdown.
type AuthorBookCount struct {
	BookID string `json:"book_id"`
	Title  string `json:"book_title"`
	Count  int    `json:"count"`
}

func authorOf(state store.State, h store.Highlight) string {
	if book, ok := state.Books[h.BookID]; ok && book.Author != "" {
		return book.Author
	}
	return h.Author
}

func titleOf(state store.State, h store.Highlight) string {
	if book, ok := state.Books[h.BookID]; ok && book.Title != "" {
		return book.Title
	}
	if h.BookTitle != "" {
		return h.BookTitle
	}
	return "Unknown"
}

// ComputeOverview returns the headline figures: totals, distinct active
// days, and the top five books and authors by highlight count.
func ComputeOverview(state store.State) Overview {
	active := state.Active()

	countByBook := map[string]int{}
	countByAuthor := map[string]int{}
	days := map[string]struct{}{}
	for _, h := range active {
		countByBook[h.BookID]++
		if author := authorOf(state, h); author != "" {
			countByAuthor[author]++
		}
		if t, ok := h.AddedAt(); ok {
			days[t.Format("2006-01-02")] = struct{}{}
		}
	}

	books := make([]BookCount, 0, len(state.Books))
	for _, book := range state.Books {
		books = append(books, BookCount{
			BookID: book.ID,
			Title:  book.Title,
			Author: book.Author,
			Count:  countByBook[book.ID],
		})
	}
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].Count != books[j].Count {
			return books[i].Count > books[j].Count
		}
		return books[i].Title < books[j].Title
	})
	if len(books) > 5 {
		books = books[:5]
	}

	authors := rankAuthors(countByAuthor)
	if len(authors) > 5 {
		authors = authors[:5]
	}

	return Overview{
		TotalHighlights:     len(active),
		BooksWithHighlights: len(countByBook),
		ActiveDays:          len(days),
		TopBooks:            books,
		TopAuthors:          authors,
	}
}

func rankAuthors(counts map[string]int) []AuthorCount {
	authors := make([]AuthorCount, 0, len(counts))
	for author, count := range counts {
		authors = append(authors, AuthorCount{Author: author, Count: count})
	}
	sort.SliceStable(authors, func(i, j int) bool {
		if authors[i].Count != authors[j].Count {
			return authors[i].Count > authors[j].Count
		}
		return authors[i].Author < authors[j].Author
	})
	return authors
}

// ComputeRecent aggregates the last 30 days, last 12 calendar months, and
// all years. The caller supplies the reference time.
func ComputeRecent(state store.State, now time.Time) Recent {
	now = now.UTC()
	cutoff30 := now.AddDate(0, 0, -29)
	cutoff12m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)

	byDay := map[string]int{}
	byMonth := map[string]int{}
	byYear := map[int]int{}
	for _, h := range state.Active() {
		t, ok := h.AddedAt()
		if !ok {
			continue
		}
		if !t.Before(cutoff30) {
			byDay[t.Format("2006-01-02")]++
		}
		if !t.Before(cutoff12m) {
			byMonth[t.Format("2006-01")]++
		}
		byYear[t.Year()]++
	}

	return Recent{
		ByDay30:   sortedDayCounts(byDay),
		ByMonth12: sortedMonthCounts(byMonth),
		ByYear:    sortedYearCounts(byYear),
	}
}

func sortedDayCounts(byDay map[string]int) []DayCount {
	days := make([]DayCount, 0, len(byDay))
	for day, count := range byDay {
		days = append(days, DayCount{Day: day, Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days
}

func sortedMonthCounts(byMonth map[string]int) []MonthCount {
	months := make([]MonthCount, 0, len(byMonth))
	for month, count := range byMonth {
		months = append(months, MonthCount{Month: month, Count: count})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months
}

func sortedYearCounts(byYear map[int]int) []YearCount {
	years := make([]YearCount, 0, len(byYear))
	for year, count := range byYear {
		years = append(years, YearCount{Year: year, Count: count})
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })
	return years
}

// ComputeTemporalBreakdown fills the 24/7/12 histograms in one pass.
func ComputeTemporalBreakdown(state store.State) TemporalBreakdown {
	active := state.Active()
	var hours [24]int
	var weekdays [7]int
	var months [12]int
	for _, h := range active {
		t, ok := h.AddedAt()
		if !ok {
			continue
		}
		hours[t.Hour()]++
		weekdays[int(t.Weekday())]++
		months[int(t.Month())-1]++
	}

	breakdown := TemporalBreakdown{Total: len(active)}
	for hour, count := range hours {
		breakdown.ByHour = append(breakdown.ByHour, HourBucket{Hour: hour, Count: count})
	}
	for weekday, count := range weekdays {
		breakdown.ByWeekday = append(breakdown.ByWeekday, WeekdayBucket{Weekday: weekday, Count: count})
	}
	for month, count := range months {
		breakdown.ByMonth = append(breakdown.ByMonth, MonthBucket{Month: month + 1, Count: count})
	}
	return breakdown
}

// ComputeMonthlyMatrix returns one row per year in the requested window with
// its twelve month counts. years <= 0 means all-time; otherwise the window
// is clamped to [1, 10] and anchored at the latest year in the data. Years
// outside the data range are never fabricated.
func ComputeMonthlyMatrix(state store.State, years int) []YearRow {
	type yearMonth struct {
		year  int
		month int
	}
	var dated []yearMonth
	for _, h := range state.Active() {
		if t, ok := h.AddedAt(); ok {
			dated = append(dated, yearMonth{year: t.Year(), month: int(t.Month())})
		}
	}
	if len(dated) == 0 {
		return []YearRow{}
	}

	minYear, maxYear := dated[0].year, dated[0].year
	for _, ym := range dated {
		if ym.year < minYear {
			minYear = ym.year
		}
		if ym.year > maxYear {
			maxYear = ym.year
		}
	}

	earliest := minYear
	if years > 0 {
		window := years
		if window > 10 {
			window = 10
		}
		if maxYear-minYear+1 > window {
			earliest = maxYear - (window - 1)
		}
	}

	counts := map[int]*[12]int{}
	for year := earliest; year <= maxYear; year++ {
		counts[year] = &[12]int{}
	}
	for _, ym := range dated {
		if row, ok := counts[ym.year]; ok {
			row[ym.month-1]++
		}
	}

	rows := make([]YearRow, 0, maxYear-earliest+1)
	for year := earliest; year <= maxYear; year++ {
		row := YearRow{Year: year}
		for month, count := range counts[year] {
			row.Months = append(row.Months, MonthBucket{Month: month + 1, Count: count})
		}
		rows = append(rows, row)
	}
	return rows
}

// ComputeAuthorsWordcloud returns per-author highlight and distinct-book
// counts, ranked by highlight count.
func ComputeAuthorsWordcloud(state store.State) []AuthorAggregate {
	counts := map[string]int{}
	bookSets := map[string]map[string]struct{}{}
	for _, h := range state.Active() {
		author := authorOf(state, h)
		if author == "" {
			continue
		}
		counts[author]++
		if bookSets[author] == nil {
			bookSets[author] = map[string]struct{}{}
		}
		bookSets[author][h.BookID] = struct{}{}
	}

	aggregates := make([]AuthorAggregate, 0, len(counts))
	for author, count := range counts {
		aggregates = append(aggregates, AuthorAggregate{
			Author: author,
			Count:  count,
			Books:  len(bookSets[author]),
		})
	}
	sort.SliceStable(aggregates, func(i, j int) bool {
		if aggregates[i].Count != aggregates[j].Count {
			return aggregates[i].Count > aggregates[j].Count
		}
		return aggregates[i].Author < aggregates[j].Author
	})
	return aggregates
}

// ComputeAuthorsByHighlights ranks authors by highlight count alone.
func ComputeAuthorsByHighlights(state store.State) []AuthorCount {
	counts := map[string]int{}
	for _, h := range state.Active() {
		if author := authorOf(state, h); author != "" {
			counts[author]++
		}
	}
	return rankAuthors(counts)
}

// ComputeTitleWordcloud ranks books by active-highlight count.
func ComputeTitleWordcloud(state store.State) []TitleCount {
	counts := map[string]int{}
	titles := map[string]string{}
	for _, h := range state.Active() {
		counts[h.BookID]++
		titles[h.BookID] = titleOf(state, h)
	}

	result := make([]TitleCount, 0, len(counts))
	for bookID, count := range counts {
		result = append(result, TitleCount{BookID: bookID, Title: titles[bookID], Count: count})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Title < result[j].Title
	})
	return result
}

// ComputeHeatmapYear returns daily counts for the 365 days before now.
func ComputeHeatmapYear(state store.State, now time.Time) []DayCount {
	cutoff := now.UTC().AddDate(0, 0, -365)
	byDay := map[string]int{}
	for _, h := range state.Active() {
		if t, ok := h.AddedAt(); ok && !t.Before(cutoff) {
			byDay[t.Format("2006-01-02")]++
		}
	}
	return sortedDayCounts(byDay)
}

// ComputeActiveDays returns every distinct day with highlight activity.
func ComputeActiveDays(state store.State) ActiveDays {
	byDay := map[string]int{}
	for _, h := range state.Active() {
		if t, ok := h.AddedAt(); ok {
			byDay[t.Format("2006-01-02")]++
		}
	}
	days := sortedDayCounts(byDay)
	return ActiveDays{ActiveDays: len(days), Days: days}
}

// ComputeAuthorBooks returns each of the author's books with its highlight
// count, ranked by count, ties broken by title.
func ComputeAuthorBooks(state store.State, author string) []AuthorBookCount {
	if author == "" {
		return []AuthorBookCount{}
	}
	target := strings.ToLower(author)

	counts := map[string]int{}
	titles := map[string]string{}
	for _, h := range state.Active() {
		name := authorOf(state, h)
		if name == "" || strings.ToLower(name) != target {
			continue
		}
		counts[h.BookID]++
		titles[h.BookID] = titleOf(state, h)
	}

	result := make([]AuthorBookCount, 0, len(counts))
	for bookID, count := range counts {
		result = append(result, AuthorBookCount{BookID: bookID, Title: titles[bookID], Count: count})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Title < result[j].Title
	})
	return result
}
