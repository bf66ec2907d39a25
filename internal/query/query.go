// Package query filters, sorts, and paginates the active records of a store
// state. All functions are pure reads; pagination totals always reflect the
// full filtered count so callers can compute exact page counts.
package query

import (
	"sort"
	"strings"

	"github.com/at-ishikawa/klip/internal/clippings"
	"github.com/at-ishikawa/klip/internal/store"
)

// DefaultLimit is applied when a filter does not set one.
const DefaultLimit = 50

// BookSummary decorates a book with its active-highlight count and the
// timestamp of its most recent highlight.
type BookSummary struct {
	store.Book
	HighlightCount  int    `json:"highlight_count"`
	LastHighlightAt string `json:"last_highlight_at,omitempty"`
}

// BookSort names a book listing order.
type BookSort string

const (
	BookSortLatestDesc BookSort = "latest_desc"
	BookSortLatestAsc  BookSort = "latest_asc"
	BookSortTitleAsc   BookSort = "title_asc"
	BookSortTitleDesc  BookSort = "title_desc"
	BookSortAuthorAsc  BookSort = "author_asc"
	BookSortAuthorDesc BookSort = "author_desc"
	BookSortCountDesc  BookSort = "count_desc"
)

// BookFilter selects and orders books.
type BookFilter struct {
	Query  string
	Author string
	Skip   int
	Limit  int
	Sort   BookSort
}

// BookPage is one page of decorated books plus the full filtered count.
type BookPage struct {
	Items []BookSummary `json:"items"`
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
}

// HighlightSort names a highlight listing order.
type HighlightSort string

const (
	HighlightSortDateDesc   HighlightSort = "date_desc"
	HighlightSortDateAsc    HighlightSort = "date_asc"
	HighlightSortAuthorAsc  HighlightSort = "author_asc"
	HighlightSortAuthorDesc HighlightSort = "author_desc"
	HighlightSortBookAsc    HighlightSort = "book_asc"
	HighlightSortBookDesc   HighlightSort = "book_desc"
)

// HighlightFilter selects and orders highlights. All present filters are
// ANDed; highlights without a parsable date never match a calendar filter.
type HighlightFilter struct {
	BookID    string
	Keyword   string // matched against highlight content only
	Author    string // substring match
	AuthorKey string // exact normalized-key match, takes precedence over Author
	Day       string // YYYY-MM-DD
	Month     string // YYYY-MM
	Year      string // YYYY
	Weekday   *int   // 0-6, 0 = Sunday
	Hour      *int   // 0-23
	MonthNum  *int   // month of year, 1-12
	Skip      int
	Limit     int
	Sort      HighlightSort
}

// HighlightPage is one page of highlights plus the full filtered count.
type HighlightPage struct {
	Items []store.Highlight `json:"items"`
	Total int               `json:"total"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
}

// BookDetail is a single book with a page of its highlights.
type BookDetail struct {
	Book       store.Book        `json:"book"`
	Highlights []store.Highlight `json:"highlights"`
	Total      int               `json:"total"`
	Skip       int               `json:"skip"`
	Limit      int               `json:"limit"`
}

type bookActivity struct {
	count int
	last  string // RFC3339 of the most recent highlight, lexically comparable
}

func activityByBook(state store.State) map[string]bookActivity {
	activity := map[string]bookActivity{}
	for _, h := range state.Active() {
		entry := activity[h.BookID]
		entry.count++
		if t, ok := h.AddedAt(); ok {
			iso := t.Format("2006-01-02T15:04:05Z")
			if entry.last == "" || iso > entry.last {
				entry.last = iso
			}
		}
		activity[h.BookID] = entry
	}
	return activity
}

// withBookFields returns the active highlights with book title and author
// resolved from the book map, falling back to the highlight's own copies.
func withBookFields(state store.State) []store.Highlight {
	active := state.Active()
	for i := range active {
		if book, ok := state.Books[active[i].BookID]; ok {
			if book.Title != "" {
				active[i].BookTitle = book.Title
			}
			if book.Author != "" {
				active[i].Author = book.Author
			}
		}
		if active[i].BookTitle == "" {
			active[i].BookTitle = "Unknown"
		}
		if active[i].Author == "" {
			active[i].Author = "Unknown"
		}
	}
	return active
}

// compareTimestamps orders two record timestamps; records with a parsable
// date always sort before records without one, in either direction.
func compareTimestamps(a, b store.Highlight, ascending bool) int {
	ta, oka := a.AddedAt()
	tb, okb := b.AddedAt()
	switch {
	case oka && okb:
		if ta.Equal(tb) {
			return 0
		}
		if ta.Before(tb) == ascending {
			return -1
		}
		return 1
	case oka:
		return -1
	case okb:
		return 1
	default:
		return 0
	}
}

func compareFold(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return skip, limit
}

// ListBooks returns a page of decorated books matching the filter.
func ListBooks(state store.State, filter BookFilter) BookPage {
	activity := activityByBook(state)

	books := make([]BookSummary, 0, len(state.Books))
	for _, book := range state.Books {
		entry := activity[book.ID]
		books = append(books, BookSummary{
			Book:            book,
			HighlightCount:  entry.count,
			LastHighlightAt: entry.last,
		})
	}

	keyword := strings.ToLower(filter.Query)
	authorKeyword := strings.ToLower(filter.Author)
	if keyword != "" || authorKeyword != "" {
		filtered := books[:0]
		for _, b := range books {
			matchTitle := keyword != "" && strings.Contains(strings.ToLower(b.Title), keyword)
			matchAuthor := authorKeyword != "" && strings.Contains(strings.ToLower(b.Author), authorKeyword)
			if matchTitle || matchAuthor {
				filtered = append(filtered, b)
			}
		}
		books = filtered
	}

	sortBooks(books, filter.Sort)

	skip, limit := normalizePage(filter.Skip, filter.Limit)
	items, total := paginateBooks(books, skip, limit)
	return BookPage{Items: items, Total: total, Skip: skip, Limit: limit}
}

func sortBooks(books []BookSummary, order BookSort) {
	less := func(a, b BookSummary) bool {
		// latest_desc is the default
		return compareLast(a, b, false) < 0
	}
	switch order {
	case BookSortLatestAsc:
		less = func(a, b BookSummary) bool { return compareLast(a, b, true) < 0 }
	case BookSortTitleAsc:
		less = func(a, b BookSummary) bool { return compareFold(a.Title, b.Title) < 0 }
	case BookSortTitleDesc:
		less = func(a, b BookSummary) bool { return compareFold(a.Title, b.Title) > 0 }
	case BookSortAuthorAsc:
		less = func(a, b BookSummary) bool { return compareFold(a.Author, b.Author) < 0 }
	case BookSortAuthorDesc:
		less = func(a, b BookSummary) bool { return compareFold(a.Author, b.Author) > 0 }
	case BookSortCountDesc:
		less = func(a, b BookSummary) bool {
			if a.HighlightCount != b.HighlightCount {
				return a.HighlightCount > b.HighlightCount
			}
			return compareLast(a, b, false) < 0
		}
	}
	sort.SliceStable(books, func(i, j int) bool { return less(books[i], books[j]) })
}

// compareLast orders by most-recent-highlight timestamp; books with activity
// always sort before books without, in either direction.
func compareLast(a, b BookSummary, ascending bool) int {
	switch {
	case a.LastHighlightAt != "" && b.LastHighlightAt != "":
		c := strings.Compare(a.LastHighlightAt, b.LastHighlightAt)
		if !ascending {
			c = -c
		}
		return c
	case a.LastHighlightAt != "":
		return -1
	case b.LastHighlightAt != "":
		return 1
	default:
		return 0
	}
}

func paginateBooks(books []BookSummary, skip, limit int) ([]BookSummary, int) {
	total := len(books)
	if skip >= total {
		return []BookSummary{}, total
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return books[skip:end], total
}

func paginateHighlights(items []store.Highlight, skip, limit int) ([]store.Highlight, int) {
	total := len(items)
	if skip >= total {
		return []store.Highlight{}, total
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return items[skip:end], total
}

// ListHighlights returns a page of active highlights matching the filter.
func ListHighlights(state store.State, filter HighlightFilter) HighlightPage {
	items := withBookFields(state)

	if filter.BookID != "" {
		items = filterHighlights(items, func(h store.Highlight) bool {
			return h.BookID == filter.BookID
		})
	}

	keyword := strings.ToLower(filter.Keyword)
	authorKeyword := strings.ToLower(filter.Author)
	authorKey := clippings.NormalizeAuthorKey(filter.AuthorKey)
	if keyword != "" || authorKeyword != "" || authorKey != "" {
		items = filterHighlights(items, func(h store.Highlight) bool {
			if keyword != "" && strings.Contains(strings.ToLower(h.Content), keyword) {
				return true
			}
			if authorKey != "" {
				key := clippings.NormalizeAuthorKey(h.Author)
				return key != "" && key == authorKey
			}
			if authorKeyword != "" {
				return strings.Contains(strings.ToLower(h.Author), authorKeyword)
			}
			return false
		})
	}

	if filter.Day != "" || filter.Month != "" || filter.Year != "" ||
		filter.Weekday != nil || filter.Hour != nil || filter.MonthNum != nil {
		items = filterHighlights(items, func(h store.Highlight) bool {
			return matchCalendar(h, filter)
		})
	}

	sortHighlights(items, filter.Sort)

	skip, limit := normalizePage(filter.Skip, filter.Limit)
	paged, total := paginateHighlights(items, skip, limit)
	return HighlightPage{Items: paged, Total: total, Skip: skip, Limit: limit}
}

func filterHighlights(items []store.Highlight, keep func(store.Highlight) bool) []store.Highlight {
	filtered := items[:0]
	for _, h := range items {
		if keep(h) {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

func matchCalendar(h store.Highlight, filter HighlightFilter) bool {
	t, ok := h.AddedAt()
	if !ok {
		return false
	}
	if filter.Year != "" && t.Format("2006") != filter.Year {
		return false
	}
	if filter.Month != "" && t.Format("2006-01") != filter.Month {
		return false
	}
	if filter.Day != "" && t.Format("2006-01-02") != filter.Day {
		return false
	}
	if filter.Weekday != nil {
		w := *filter.Weekday
		if w < 0 || w > 6 || int(t.Weekday()) != w {
			return false
		}
	}
	if filter.Hour != nil {
		hr := *filter.Hour
		if hr < 0 || hr > 23 || t.Hour() != hr {
			return false
		}
	}
	if filter.MonthNum != nil {
		m := *filter.MonthNum
		if m < 1 || m > 12 || int(t.Month()) != m {
			return false
		}
	}
	return true
}

func sortHighlights(items []store.Highlight, order HighlightSort) {
	less := func(a, b store.Highlight) bool {
		// date_desc is the default; undated records keep clip-index order
		if c := compareTimestamps(a, b, false); c != 0 {
			return c < 0
		}
		return a.ClipIndex > b.ClipIndex
	}
	switch order {
	case HighlightSortDateAsc:
		less = func(a, b store.Highlight) bool {
			if c := compareTimestamps(a, b, true); c != 0 {
				return c < 0
			}
			return a.ClipIndex < b.ClipIndex
		}
	case HighlightSortAuthorAsc:
		less = func(a, b store.Highlight) bool { return compareFold(a.Author, b.Author) < 0 }
	case HighlightSortAuthorDesc:
		less = func(a, b store.Highlight) bool { return compareFold(a.Author, b.Author) > 0 }
	case HighlightSortBookAsc:
		less = func(a, b store.Highlight) bool { return compareFold(a.BookTitle, b.BookTitle) < 0 }
	case HighlightSortBookDesc:
		less = func(a, b store.Highlight) bool { return compareFold(a.BookTitle, b.BookTitle) > 0 }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// GetBookDetail returns one book and a page of its active highlights in clip
// order.
func GetBookDetail(state store.State, bookID string, skip, limit int) (BookDetail, error) {
	book, ok := state.Books[bookID]
	if !ok {
		return BookDetail{}, store.ErrBookNotFound
	}

	items := filterHighlights(withBookFields(state), func(h store.Highlight) bool {
		return h.BookID == bookID
	})
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ClipIndex < items[j].ClipIndex
	})

	skip, limit = normalizePage(skip, limit)
	paged, total := paginateHighlights(items, skip, limit)
	return BookDetail{Book: book, Highlights: paged, Total: total, Skip: skip, Limit: limit}, nil
}

// BookHighlightCount returns the number of active highlights for one book.
func BookHighlightCount(state store.State, bookID string) int {
	count := 0
	for _, h := range state.Active() {
		if h.BookID == bookID {
			count++
		}
	}
	return count
}
