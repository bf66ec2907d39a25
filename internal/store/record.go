package store

import (
	"regexp"
	"strings"
	"time"
)

// Book is one book record. Books are created implicitly the first time a
// highlight references them and are never hard-deleted.
type Book struct {
	ID            string `json:"book_id" yaml:"book_id" db:"book_id"`
	Title         string `json:"book_title" yaml:"book_title" db:"book_title"`
	OriginalTitle string `json:"original_title,omitempty" yaml:"original_title,omitempty" db:"original_title"`
	Author        string `json:"author,omitempty" yaml:"author,omitempty" db:"author"`
	CoverURL      string `json:"cover_url,omitempty" yaml:"cover_url,omitempty" db:"cover_url"`
}

// Highlight is one annotation record. Dates are kept as strings: DateAdded
// holds the normalized form when the source date could be parsed, and
// DateAddedRaw always holds the original source text for display.
type Highlight struct {
	ID            string `json:"id" yaml:"id" db:"id"`
	BookID        string `json:"book_id" yaml:"book_id" db:"book_id"`
	BookTitle     string `json:"book_title,omitempty" yaml:"book_title,omitempty" db:"book_title"`
	Author        string `json:"author,omitempty" yaml:"author,omitempty" db:"author"`
	Content       string `json:"highlight_content" yaml:"highlight_content" db:"highlight_content"`
	NoteContent   string `json:"note_content,omitempty" yaml:"note_content,omitempty" db:"note_content"`
	Location      string `json:"location,omitempty" yaml:"location,omitempty" db:"location"`
	DateAdded     string `json:"date_added,omitempty" yaml:"date_added,omitempty" db:"date_added"`
	DateAddedRaw  string `json:"date_added_raw,omitempty" yaml:"date_added_raw,omitempty" db:"date_added_raw"`
	NoteDateAdded string `json:"note_date_added,omitempty" yaml:"note_date_added,omitempty" db:"note_date_added"`
	ClipIndex     int    `json:"clip_index" yaml:"clip_index" db:"clip_index"`
	DeletedAt     string `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty" db:"deleted_at"`
}

// Active reports whether the highlight has not been soft-deleted.
func (h Highlight) Active() bool {
	return h.DeletedAt == ""
}

// AddedAt returns the highlight's creation time, trying the normalized date
// first and falling back to the raw source string.
func (h Highlight) AddedAt() (time.Time, bool) {
	if t, ok := ParseTimestamp(h.DateAdded); ok {
		return t, true
	}
	return ParseTimestamp(h.DateAddedRaw)
}

// State is the whole persisted document.
type State struct {
	Books      map[string]Book `json:"books" yaml:"books"`
	Highlights []Highlight     `json:"highlights" yaml:"highlights"`
}

// NewState returns an empty state with initialized collections.
func NewState() State {
	return State{
		Books:      map[string]Book{},
		Highlights: []Highlight{},
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	next := State{
		Books:      make(map[string]Book, len(s.Books)),
		Highlights: make([]Highlight, len(s.Highlights)),
	}
	for id, book := range s.Books {
		next.Books[id] = book
	}
	copy(next.Highlights, s.Highlights)
	return next
}

// Active returns the non-deleted highlights in stored order.
func (s State) Active() []Highlight {
	active := make([]Highlight, 0, len(s.Highlights))
	for _, h := range s.Highlights {
		if h.Active() {
			active = append(active, h)
		}
	}
	return active
}

var zonelessTimestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Monday, January 2, 2006 3:04:05 PM",
	"January 2, 2006 3:04:05 PM",
	"Monday, 2 January 2006 15:04:05",
	"2 January 2006 15:04:05",
	"Monday, Jan 2, 2006 3:04:05 PM",
	"Jan 2, 2006 3:04:05 PM",
	"2 Jan 2006 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
}

// ParseTimestamp parses a record timestamp in any of the shapes the store
// holds: normalized zoneless timestamps are treated as UTC, everything else
// is tried against the known source layouts.
func ParseTimestamp(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	if zonelessTimestampPattern.MatchString(trimmed) {
		t, err := time.Parse("2006-01-02T15:04:05", trimmed)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
