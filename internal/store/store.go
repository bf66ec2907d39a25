// Package store owns the in-memory book and highlight collections, their
// identity and soft-deletion rules, and the persistence boundary. There is a
// single logical writer: every mutation updates memory, persists the whole
// document, and only then returns.
package store

import (
	"fmt"
	"sort"
	"time"
)

// Store is the record store. Construct it with Open; it is not safe for
// concurrent writers.
type Store struct {
	medium Medium
	state  State
	now    func() time.Time
}

// Open loads the persisted state from the medium, normalizing legacy records,
// and returns a ready store. A medium with no saved state yields empty
// collections.
func Open(medium Medium) (*Store, error) {
	state, ok, err := medium.Load()
	if err != nil {
		return nil, fmt.Errorf("medium.Load() > %w", err)
	}
	if !ok {
		state = NewState()
	}
	normalizeState(&state)
	return &Store{medium: medium, state: state, now: time.Now}, nil
}

// normalizeState backfills fields that older snapshots may lack so the rest
// of the code can rely on a strict shape.
func normalizeState(state *State) {
	if state.Books == nil {
		state.Books = map[string]Book{}
	}
	if state.Highlights == nil {
		state.Highlights = []Highlight{}
	}
	for id, book := range state.Books {
		if book.ID == "" {
			book.ID = id
			state.Books[id] = book
		}
	}
}

// Data exposes the live state for read-only consumers (query, statistics,
// export). Callers must not mutate it.
func (s *Store) Data() State {
	return s.state
}

// KnownIDs returns the ids of every stored highlight, deleted ones included.
func (s *Store) KnownIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.state.Highlights))
	for _, h := range s.state.Highlights {
		ids[h.ID] = struct{}{}
	}
	return ids
}

func (s *Store) persist() error {
	if err := s.medium.Save(s.state); err != nil {
		return fmt.Errorf("medium.Save() > %w", err)
	}
	return nil
}

// Ingest appends parsed highlights, creating or backfilling their book
// records, and returns how many were newly inserted. The highlight array is
// re-sorted by clip index so every downstream consumer sees a deterministic
// base ordering.
func (s *Store) Ingest(highlights []Highlight) (int, error) {
	known := s.KnownIDs()
	inserted := 0
	for _, h := range highlights {
		s.ensureBook(h)
		if _, exists := known[h.ID]; exists {
			continue
		}
		known[h.ID] = struct{}{}
		s.state.Highlights = append(s.state.Highlights, h)
		inserted++
	}
	sort.SliceStable(s.state.Highlights, func(i, j int) bool {
		return s.state.Highlights[i].ClipIndex < s.state.Highlights[j].ClipIndex
	})
	if err := s.persist(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ensureBook creates the book record a highlight references, or backfills
// missing title/author fields on an existing record without overwriting
// populated ones.
func (s *Store) ensureBook(h Highlight) {
	existing, ok := s.state.Books[h.BookID]
	if !ok {
		s.state.Books[h.BookID] = Book{
			ID:            h.BookID,
			Title:         h.BookTitle,
			OriginalTitle: h.BookTitle,
			Author:        h.Author,
		}
		return
	}
	if existing.Title == "" && h.BookTitle != "" {
		existing.Title = h.BookTitle
	}
	if existing.OriginalTitle == "" && h.BookTitle != "" {
		existing.OriginalTitle = h.BookTitle
	}
	if existing.Author == "" && h.Author != "" {
		existing.Author = h.Author
	}
	s.state.Books[h.BookID] = existing
}

// AddHighlight inserts a single manually created highlight.
func (s *Store) AddHighlight(h Highlight) error {
	for _, existing := range s.state.Highlights {
		if existing.ID == h.ID {
			return ErrDuplicateHighlight
		}
	}
	s.ensureBook(h)
	s.state.Highlights = append(s.state.Highlights, h)
	sort.SliceStable(s.state.Highlights, func(i, j int) bool {
		return s.state.Highlights[i].ClipIndex < s.state.Highlights[j].ClipIndex
	})
	return s.persist()
}

// BookPatch holds the editable book fields; nil means "leave unchanged".
type BookPatch struct {
	Title    *string
	Author   *string
	CoverURL *string
}

// UpdateBook merges the patch into an existing book and persists.
func (s *Store) UpdateBook(bookID string, patch BookPatch) (Book, error) {
	book, ok := s.state.Books[bookID]
	if !ok {
		return Book{}, ErrBookNotFound
	}
	if patch.Title != nil {
		book.Title = *patch.Title
	}
	if patch.Author != nil {
		book.Author = *patch.Author
	}
	if patch.CoverURL != nil {
		book.CoverURL = *patch.CoverURL
	}
	s.state.Books[bookID] = book
	if err := s.persist(); err != nil {
		return Book{}, err
	}
	return book, nil
}

// HighlightPatch holds the editable highlight fields; nil means "leave
// unchanged". Soft-deletion state is deliberately not patchable.
type HighlightPatch struct {
	Content       *string
	NoteContent   *string
	Location      *string
	DateAdded     *string
	DateAddedRaw  *string
	NoteDateAdded *string
}

// UpdateHighlight merges the patch into an active highlight and persists.
func (s *Store) UpdateHighlight(id string, patch HighlightPatch) (Highlight, error) {
	idx := s.findHighlight(id)
	if idx == -1 {
		return Highlight{}, ErrHighlightNotFound
	}
	h := s.state.Highlights[idx]
	if !h.Active() {
		return Highlight{}, ErrHighlightDeleted
	}
	if patch.Content != nil {
		h.Content = *patch.Content
	}
	if patch.NoteContent != nil {
		h.NoteContent = *patch.NoteContent
	}
	if patch.Location != nil {
		h.Location = *patch.Location
	}
	if patch.DateAdded != nil {
		h.DateAdded = *patch.DateAdded
	}
	if patch.DateAddedRaw != nil {
		h.DateAddedRaw = *patch.DateAddedRaw
	}
	if patch.NoteDateAdded != nil {
		h.NoteDateAdded = *patch.NoteDateAdded
	}
	s.state.Highlights[idx] = h
	if err := s.persist(); err != nil {
		return Highlight{}, err
	}
	return h, nil
}

// DeleteHighlight soft-deletes a highlight. The record stays in storage and
// is excluded from every read operation.
func (s *Store) DeleteHighlight(id string) error {
	idx := s.findHighlight(id)
	if idx == -1 {
		return ErrHighlightNotFound
	}
	if !s.state.Highlights[idx].Active() {
		return ErrHighlightDeleted
	}
	s.state.Highlights[idx].DeletedAt = s.now().UTC().Format("2006-01-02T15:04:05Z")
	return s.persist()
}

// Clear resets the store to empty collections and persists.
func (s *Store) Clear() error {
	s.state = NewState()
	return s.persist()
}

func (s *Store) findHighlight(id string) int {
	for i, h := range s.state.Highlights {
		if h.ID == id {
			return i
		}
	}
	return -1
}
