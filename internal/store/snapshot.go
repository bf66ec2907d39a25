package store

import (
	"encoding/json"
)

// RestoreMode selects how a backup snapshot is applied.
type RestoreMode string

const (
	// RestoreModeMerge keeps existing records and appends new ones.
	RestoreModeMerge RestoreMode = "merge"
	// RestoreModeReplace discards the current store content entirely.
	RestoreModeReplace RestoreMode = "replace"
)

// RestoreResult reports the store size after a restore and how many
// highlights were newly inserted.
type RestoreResult struct {
	Books      int `json:"books"`
	Highlights int `json:"highlights"`
	Inserted   int `json:"inserted"`
}

// Snapshot deep-copies the full store content, soft-deleted highlights
// included, so a later restore is faithful.
func (s *Store) Snapshot() State {
	return s.state.Clone()
}

// snapshotDocument is the loosely-shaped backup file. Actual record decoding
// happens per entry so one malformed book does not fail the whole file the
// way a malformed highlight must.
type snapshotDocument struct {
	Books      map[string]json.RawMessage `json:"books"`
	Highlights []json.RawMessage          `json:"highlights"`
}

// looseBook accepts the field aliases older backups used.
type looseBook struct {
	BookID        string `json:"book_id"`
	BookIDAlt     string `json:"bookId"`
	Title         string `json:"book_title"`
	TitleAlt      string `json:"title"`
	OriginalTitle string `json:"original_title"`
	Author        string `json:"author"`
	CoverURL      string `json:"cover_url"`
}

// looseHighlight accepts the field aliases older backups used. Normalization
// into the strict Highlight shape happens once, here at the boundary.
type looseHighlight struct {
	ID            string `json:"id"`
	HighlightID   string `json:"highlight_id"`
	UUID          string `json:"uuid"`
	BookID        string `json:"book_id"`
	BookIDAlt     string `json:"bookId"`
	BookTitle     string `json:"book_title"`
	Author        string `json:"author"`
	Content       string `json:"highlight_content"`
	NoteContent   string `json:"note_content"`
	Location      string `json:"location"`
	DateAdded     string `json:"date_added"`
	DateAddedRaw  string `json:"date_added_raw"`
	NoteDateAdded string `json:"note_date_added"`
	ClipIndex     *int   `json:"clip_index"`
	DeletedAt     string `json:"deleted_at"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// DecodeSnapshot validates raw backup bytes and normalizes them into a
// strict State. Structural violations return a *SnapshotValidationError.
func DecodeSnapshot(data []byte) (State, error) {
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, &SnapshotValidationError{Reason: "not a valid snapshot document"}
	}
	if doc.Books == nil {
		return State{}, &SnapshotValidationError{Reason: "missing books data"}
	}
	if doc.Highlights == nil {
		return State{}, &SnapshotValidationError{Reason: "missing highlights array"}
	}

	state := NewState()
	for key, raw := range doc.Books {
		var b looseBook
		if err := json.Unmarshal(raw, &b); err != nil {
			continue
		}
		id := firstNonEmpty(b.BookID, b.BookIDAlt, key)
		if id == "" {
			continue
		}
		state.Books[id] = Book{
			ID:            id,
			Title:         firstNonEmpty(b.Title, b.TitleAlt),
			OriginalTitle: b.OriginalTitle,
			Author:        b.Author,
			CoverURL:      b.CoverURL,
		}
	}

	for i, raw := range doc.Highlights {
		var h looseHighlight
		if err := json.Unmarshal(raw, &h); err != nil {
			return State{}, &SnapshotValidationError{Reason: "highlight record is not an object"}
		}
		id := firstNonEmpty(h.ID, h.HighlightID, h.UUID)
		if id == "" {
			return State{}, &SnapshotValidationError{Reason: "highlight record is missing an id"}
		}
		bookID := firstNonEmpty(h.BookID, h.BookIDAlt)
		if bookID == "" {
			return State{}, &SnapshotValidationError{Reason: "highlight record is missing a book id"}
		}
		clipIndex := i
		if h.ClipIndex != nil {
			clipIndex = *h.ClipIndex
		}
		state.Highlights = append(state.Highlights, Highlight{
			ID:            id,
			BookID:        bookID,
			BookTitle:     h.BookTitle,
			Author:        h.Author,
			Content:       h.Content,
			NoteContent:   h.NoteContent,
			Location:      h.Location,
			DateAdded:     h.DateAdded,
			DateAddedRaw:  h.DateAddedRaw,
			NoteDateAdded: h.NoteDateAdded,
			ClipIndex:     clipIndex,
			DeletedAt:     h.DeletedAt,
		})
	}

	return state, nil
}

// Restore applies an already-decoded snapshot. In merge mode existing books
// take incoming non-empty fields, highlights with known ids are skipped, and
// new ones are appended; in replace mode the snapshot becomes the store.
func (s *Store) Restore(snapshot State, mode RestoreMode) (RestoreResult, error) {
	if mode != RestoreModeReplace {
		mode = RestoreModeMerge
	}

	if mode == RestoreModeReplace {
		s.state = snapshot.Clone()
		normalizeState(&s.state)
		if err := s.persist(); err != nil {
			return RestoreResult{}, err
		}
		return RestoreResult{
			Books:      len(s.state.Books),
			Highlights: len(s.state.Highlights),
			Inserted:   len(s.state.Highlights),
		}, nil
	}

	for id, incoming := range snapshot.Books {
		existing, ok := s.state.Books[id]
		if !ok {
			s.state.Books[id] = incoming
			continue
		}
		if incoming.Title != "" {
			existing.Title = incoming.Title
		}
		if incoming.OriginalTitle != "" {
			existing.OriginalTitle = incoming.OriginalTitle
		}
		if incoming.Author != "" {
			existing.Author = incoming.Author
		}
		if incoming.CoverURL != "" {
			existing.CoverURL = incoming.CoverURL
		}
		s.state.Books[id] = existing
	}

	known := s.KnownIDs()
	inserted := 0
	for _, h := range snapshot.Highlights {
		if _, exists := known[h.ID]; exists {
			continue
		}
		known[h.ID] = struct{}{}
		s.state.Highlights = append(s.state.Highlights, h)
		inserted++
	}

	if err := s.persist(); err != nil {
		return RestoreResult{}, err
	}
	return RestoreResult{
		Books:      len(s.state.Books),
		Highlights: len(s.state.Highlights),
		Inserted:   inserted,
	}, nil
}
