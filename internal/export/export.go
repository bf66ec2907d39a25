// Package export serializes filtered, book-grouped highlight sets into
// plain text, Markdown, JSON, or PDF documents, optionally packaged per book
// into a ZIP archive.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/at-ishikawa/klip/internal/store"
)

// ErrNothingToExport is returned when no book matches the export scope.
var ErrNothingToExport = errors.New("no highlights to export")

// Format names an export output format.
type Format string

const (
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// ParseFormat validates a format name from user input.
func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case FormatText, FormatJSON, FormatMarkdown, FormatPDF:
		return Format(value), nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown export format %q", value)
}

// Options controls one export run.
type Options struct {
	Format      Format
	SplitByBook bool
	Lang        string // display language for fixed labels
	BookID      string // optional single-book scope
}

// Result is the exported document with the metadata an embedding host needs
// to hand it to a file-transfer layer.
type Result struct {
	Bytes              []byte
	MimeType           string
	Filename           string
	ContentDisposition string
}

type bookGroup struct {
	id     string
	title  string
	author string
	items  []store.Highlight
}

// jsonItem is the shape of one exported highlight in JSON output.
type jsonItem struct {
	BookTitle     string `json:"book_title"`
	Author        string `json:"author"`
	Content       string `json:"highlight_content"`
	NoteContent   string `json:"note_content"`
	Location      string `json:"location"`
	DateAddedRaw  string `json:"date_added_raw"`
	DateAdded     string `json:"date_added"`
	NoteDateAdded string `json:"note_date_added"`
}

// Export renders the active highlights per the options.
func Export(state store.State, opts Options) (Result, error) {
	books := groupByBook(state, opts.BookID)
	if len(books) == 0 {
		return Result{}, ErrNothingToExport
	}

	if opts.SplitByBook {
		return exportSplit(books, opts)
	}
	return exportCombined(books, opts)
}

// groupByBook collects active highlights per book, in clip order, resolving
// display fields from the book map.
func groupByBook(state store.State, bookID string) []bookGroup {
	groups := map[string]*bookGroup{}
	var order []string
	for _, h := range state.Active() {
		if bookID != "" && h.BookID != bookID {
			continue
		}
		group, ok := groups[h.BookID]
		if !ok {
			title, author := h.BookTitle, h.Author
			if book, found := state.Books[h.BookID]; found {
				if book.Title != "" {
					title = book.Title
				}
				if book.Author != "" {
					author = book.Author
				}
			}
			if title == "" {
				title = "Unknown"
			}
			if author == "" {
				author = "Unknown"
			}
			group = &bookGroup{id: h.BookID, title: title, author: author}
			groups[h.BookID] = group
			order = append(order, h.BookID)
		}
		group.items = append(group.items, h)
	}

	result := make([]bookGroup, 0, len(order))
	for _, id := range order {
		group := groups[id]
		sort.SliceStable(group.items, func(i, j int) bool {
			return group.items[i].ClipIndex < group.items[j].ClipIndex
		})
		result = append(result, *group)
	}
	return result
}

func authorLabel(lang string) string {
	if lang == "zh" {
		return "作者"
	}
	return "Author"
}

func renderText(book bookGroup, lang string) string {
	lines := []string{book.title, fmt.Sprintf("%s: %s", authorLabel(lang), book.author), ""}
	for _, item := range book.items {
		if item.Content != "" {
			lines = append(lines, item.Content, "")
		}
		if item.NoteContent != "" {
			lines = append(lines, item.NoteContent, "")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}

func renderMarkdown(book bookGroup) string {
	lines := []string{"# " + book.title, "", fmt.Sprintf("**%s**", book.author), ""}
	for _, item := range book.items {
		if item.Content != "" {
			lines = append(lines, "+ "+item.Content, "")
		}
		if item.NoteContent != "" {
			lines = append(lines, "    "+item.NoteContent, "")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}

func renderJSON(books []bookGroup) ([]byte, error) {
	items := []jsonItem{}
	for _, book := range books {
		for _, item := range book.items {
			items = append(items, jsonItem{
				BookTitle:     book.title,
				Author:        book.author,
				Content:       item.Content,
				NoteContent:   item.NoteContent,
				Location:      item.Location,
				DateAddedRaw:  item.DateAddedRaw,
				DateAdded:     item.DateAdded,
				NoteDateAdded: item.NoteDateAdded,
			})
		}
	}
	contents, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json.MarshalIndent > %w", err)
	}
	return contents, nil
}

var unsafeFilenameReplacer = strings.NewReplacer(
	`\`, "_", "/", "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

// SafeFilename replaces filesystem-unsafe characters in a book title.
func SafeFilename(title string) string {
	if title == "" {
		return "unknown"
	}
	return unsafeFilenameReplacer.Replace(title)
}

func formatExtension(format Format) string {
	switch format {
	case FormatMarkdown:
		return "md"
	default:
		return string(format)
	}
}

func formatMimeType(format Format) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

func renderBook(book bookGroup, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return renderJSON([]bookGroup{book})
	case FormatMarkdown:
		return []byte(renderMarkdown(book)), nil
	case FormatPDF:
		return renderPDF(renderMarkdown(book))
	default:
		return []byte(renderText(book, opts.Lang)), nil
	}
}

func exportCombined(books []bookGroup, opts Options) (Result, error) {
	var contents []byte
	var err error
	switch opts.Format {
	case FormatJSON:
		contents, err = renderJSON(books)
	case FormatPDF:
		parts := make([]string, 0, len(books))
		for _, book := range books {
			parts = append(parts, renderMarkdown(book))
		}
		contents, err = renderPDF(strings.Join(parts, "\n\n"))
	default:
		parts := make([]string, 0, len(books))
		for _, book := range books {
			if opts.Format == FormatMarkdown {
				parts = append(parts, renderMarkdown(book))
			} else {
				parts = append(parts, renderText(book, opts.Lang))
			}
		}
		contents = []byte(strings.Join(parts, "\n\n"))
	}
	if err != nil {
		return Result{}, err
	}

	ext := formatExtension(opts.Format)
	filename := "highlights_all." + ext
	if opts.BookID != "" {
		filename = SafeFilename(books[0].title) + "." + ext
	}
	return Result{
		Bytes:              contents,
		MimeType:           formatMimeType(opts.Format),
		Filename:           filename,
		ContentDisposition: BuildContentDisposition(filename),
	}, nil
}

func exportSplit(books []bookGroup, opts Options) (Result, error) {
	var buffer bytes.Buffer
	archive := zip.NewWriter(&buffer)
	ext := formatExtension(opts.Format)

	for _, book := range books {
		contents, err := renderBook(book, opts)
		if err != nil {
			return Result{}, err
		}
		entry, err := archive.Create(SafeFilename(book.title) + "." + ext)
		if err != nil {
			return Result{}, fmt.Errorf("archive.Create > %w", err)
		}
		if _, err := entry.Write(contents); err != nil {
			return Result{}, fmt.Errorf("entry.Write > %w", err)
		}
	}
	if err := archive.Close(); err != nil {
		return Result{}, fmt.Errorf("archive.Close > %w", err)
	}

	filename := "highlights_by_book.zip"
	return Result{
		Bytes:              buffer.Bytes(),
		MimeType:           "application/zip",
		Filename:           filename,
		ContentDisposition: BuildContentDisposition(filename),
	}, nil
}
