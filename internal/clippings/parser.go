// Package clippings parses e-reader "My Clippings" annotation exports into
// highlight records, associating each note entry with the highlight it
// annotates.
package clippings

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/at-ishikawa/klip/internal/store"
)

var clipSeparatorPattern = regexp.MustCompile(`==========\s*`)

// metaPattern matches the strict bilingual metadata line:
// "- Your Highlight on Location 120-124 | Added on <date>" or
// "- 您在位置 #120-124 的标注 | 添加于 <date>".
var metaPattern = regexp.MustCompile(`(?i)^-\s(?:` +
	`Your\s(?P<type_en>Highlight|Note)\s(?:on|at)\sLocation\s(?P<location_en>[\d-]+)\s*\|\s*Added\son\s(?P<date_en>.+)` +
	`|` +
	`您在位置\s#?(?P<location_zh>[\d-]+)\s*的\s*(?P<type_zh>标注|笔记)\s*\|\s*添加于\s(?P<date_zh>.+)` +
	`)$`)

// Looser patterns tried when the strict one fails, for exports with odd
// spacing or trimmed prefixes.
var fallbackMetaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Your\s(?P<type>Highlight|Note).*?Location\s*:?(?P<location>[\d-]+).*?Added(?:\son)?\s(?P<date>.+)`),
	regexp.MustCompile(`您在第.*?位置\s*#?(?P<location>[\d-]+).*?(?P<type>标注|笔记).*?添加于\s(?P<date>.+)`),
	regexp.MustCompile(`位置\s*#?(?P<location>[\d-]+).*?(?P<type>标注|笔记).*?添加于\s(?P<date>.+)`),
}

var noteTypePattern = regexp.MustCompile(`(?i)笔记|note`)

var bookAuthorPattern = regexp.MustCompile(`\(([^)]+)\)\s*$`)

type entryMeta struct {
	isNote   bool
	location string
	date     string
}

type bufferedNote struct {
	content   string
	date      string
	clipIndex int
}

// Options controls a parse run.
type Options struct {
	// KnownIDs holds highlight ids already present in the store; entries
	// producing one of these ids are skipped, making repeated uploads of the
	// same file idempotent.
	KnownIDs map[string]struct{}
}

// Parse splits raw export text into entries and returns the highlights it
// could extract, with notes attached. Malformed entries are dropped, never
// reported as errors.
func Parse(text string, opts Options) []store.Highlight {
	rawClips := clipSeparatorPattern.Split(text, -1)

	sessionIDs := map[string]struct{}{}
	notesByLocation := map[string][]bufferedNote{}
	var highlights []store.Highlight

	index := -1
	for _, clip := range rawClips {
		clip = strings.TrimSpace(clip)
		if clip == "" {
			continue
		}
		index++

		lines := nonEmptyLines(clip)
		if len(lines) < 3 {
			continue
		}
		bookLine, metaLine := lines[0], lines[1]
		content := strings.Join(lines[2:], "\n")

		meta := parseMeta(metaLine)
		if meta == nil {
			continue
		}

		bookTitle, author := parseBookInfo(bookLine)
		locationKey := lastLocationSegment(meta.location)
		if locationKey == "" {
			locationKey = strconv.Itoa(index)
		}

		if meta.isNote {
			notesByLocation[locationKey] = append(notesByLocation[locationKey], bufferedNote{
				content:   content,
				date:      NormalizeDate(meta.date),
				clipIndex: index,
			})
			continue
		}

		id := HighlightID(bookTitle, content, index)
		if _, known := opts.KnownIDs[id]; known {
			continue
		}
		if _, seen := sessionIDs[id]; seen {
			continue
		}
		sessionIDs[id] = struct{}{}

		highlights = append(highlights, store.Highlight{
			ID:           id,
			BookID:       BookID(bookTitle),
			BookTitle:    bookTitle,
			Author:       author,
			Content:      content,
			Location:     meta.location,
			DateAddedRaw: meta.date,
			DateAdded:    NormalizeDate(meta.date),
			ClipIndex:    index,
		})
	}

	attachNotes(highlights, notesByLocation)
	return highlights
}

// attachNotes associates each buffered note with at most one highlight at the
// same location. A note logically follows its highlight in the source file,
// so the earliest note with a clip index greater than the highlight's wins;
// if none qualifies, the earliest note in the bucket is used.
func attachNotes(highlights []store.Highlight, notesByLocation map[string][]bufferedNote) {
	for i := range highlights {
		h := &highlights[i]
		key := lastLocationSegment(h.Location)
		if key == "" {
			continue
		}
		bucket := notesByLocation[key]
		if len(bucket) == 0 {
			continue
		}

		chosen := -1
		for idx, note := range bucket {
			if note.clipIndex <= h.ClipIndex {
				continue
			}
			if chosen == -1 || note.clipIndex < bucket[chosen].clipIndex {
				chosen = idx
			}
		}
		if chosen == -1 {
			for idx, note := range bucket {
				if chosen == -1 || note.clipIndex < bucket[chosen].clipIndex {
					chosen = idx
				}
			}
		}

		h.NoteContent = bucket[chosen].content
		h.NoteDateAdded = bucket[chosen].date
		notesByLocation[key] = append(bucket[:chosen:chosen], bucket[chosen+1:]...)
	}
}

func nonEmptyLines(clip string) []string {
	var lines []string
	for _, line := range strings.Split(clip, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseMeta(line string) *entryMeta {
	cleaned := strings.TrimSpace(line)

	if m := metaPattern.FindStringSubmatch(cleaned); m != nil {
		groups := namedGroups(metaPattern, m)
		kind := groups["type_en"]
		if kind == "" {
			kind = groups["type_zh"]
		}
		location := groups["location_en"]
		if location == "" {
			location = groups["location_zh"]
		}
		date := groups["date_en"]
		if date == "" {
			date = groups["date_zh"]
		}
		return &entryMeta{isNote: noteTypePattern.MatchString(kind), location: location, date: date}
	}

	for _, pattern := range fallbackMetaPatterns {
		m := pattern.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		groups := namedGroups(pattern, m)
		return &entryMeta{
			isNote:   noteTypePattern.MatchString(groups["type"]),
			location: groups["location"],
			date:     groups["date"],
		}
	}

	return nil
}

func namedGroups(pattern *regexp.Regexp, match []string) map[string]string {
	groups := map[string]string{}
	for i, name := range pattern.SubexpNames() {
		if name == "" || i >= len(match) || match[i] == "" {
			continue
		}
		groups[name] = match[i]
	}
	return groups
}

func parseBookInfo(raw string) (title, author string) {
	if m := bookAuthorPattern.FindStringSubmatchIndex(raw); m != nil {
		author = strings.TrimSpace(raw[m[2]:m[3]])
		title = strings.TrimSpace(raw[:m[0]])
	} else {
		title = strings.TrimSpace(raw)
	}
	if title == "" {
		title = "Unknown"
	}
	if author == "" {
		author = "Unknown"
	}
	return title, author
}

// lastLocationSegment returns the trailing part of a location range, the
// bucket key used to associate notes with highlights ("120-124" -> "124").
func lastLocationSegment(location string) string {
	parts := strings.Split(location, "-")
	last := parts[len(parts)-1]
	if last != "" {
		return last
	}
	return location
}
