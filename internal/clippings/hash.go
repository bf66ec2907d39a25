package clippings

import (
	"fmt"
	"strconv"
	"unicode/utf16"
)

// HashString computes the 32-bit string hash used for record identity and
// renders it as 8 lowercase hex characters. The hash runs over UTF-16 code
// units so ids stay stable for data imported from earlier exports.
func HashString(value string) string {
	var hash uint32
	for _, unit := range utf16.Encode([]rune(value)) {
		hash = hash*31 + uint32(unit)
	}
	return fmt.Sprintf("%08x", hash)
}

// BookID derives a book's identity from its title alone.
func BookID(title string) string {
	return HashString(title)
}

// HighlightID derives a highlight's identity from its book title and content,
// salted with the entry's position in the source file. Two entries with
// identical text in the same book therefore get distinct ids, but the same
// logical highlight changes id when the file is reordered between imports.
func HighlightID(bookTitle, content string, entryIndex int) string {
	return HashString(bookTitle+"||"+content) + strconv.FormatInt(int64(entryIndex), 16)
}
