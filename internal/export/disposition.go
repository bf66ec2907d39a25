package export

import (
	"fmt"
	"strings"
)

// ToASCIIFilename degrades a filename to printable ASCII so it can serve as
// the fallback value of a Content-Disposition header.
func ToASCIIFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r < 0x20 || r == 0x7f: // control characters
			b.WriteByte('_')
		case r > 0x7e: // non-ASCII
			b.WriteByte('_')
		case r == '"' || r == '\\':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	ascii := strings.TrimSpace(b.String())
	if ascii == "" {
		return "download"
	}
	return ascii
}

// rfc5987AttrChar reports whether a byte may appear unescaped in an RFC 5987
// ext-value.
func rfc5987AttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '&', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// EncodeRFC5987 percent-encodes a string for the filename* parameter.
func EncodeRFC5987(value string) string {
	var b strings.Builder
	for _, c := range []byte(value) {
		if rfc5987AttrChar(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

// BuildContentDisposition renders the standard two-part attachment header
// value: an ASCII fallback plus a percent-encoded UTF-8 form, so non-ASCII
// filenames survive arbitrary file-transfer layers.
func BuildContentDisposition(filename string) string {
	if filename == "" {
		filename = "download"
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		ToASCIIFilename(filename), EncodeRFC5987(filename))
}
