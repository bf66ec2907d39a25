package clippings

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nativeDateLayouts = []string{
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

var cjkDatePattern = regexp.MustCompile(
	`(\d{4})年\s*(\d{1,2})月\s*(\d{1,2})日.*?(上午|下午)?\s*(\d{1,2}):(\d{2}):(\d{2})`,
)

var numericDatePattern = regexp.MustCompile(
	`(\d{4}).*?(\d{1,2}).*?(\d{1,2}).*?(\d{1,2}):(\d{2}):(\d{2})`,
)

// NormalizeDate converts a source date string into a UTC ISO-style timestamp.
// Native layouts are tried first, then the CJK long form (12-hour markers
// converted to 24-hour), then a loose six-number fallback. Strings that match
// nothing are returned unmodified so the raw value is never lost.
func NormalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}

	for _, layout := range nativeDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC().Format("2006-01-02T15:04:05Z")
		}
	}

	if m := cjkDatePattern.FindStringSubmatch(trimmed); m != nil {
		hour := atoi(m[5])
		switch m[4] {
		case "下午":
			if hour < 12 {
				hour += 12
			}
		case "上午":
			if hour == 12 {
				hour = 0
			}
		}
		t := time.Date(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]), hour, atoi(m[6]), atoi(m[7]), 0, time.UTC)
		return t.Format("2006-01-02T15:04:05")
	}

	if m := numericDatePattern.FindStringSubmatch(trimmed); m != nil {
		t := time.Date(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]), 0, time.UTC)
		return t.Format("2006-01-02T15:04:05")
	}

	return trimmed
}

func atoi(value string) int {
	n, _ := strconv.Atoi(value)
	return n
}
