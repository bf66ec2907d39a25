package clippings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "kindle english form",
			raw:  "Monday, March 2, 2020 10:15:30 AM",
			want: "2020-03-02T10:15:30Z",
		},
		{
			name: "kindle english afternoon",
			raw:  "Tuesday, April 7, 2020 9:05:12 PM",
			want: "2020-04-07T21:05:12Z",
		},
		{
			name: "british day first form",
			raw:  "Sunday, 18 October 2020 14:22:03",
			want: "2020-10-18T14:22:03Z",
		},
		{
			name: "abbreviated month date only",
			raw:  "Jan 1, 2024",
			want: "2024-01-01T00:00:00Z",
		},
		{
			name: "abbreviated month with weekday and time",
			raw:  "Monday, Jan 1, 2024 8:15:30 PM",
			want: "2024-01-01T20:15:30Z",
		},
		{
			name: "abbreviated month day first",
			raw:  "18 Oct 2020 14:22:03",
			want: "2020-10-18T14:22:03Z",
		},
		{
			name: "already normalized",
			raw:  "2020-03-02T10:15:30Z",
			want: "2020-03-02T10:15:30Z",
		},
		{
			name: "chinese afternoon keeps zoneless form",
			raw:  "2021年3月14日星期日 下午2:30:45",
			want: "2021-03-14T14:30:45",
		},
		{
			name: "chinese morning",
			raw:  "2021年3月14日星期日 上午9:05:01",
			want: "2021-03-14T09:05:01",
		},
		{
			name: "chinese noon stays noon",
			raw:  "2021年3月14日星期日 下午12:00:10",
			want: "2021-03-14T12:00:10",
		},
		{
			name: "chinese midnight",
			raw:  "2021年3月14日星期日 上午12:00:10",
			want: "2021-03-14T00:00:10",
		},
		{
			name: "six number fallback",
			raw:  "2021/3/14 14:30:45",
			want: "2021-03-14T14:30:45",
		},
		{
			name: "unparsable text passes through",
			raw:  "sometime last week",
			want: "sometime last week",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.raw))
		})
	}
}

func TestNormalizeAuthorKey(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "lowercases", value: "James Clear", want: "james clear"},
		{name: "strips quotes", value: `"Cal" Newport`, want: "cal newport"},
		{name: "strips middle dots", value: "安托万·德·圣埃克苏佩里", want: "安托万德圣埃克苏佩里"},
		{name: "collapses whitespace", value: "  Alan   A. A.  Donovan ", want: "alan a. a. donovan"},
		{name: "empty stays empty", value: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAuthorKey(tt.value))
		})
	}
}
