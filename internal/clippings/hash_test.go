package clippings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: "00000000"},
		{name: "single character", input: "a", want: "00000061"},
		{name: "short word", input: "Foo", want: "000114a6"},
		{name: "english title", input: "The Go Programming Language", want: "29452c48"},
		{name: "chinese title", input: "小王子", want: "0167ed74"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HashString(tt.input))
		})
	}
}

func TestBookID(t *testing.T) {
	assert.Equal(t, "b7818514", BookID("Atomic Habits"))
	assert.Equal(t, "fde481c5", BookID("Deep Work"))

	// Same title always produces the same id.
	assert.Equal(t, BookID("小王子"), BookID("小王子"))
}

func TestHighlightID(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		index   int
		want    string
	}{
		{
			name:    "index zero",
			title:   "Foo",
			content: "A",
			index:   0,
			want:    "7dc3c25b0",
		},
		{
			name:    "index above nine is hex",
			title:   "Foo",
			content: "A",
			index:   11,
			want:    "7dc3c25bb",
		},
		{
			name:    "two digit hex index",
			title:   "Foo",
			content: "A",
			index:   26,
			want:    "7dc3c25b1a",
		},
		{
			name:    "english content",
			title:   "The Go Programming Language",
			content: "Concurrency is not parallelism.",
			index:   5,
			want:    "8849d4005",
		},
		{
			name:    "chinese content",
			title:   "小王子",
			content: "真正重要的东西，用眼睛是看不见的。",
			index:   1,
			want:    "7851c3c41",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HighlightID(tt.title, tt.content, tt.index))
		})
	}
}
