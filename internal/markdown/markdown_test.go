package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "emphasis and links", in: "Some *bold* and [a link](http://x.io).", want: "Some bold and a link."},
		{name: "heading and paragraph", in: "# Plan\n\nship it\nsoon", want: "Plan ship it soon"},
		{name: "lists", in: "- one\n- two", want: "one two"},
		{name: "code block dropped", in: "before\n\n```go\nfmt.Println()\n```\n\nafter", want: "before after"},
		{name: "inline code kept", in: "run `make test` now", want: "run make test now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 10))
	assert.Equal(t, "abcd…", Preview("abcdefghij", 5))
	assert.Equal(t, "héll…", Preview("# héllo wörld", 5))
	assert.Equal(t, "no limit", Preview("no limit", 0))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Second", Title("intro\n\n## Second\n\n# Third"))
	assert.Equal(t, "Plan for Q3", Title("# Plan for *Q3*"))
	assert.Equal(t, "", Title("no heading here"))
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Named", DisplayTitle("  Named ", "# Heading"))
	assert.Equal(t, "Heading", DisplayTitle("", "# Heading\n\nbody"))
	assert.Equal(t, "just text", DisplayTitle("", "just text"))
	assert.Equal(t, Untitled, DisplayTitle(" ", ""))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 4, WordCount("# Title\n\none *two* three"))
	assert.Equal(t, 0, WordCount(""))
}
