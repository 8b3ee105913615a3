// Package markdown extracts plain text from note bodies for list
// descriptions and titles.
package markdown

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Untitled is shown for notes with neither a name nor any text.
const Untitled = "Untitled"

func parse(src []byte) ast.Node {
	return md.Parser().Parse(text.NewReader(src))
}

// PlainText flattens markdown into one line of text. Code blocks and raw
// HTML are dropped; whitespace is collapsed.
func PlainText(src string) string {
	source := []byte(src)
	return collapse(inlineText(parse(source), source))
}

// Preview returns at most n runes of the note's plain text, with an
// ellipsis when it was cut.
func Preview(src string, n int) string {
	plain := PlainText(src)
	if n <= 0 || utf8.RuneCountInString(plain) <= n {
		return plain
	}
	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}

// Title returns the text of the first heading, or "" when there is none.
func Title(src string) string {
	source := []byte(src)
	var title string
	_ = ast.Walk(parse(source), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			title = collapse(inlineText(h, source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

// DisplayTitle picks what a list shows for a note: its name, else the
// first heading, else the start of the text.
func DisplayTitle(name, src string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if t := Title(src); t != "" {
		return t
	}
	if p := Preview(src, 40); p != "" {
		return p
	}
	return Untitled
}

// WordCount counts the words of the plain text.
func WordCount(src string) int {
	return len(strings.Fields(PlainText(src)))
}

func inlineText(root ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				b.Write(node.Label(source))
			}
		default:
			if n.Type() == ast.TypeBlock && !entering {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
