// Package markdown extracts short plain-text summaries from post bodies.
package markdown

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MaxSnippet is the longest snippet Summarize returns, in runes, before the
// ellipsis.
const MaxSnippet = 200

// Summary is the first heading and first paragraph of a body.
type Summary struct {
	Heading string
	Snippet string
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Summarize parses body and returns its first heading and the plain text of
// its first paragraph, cut at MaxSnippet runes.
func Summarize(body string) Summary {
	src := []byte(body)
	doc := md.Parser().Parse(text.NewReader(src))

	var s Summary
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			if s.Heading == "" {
				s.Heading = plainText(n, src)
			}
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph:
			if s.Snippet == "" {
				s.Snippet = truncate(plainText(n, src), MaxSnippet)
			}
			return ast.WalkSkipChildren, nil
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		if s.Heading != "" && s.Snippet != "" {
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return s
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max])) + "..."
}
