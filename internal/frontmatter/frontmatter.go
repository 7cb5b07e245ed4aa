// Package frontmatter reads and writes the restricted metadata header that
// prefixes every post: a `---` fenced block of flat `key: value` pairs and
// two-space indented `- item` lists.
package frontmatter

import (
	"regexp"
	"strings"
	"time"

	"github.com/starford/hugoblog/internal/models"
)

const delim = "---"

var (
	delimRe    = regexp.MustCompile(`^---\s*$`)
	listItemRe = regexp.MustCompile(`^\s\s- `)
)

// now is replaced in tests.
var now = time.Now

// Field is one decoded header entry. List is true when the key opened a list,
// even if no items followed it.
type Field struct {
	Value string
	Items []string
	List  bool
}

// Fields maps header keys to their decoded values. A key that is absent from
// the header is absent from the map.
type Fields map[string]Field

// String returns the scalar value stored under key.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok || v.List {
		return "", false
	}
	return v.Value, true
}

// List returns the items stored under key.
func (f Fields) List(key string) ([]string, bool) {
	v, ok := f[key]
	if !ok || !v.List {
		return nil, false
	}
	return v.Items, true
}

// Decode splits raw into header fields and body. It never fails: text without
// a complete header is returned whole as the body with no fields.
func Decode(raw string) (Fields, string) {
	header, body, ok := split(raw)
	if !ok {
		return Fields{}, raw
	}
	return parseHeader(header), body
}

// split finds the opening delimiter on the first line and the next delimiter
// line after it. The body starts after the closing delimiter's newline.
func split(raw string) ([]string, string, bool) {
	first, rest, found := strings.Cut(raw, "\n")
	if !found || !delimRe.MatchString(first) {
		return nil, "", false
	}

	var header []string
	for rest != "" {
		line, tail, more := strings.Cut(rest, "\n")
		if delimRe.MatchString(line) {
			if !more {
				tail = ""
			}
			return header, tail, true
		}
		header = append(header, strings.TrimSuffix(line, "\r"))
		if !more {
			break
		}
		rest = tail
	}
	return nil, "", false
}

type state int

const (
	scanningKey state = iota
	collectingItems
)

// headerParser is the two-state machine behind Decode. In scanningKey every
// line is a candidate key line; a key with an empty value opens a list and
// moves to collectingItems, which lasts until the next key line.
type headerParser struct {
	state  state
	key    string
	items  []string
	fields Fields
}

func parseHeader(lines []string) Fields {
	p := &headerParser{fields: Fields{}}
	for _, line := range lines {
		p.feed(line)
	}
	p.closeList()
	return p.fields
}

func (p *headerParser) feed(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}

	if listItemRe.MatchString(line) {
		if p.state == collectingItems {
			item := strings.TrimSpace(listItemRe.ReplaceAllString(line, ""))
			p.items = append(p.items, unquote(item))
		}
		return
	}

	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}

	p.closeList()
	value = strings.TrimSpace(value)
	if value == "" {
		p.state = collectingItems
		p.key = key
		p.items = []string{}
		return
	}
	p.fields[key] = Field{Value: unquote(value)}
}

func (p *headerParser) closeList() {
	if p.state != collectingItems {
		return
	}
	p.fields[p.key] = Field{Items: p.items, List: true}
	p.state = scanningKey
	p.key = ""
	p.items = nil
}

// unquote strips one layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// Metadata projects decoded fields onto PostMetadata. Missing keys stay zero;
// callers apply their own defaults (such as an "Untitled" title).
func Metadata(f Fields) models.PostMetadata {
	var m models.PostMetadata
	m.Title, _ = f.String("title")
	m.Date, _ = f.String("date")
	m.Author, _ = f.String("author")
	m.Tags, _ = f.List("tags")
	m.Categories, _ = f.List("categories")
	if v, ok := f["draft"]; ok {
		m.Draft = models.Bool(v.List || v.Value != "false")
	}
	return m
}

// Parse decodes raw and projects the header onto PostMetadata.
func Parse(raw string) (models.PostMetadata, string) {
	f, body := Decode(raw)
	return Metadata(f), body
}

// Encode renders m as a header followed by one blank line. Fields are written
// in a fixed order; the title is always double quoted and a missing date is
// filled with the current time.
func Encode(m models.PostMetadata) string {
	var b strings.Builder
	b.WriteString(delim + "\n")
	b.WriteString(`title: "` + m.Title + `"` + "\n")

	date := m.Date
	if date == "" {
		date = now().Format(time.RFC3339)
	}
	b.WriteString("date: " + date + "\n")

	if m.Author != "" {
		b.WriteString("author: " + m.Author + "\n")
	}
	writeList(&b, "tags", m.Tags)
	writeList(&b, "categories", m.Categories)

	if m.IsDraft() {
		b.WriteString("draft: true\n")
	} else {
		b.WriteString("draft: false\n")
	}
	b.WriteString(delim + "\n\n")
	return b.String()
}

func writeList(b *strings.Builder, key string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(key + ":\n")
	for _, item := range items {
		b.WriteString("  - " + item + "\n")
	}
}

// Document renders a complete post: header plus body.
func Document(m models.PostMetadata, body string) string {
	return Encode(m) + body
}
