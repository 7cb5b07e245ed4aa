// Package models defines the domain types for the blog tool.
package models

import "time"

// PostMetadata is the decoded header of a post.
type PostMetadata struct {
	Title      string   `json:"title" yaml:"title"`
	Date       string   `json:"date,omitempty" yaml:"date,omitempty"`
	Author     string   `json:"author,omitempty" yaml:"author,omitempty"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	// Draft is nil when the header carries no draft field.
	Draft *bool `json:"draft,omitempty" yaml:"draft,omitempty"`
}

// IsDraft reports the effective draft flag. A missing flag means draft.
func (m PostMetadata) IsDraft() bool {
	return m.Draft == nil || *m.Draft
}

// Bool returns a pointer to b, for filling PostMetadata.Draft.
func Bool(b bool) *bool {
	return &b
}

// PostRef points at a stored post. ID is backend specific: a file name for the
// local directory, a repository path for the remote backend.
type PostRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// PostListItem is the projection shown by list operations.
type PostListItem struct {
	Filename string    `json:"filename" yaml:"filename"`
	Title    string    `json:"title" yaml:"title"`
	Date     string    `json:"date" yaml:"date"`
	Draft    bool      `json:"draft" yaml:"draft"`
	Tags     []string  `json:"tags" yaml:"tags"`
	Heading  string    `json:"heading,omitempty" yaml:"heading,omitempty"`
	Summary  string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Time     time.Time `json:"-" yaml:"-"`
}

// Post is a fully loaded post.
type Post struct {
	Ref      PostRef
	Metadata PostMetadata
	Body     string
}
