// Package storage defines where posts are kept: a local directory or a
// remote GitHub repository.
package storage

import (
	"context"

	"github.com/starford/hugoblog/internal/models"
)

// Provider is the capability shared by every post backend.
type Provider interface {
	// List returns every Markdown post in the content location.
	List(ctx context.Context) ([]models.PostRef, error)
	// Read returns the raw text of the post identified by id.
	Read(ctx context.Context, id string) ([]byte, error)
	// Create stores content under id and fails with apperr.ErrConflict when
	// a post already exists there. message describes the change.
	Create(ctx context.Context, id string, content []byte, message string) error
	// Locate returns the identifier a post named name would have.
	Locate(name string) string
}
