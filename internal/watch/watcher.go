// Package watch reports post changes in a local content directory while the
// preview server runs.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/checksum"
	"github.com/starford/hugoblog/internal/frontmatter"
	"github.com/starford/hugoblog/internal/storage"
)

// Event kinds.
const (
	Created = "created"
	Updated = "updated"
	Deleted = "deleted"
)

// settle is how long a file must stay quiet before its change is reported.
// Editors often emit several events for one save.
const settle = 200 * time.Millisecond

// Event describes one settled change to a post.
type Event struct {
	Kind  string
	Name  string
	Title string
	Draft bool
}

// Callback receives settled events.
type Callback func(Event)

// Watch watches root, the directory behind store, until ctx is cancelled.
// Only Markdown files directly inside root are reported; hidden files such
// as in-flight temporary files are ignored.
func Watch(ctx context.Context, store storage.Provider, root string, logger zerolog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	logger.Info().Str("root", root).Msg("watcher: started")

	seen := snapshot(ctx, store, logger)
	pending := map[string]string{}
	var timer *time.Timer
	var timerC <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(settle)
			timerC = timer.C
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Debug().Msg("watcher: stopped")
			return nil

		case <-timerC:
			timer, timerC = nil, nil
			flush(ctx, store, pending, seen, logger, cb)
			pending = map[string]string{}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, ".") {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				if pending[name] == Deleted {
					pending[name] = Updated
				} else {
					pending[name] = Created
				}
			case ev.Op&fsnotify.Write != 0:
				if pending[name] == "" {
					pending[name] = Updated
				}
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				pending[name] = Deleted
			default:
				continue
			}
			logger.Debug().Str("path", name).Str("op", ev.Op.String()).Msg("watcher: event")
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(watchErr).Msg("watcher: error")
		}
	}
}

// snapshot fingerprints the posts present when watching starts.
func snapshot(ctx context.Context, store storage.Provider, logger zerolog.Logger) checksum.Set {
	seen := checksum.Set{}
	refs, err := store.List(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("watcher: initial listing failed")
		return seen
	}
	for _, ref := range refs {
		data, err := store.Read(ctx, ref.ID)
		if err != nil {
			continue
		}
		seen.Changed(ref.Name, data)
	}
	return seen
}

// flush reports pending changes in name order. A file that vanished before
// it could be read is reported as deleted; an update that left the content
// unchanged is dropped.
func flush(ctx context.Context, store storage.Provider, pending map[string]string, seen checksum.Set, logger zerolog.Logger, cb Callback) {
	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ev := Event{Kind: pending[name], Name: name}
		if ev.Kind != Deleted {
			data, err := store.Read(ctx, store.Locate(name))
			switch {
			case errors.Is(err, apperr.ErrNotFound):
				ev.Kind = Deleted
			case err != nil:
				logger.Warn().Err(err).Str("path", name).Msg("watcher: read failed")
				continue
			default:
				if !seen.Changed(name, data) && ev.Kind == Updated {
					logger.Debug().Str("path", name).Msg("watcher: content unchanged")
					continue
				}
				meta, _ := frontmatter.Parse(string(data))
				ev.Title = meta.Title
				ev.Draft = meta.IsDraft()
			}
		}
		if ev.Kind == Deleted {
			seen.Forget(name)
		}
		if cb != nil {
			cb(ev)
		}
	}
}
