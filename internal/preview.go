package internal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/hugoblog/internal/hugo"
	"github.com/starford/hugoblog/internal/watch"
)

// PreviewOptions controls Preview.
type PreviewOptions struct {
	Port int
	// Watch reports post changes while the server runs. Local mode only.
	Watch bool
}

// Preview runs the Hugo development server, drafts included, until it exits
// or the process is interrupted.
func (a *App) Preview(ctx context.Context, opts PreviewOptions) error {
	port := opts.Port
	if port <= 0 {
		port = hugo.DefaultPort
	}

	if site, err := hugo.LoadSite(a.siteDir); err == nil && site.Title != "" {
		fmt.Fprintf(a.out, "Previewing %s\n", site.Title)
	}
	fmt.Fprintf(a.out, "Starting Hugo development server on http://localhost:%d\n", port)
	fmt.Fprintln(a.out, "Press Ctrl+C to stop the server.")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	if opts.Watch {
		if a.local == nil {
			a.logger.Warn().Msg("--watch needs a local content directory; ignoring")
		} else {
			g.Go(func() error {
				err := watch.Watch(gCtx, a.local, a.local.Root(), a.logger, a.reportChange)
				if err != nil {
					a.logger.Warn().Err(err).Msg("content watcher disabled")
				}
				return nil
			})
		}
	}

	g.Go(func() error {
		defer cancel()
		return a.hugo.Serve(gCtx, port)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			a.logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	err := g.Wait()
	fmt.Fprintln(a.out, "Hugo server stopped")
	return err
}

func (a *App) reportChange(ev watch.Event) {
	switch ev.Kind {
	case watch.Deleted:
		fmt.Fprintf(a.out, "[%s] %s\n", ev.Kind, ev.Name)
	default:
		status := "published"
		if ev.Draft {
			status = "draft"
		}
		fmt.Fprintf(a.out, "[%s] %s: %s (%s)\n", ev.Kind, ev.Name, ev.Title, status)
	}
}
