package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/hugoblog/internal"
	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/postservice"
)

// version is set at build time.
var version = "dev"

func bootstrap(ctx context.Context, cmd *cli.Command) (*internal.App, error) {
	return internal.Bootstrap(ctx,
		internal.WithEnvFile(cmd.String("env-file")),
		internal.WithVerbose(cmd.Bool("verbose")),
		internal.WithVersion(version),
	)
}

func runNew(ctx context.Context, cmd *cli.Command) error {
	app, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	return app.NewPost(ctx, internal.NewOptions{AI: cmd.Bool("ai")})
}

func runList(ctx context.Context, cmd *cli.Command) error {
	filter := postservice.All
	switch drafts, published := cmd.Bool("drafts"), cmd.Bool("published"); {
	case drafts && published:
		return errors.New("--drafts and --published cannot be combined")
	case drafts:
		filter = postservice.DraftsOnly
	case published:
		filter = postservice.PublishedOnly
	}

	app, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	return app.ListPosts(ctx, internal.ListOptions{
		Filter:  filter,
		Format:  cmd.String("format"),
		Summary: cmd.Bool("summary"),
	})
}

func runEdit(ctx context.Context, cmd *cli.Command) error {
	app, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	return app.EditPost(ctx, cmd.Args().First())
}

func runPreview(ctx context.Context, cmd *cli.Command) error {
	app, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	return app.Preview(ctx, internal.PreviewOptions{
		Port:  int(cmd.Int("port")),
		Watch: cmd.Bool("watch"),
	})
}

func runPublish(ctx context.Context, cmd *cli.Command) error {
	app, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	return app.Publish(ctx)
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	app, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	return app.ServeMCP()
}

func runSetup(_ context.Context, cmd *cli.Command) error {
	internal.Setup(cmd.Root().Writer)
	return nil
}

// report prints err for the user to w and returns the process exit code.
func report(w io.Writer, err error) int {
	var cfgErr *apperr.ConfigError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, apperr.ErrCancelled):
		fmt.Fprintln(w, "Cancelled")
		return 0
	case errors.As(err, &cfgErr):
		fmt.Fprintln(w, "Configuration error:")
		for _, p := range cfgErr.Problems {
			fmt.Fprintf(w, "  - %s\n", p)
		}
		fmt.Fprintln(w, "\nSet up your .env file. Run: blog setup")
		return 1
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}
}

// newRoot builds the command tree. Help and setup output go to out.
func newRoot(out, errOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "blog",
		Usage:     "Create, list, edit, preview and publish Hugo blog posts",
		Version:   version,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "Path to an optional .env file",
				Value:   ".env",
				Sources: cli.EnvVars("BLOG_ENV_FILE"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "new",
				Usage:  "Create a new post",
				Action: runNew,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ai", Usage: "Turn raw notes into the post body with the text generator"},
				},
			},
			{
				Name:   "list",
				Usage:  "List posts newest first",
				Action: runList,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "drafts", Usage: "Show only drafts"},
					&cli.BoolFlag{Name: "published", Usage: "Show only published posts"},
					&cli.StringFlag{Name: "format", Usage: "Output format: text, json or yaml", Value: internal.FormatText},
					&cli.BoolFlag{Name: "summary", Usage: "Show a snippet of each post"},
				},
			},
			{
				Name:      "edit",
				Usage:     "Open a local post in your editor",
				ArgsUsage: "[filename]",
				Action:    runEdit,
			},
			{
				Name:   "preview",
				Usage:  "Run the Hugo development server with drafts",
				Action: runPreview,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Server port", Value: 1313},
					&cli.BoolFlag{Name: "watch", Usage: "Report post changes while serving"},
				},
			},
			{
				Name:   "publish",
				Usage:  "Build the site, commit and push",
				Action: runPublish,
			},
			{
				Name:   "mcp",
				Usage:  "Serve posts to MCP clients over stdio",
				Action: runMCP,
			},
			{
				Name:   "setup",
				Usage:  "Show the setup and usage guide",
				Action: runSetup,
			},
		},
	}
}

func main() {
	os.Exit(report(os.Stderr, newRoot(os.Stdout, os.Stderr).Run(context.Background(), os.Args)))
}
