package hugo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/testutil"
)

func TestBuild(t *testing.T) {
	r := testutil.NewRunner()
	if err := New("/site", r).Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.Commands(), []string{"hugo"}) || r.Calls[0].Dir != "/site" {
		t.Errorf("calls = %+v", r.Calls)
	}
}

func TestBuildFailure(t *testing.T) {
	r := testutil.NewRunner()
	r.Script["hugo"] = testutil.Result{Err: &apperr.ProcessError{Name: "hugo", ExitCode: 255}}
	var perr *apperr.ProcessError
	if err := New("", r).Build(context.Background()); !errors.As(err, &perr) {
		t.Errorf("err = %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	r := testutil.NewRunner()
	r.Block["hugo"] = true
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- New("", r).Serve(ctx, 4000) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if !r.Ran("hugo server --buildDrafts --port 4000") {
		t.Errorf("commands = %v", r.Commands())
	}
}

func TestLoadSite(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"hugo.toml", "baseURL = 'https://example.org/'\ntitle = 'My Blog'\n[params]\nauthor = 'Ann'\n"},
		{"config.yaml", "baseURL: https://example.org/\ntitle: My Blog\nparams:\n  author: Ann\n"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			site, err := LoadSite(dir)
			if err != nil {
				t.Fatalf("LoadSite: %v", err)
			}
			if site.Title != "My Blog" || site.BaseURL != "https://example.org/" {
				t.Errorf("site = %+v", site)
			}
			if filepath.Base(site.File) != tt.file {
				t.Errorf("file = %q", site.File)
			}
		})
	}
}

func TestLoadSite_PrefersHugoToml(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "config.toml"), []byte("title = 'old'\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "hugo.toml"), []byte("title = 'new'\n"), 0o644)
	site, err := LoadSite(dir)
	if err != nil || site.Title != "new" {
		t.Errorf("site = %+v, %v", site, err)
	}
}

func TestLoadSite_Missing(t *testing.T) {
	if _, err := LoadSite(t.TempDir()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadSite_Malformed(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "hugo.toml"), []byte("title = \n"), 0o644)
	if _, err := LoadSite(dir); err == nil || errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want parse error", err)
	}
}
