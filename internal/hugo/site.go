package hugo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/starford/hugoblog/internal/apperr"
)

// configFiles are searched in order, mirroring hugo's own lookup.
var configFiles = []string{
	"hugo.toml", "hugo.yaml", "hugo.yml",
	"config.toml", "config.yaml", "config.yml",
}

// Site holds the few site settings the tool reports.
type Site struct {
	Title   string `toml:"title" yaml:"title"`
	BaseURL string `toml:"baseURL" yaml:"baseURL"`
	// File is the configuration file the values came from.
	File string `toml:"-" yaml:"-"`
}

// LoadSite reads the first site configuration file found in dir. It fails
// with apperr.ErrNotFound when there is none.
func LoadSite(dir string) (*Site, error) {
	for _, name := range configFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read site config: %w", err)
		}

		site := &Site{File: path}
		switch filepath.Ext(name) {
		case ".toml":
			err = toml.Unmarshal(data, site)
		default:
			err = yaml.Unmarshal(data, site)
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return site, nil
	}
	return nil, fmt.Errorf("site config in %s: %w", dir, apperr.ErrNotFound)
}
