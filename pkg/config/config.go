// Package config loads flat key/value configuration from a dotenv file
// overlaid with the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads filename (if it exists) and overlays the process environment on
// top of it. Variables already set in the environment win over the file.
func Load(filename string) (map[string]string, error) {
	values := map[string]string{}

	if filename != "" {
		fileValues, err := godotenv.Read(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read env file %s: %w", filename, err)
		default:
			for k, v := range fileValues {
				values[k] = v
			}
		}
	}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || v == "" {
			continue
		}
		values[k] = v
	}

	return values, nil
}
