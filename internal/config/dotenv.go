// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DotEnvFile is the name of the local environment file.
const DotEnvFile = ".env"

// FindDotEnv searches dir and its parents for DotEnvFile and returns the
// first match, or "" when there is none.
func FindDotEnv(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, DotEnvFile)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadDotEnv loads the nearest DotEnvFile above dir into the process
// environment. Variables that are already set, in any letter case, are left
// untouched. It returns the loaded path, or "" when no file was found.
func LoadDotEnv(dir string) (string, error) {
	path, err := FindDotEnv(dir)
	if err != nil || path == "" {
		return "", err
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	present := OSLookup()
	for k, v := range values {
		if _, ok := present(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return "", fmt.Errorf("set %s from %s: %w", k, path, err)
		}
	}
	return path, nil
}
