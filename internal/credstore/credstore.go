// Package credstore keeps the generative API key in a file under the user's
// configuration directory, so CLI and web server share one credential.
// The GENAI_API_KEY environment variable, when set, wins over the file.
package credstore

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruliana/technoir-transmission-generator/internal/errors"
)

const envKey = "GENAI_API_KEY"

type Store struct {
	path string
}

func New(path string) Store {
	return Store{path: path}
}

// DefaultPath places the key file under the platform config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locate user config directory")
	}
	return filepath.Join(dir, "technoir", "api_key"), nil
}

func (s Store) Set(key string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create credential directory", slog.String("path", s.path))
	}
	if err := os.WriteFile(s.path, []byte(key+"\n"), 0o600); err != nil {
		return errors.Wrap(err, "write credential", slog.String("path", s.path))
	}
	return nil
}

// Get returns the stored key, or "" when none is configured. A missing
// credential is not an error here; the content client rejects generation
// requests without one.
func (s Store) Get() (string, error) {
	if key, ok := os.LookupEnv(envKey); ok && key != "" {
		return key, nil
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "read credential", slog.String("path", s.path))
	}
	return strings.TrimSpace(string(raw)), nil
}

func (s Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove credential", slog.String("path", s.path))
	}
	return nil
}
