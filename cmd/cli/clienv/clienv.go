// Package clienv builds the shared dependencies of the CLI commands from
// the same environment variables the web server reads.
package clienv

import (
	"log/slog"
	"os"

	"github.com/ruliana/technoir-transmission-generator/internal/archive"
	"github.com/ruliana/technoir-transmission-generator/internal/credstore"
	"github.com/ruliana/technoir-transmission-generator/internal/db"
	"github.com/ruliana/technoir-transmission-generator/internal/envstruct"
	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/genai"
	"github.com/ruliana/technoir-transmission-generator/internal/logging"
	"github.com/ruliana/technoir-transmission-generator/internal/pipeline"
	"github.com/ruliana/technoir-transmission-generator/internal/repositories"
)

type config struct {
	SqliteURL      string `env:"TECHNOIR_SQLITE_URL" envDefault:"./technoir.sqlite"`
	ArchiveURL     string `env:"TECHNOIR_ARCHIVE_URL" envDefault:"https://archive.technoir-rpg.net"`
	CredentialPath string `env:"TECHNOIR_CREDENTIAL_PATH" envDefault:""`
	GenAIBaseURL   string `env:"GENAI_BASE_URL" envDefault:""`
	TextModel      string `env:"GENAI_TEXT_MODEL" envDefault:""`
	ImageModel     string `env:"GENAI_IMAGE_MODEL" envDefault:""`
}

func loadConfig() (config, error) {
	var cfg config
	if err := envstruct.Populate(&cfg, os.LookupEnv); err != nil {
		return cfg, errors.Wrap(err, "read configuration")
	}
	return cfg, nil
}

// Logger writes structured logs to stderr so command output on stdout stays
// clean.
func Logger() *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))
}

// OpenRepo opens the local transmission store. The caller owns the returned
// close function.
func OpenRepo(logger *slog.Logger) (*repositories.TransmissionRepository, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	dbs, err := db.NewDB(cfg.SqliteURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	return repositories.NewTransmissionRepository(dbs, logger), dbs.Close, nil
}

// Credentials returns the API key store.
func Credentials() (credstore.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return credstore.Store{}, err
	}
	path := cfg.CredentialPath
	if path == "" {
		if path, err = credstore.DefaultPath(); err != nil {
			return credstore.Store{}, err
		}
	}
	return credstore.New(path), nil
}

// NewOrchestrator builds a generation pipeline against the stored
// credential.
func NewOrchestrator(logger *slog.Logger) (*pipeline.Orchestrator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	creds, err := Credentials()
	if err != nil {
		return nil, err
	}
	key, err := creds.Get()
	if err != nil {
		return nil, err
	}
	gen := genai.NewClient(genai.Config{
		APIKey:     key,
		BaseURL:    cfg.GenAIBaseURL,
		TextModel:  cfg.TextModel,
		ImageModel: cfg.ImageModel,
	}, logger)
	return pipeline.New(gen, logger), nil
}

// ArchiveClient talks to the shared archive host.
func ArchiveClient(logger *slog.Logger) (*archive.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return archive.NewClient(cfg.ArchiveURL, nil, logger), nil
}
