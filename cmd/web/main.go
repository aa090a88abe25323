package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/ruliana/technoir-transmission-generator/internal/archive"
	"github.com/ruliana/technoir-transmission-generator/internal/broker"
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
	Addr           string `env:"TECHNOIR_ADDR" envDefault:"localhost:4000"`
	SqliteURL      string `env:"TECHNOIR_SQLITE_URL" envDefault:"./technoir.sqlite"`
	ArchiveURL     string `env:"TECHNOIR_ARCHIVE_URL" envDefault:"https://archive.technoir-rpg.net"`
	CredentialPath string `env:"TECHNOIR_CREDENTIAL_PATH" envDefault:""`
	GenAIBaseURL   string `env:"GENAI_BASE_URL" envDefault:""`
	TextModel      string `env:"GENAI_TEXT_MODEL" envDefault:""`
	ImageModel     string `env:"GENAI_IMAGE_MODEL" envDefault:""`
}

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	transmissions  *repositories.TransmissionRepository
	archive        *archive.Client
	creds          credstore.Store
	broker         *broker.ProgressBroker
	htmx           *htmx.HTMX

	// newOrchestrator builds a pipeline against the currently stored
	// credential. Tests swap this for a scripted generator.
	newOrchestrator func() (*pipeline.Orchestrator, error)

	// runs maps finished generation runs to their outcome so the SSE
	// handler can close the stream with a destination.
	runs sync.Map
}

func main() {
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("load .env", errors.SlogError(err))
		os.Exit(1)
	}

	ctx := context.Background()
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	logger *slog.Logger,
	lookupEnv func(string) (string, bool),
	overrides ...func(*application),
) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "read configuration")
	}

	dbs, err := db.NewDB(cfg.SqliteURL)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	credPath := cfg.CredentialPath
	if credPath == "" {
		if credPath, err = credstore.DefaultPath(); err != nil {
			return err
		}
	}

	progressBroker := broker.New()
	go progressBroker.Start()
	defer progressBroker.Stop()

	app := &application{
		logger:         logger,
		sessionManager: sessionManager,
		transmissions:  repositories.NewTransmissionRepository(dbs, logger),
		archive:        archive.NewClient(cfg.ArchiveURL, nil, logger),
		creds:          credstore.New(credPath),
		broker:         progressBroker,
		htmx:           htmx.New(),
	}
	app.newOrchestrator = func() (*pipeline.Orchestrator, error) {
		key, credErr := app.creds.Get()
		if credErr != nil {
			return nil, credErr
		}
		gen := genai.NewClient(genai.Config{
			APIKey:     key,
			BaseURL:    cfg.GenAIBaseURL,
			TextModel:  cfg.TextModel,
			ImageModel: cfg.ImageModel,
		}, logger)
		return pipeline.New(gen, logger), nil
	}
	for _, override := range overrides {
		override(app)
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}
