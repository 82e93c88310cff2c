package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ymscrape/internal/repositories"
	"github.com/desertthunder/ymscrape/internal/services"
	"github.com/desertthunder/ymscrape/internal/shared"
	"github.com/desertthunder/ymscrape/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, store and engine are opened on first use so commands that never touch them stay cheap.
type Runner struct {
	config     *shared.Config
	configPath string
	fetcher    services.Fetcher
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db     *sql.DB
	store  *repositories.Store
	engine *tasks.ArtistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Fetcher    services.Fetcher // defaults to an HTTP fetcher built from the scraper config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		fetcher:    opts.Fetcher,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, parseCommand, serveCommand, artistsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openStore opens and migrates the configured database, then builds the store and engine.
func (r *Runner) openStore(ctx context.Context) error {
	if r.store != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	if r.config.Database.Path != ":memory:" && r.config.Database.MaxOpenConns > 0 {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	}

	if err := shared.RunMigrations(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.store = repositories.NewStore(db)
	return nil
}

// openEngine builds the scrape engine over the opened store.
func (r *Runner) openEngine(ctx context.Context) error {
	if r.engine != nil {
		return nil
	}
	if err := r.openStore(ctx); err != nil {
		return err
	}

	extractor, err := services.NewExtractor(r.config.Markers)
	if err != nil {
		return err
	}

	fetcher := r.fetcher
	if fetcher == nil {
		fetcher = services.NewHTTPFetcher(services.FetcherOpts{
			Client:            r.httpClient,
			UserAgent:         r.config.Scraper.UserAgent,
			Timeout:           r.config.Scraper.Timeout(),
			RequestsPerSecond: r.config.Scraper.RequestsPerSecond,
		})
	}

	engine, err := tasks.NewArtistEngine(tasks.EngineOpts{
		Fetcher:   fetcher,
		Extractor: extractor,
		Store:     r.store,
		BaseURL:   r.config.Scraper.BaseURL,
		Logger:    r.logger,
	})
	if err != nil {
		return err
	}

	r.engine = engine
	return nil
}

// Close releases the database if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.store, r.engine = nil, nil, nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
