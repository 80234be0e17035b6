package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tastemaker/internal/genre"
	"github.com/desertthunder/tastemaker/internal/services"
	"github.com/desertthunder/tastemaker/internal/shared"
	"github.com/desertthunder/tastemaker/internal/tasks"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    services.CatalogService
	normalizer *genre.Normalizer
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.PipelineEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.CatalogService
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

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.rebuild()
	return r
}

// rebuild derives the normalizer and engine from the current config and logger.
func (r *Runner) rebuild() {
	r.normalizer = genre.Default()
	if len(r.config.Genres) > 0 {
		categories := make([]genre.Category, len(r.config.Genres))
		for i, g := range r.config.Genres {
			categories[i] = genre.Category{Name: g.Name, Tags: g.Tags}
		}
		r.normalizer = genre.NewNormalizer(categories)
	}
	r.engine = tasks.NewPipelineEngine(r.normalizer, tasks.WithEngineLogger(r.logger))
}

// SetLogger replaces the logger used by the runner and its engine.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.rebuild()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, runCommand, balanceCommand, genresCommand, spotifyCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file named by --config, applies the environment and log level.
//
// A missing file falls back to defaults unless --config was given explicitly.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	r.configPath = path

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else if cmd.IsSet("config") {
		return ctx, fmt.Errorf("%w: config file %s not found", shared.ErrMissingConfig, path)
	}

	if err := r.config.ApplyEnv(cmd.String("env")); err != nil {
		return ctx, err
	}
	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	r.rebuild()

	r.logger.Debug("configuration loaded", "path", path, "spotify", r.config.HasSpotifyCredentials())
	return ctx, nil
}

// catalogService returns the injected service or builds a Spotify client from the credentials.
func (r *Runner) catalogService(ctx context.Context) (services.CatalogService, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}
	if !r.config.HasSpotifyCredentials() {
		return nil, fmt.Errorf("%w: set credentials.spotify in %s or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET", shared.ErrMissingCredentials, r.configPath)
	}

	svc, err := services.NewSpotifyService(ctx, r.config.Credentials.Spotify, r.config.Spotify, services.WithLogger(r.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}
	r.spotify = svc
	return svc, nil
}

// streamProgress prints updates from the returned channel until it is closed. Call the returned
// function after closing the channel to wait for the last line.
func (r *Runner) streamProgress() (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPlaylist, tasks.FetchYears:
				r.writePlain("📥 %s\n", update.Message)
			default:
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
			}
		}
	}()
	return progressCh, func() { <-done }
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
