package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Data        DataConfig        `toml:"data"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Model       ModelConfig       `toml:"model"`
	Credentials CredentialsConfig `toml:"credentials"`
	Spotify     SpotifyAPIConfig  `toml:"spotify"`
	Database    DatabaseConfig    `toml:"database"`
	Genres      []GenreConfig     `toml:"genres" validate:"dive"`
}

// DataConfig locates the input tables and the output directory.
type DataConfig struct {
	CatalogPath string `toml:"catalog_path" validate:"required"`
	LikedPath   string `toml:"liked_path" validate:"required"`
	OutputDir   string `toml:"output_dir" validate:"required"`
}

// PipelineConfig holds the balancing, splitting and ranking parameters.
type PipelineConfig struct {
	AmplificationFactor float64 `toml:"amplification_factor" validate:"gt=0"`
	UndersampleRatio    int     `toml:"undersample_ratio" validate:"gte=1"`
	TestRatio           float64 `toml:"test_ratio" validate:"gt=0,lt=1"`
	Seed                int64   `toml:"seed"`
	TopN                int     `toml:"top_n" validate:"gte=1"`
}

// ModelConfig selects the classifier and holds its hyperparameters.
type ModelConfig struct {
	Kind           string         `toml:"kind" validate:"oneof=gbdt mlp"`
	NumTrees       int            `toml:"num_trees" validate:"gte=1"`
	MaxDepth       int            `toml:"max_depth" validate:"gte=1"`
	LearningRate   float64        `toml:"learning_rate" validate:"gt=0"`
	Subsample      float64        `toml:"subsample" validate:"gt=0,lte=1"`
	ColSample      float64        `toml:"colsample" validate:"gt=0,lte=1"`
	Lambda         float64        `toml:"lambda" validate:"gte=0"`
	MinChildWeight float64        `toml:"min_child_weight" validate:"gte=0"`
	Seed           int64          `toml:"seed"`
	MLP            MLPModelConfig `toml:"mlp"`
}

// MLPModelConfig holds the network settings used when the model kind is "mlp".
type MLPModelConfig struct {
	HiddenLayers []int   `toml:"hidden_layers" validate:"min=1,dive,gte=1"`
	MaxEpochs    int     `toml:"max_epochs" validate:"gte=1"`
	BatchSize    int     `toml:"batch_size" validate:"gte=1"`
	LearningRate float64 `toml:"learning_rate" validate:"gt=0"`
	Alpha        float64 `toml:"alpha" validate:"gte=0"`
	Tolerance    float64 `toml:"tolerance" validate:"gte=0"`
	Patience     int     `toml:"patience" validate:"gte=0"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
//
// A static access token takes precedence over the client credentials grant.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
}

// SpotifyAPIConfig tunes request pacing and retries against the catalog API.
type SpotifyAPIConfig struct {
	RateLimit  float64 `toml:"rate_limit" validate:"gt=0"`
	MaxRetries int     `toml:"max_retries" validate:"gte=1"`
	BackoffMS  int     `toml:"backoff_ms" validate:"gte=0"`
	BatchSize  int     `toml:"batch_size" validate:"gte=1,lte=50"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"gte=0"`
}

// GenreConfig is one coarse genre category and the fine-grained tags it absorbs.
//
// Order matters: when a tag is listed under two categories the later one wins.
type GenreConfig struct {
	Name string   `toml:"name" validate:"required"`
	Tags []string `toml:"tags" validate:"min=1"`
}

// HasSpotifyCredentials reports whether either a token or a client id/secret pair is configured.
func (c *Config) HasSpotifyCredentials() bool {
	s := c.Credentials.Spotify
	return s.AccessToken != "" || (s.ClientID != "" && s.ClientSecret != "")
}

// Validate checks field constraints, wrapping failures in [ErrInvalidConfig].
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv loads the optional dotenv files and lets SPOTIFY_* environment variables override credentials.
//
// Missing dotenv files are not an error.
func (c *Config) ApplyEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_ACCESS_TOKEN"); v != "" {
		c.Credentials.Spotify.AccessToken = v
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Fields absent from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
