package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./tastemaker.db" {
			t.Errorf("expected database path ./tastemaker.db, got %s", config.Database.Path)
		}
		if config.Pipeline.AmplificationFactor != 2 {
			t.Errorf("expected amplification factor 2, got %v", config.Pipeline.AmplificationFactor)
		}
		if config.Pipeline.UndersampleRatio != 2 {
			t.Errorf("expected undersample ratio 2, got %d", config.Pipeline.UndersampleRatio)
		}
		if config.Pipeline.TopN != 20 {
			t.Errorf("expected top_n 20, got %d", config.Pipeline.TopN)
		}
		if config.Model.NumTrees != 200 || config.Model.MaxDepth != 5 {
			t.Errorf("unexpected model defaults: %+v", config.Model)
		}
		if config.Model.Kind != "gbdt" || len(config.Model.MLP.HiddenLayers) != 2 || config.Model.MLP.MaxEpochs != 500 {
			t.Errorf("unexpected model kind defaults: %+v", config.Model)
		}
		if config.Spotify.BatchSize != 50 {
			t.Errorf("expected batch size 50, got %d", config.Spotify.BatchSize)
		}
		if len(config.Genres) != 0 {
			t.Errorf("expected no genre overrides, got %d", len(config.Genres))
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Data.CatalogPath != DefaultConfig().Data.CatalogPath {
			t.Errorf("created config catalog path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")
		testConfig := `[data]
catalog_path = "/tmp/catalog.csv"

[pipeline]
undersample_ratio = 3
seed = 7

[model]
kind = "mlp"

[model.mlp]
max_epochs = 50

[[genres]]
name = "pop"
tags = ["pop", "k-pop"]

[[genres]]
name = "rock"
tags = ["rock"]
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Data.CatalogPath != "/tmp/catalog.csv" {
			t.Errorf("expected catalog path /tmp/catalog.csv, got %s", config.Data.CatalogPath)
		}
		if config.Data.LikedPath == "" {
			t.Error("expected liked path to keep its default")
		}
		if config.Pipeline.UndersampleRatio != 3 || config.Pipeline.Seed != 7 {
			t.Errorf("unexpected pipeline config: %+v", config.Pipeline)
		}
		if config.Pipeline.TestRatio != 0.2 {
			t.Errorf("expected default test ratio 0.2, got %v", config.Pipeline.TestRatio)
		}
		if config.Model.Kind != "mlp" || config.Model.MLP.MaxEpochs != 50 || config.Model.MLP.BatchSize != 200 {
			t.Errorf("unexpected model config: %+v", config.Model)
		}
		if config.Model.NumTrees != 200 {
			t.Errorf("expected tree settings to keep their defaults, got %d", config.Model.NumTrees)
		}
		if len(config.Genres) != 2 || config.Genres[1].Name != "rock" {
			t.Errorf("expected genres in file order, got %+v", config.Genres)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Pipeline.TopN = 5
		config.Credentials.Spotify.AccessToken = "token"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Pipeline.TopN != 5 {
			t.Errorf("expected top_n 5, got %d", loaded.Pipeline.TopN)
		}
		if loaded.Credentials.Spotify.AccessToken != "token" {
			t.Errorf("expected access token to persist")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tt := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "zero amplification", mutate: func(c *Config) { c.Pipeline.AmplificationFactor = 0 }, wantErr: true},
		{name: "zero undersample ratio", mutate: func(c *Config) { c.Pipeline.UndersampleRatio = 0 }, wantErr: true},
		{name: "test ratio of one", mutate: func(c *Config) { c.Pipeline.TestRatio = 1 }, wantErr: true},
		{name: "subsample above one", mutate: func(c *Config) { c.Model.Subsample = 1.5 }, wantErr: true},
		{name: "unknown model kind", mutate: func(c *Config) { c.Model.Kind = "forest" }, wantErr: true},
		{name: "mlp kind", mutate: func(c *Config) { c.Model.Kind = "mlp" }},
		{name: "mlp without layers", mutate: func(c *Config) { c.Model.MLP.HiddenLayers = nil }, wantErr: true},
		{name: "mlp zero unit layer", mutate: func(c *Config) { c.Model.MLP.HiddenLayers = []int{8, 0} }, wantErr: true},
		{name: "batch size above API limit", mutate: func(c *Config) { c.Spotify.BatchSize = 51 }, wantErr: true},
		{name: "missing catalog path", mutate: func(c *Config) { c.Data.CatalogPath = "" }, wantErr: true},
		{name: "genre without tags", mutate: func(c *Config) {
			c.Genres = []GenreConfig{{Name: "pop"}}
		}, wantErr: true},
		{name: "valid genre override", mutate: func(c *Config) {
			c.Genres = []GenreConfig{{Name: "pop", Tags: []string{"pop"}}}
		}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)

			err := config.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigApplyEnv(t *testing.T) {
	t.Run("environment overrides credentials", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
		t.Setenv("SPOTIFY_ACCESS_TOKEN", "")

		config := DefaultConfig()
		if err := config.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("missing env file should be ignored: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("expected client id from env, got %s", config.Credentials.Spotify.ClientID)
		}
		if !config.HasSpotifyCredentials() {
			t.Error("expected credentials to be present")
		}
	})

	t.Run("dotenv file", func(t *testing.T) {
		// godotenv never overrides variables that are already set
		t.Setenv("SPOTIFY_ACCESS_TOKEN", "")
		os.Unsetenv("SPOTIFY_ACCESS_TOKEN")
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("SPOTIFY_ACCESS_TOKEN=from-file\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		config := DefaultConfig()
		if err := config.ApplyEnv(envPath); err != nil {
			t.Fatalf("failed to apply env: %v", err)
		}
		if config.Credentials.Spotify.AccessToken != "from-file" {
			t.Errorf("expected token from env file, got %q", config.Credentials.Spotify.AccessToken)
		}
	})
}
