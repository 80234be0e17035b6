package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tastemaker/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a config file from the bundled example.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Point data.catalog_path and data.liked_path at your CSV files\n")
	r.writePlain("2. Optionally set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET in .env\n")
	r.writePlain("3. Run 'tastemaker run'\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	return nil
}
