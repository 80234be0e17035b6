// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// rootFlags are shared by every command.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Path to an optional .env file with Spotify credentials",
			Value: ".env",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// inputFlags override the configured input tables.
func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "catalog",
			Usage: "Catalog CSV with audio features (default: data.catalog_path)",
		},
		&cli.StringFlag{
			Name:  "liked",
			Usage: "Liked-list CSV with an id column (default: data.liked_path)",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Directory for generated files (default: data.output_dir)",
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml from the bundled example",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// runCommand runs the full recommendation pipeline.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Train on liked tracks and rank unseen catalog tracks",
		Flags: append(inputFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Additional export format: csv, json, markdown, txt",
				Value:   "csv",
			},
			&cli.IntFlag{
				Name:    "top",
				Aliases: []string{"n"},
				Usage:   "Number of recommendations (default: pipeline.top_n)",
			},
			modelFlag(),
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Do not record the run in the database",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print recommendations as JSON instead of a table",
			},
		),
		Action: r.RunPipeline,
	}
}

func modelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "model",
		Aliases: []string{"m"},
		Usage:   "Classifier kind: gbdt or mlp (default: model.kind)",
	}
}

// balanceCommand writes the balanced training table without training.
func balanceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "balance",
		Usage:  "Merge and balance the inputs, writing the training table CSV",
		Flags:  inputFlags(),
		Action: r.BalanceTable,
	}
}

// genresCommand inspects the genre normalizer.
func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "Inspect coarse genre categories",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List categories and their tags",
				Action: r.GenresList,
			},
			{
				Name:      "lookup",
				Usage:     "Show the category for one or more tags",
				ArgsUsage: "<tag> [tag...]",
				Action:    r.GenresLookup,
			},
		},
	}
}

// spotifyCommand collects inputs from the Spotify Web API.
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Collect liked tracks and metadata from Spotify",
		Commands: []*cli.Command{
			{
				Name:  "playlist",
				Usage: "Fetch playlists and write a liked-list CSV",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "id",
						Usage:    "Playlist ID (repeat for several playlists)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output CSV path (default: data.liked_path)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent playlist fetchers",
						Value: 3,
					},
				},
				Action: r.SpotifyPlaylist,
			},
			{
				Name:  "years",
				Usage: "Fetch album release years for liked tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "liked",
						Usage: "Liked-list CSV (default: data.liked_path)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.SpotifyYears,
			},
		},
	}
}

// historyCommand reads recorded runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past pipeline runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only runs with this status (pending, completed, failed)",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a run and its recommendations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Run ID or sequence number (default: latest)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a recorded run",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Run ID",
						Required: true,
					},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Run the pipeline in an interactive terminal view",
		Flags: append(inputFlags(), modelFlag(), &cli.BoolFlag{
			Name:  "no-save",
			Usage: "Do not record the run in the database",
		}),
		Action: r.TUI,
	}
}
