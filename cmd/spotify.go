package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/tastemaker/internal/dataset"
	"github.com/desertthunder/tastemaker/internal/formatter"
	"github.com/desertthunder/tastemaker/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SpotifyPlaylist fetches playlists and writes their tracks as a liked-list CSV.
func (r *Runner) SpotifyPlaylist(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringSlice("id")
	output := cmd.String("output")
	if output == "" {
		output = r.config.Data.LikedPath
	}

	svc, err := r.catalogService(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("collecting liked tracks", "playlists", len(ids), "service", svc.Name())
	progressCh, wait := r.streamProgress()
	result, err := r.engine.CollectLiked(ctx, progressCh, svc, ids, tasks.CollectOpts{NumWorkers: int(cmd.Int("workers"))})
	close(progressCh)
	wait()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.WriteLikedCSV(&buf, result.Tracks); err != nil {
		return err
	}
	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	r.writePlain("\n✓ %d tracks from %d playlists written to %s\n", len(result.Tracks), result.Successful, output)
	if result.Failed > 0 {
		r.writePlain("\nFailed to fetch %d playlists:\n", result.Failed)
		for _, p := range result.Playlists {
			if p.Error != nil {
				r.writePlain("  - %s: %v\n", p.PlaylistID, p.Error)
			}
		}
	}
	return nil
}

// SpotifyYears fetches album release years for the ids in a liked list.
func (r *Runner) SpotifyYears(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("liked")
	if path == "" {
		path = r.config.Data.LikedPath
	}

	liked, err := dataset.LoadLiked(path)
	if err != nil {
		return err
	}
	ids := liked.IDs()

	svc, err := r.catalogService(ctx)
	if err != nil {
		return err
	}

	progressCh, wait := r.streamProgress()
	years, err := r.engine.FetchYears(ctx, progressCh, svc, ids)
	close(progressCh)
	wait()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(years, true)
	}

	for _, id := range ids {
		if y, ok := years[id]; ok {
			r.writePlain("%s\t%d\n", id, y)
		} else {
			r.writePlain("%s\t-\n", id)
		}
	}
	return nil
}
