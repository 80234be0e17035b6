package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/tastemaker/internal/formatter"
	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/repositories"
	"github.com/desertthunder/tastemaker/internal/shared"
	"github.com/urfave/cli/v3"
)

type runView struct {
	ID              string            `json:"id"`
	Sequence        int               `json:"sequence"`
	Status          models.RunStatus  `json:"status"`
	CatalogPath     string            `json:"catalog_path"`
	LikedPath       string            `json:"liked_path"`
	Seed            int64             `json:"seed"`
	Summary         models.RunSummary `json:"summary"`
	CreatedAt       time.Time         `json:"created_at"`
	Recommendations []recommendation  `json:"recommendations,omitempty"`
}

type recommendation struct {
	Rank        int     `json:"rank"`
	TrackID     string  `json:"track_id"`
	TrackName   string  `json:"track_name"`
	Artists     string  `json:"artists"`
	Probability float64 `json:"probability"`
}

func (r *Runner) openHistory() (*repositories.RunRecorder, func(), error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return repositories.NewRunRecorder(db), func() { db.Close() }, nil
}

// HistoryList prints recorded runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	history, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := history.Runs().List(models.RunFilter{
		Status: models.RunStatus(cmd.String("status")),
		Limit:  int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded yet. Run 'tastemaker run' first.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Runs (%d)", len(runs)))
	for _, run := range runs {
		s := run.Summary()
		r.writePlain("#%-4d %-9s %s  liked=%d balanced=%d accuracy=%.3f  %s\n",
			run.Sequence(), run.Status(), run.CreatedAt().Format(time.DateTime),
			s.LikedRows, s.BalancedRows, s.Accuracy, run.ID())
	}
	return nil
}

// HistoryShow prints one run and its persisted recommendations.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	history, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	run, err := findRun(history.Runs(), cmd.String("id"))
	if err != nil {
		return err
	}

	saved, err := history.Recommendations().ListByRun(run.ID())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		view := runView{
			ID:          run.ID(),
			Sequence:    run.Sequence(),
			Status:      run.Status(),
			CatalogPath: run.CatalogPath(),
			LikedPath:   run.LikedPath(),
			Seed:        run.Seed(),
			Summary:     run.Summary(),
			CreatedAt:   run.CreatedAt(),
		}
		for _, p := range saved {
			view.Recommendations = append(view.Recommendations, recommendation{
				Rank:        p.Rank(),
				TrackID:     p.TrackID(),
				TrackName:   p.TrackName(),
				Artists:     p.Artists(),
				Probability: p.Probability(),
			})
		}
		return r.writeJSON(view, true)
	}

	s := run.Summary()
	r.writePlainHeader(fmt.Sprintf("Run #%d (%s)", run.Sequence(), run.Status()))
	r.writePlain("ID: %s\n", run.ID())
	r.writePlain("Created: %s\n", run.CreatedAt().Format(time.DateTime))
	r.writePlain("Catalog: %s\n", run.CatalogPath())
	r.writePlain("Liked: %s\n", run.LikedPath())
	r.writePlain("Seed: %d\n", run.Seed())
	r.writePlain("Rows: %d catalog, %d liked, %d synthetic, %d balanced\n", s.CatalogRows, s.LikedRows, s.SyntheticRows, s.BalancedRows)
	r.writePlain("Accuracy: %.3f\n\n", s.Accuracy)

	recs := make([]models.Recommendation, len(saved))
	for i, p := range saved {
		recs[i] = p.Recommendation()
	}
	return formatter.WriteRecommendationsText(r.output, recs)
}

// HistoryDelete soft-deletes a run.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	history, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	id := cmd.String("id")
	if err := history.Runs().Delete(id); err != nil {
		return err
	}
	r.writePlain("✓ Deleted run %s\n", id)
	return nil
}

// findRun resolves ref as a run id, then as a sequence number. An empty ref selects the latest run.
func findRun(runs *repositories.RunRepository, ref string) (*models.Run, error) {
	if ref == "" {
		run, err := runs.Latest()
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: no runs recorded", shared.ErrNotFound)
		}
		return run, err
	}

	run, err := runs.Get(ref)
	if err == nil || !errors.Is(err, shared.ErrNotFound) {
		return run, err
	}
	if seq, convErr := strconv.Atoi(ref); convErr == nil {
		return runs.GetBySequence(seq)
	}
	return nil, err
}
