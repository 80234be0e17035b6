package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/tastemaker/internal/models"
)

// RunRecorder records the lifecycle of pipeline runs: a pending row when a run starts, then either its
// ranked output and summary or a failure marker.
type RunRecorder struct {
	runs *RunRepository
	recs *RecommendationRepository
}

// NewRunRecorder creates a RunRecorder over db
func NewRunRecorder(db *sql.DB) *RunRecorder {
	return &RunRecorder{runs: NewRunRepository(db), recs: NewRecommendationRepository(db)}
}

// Start persists a pending run.
func (r *RunRecorder) Start(catalogPath, likedPath string, seed int64) (*models.Run, error) {
	run := models.NewRun(0, catalogPath, likedPath, seed)
	if err := r.runs.Create(run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// Complete stores recs in rank order and marks run completed with summary.
func (r *RunRecorder) Complete(run *models.Run, summary models.RunSummary, recs []models.Recommendation) error {
	rows := make([]*models.PersistedRecommendation, len(recs))
	for i, rec := range recs {
		rows[i] = models.NewPersistedRecommendation(run.ID(), i+1, rec)
	}
	if err := r.recs.CreateBatch(rows); err != nil {
		return err
	}

	run.SetSummary(summary)
	run.SetStatus(models.RunCompleted)
	return r.runs.Update(run)
}

// Fail marks run failed, keeping whatever summary was gathered before the error.
func (r *RunRecorder) Fail(run *models.Run, summary models.RunSummary) error {
	run.SetSummary(summary)
	run.SetStatus(models.RunFailed)
	return r.runs.Update(run)
}

// Runs exposes the underlying run repository.
func (r *RunRecorder) Runs() *RunRepository { return r.runs }

// Recommendations exposes the underlying recommendation repository.
func (r *RunRecorder) Recommendations() *RecommendationRepository { return r.recs }
