package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/shared"
)

const recommendationColumns = `id, run_id, rank, track_id, track_name, artists, probability, created_at`

// RecommendationRepository persists the ranked output rows of a run.
type RecommendationRepository struct {
	db *sql.DB
}

// NewRecommendationRepository creates a new RecommendationRepository with the given database connection
func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// CreateBatch inserts recs in one transaction, assigning IDs. Nothing is written if any row is invalid.
func (r *RecommendationRepository) CreateBatch(recs []*models.PersistedRecommendation) error {
	for _, rec := range recs {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("validation failed for rank %d: %w", rec.Rank(), err)
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO recommendations (` + recommendationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		id := shared.GenerateID()
		if _, err := stmt.Exec(id, rec.RunID(), rec.Rank(), rec.TrackID(), rec.TrackName(), rec.Artists(), rec.Probability(), rec.CreatedAt()); err != nil {
			return fmt.Errorf("failed to insert recommendation %d: %w", rec.Rank(), err)
		}
		rec.SetID(id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recommendations: %w", err)
	}
	return nil
}

// Get retrieves a single recommendation row by ID
func (r *RecommendationRepository) Get(id string) (*models.PersistedRecommendation, error) {
	row := r.db.QueryRow(`SELECT `+recommendationColumns+` FROM recommendations WHERE id = ?`, id)
	rec, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: recommendation %s", shared.ErrNotFound, id)
	}
	return rec, err
}

// ListByRun retrieves the recommendations of a run in rank order
func (r *RecommendationRepository) ListByRun(runID string) ([]*models.PersistedRecommendation, error) {
	rows, err := r.db.Query(`SELECT `+recommendationColumns+` FROM recommendations WHERE run_id = ? ORDER BY rank ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*models.PersistedRecommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return recs, nil
}

// DeleteByRun removes every recommendation of a run and returns how many were deleted
func (r *RecommendationRepository) DeleteByRun(runID string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM recommendations WHERE run_id = ?`, runID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete recommendations: %w", err)
	}
	return result.RowsAffected()
}

func scanRecommendation(row scanner) (*models.PersistedRecommendation, error) {
	var (
		id          string
		runID       string
		rank        int
		trackID     string
		trackName   string
		artists     string
		probability float64
		createdAt   time.Time
	)

	err := row.Scan(&id, &runID, &rank, &trackID, &trackName, &artists, &probability, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan recommendation: %w", err)
	}

	rec := models.NewPersistedRecommendation(runID, rank, models.Recommendation{
		Track:       models.Track{ID: trackID, Name: trackName, Artists: artists},
		Probability: probability,
	})
	rec.SetID(id)
	rec.SetCreatedAt(createdAt)
	return rec, nil
}
