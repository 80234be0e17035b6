package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunSummary carries the counts recorded for a run.
type RunSummary struct {
	CatalogRows   int     `json:"catalog_rows"`
	LikedRows     int     `json:"liked_rows"`
	SyntheticRows int     `json:"synthetic_rows"`
	BalancedRows  int     `json:"balanced_rows"`
	Accuracy      float64 `json:"accuracy"`
}

// Run is a persisted record of one pipeline execution.
type Run struct {
	id          string
	sequence    int
	catalogPath string
	likedPath   string
	seed        int64
	summary     RunSummary
	status      RunStatus
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewRun creates a pending run for the given inputs.
func NewRun(sequence int, catalogPath, likedPath string, seed int64) *Run {
	now := time.Now()
	return &Run{
		sequence:    sequence,
		catalogPath: catalogPath,
		likedPath:   likedPath,
		seed:        seed,
		status:      RunPending,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (r *Run) ID() string { return r.id }
func (r *Run) Sequence() int { return r.sequence }
func (r *Run) CatalogPath() string { return r.catalogPath }
func (r *Run) LikedPath() string { return r.likedPath }
func (r *Run) Seed() int64 { return r.seed }
func (r *Run) Summary() RunSummary { return r.summary }
func (r *Run) Status() RunStatus { return r.status }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time { return r.deletedAt }
func (r *Run) SetID(id string) { r.id = id }
func (r *Run) SetSequence(seq int) { r.sequence = seq }
func (r *Run) SetStatus(s RunStatus) { r.status = s }
func (r *Run) SetSummary(s RunSummary) { r.summary = s }
func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Validate checks required fields.
func (r *Run) Validate() error {
	if r.catalogPath == "" {
		return fmt.Errorf("catalog path is required")
	}
	if r.likedPath == "" {
		return fmt.Errorf("liked path is required")
	}
	switch r.status {
	case RunPending, RunCompleted, RunFailed:
	default:
		return fmt.Errorf("invalid run status %q", r.status)
	}
	return nil
}

// PersistedRecommendation is one ranked row of a run's output.
type PersistedRecommendation struct {
	id          string
	runID       string
	rank        int
	trackID     string
	trackName   string
	artists     string
	probability float64
	createdAt   time.Time
}

// NewPersistedRecommendation converts rec at 1-based rank into a persistable row for runID.
func NewPersistedRecommendation(runID string, rank int, rec Recommendation) *PersistedRecommendation {
	return &PersistedRecommendation{
		runID:       runID,
		rank:        rank,
		trackID:     rec.Track.ID,
		trackName:   rec.Track.Name,
		artists:     rec.Track.Artists,
		probability: rec.Probability,
		createdAt:   time.Now(),
	}
}

func (p *PersistedRecommendation) ID() string { return p.id }
func (p *PersistedRecommendation) RunID() string { return p.runID }
func (p *PersistedRecommendation) Rank() int { return p.rank }
func (p *PersistedRecommendation) TrackID() string { return p.trackID }
func (p *PersistedRecommendation) TrackName() string { return p.trackName }
func (p *PersistedRecommendation) Artists() string { return p.artists }
func (p *PersistedRecommendation) Probability() float64 { return p.probability }
func (p *PersistedRecommendation) CreatedAt() time.Time { return p.createdAt }
func (p *PersistedRecommendation) UpdatedAt() time.Time { return p.createdAt }
func (p *PersistedRecommendation) SetID(id string) { p.id = id }
func (p *PersistedRecommendation) SetCreatedAt(t time.Time) { p.createdAt = t }

// Recommendation rebuilds the pipeline value from the stored row.
func (p *PersistedRecommendation) Recommendation() Recommendation {
	return Recommendation{
		Track:       Track{ID: p.trackID, Name: p.trackName, Artists: p.artists},
		Probability: p.probability,
	}
}

// Validate checks required fields.
func (p *PersistedRecommendation) Validate() error {
	if p.runID == "" {
		return fmt.Errorf("run id is required")
	}
	if p.trackID == "" {
		return fmt.Errorf("track id is required")
	}
	if p.rank < 1 {
		return fmt.Errorf("rank must be positive, got %d", p.rank)
	}
	if p.probability < 0 || p.probability > 1 {
		return fmt.Errorf("probability out of range: %v", p.probability)
	}
	return nil
}

// RunFilter narrows a run listing. Zero values match everything.
type RunFilter struct {
	Status RunStatus
	Limit  int
}
