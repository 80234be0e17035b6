// Package recommender ranks catalog tracks the model has never seen.
package recommender

import (
	"fmt"
	"slices"

	"github.com/desertthunder/tastemaker/internal/classifier"
	"github.com/desertthunder/tastemaker/internal/features"
	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/shared"
)

// DefaultTopN is used when a non-positive count is requested.
const DefaultTopN = 20

// Candidates returns the tracks of full whose identifier does not appear in training, in catalog order.
func Candidates(full, training []models.Track) []models.Track {
	seen := make(map[string]struct{}, len(training))
	for i := range training {
		seen[training[i].ID] = struct{}{}
	}

	out := make([]models.Track, 0, len(full))
	for i := range full {
		if _, ok := seen[full[i].ID]; !ok {
			out = append(out, full[i])
		}
	}
	return out
}

// Recommend scores the unseen tracks of full with the frozen feature spec and returns the topN most
// probable, highest first. Ties keep catalog order.
func Recommend(scorer classifier.Scorer, spec *features.Spec, full, training []models.Track, topN int) ([]models.Recommendation, error) {
	if scorer == nil {
		return nil, fmt.Errorf("%w: scorer", shared.ErrNotFitted)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	candidates := Candidates(full, training)
	if len(candidates) == 0 {
		return nil, nil
	}

	m, err := features.Transform(candidates, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to transform candidates: %w", err)
	}
	probs, err := scorer.PredictProba(m.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to score candidates: %w", err)
	}
	if len(probs) != len(candidates) {
		return nil, fmt.Errorf("%w: scored %d of %d candidates", shared.ErrColumnMismatch, len(probs), len(candidates))
	}

	recs := make([]models.Recommendation, len(candidates))
	for i := range candidates {
		recs[i] = models.Recommendation{Track: candidates[i], Probability: probs[i]}
	}
	slices.SortStableFunc(recs, func(a, b models.Recommendation) int {
		switch {
		case a.Probability > b.Probability:
			return -1
		case a.Probability < b.Probability:
			return 1
		}
		return 0
	})

	if len(recs) > topN {
		recs = recs[:topN]
	}
	return recs, nil
}
