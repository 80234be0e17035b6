package features

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/shared"
)

// GenrePrefix prefixes the indicator column of each coarse genre.
const GenrePrefix = "genre_"

// SplitOptions configures the train/test split performed by [Fit].
type SplitOptions struct {
	TestRatio float64
	Seed      int64
}

// DefaultSplitOptions returns an 80/20 split with seed 42.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{TestRatio: 0.2, Seed: 42}
}

// Spec is the frozen column layout and scaler produced by [Fit].
type Spec struct {
	columns []string
	scaler  Scaler
}

// NewSpec validates that scaler covers exactly the given columns.
func NewSpec(columns []string, scaler Scaler) (*Spec, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: spec needs at least one column", shared.ErrInvalidArgument)
	}
	if len(scaler.Mean) != len(columns) || len(scaler.Scale) != len(columns) {
		return nil, fmt.Errorf("%w: %d columns but scaler fitted on %d", shared.ErrColumnMismatch, len(columns), scaler.Width())
	}
	for _, c := range columns {
		if !isKnownColumn(c) {
			return nil, fmt.Errorf("%w: unknown column %q", shared.ErrColumnMismatch, c)
		}
	}
	return &Spec{columns: slices.Clone(columns), scaler: scaler.clone()}, nil
}

// Columns returns a copy of the ordered column list.
func (s *Spec) Columns() []string { return slices.Clone(s.columns) }

// Scaler returns a copy of the fitted scaler.
func (s *Spec) Scaler() Scaler { return s.scaler.clone() }

// Width is the number of columns.
func (s *Spec) Width() int { return len(s.columns) }

// FitResult carries everything [Fit] produces.
type FitResult struct {
	Spec        *Spec
	Train       Matrix
	Test        Matrix
	TrainLabels []int
	TestLabels  []int
	TrainTracks []models.Track
	TestTracks  []models.Track
}

// Fit derives the column layout from tracks, splits them by label and fits the scaler on the training
// partition only.
//
// Columns are the numeric attributes followed by one indicator per coarse genre present in tracks,
// sorted by name.
func Fit(tracks []models.Track, opts SplitOptions) (*FitResult, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: cannot fit features on an empty table", shared.ErrInvalidArgument)
	}

	columns := Columns(tracks)

	labels := make([]int, len(tracks))
	for i := range tracks {
		labels[i] = tracks[i].Liked
	}
	trainIdx, testIdx, err := StratifiedSplit(labels, opts.TestRatio, opts.Seed)
	if err != nil {
		return nil, err
	}
	if len(trainIdx) == 0 {
		return nil, fmt.Errorf("%w: split left no training rows", shared.ErrInvalidArgument)
	}

	res := &FitResult{
		TrainTracks: pick(tracks, trainIdx),
		TestTracks:  pick(tracks, testIdx),
	}
	res.TrainLabels = pickLabels(labels, trainIdx)
	res.TestLabels = pickLabels(labels, testIdx)

	raw, err := encode(res.TrainTracks, columns)
	if err != nil {
		return nil, err
	}
	scaler, err := FitScaler(raw)
	if err != nil {
		return nil, err
	}
	if res.Spec, err = NewSpec(columns, scaler); err != nil {
		return nil, err
	}

	if res.Train, err = Transform(res.TrainTracks, res.Spec); err != nil {
		return nil, err
	}
	if res.Test, err = Transform(res.TestTracks, res.Spec); err != nil {
		return nil, err
	}
	return res, nil
}

// Columns returns the numeric attribute columns followed by the sorted genre indicators found in tracks.
func Columns(tracks []models.Track) []string {
	seen := make(map[string]struct{})
	for i := range tracks {
		seen[tracks[i].MainGenre] = struct{}{}
	}
	genres := make([]string, 0, len(seen))
	for g := range seen {
		genres = append(genres, GenrePrefix+g)
	}
	slices.Sort(genres)

	return append(slices.Clone(models.NumericColumns), genres...)
}

// Transform encodes tracks with the frozen layout of spec and standardizes them.
//
// Genre indicators listed in spec but absent from tracks are zero; genres in tracks that spec does not
// list are dropped. Transform of the training partition reproduces [FitResult.Train] exactly.
func Transform(tracks []models.Track, spec *Spec) (Matrix, error) {
	if spec == nil {
		return Matrix{}, fmt.Errorf("%w: feature spec", shared.ErrNotFitted)
	}

	raw, err := encode(tracks, spec.columns)
	if err != nil {
		return Matrix{}, err
	}
	rows, err := spec.scaler.Apply(raw)
	if err != nil {
		return Matrix{}, err
	}
	return Matrix{Columns: spec.Columns(), Rows: rows}, nil
}

// encode builds unscaled rows holding exactly columns, in order. Non-finite attributes are rejected.
func encode(tracks []models.Track, columns []string) ([][]float64, error) {
	rows := make([][]float64, len(tracks))
	for i := range tracks {
		t := &tracks[i]
		row := make([]float64, len(columns))
		for j, col := range columns {
			if g, ok := strings.CutPrefix(col, GenrePrefix); ok {
				if t.MainGenre == g {
					row[j] = 1
				}
				continue
			}
			v, ok := t.Numeric(col)
			if !ok {
				return nil, fmt.Errorf("%w: unknown column %q", shared.ErrColumnMismatch, col)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: track %q column %q is not finite", shared.ErrInvalidArgument, t.ID, col)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

func isKnownColumn(col string) bool {
	if strings.HasPrefix(col, GenrePrefix) {
		return true
	}
	return slices.Contains(models.NumericColumns, col)
}

func pick(tracks []models.Track, idx []int) []models.Track {
	out := make([]models.Track, len(idx))
	for i, j := range idx {
		out[i] = tracks[j]
	}
	return out
}

func pickLabels(labels []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}
