package features

import (
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/shared"
	tu "github.com/desertthunder/tastemaker/internal/testing"
)

var genres = []string{"pop", "rock", "jazz", "electronic"}

func labeledTracks(n int) []models.Track {
	tracks := tu.SyntheticCatalog(n, 3)
	for i := range tracks {
		tracks[i].MainGenre = genres[i%len(genres)]
		if i%3 == 0 {
			tracks[i].Liked = 1
		}
	}
	return tracks
}

func TestFitScaler(t *testing.T) {
	rows := [][]float64{{1, 5}, {3, 5}, {5, 5}}
	s, err := FitScaler(rows)
	if err != nil {
		t.Fatalf("FitScaler() error = %v", err)
	}

	if s.Mean[0] != 3 || s.Mean[1] != 5 {
		t.Errorf("unexpected mean %v", s.Mean)
	}
	if math.Abs(s.Scale[0]-math.Sqrt(8.0/3)) > 1e-12 {
		t.Errorf("expected population std, got %v", s.Scale[0])
	}
	if s.Scale[1] != 1 {
		t.Errorf("constant column should have scale 1, got %v", s.Scale[1])
	}

	scaled, err := s.Apply(rows)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if scaled[1][0] != 0 || scaled[0][1] != 0 {
		t.Errorf("unexpected scaled values %v", scaled)
	}

	if _, err := s.Apply([][]float64{{1}}); !errors.Is(err, shared.ErrColumnMismatch) {
		t.Errorf("expected ErrColumnMismatch, got %v", err)
	}
	if _, err := FitScaler([][]float64{{1, 2}, {1}}); !errors.Is(err, shared.ErrColumnMismatch) {
		t.Errorf("expected ErrColumnMismatch for ragged rows, got %v", err)
	}
	if _, err := FitScaler(nil); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := FitScaler([][]float64{{1, 2}, {bad, 3}}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for %v, got %v", bad, err)
		}
	}
}

func TestStratifiedSplit(t *testing.T) {
	labels := make([]int, 100)
	for i := range 30 {
		labels[i] = 1
	}

	train, test, err := StratifiedSplit(labels, 0.2, 42)
	if err != nil {
		t.Fatalf("StratifiedSplit() error = %v", err)
	}
	if len(train) != 80 || len(test) != 20 {
		t.Fatalf("expected 80/20, got %d/%d", len(train), len(test))
	}

	positives := 0
	for _, i := range test {
		positives += labels[i]
	}
	if positives != 6 {
		t.Errorf("expected 6 positives in test, got %d", positives)
	}

	all := append(slices.Clone(train), test...)
	slices.Sort(all)
	for i, v := range all {
		if v != i {
			t.Fatalf("split is not a partition of the input")
		}
	}

	train2, test2, _ := StratifiedSplit(labels, 0.2, 42)
	if !reflect.DeepEqual(train, train2) || !reflect.DeepEqual(test, test2) {
		t.Error("expected identical split for identical seed")
	}

	tests := []struct {
		name  string
		ratio float64
	}{
		{"zero", 0},
		{"one", 1},
		{"negative", -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := StratifiedSplit(labels, tt.ratio, 1); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestFit(t *testing.T) {
	tracks := labeledTracks(200)

	res, err := Fit(tracks, DefaultSplitOptions())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	wantCols := append(slices.Clone(models.NumericColumns), "genre_electronic", "genre_jazz", "genre_pop", "genre_rock")
	if !reflect.DeepEqual(res.Spec.Columns(), wantCols) {
		t.Errorf("unexpected columns %v", res.Spec.Columns())
	}
	if res.Train.Len()+res.Test.Len() != len(tracks) {
		t.Errorf("split lost rows: %d + %d", res.Train.Len(), res.Test.Len())
	}
	if res.Train.Len() != len(res.TrainLabels) || res.Test.Len() != len(res.TestLabels) {
		t.Error("labels and matrices disagree in length")
	}

	t.Run("rejects non-finite attributes", func(t *testing.T) {
		for _, i := range []int{0, len(tracks) - 1} {
			bad := slices.Clone(tracks)
			bad[i].Popularity = math.NaN()
			if _, err := Fit(bad, DefaultSplitOptions()); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument with NaN at row %d, got %v", i, err)
			}
		}

		bad := slices.Clone(tracks)
		bad[3].Tempo = math.Inf(1)
		if _, err := Transform(bad[:5], res.Spec); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument from Transform, got %v", err)
		}
	})

	t.Run("scaler fitted on train only", func(t *testing.T) {
		col := res.Train.ColumnIndex("energy")
		var sum float64
		for _, row := range res.Train.Rows {
			sum += row[col]
		}
		if math.Abs(sum/float64(res.Train.Len())) > 1e-9 {
			t.Errorf("train column should have zero mean, got %v", sum/float64(res.Train.Len()))
		}
	})

	t.Run("transform reproduces training matrix", func(t *testing.T) {
		again, err := Transform(res.TrainTracks, res.Spec)
		if err != nil {
			t.Fatalf("Transform() error = %v", err)
		}
		if !reflect.DeepEqual(again, res.Train) {
			t.Error("transform of the training table differs from the fitted matrix")
		}
	})

	t.Run("accessors return copies", func(t *testing.T) {
		cols := res.Spec.Columns()
		cols[0] = "mutated"
		s := res.Spec.Scaler()
		s.Mean[0] = 1e9
		if res.Spec.Columns()[0] != models.NumericColumns[0] || res.Spec.Scaler().Mean[0] == 1e9 {
			t.Error("spec state leaked through accessors")
		}
	})
}

func TestTransform_ColumnCompleteness(t *testing.T) {
	res, err := Fit(labeledTracks(200), DefaultSplitOptions())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	unseen := tu.SyntheticCatalog(5, 99)
	for i := range unseen {
		unseen[i].MainGenre = "classical"
	}

	m, err := Transform(unseen, res.Spec)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if !reflect.DeepEqual(m.Columns, res.Spec.Columns()) {
		t.Errorf("expected training columns, got %v", m.Columns)
	}

	scaler := res.Spec.Scaler()
	for _, g := range []string{"genre_pop", "genre_rock", "genre_jazz", "genre_electronic"} {
		j := m.ColumnIndex(g)
		want := -scaler.Mean[j] / scaler.Scale[j]
		for _, row := range m.Rows {
			if row[j] != want {
				t.Errorf("%s: expected zero indicator (scaled %v), got %v", g, want, row[j])
			}
		}
	}
	if m.ColumnIndex("genre_classical") != -1 {
		t.Error("unseen genre must not add a column")
	}
}

func TestTransform_Errors(t *testing.T) {
	tracks := labeledTracks(10)

	if _, err := Transform(tracks, nil); !errors.Is(err, shared.ErrNotFitted) {
		t.Errorf("expected ErrNotFitted, got %v", err)
	}

	scaler := Scaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}}
	if _, err := NewSpec([]string{"energy", "loudness", "tempo"}, scaler); !errors.Is(err, shared.ErrColumnMismatch) {
		t.Errorf("expected ErrColumnMismatch for width, got %v", err)
	}
	if _, err := NewSpec([]string{"energy", "bpm"}, scaler); !errors.Is(err, shared.ErrColumnMismatch) {
		t.Errorf("expected ErrColumnMismatch for unknown column, got %v", err)
	}

	spec, err := NewSpec([]string{"energy", "genre_pop"}, scaler)
	if err != nil {
		t.Fatalf("NewSpec() error = %v", err)
	}
	m, err := Transform(tracks, spec)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if m.Rows[0][0] != tracks[0].Energy || m.Rows[0][1] != 1 {
		t.Errorf("unexpected row %v", m.Rows[0])
	}
}

func TestFit_Empty(t *testing.T) {
	if _, err := Fit(nil, DefaultSplitOptions()); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
