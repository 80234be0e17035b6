// Package classifier implements binary classifiers over standardized feature rows.
//
// The default [KindGBDT] is a gradient-boosted decision tree ensemble: trees are fitted to the gradient
// and hessian of the logistic loss, and each round draws its own row and column sample. [KindMLP] is a
// small feed-forward network trained with minibatch Adam. Both draw every random number from a generator
// seeded by [Config.Seed], so fitting the same matrix twice yields the same model.
package classifier

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/desertthunder/tastemaker/internal/shared"
)

// Scorer returns the probability of the positive class for each row.
type Scorer interface {
	PredictProba(rows [][]float64) ([]float64, error)
}

// Model is a fitted classifier of either kind. It is immutable and safe for concurrent use.
type Model struct {
	kind       Kind
	width      int
	baseMargin float64
	baseRate   float64
	trees      []tree
	net        *network
	epochs     int
	importance []float64
}

var _ Scorer = (*Model)(nil)

// Fit trains a model of cfg.Kind on rows with 0/1 labels.
func Fit(rows [][]float64, labels []int, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no training rows", shared.ErrInvalidArgument)
	}
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("%w: %d rows but %d labels", shared.ErrInvalidArgument, len(rows), len(labels))
	}

	width := len(rows[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: rows have no columns", shared.ErrInvalidArgument)
	}
	var positives int
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", shared.ErrColumnMismatch, i, len(row), width)
		}
		switch labels[i] {
		case 0:
		case 1:
			positives++
		default:
			return nil, fmt.Errorf("%w: label %d at row %d is not 0 or 1", shared.ErrInvalidArgument, labels[i], i)
		}
	}

	n := len(rows)
	kind, _ := ParseKind(string(cfg.Kind))
	m := &Model{
		kind:       kind,
		width:      width,
		baseRate:   float64(positives) / float64(n),
		importance: make([]float64, width),
	}
	m.baseMargin = logit(m.baseRate)
	rng := rand.New(rand.NewSource(cfg.Seed))

	if kind == KindMLP {
		m.net, m.epochs = fitNetwork(rows, labels, cfg.MLP, rng)
		m.importance = m.net.inputWeight()
		return m, nil
	}

	margin := make([]float64, n)
	for i := range margin {
		margin[i] = m.baseMargin
	}
	grad := make([]float64, n)
	hess := make([]float64, n)

	rowCount := max(1, int(math.Round(float64(n)*cfg.Subsample)))
	colCount := max(1, int(math.Round(float64(width)*cfg.ColSample)))

	for range cfg.NumTrees {
		for i := range margin {
			p := sigmoid(margin[i])
			grad[i] = p - float64(labels[i])
			hess[i] = max(p*(1-p), 1e-16)
		}

		sample := rng.Perm(n)[:rowCount]
		slices.Sort(sample)
		features := rng.Perm(width)[:colCount]
		slices.Sort(features)

		g := &grower{rows: rows, grad: grad, hess: hess, features: features, cfg: cfg, gain: m.importance}
		g.grow(sample, 0)
		m.trees = append(m.trees, g.tree)

		for i, row := range rows {
			margin[i] += g.tree.predict(row)
		}
	}

	return m, nil
}

// PredictProba returns the probability of the positive class for each row.
func (m *Model) PredictProba(rows [][]float64) ([]float64, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: classifier", shared.ErrNotFitted)
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != m.width {
			return nil, fmt.Errorf("%w: row %d has %d values, model expects %d", shared.ErrColumnMismatch, i, len(row), m.width)
		}
		if m.net != nil {
			out[i] = m.net.proba(row)
			continue
		}
		z := m.baseMargin
		for t := range m.trees {
			z += m.trees[t].predict(row)
		}
		out[i] = sigmoid(z)
	}
	return out, nil
}

// Predict returns 1 for rows whose positive probability is at least one half.
func (m *Model) Predict(rows [][]float64) ([]int, error) {
	probs, err := m.PredictProba(rows)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(probs))
	for i, p := range probs {
		if p >= 0.5 {
			labels[i] = 1
		}
	}
	return labels, nil
}

// FeatureImportance returns a weight per column index: the total split gain for trees, the summed
// absolute input weight for a network.
func (m *Model) FeatureImportance() []float64 { return slices.Clone(m.importance) }

// BaseRate is the share of positive labels in the training rows.
func (m *Model) BaseRate() float64 { return m.baseRate }

// Kind is the model family.
func (m *Model) Kind() Kind { return m.kind }

// NumTrees is the ensemble size; zero for a network.
func (m *Model) NumTrees() int { return len(m.trees) }

// Epochs is the number of passes a network trained for before stopping; zero for trees.
func (m *Model) Epochs() int { return m.epochs }

// Width is the number of columns the model was trained on.
func (m *Model) Width() int { return m.width }

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

func logit(p float64) float64 {
	p = min(max(p, 1e-6), 1-1e-6)
	return math.Log(p / (1 - p))
}
