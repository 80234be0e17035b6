package classifier

import (
	"fmt"

	"github.com/desertthunder/tastemaker/internal/shared"
)

// Kind selects the model family behind a [Model].
type Kind string

const (
	KindGBDT Kind = "gbdt" // gradient-boosted trees, the default
	KindMLP  Kind = "mlp"  // feed-forward network with ReLU hidden layers
)

// ParseKind maps a config value onto a [Kind]. The empty string is [KindGBDT].
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindGBDT:
		return KindGBDT, nil
	case KindMLP:
		return KindMLP, nil
	}
	return "", fmt.Errorf("%w: unknown model kind %q", shared.ErrInvalidArgument, s)
}

// Config holds the hyperparameters of both model families. Seed drives every random step of either.
type Config struct {
	Kind           Kind
	NumTrees       int     // boosting rounds
	MaxDepth       int     // maximum depth of each tree; a depth of 0 is a single leaf
	LearningRate   float64 // shrinkage applied to every leaf weight
	Subsample      float64 // share of rows drawn (without replacement) for each tree
	ColSample      float64 // share of columns considered by each tree
	Lambda         float64 // L2 penalty on leaf weights
	MinChildWeight float64 // minimum hessian sum on each side of a split
	MinSplitGain   float64 // minimum loss reduction to keep a split
	MLP            MLPConfig
	Seed           int64
}

// MLPConfig holds the network settings used when Kind is [KindMLP].
type MLPConfig struct {
	HiddenLayers []int   // units per hidden layer
	MaxEpochs    int     // passes over the training rows
	BatchSize    int     // rows per Adam step, capped at the row count
	LearningRate float64 // Adam step size
	Alpha        float64 // L2 penalty on weights
	Tolerance    float64 // minimum epoch loss improvement
	Patience     int     // epochs without improvement before stopping early
}

// DefaultConfig returns the pre-tuned settings: 200 trees of depth 5, learning rate 0.1 and 90% row and
// column sampling. The network defaults are two hidden layers of 100 and 50 units trained for at most
// 500 epochs.
func DefaultConfig() Config {
	return Config{
		Kind:           KindGBDT,
		NumTrees:       200,
		MaxDepth:       5,
		LearningRate:   0.1,
		Subsample:      0.9,
		ColSample:      0.9,
		Lambda:         1,
		MinChildWeight: 1,
		MLP:            DefaultMLPConfig(),
		Seed:           42,
	}
}

// DefaultMLPConfig returns the network defaults.
func DefaultMLPConfig() MLPConfig {
	return MLPConfig{
		HiddenLayers: []int{100, 50},
		MaxEpochs:    500,
		BatchSize:    200,
		LearningRate: 0.001,
		Alpha:        0.0001,
		Tolerance:    1e-4,
		Patience:     10,
	}
}

// Validate reports the first out-of-range setting of the selected kind.
func (c Config) Validate() error {
	kind, err := ParseKind(string(c.Kind))
	if err != nil {
		return err
	}
	if kind == KindMLP {
		return c.MLP.Validate()
	}

	switch {
	case c.NumTrees < 1:
		return fmt.Errorf("%w: num trees must be positive, got %d", shared.ErrInvalidArgument, c.NumTrees)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth must not be negative, got %d", shared.ErrInvalidArgument, c.MaxDepth)
	case c.LearningRate <= 0 || c.LearningRate > 1:
		return fmt.Errorf("%w: learning rate must be in (0, 1], got %v", shared.ErrInvalidArgument, c.LearningRate)
	case c.Subsample <= 0 || c.Subsample > 1:
		return fmt.Errorf("%w: subsample must be in (0, 1], got %v", shared.ErrInvalidArgument, c.Subsample)
	case c.ColSample <= 0 || c.ColSample > 1:
		return fmt.Errorf("%w: column sample must be in (0, 1], got %v", shared.ErrInvalidArgument, c.ColSample)
	case c.Lambda < 0 || c.MinChildWeight < 0 || c.MinSplitGain < 0:
		return fmt.Errorf("%w: regularization terms must not be negative", shared.ErrInvalidArgument)
	}
	return nil
}

// Validate reports the first out-of-range network setting.
func (c MLPConfig) Validate() error {
	if len(c.HiddenLayers) == 0 {
		return fmt.Errorf("%w: mlp needs at least one hidden layer", shared.ErrInvalidArgument)
	}
	for i, units := range c.HiddenLayers {
		if units < 1 {
			return fmt.Errorf("%w: hidden layer %d has %d units", shared.ErrInvalidArgument, i, units)
		}
	}
	switch {
	case c.MaxEpochs < 1:
		return fmt.Errorf("%w: max epochs must be positive, got %d", shared.ErrInvalidArgument, c.MaxEpochs)
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be positive, got %d", shared.ErrInvalidArgument, c.BatchSize)
	case c.LearningRate <= 0:
		return fmt.Errorf("%w: mlp learning rate must be positive, got %v", shared.ErrInvalidArgument, c.LearningRate)
	case c.Alpha < 0 || c.Tolerance < 0 || c.Patience < 0:
		return fmt.Errorf("%w: alpha, tolerance and patience must not be negative", shared.ErrInvalidArgument)
	}
	return nil
}
