package features

import (
	"fmt"
	"math"

	"github.com/desertthunder/tastemaker/internal/shared"
)

// Scaler standardizes columns to zero mean and unit variance.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes per-column mean and population standard deviation.
// Constant columns get a scale of 1 so they map to zero instead of NaN. NaN and infinite inputs are rejected.
func FitScaler(rows [][]float64) (Scaler, error) {
	if len(rows) == 0 {
		return Scaler{}, fmt.Errorf("%w: cannot fit scaler on zero rows", shared.ErrInvalidArgument)
	}

	width := len(rows[0])
	mean := make([]float64, width)
	scale := make([]float64, width)

	for i, row := range rows {
		if len(row) != width {
			return Scaler{}, fmt.Errorf("%w: row %d has %d values, expected %d", shared.ErrColumnMismatch, i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Scaler{}, fmt.Errorf("%w: row %d column %d is not finite", shared.ErrInvalidArgument, i, j)
			}
			mean[j] += v
		}
	}
	n := float64(len(rows))
	for j := range mean {
		mean[j] /= n
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	return Scaler{Mean: mean, Scale: scale}, nil
}

// Width is the number of columns the scaler was fitted on.
func (s Scaler) Width() int { return len(s.Mean) }

// Apply returns standardized copies of rows. Every row must match the fitted width.
func (s Scaler) Apply(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != s.Width() {
			return nil, fmt.Errorf("%w: row %d has %d values, scaler expects %d", shared.ErrColumnMismatch, i, len(row), s.Width())
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = scaled
	}
	return out, nil
}

func (s Scaler) clone() Scaler {
	return Scaler{Mean: append([]float64(nil), s.Mean...), Scale: append([]float64(nil), s.Scale...)}
}
