package classifier

import (
	"fmt"
	"strings"

	"github.com/desertthunder/tastemaker/internal/shared"
)

// ClassMetrics are the scores of one label.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes predictions against held-out labels. Index 0 is the negative class.
type Report struct {
	Classes     [2]ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Confusion   [2][2]int // [actual][predicted]
}

// Evaluate scores yPred against yTrue. Undefined ratios (no predictions or no support) are reported as 0.
func Evaluate(yTrue, yPred []int) (Report, error) {
	var r Report
	if len(yTrue) != len(yPred) {
		return r, fmt.Errorf("%w: %d labels but %d predictions", shared.ErrInvalidArgument, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return r, fmt.Errorf("%w: nothing to evaluate", shared.ErrInvalidArgument)
	}

	for i := range yTrue {
		a, p := yTrue[i], yPred[i]
		if a < 0 || a > 1 || p < 0 || p > 1 {
			return r, fmt.Errorf("%w: labels must be 0 or 1, got %d/%d at %d", shared.ErrInvalidArgument, a, p, i)
		}
		r.Confusion[a][p]++
	}

	total := len(yTrue)
	r.Accuracy = float64(r.Confusion[0][0]+r.Confusion[1][1]) / float64(total)

	for c := range 2 {
		tp := r.Confusion[c][c]
		predicted := r.Confusion[0][c] + r.Confusion[1][c]
		support := r.Confusion[c][0] + r.Confusion[c][1]

		m := ClassMetrics{
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, support),
			Support:   support,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes[c] = m

		r.MacroAvg.Precision += m.Precision / 2
		r.MacroAvg.Recall += m.Recall / 2
		r.MacroAvg.F1 += m.F1 / 2

		w := float64(support) / float64(total)
		r.WeightedAvg.Precision += m.Precision * w
		r.WeightedAvg.Recall += m.Recall * w
		r.WeightedAvg.F1 += m.F1 * w
	}
	r.MacroAvg.Support = total
	r.WeightedAvg.Support = total

	return r, nil
}

// String renders the report as a classification table followed by the confusion matrix.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")
	for c, m := range r.Classes {
		fmt.Fprintf(&b, "%12d %10.2f %10.2f %10.2f %10d\n", c, m.Precision, m.Recall, m.F1, m.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.MacroAvg.Support)
	for _, row := range []struct {
		name string
		m    ClassMetrics
	}{{"macro avg", r.MacroAvg}, {"weighted avg", r.WeightedAvg}} {
		fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", row.name, row.m.Precision, row.m.Recall, row.m.F1, row.m.Support)
	}

	b.WriteString("\nconfusion matrix (rows: actual, columns: predicted)\n")
	fmt.Fprintf(&b, "[[%d %d]\n [%d %d]]\n", r.Confusion[0][0], r.Confusion[0][1], r.Confusion[1][0], r.Confusion[1][1])
	return b.String()
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
