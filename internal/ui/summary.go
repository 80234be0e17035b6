package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/tastemaker/internal/tasks"
)

// RenderSummary formats table counts, the evaluation report and the topFeatures highest-weighted columns.
func RenderSummary(res *tasks.PipelineResult, topFeatures int) string {
	var b strings.Builder

	row := func(label string, value any) {
		fmt.Fprintf(&b, "%s %v\n", styles.label.Render(label), value)
	}
	row("catalog rows", res.MergeStats.Input)
	row("duplicates", res.MergeStats.Duplicates)
	row("liked matched", res.MergeStats.Liked)
	if res.MergeStats.UnmatchedLiked > 0 {
		row("liked unmatched", styles.warn.Render(fmt.Sprint(res.MergeStats.UnmatchedLiked)))
	}
	row("synthetic likes", res.BalanceStats.Synthetic)
	row("balanced rows", len(res.Balanced))
	if res.Fit != nil {
		row("features", res.Fit.Spec.Width())
		row("train / test", fmt.Sprintf("%d / %d", res.Fit.Train.Len(), res.Fit.Test.Len()))
	}
	if res.Model != nil {
		row("model", res.Model.Kind())
		row("base rate", fmt.Sprintf("%.3f", res.Model.BaseRate()))
	}

	b.WriteString("\n")
	if res.Evaluated {
		row("accuracy", styles.ok.Render(fmt.Sprintf("%.1f%%", res.Report.Accuracy*100)))
		b.WriteString("\n")
		b.WriteString(res.Report.String())
	} else {
		b.WriteString(styles.warn.Render("No held-out rows; evaluation skipped"))
		b.WriteString("\n")
	}

	n := min(topFeatures, len(res.Importance))
	if n > 0 {
		b.WriteString("\n")
		b.WriteString(styles.title.Render("Top features"))
		b.WriteString("\n")
		top := res.Importance[0].Gain
		for _, w := range res.Importance[:n] {
			share := 0.0
			if top > 0 {
				share = w.Gain / top
			}
			fmt.Fprintf(&b, "%s %s %.2f\n", styles.label.Render(w.Column), styles.Bar(share, 20), w.Gain)
		}
	}

	return b.String()
}
