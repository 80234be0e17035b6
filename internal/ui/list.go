package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tastemaker/internal/models"
)

var _ list.Item = recommendationItem{}

// recommendationItem wraps a ranked [models.Recommendation] to implement [list.Item].
type recommendationItem struct {
	rank int
	rec  models.Recommendation
}

func (i recommendationItem) FilterValue() string { return i.rec.Track.Name + " " + i.rec.Track.Artists }
func (i recommendationItem) Title() string {
	return fmt.Sprintf("%2d. %s", i.rank, i.rec.Track.Name)
}
func (i recommendationItem) Description() string {
	desc := i.rec.Track.Artists
	if i.rec.Track.MainGenre != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.rec.Track.MainGenre)
	}
	return fmt.Sprintf("%s • %.3f", desc, i.rec.Probability)
}

func recommendationItems(recs []models.Recommendation) []list.Item {
	items := make([]list.Item, len(recs))
	for i, rec := range recs {
		items[i] = recommendationItem{rank: i + 1, rec: rec}
	}
	return items
}
