package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/desertthunder/tastemaker/internal/models"
)

// TableHeader is the column order written by [WriteTable].
func TableHeader() []string {
	header := []string{models.ColumnID, models.ColumnName, models.ColumnArtists, models.ColumnAlbum, models.ColumnGenre}
	header = append(header, models.NumericColumns...)
	return append(header, models.ColumnMainGenre, models.ColumnLiked)
}

// WriteTable writes tracks as a catalog-shaped table with the derived main_genre and liked columns appended.
//
// The output can be read back with [ReadCatalog].
func WriteTable(w io.Writer, tracks []models.Track) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(TableHeader()); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}

	record := make([]string, 0, len(models.NumericColumns)+7)
	for i := range tracks {
		t := &tracks[i]
		record = append(record[:0], t.ID, t.Name, t.Artists, t.Album, t.Genre)
		for _, col := range models.NumericColumns {
			v, _ := t.Numeric(col)
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		record = append(record, t.MainGenre, strconv.Itoa(t.Liked))

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}
