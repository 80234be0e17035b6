package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/shared"
)

// LikedIDColumn is the identifier column of a liked-list table.
const LikedIDColumn = "id"

var requiredTextColumns = []string{models.ColumnID, models.ColumnName, models.ColumnArtists, models.ColumnGenre}

// LoadCatalog opens path and parses it with [ReadCatalog].
func LoadCatalog(path string) ([]models.Track, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tracks, err := ReadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tracks, nil
}

// ReadCatalog parses a catalog table. Columns are matched by header name; extra columns are ignored.
//
// Tables written by [WriteTable] also carry main_genre and liked, which are read back when present.
func ReadCatalog(r io.Reader) ([]models.Track, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty catalog", shared.ErrSchemaMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	idx := indexHeader(header)
	for _, col := range append(append([]string{}, requiredTextColumns...), models.NumericColumns...) {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: catalog missing column %q", shared.ErrSchemaMismatch, col)
		}
	}
	album, hasAlbum := idx[models.ColumnAlbum]
	mainGenre, hasMainGenre := idx[models.ColumnMainGenre]
	liked, hasLiked := idx[models.ColumnLiked]

	var tracks []models.Track
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}

		t := models.Track{
			ID:      strings.TrimSpace(record[idx[models.ColumnID]]),
			Name:    record[idx[models.ColumnName]],
			Artists: record[idx[models.ColumnArtists]],
			Genre:   record[idx[models.ColumnGenre]],
		}
		if hasAlbum {
			t.Album = record[album]
		}
		if hasMainGenre {
			t.MainGenre = record[mainGenre]
		}
		if hasLiked && strings.TrimSpace(record[liked]) == "1" {
			t.Liked = 1
		}

		for _, col := range models.NumericColumns {
			raw := strings.TrimSpace(record[idx[col]])
			v, err := parseNumber(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %w", shared.ErrSchemaMismatch, line, col, err)
			}
			t.SetNumeric(col, v)
		}

		tracks = append(tracks, t)
	}

	return tracks, nil
}

// LoadLiked opens path and parses it with [ReadLiked].
func LoadLiked(path string) (models.LikedSet, error) {
	f, err := openInput(path)
	if err != nil {
		return models.LikedSet{}, err
	}
	defer f.Close()

	liked, err := ReadLiked(f)
	if err != nil {
		return models.LikedSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return liked, nil
}

// ReadLiked collects the non-empty values of the [LikedIDColumn] column.
func ReadLiked(r io.Reader) (models.LikedSet, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return models.LikedSet{}, fmt.Errorf("%w: empty liked list", shared.ErrSchemaMismatch)
	}
	if err != nil {
		return models.LikedSet{}, fmt.Errorf("failed to read liked header: %w", err)
	}

	col, ok := indexHeader(header)[LikedIDColumn]
	if !ok {
		return models.LikedSet{}, fmt.Errorf("%w: liked list missing column %q", shared.ErrSchemaMismatch, LikedIDColumn)
	}

	var ids []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.LikedSet{}, fmt.Errorf("failed to read liked list: %w", err)
		}
		ids = append(ids, strings.TrimSpace(record[col]))
	}

	return models.NewLikedSet(ids...), nil
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingInput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// indexHeader maps trimmed column names to positions; the first occurrence of a name wins.
func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

// parseNumber accepts finite numbers and boolean literals, which some catalog exports use for mode.
func parseNumber(raw string) (float64, error) {
	switch strings.ToLower(raw) {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}
