// package formatter renders recommendation lists and liked-track tables (CSV, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts a format name case-insensitively; "md" and "text" are aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// RecommendationHeader is the column layout downstream consumers rely on.
var RecommendationHeader = []string{"track_name", "artists", "probability"}

// LikedHeader is the column layout of a liked-track table.
var LikedHeader = []string{"id", "name", "artists"}

// WriteRecommendationsCSV writes recs with columns track_name, artists, probability
func WriteRecommendationsCSV(w io.Writer, recs []models.Recommendation) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(RecommendationHeader); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range recs {
		record := []string{
			rec.Track.Name,
			rec.Track.Artists,
			strconv.FormatFloat(rec.Probability, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

// WriteLikedCSV writes tracks as a liked-list table readable by the dataset loader.
func WriteLikedCSV(w io.Writer, tracks []models.Track) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(LikedHeader); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, t := range tracks {
		if err := writer.Write([]string{t.ID, t.Name, t.Artists}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

type jsonRecommendation struct {
	Rank        int     `json:"rank"`
	TrackID     string  `json:"track_id"`
	TrackName   string  `json:"track_name"`
	Artists     string  `json:"artists"`
	Genre       string  `json:"main_genre,omitempty"`
	Probability float64 `json:"probability"`
}

// WriteRecommendationsJSON writes recs as an indented JSON array in rank order.
func WriteRecommendationsJSON(w io.Writer, recs []models.Recommendation) error {
	out := make([]jsonRecommendation, len(recs))
	for i, rec := range recs {
		out[i] = jsonRecommendation{
			Rank:        i + 1,
			TrackID:     rec.Track.ID,
			TrackName:   rec.Track.Name,
			Artists:     rec.Track.Artists,
			Genre:       rec.Track.MainGenre,
			Probability: rec.Probability,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write recommendations: %w", err)
	}
	return nil
}

// WriteRecommendationsMarkdown writes recs as a titled Markdown table.
func WriteRecommendationsMarkdown(w io.Writer, title string, recs []models.Recommendation) error {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(recs)))
	buf.WriteString("| # | Track | Artists | Genre | Probability |\n")
	buf.WriteString("|---|---|---|---|---|\n")
	for i, rec := range recs {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %.4f |\n",
			i+1, escapeCell(rec.Track.Name), escapeCell(rec.Track.Artists), rec.Track.MainGenre, rec.Probability))
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteRecommendationsText writes recs as a numbered plain-text list.
func WriteRecommendationsText(w io.Writer, recs []models.Recommendation) error {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Recommendations: %d\n\n", len(recs)))
	for i, rec := range recs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%.1f%%)\n", i+1, rec.Track.Artists, rec.Track.Name, rec.Probability*100))
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteRecommendations dispatches to the writer for format.
func WriteRecommendations(w io.Writer, format Format, recs []models.Recommendation) error {
	switch format {
	case FormatCSV:
		return WriteRecommendationsCSV(w, recs)
	case FormatJSON:
		return WriteRecommendationsJSON(w, recs)
	case FormatMarkdown:
		return WriteRecommendationsMarkdown(w, "Recommendations", recs)
	case FormatText:
		return WriteRecommendationsText(w, recs)
	}
	return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
}

// ExportRecommendations writes recs to {dir}/recommendations.{ext}, creating dir as needed, and returns the path.
func ExportRecommendations(dir string, format Format, recs []models.Recommendation) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, format, recs); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "recommendations."+format.Extension())
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
