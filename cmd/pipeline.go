package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/tastemaker/internal/classifier"
	"github.com/desertthunder/tastemaker/internal/dataset"
	"github.com/desertthunder/tastemaker/internal/formatter"
	"github.com/desertthunder/tastemaker/internal/repositories"
	"github.com/desertthunder/tastemaker/internal/shared"
	"github.com/desertthunder/tastemaker/internal/tasks"
	"github.com/desertthunder/tastemaker/internal/ui"
	"github.com/urfave/cli/v3"
)

// pipelineOptions maps the config onto pipeline options and applies command-line overrides.
func (r *Runner) pipelineOptions(cmd *cli.Command) (tasks.PipelineOptions, error) {
	opts := tasks.OptionsFromConfig(r.config)
	if v := cmd.String("model"); v != "" {
		kind, err := classifier.ParseKind(v)
		if err != nil {
			return opts, fmt.Errorf("%w: --model %s", shared.ErrInvalidArgument, v)
		}
		opts.Model.Kind = kind
	}
	if v := cmd.String("catalog"); v != "" {
		opts.CatalogPath = v
	}
	if v := cmd.String("liked"); v != "" {
		opts.LikedPath = v
	}
	if cmd.IsSet("top") {
		opts.TopN = int(cmd.Int("top"))
	}
	return opts, nil
}

func (r *Runner) outputDir(cmd *cli.Command) string {
	if v := cmd.String("output-dir"); v != "" {
		return v
	}
	return r.config.Data.OutputDir
}

// pipelineEngine returns the runner's engine, or one that records runs when persistence is enabled.
// The returned function closes the database.
func (r *Runner) pipelineEngine(save bool) (*tasks.PipelineEngine, func(), error) {
	if !save {
		return r.engine, func() {}, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	engine := tasks.NewPipelineEngine(r.normalizer,
		tasks.WithEngineLogger(r.logger),
		tasks.WithRecorder(repositories.NewRunRecorder(db)),
	)
	return engine, func() { db.Close() }, nil
}

// RunPipeline trains the model and writes the ranked recommendations.
func (r *Runner) RunPipeline(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	opts, err := r.pipelineOptions(cmd)
	if err != nil {
		return err
	}
	outDir := r.outputDir(cmd)

	engine, closeDB, err := r.pipelineEngine(!cmd.Bool("no-save"))
	if err != nil {
		return err
	}
	defer closeDB()

	r.logger.Info("starting pipeline", "catalog", opts.CatalogPath, "liked", opts.LikedPath)

	progressCh, wait := r.streamProgress()
	result, err := engine.Run(ctx, progressCh, opts)
	close(progressCh)
	wait()

	if err != nil {
		if tasks.IsInputError(err) {
			return fmt.Errorf("%w (check data.catalog_path and data.liked_path in %s)", err, r.configPath)
		}
		return err
	}

	paths := []string{}
	csvPath, err := formatter.ExportRecommendations(outDir, formatter.FormatCSV, result.Recommendations)
	if err != nil {
		return err
	}
	paths = append(paths, csvPath)
	if format != formatter.FormatCSV {
		path, err := formatter.ExportRecommendations(outDir, format, result.Recommendations)
		if err != nil {
			return err
		}
		paths = append(paths, path)
	}

	if cmd.Bool("json") {
		return formatter.WriteRecommendationsJSON(r.output, result.Recommendations)
	}

	r.writePlain("\n")
	r.writePlainHeader("Pipeline Complete")
	r.writePlain("%s\n", ui.RenderSummary(result, 5))
	if err := formatter.WriteRecommendationsText(r.output, result.Recommendations); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	r.writePlain("\n")
	for _, p := range paths {
		r.writePlain("✓ Wrote %s\n", p)
	}
	if result.RunID != "" {
		r.writePlain("✓ Recorded run %s\n", result.RunID)
	}
	return nil
}

// BalanceTable merges and balances the inputs and writes the training table.
func (r *Runner) BalanceTable(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.pipelineOptions(cmd)
	if err != nil {
		return err
	}
	outDir := r.outputDir(cmd)

	progressCh, wait := r.streamProgress()
	catalog, liked, err := r.engine.Load(progressCh, opts)
	var prepared *tasks.PreparedTables
	if err == nil {
		prepared, err = r.engine.Prepare(progressCh, catalog, liked, opts.Balance)
	}
	close(progressCh)
	wait()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := dataset.WriteTable(&buf, prepared.Balanced); err != nil {
		return fmt.Errorf("failed to encode balanced table: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outDir, "balanced.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s := prepared.BalanceStats
	r.writePlain("\n")
	r.writePlainHeader("Balanced Table")
	r.writePlain("Liked rows: %d (%d original, %d synthetic)\n", s.Liked, s.OriginalLiked, s.Synthetic)
	r.writePlain("Unliked rows: %d sampled of %d\n", s.Sampled, s.Negatives)
	r.writePlain("✓ Wrote %s\n", path)
	return nil
}
