package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tastemaker/internal/classifier"
	"github.com/desertthunder/tastemaker/internal/dataset"
	"github.com/desertthunder/tastemaker/internal/features"
	"github.com/desertthunder/tastemaker/internal/genre"
	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/recommender"
	"github.com/desertthunder/tastemaker/internal/shared"
)

// Recorder persists run history. [repositories.RunRecorder] implements it.
type Recorder interface {
	Start(catalogPath, likedPath string, seed int64) (*models.Run, error)
	Complete(run *models.Run, summary models.RunSummary, recs []models.Recommendation) error
	Fail(run *models.Run, summary models.RunSummary) error
}

// PipelineOptions configures one pipeline run.
type PipelineOptions struct {
	CatalogPath string
	LikedPath   string
	Balance     dataset.BalanceOptions
	Split       features.SplitOptions
	Model       classifier.Config
	TopN        int
}

// OptionsFromConfig maps the configuration file onto pipeline options.
func OptionsFromConfig(cfg *shared.Config) PipelineOptions {
	return PipelineOptions{
		CatalogPath: cfg.Data.CatalogPath,
		LikedPath:   cfg.Data.LikedPath,
		Balance: dataset.BalanceOptions{
			AmplificationFactor: cfg.Pipeline.AmplificationFactor,
			UndersampleRatio:    cfg.Pipeline.UndersampleRatio,
			Seed:                cfg.Pipeline.Seed,
		},
		Split: features.SplitOptions{TestRatio: cfg.Pipeline.TestRatio, Seed: cfg.Pipeline.Seed},
		Model: classifier.Config{
			Kind:           classifier.Kind(cfg.Model.Kind),
			NumTrees:       cfg.Model.NumTrees,
			MaxDepth:       cfg.Model.MaxDepth,
			LearningRate:   cfg.Model.LearningRate,
			Subsample:      cfg.Model.Subsample,
			ColSample:      cfg.Model.ColSample,
			Lambda:         cfg.Model.Lambda,
			MinChildWeight: cfg.Model.MinChildWeight,
			MLP: classifier.MLPConfig{
				HiddenLayers: slices.Clone(cfg.Model.MLP.HiddenLayers),
				MaxEpochs:    cfg.Model.MLP.MaxEpochs,
				BatchSize:    cfg.Model.MLP.BatchSize,
				LearningRate: cfg.Model.MLP.LearningRate,
				Alpha:        cfg.Model.MLP.Alpha,
				Tolerance:    cfg.Model.MLP.Tolerance,
				Patience:     cfg.Model.MLP.Patience,
			},
			Seed: cfg.Model.Seed,
		},
		TopN: cfg.Pipeline.TopN,
	}
}

// DefaultPipelineOptions returns the built-in balancing, split and model settings.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Balance: dataset.DefaultBalanceOptions(),
		Split:   features.DefaultSplitOptions(),
		Model:   classifier.DefaultConfig(),
		TopN:    recommender.DefaultTopN,
	}
}

// FeatureWeight is the weight the model attributes to a column, as reported by
// [classifier.Model.FeatureImportance].
type FeatureWeight struct {
	Column string
	Gain   float64
}

// PreparedTables is the output of the merge and balance phases.
type PreparedTables struct {
	Full         []models.Track // merged catalog, before balancing
	Balanced     []models.Track
	MergeStats   dataset.MergeStats
	BalanceStats dataset.BalanceStats
}

// PipelineResult contains everything a run produced.
type PipelineResult struct {
	PreparedTables

	RunID           string
	Fit             *features.FitResult
	Model           *classifier.Model
	Report          classifier.Report
	Evaluated       bool // false when the split left no test rows
	Importance      []FeatureWeight
	Recommendations []models.Recommendation
	Duration        time.Duration
}

// Summary condenses the result into the counts stored with a run.
func (r *PipelineResult) Summary() models.RunSummary {
	return summarize(&r.PreparedTables, r.Report.Accuracy)
}

// Score re-encodes tracks through the frozen feature spec and returns the model's probabilities.
func (r *PipelineResult) Score(tracks []models.Track) ([]float64, error) {
	if r.Fit == nil || r.Model == nil {
		return nil, fmt.Errorf("%w: pipeline result has no model", shared.ErrNotFitted)
	}
	m, err := features.Transform(tracks, r.Fit.Spec)
	if err != nil {
		return nil, err
	}
	return r.Model.PredictProba(m.Rows)
}

// PipelineEngine runs the recommendation pipeline and reports progress.
type PipelineEngine struct {
	normalizer *genre.Normalizer
	recorder   Recorder
	logger     *log.Logger
}

// EngineOption customizes a [PipelineEngine].
type EngineOption func(*PipelineEngine)

// WithRecorder enables run persistence.
func WithRecorder(r Recorder) EngineOption {
	return func(e *PipelineEngine) { e.recorder = r }
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(l *log.Logger) EngineOption {
	return func(e *PipelineEngine) { e.logger = l }
}

// NewPipelineEngine creates an engine that normalizes genres with norm. A nil norm uses the built-in map.
func NewPipelineEngine(norm *genre.Normalizer, opts ...EngineOption) *PipelineEngine {
	if norm == nil {
		norm = genre.Default()
	}
	e := &PipelineEngine{normalizer: norm, logger: shared.NewLogger(io.Discard)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PipelineEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load reads the catalog and liked tables named in opts.
func (e *PipelineEngine) Load(progress chan<- ProgressUpdate, opts PipelineOptions) ([]models.Track, models.LikedSet, error) {
	catalog, err := dataset.LoadCatalog(opts.CatalogPath)
	if err != nil {
		return nil, models.LikedSet{}, err
	}
	liked, err := dataset.LoadLiked(opts.LikedPath)
	if err != nil {
		return nil, models.LikedSet{}, err
	}

	e.logger.Info("loaded inputs", "catalog", opts.CatalogPath, "rows", len(catalog), "liked", liked.Len())
	e.sendProgress(progress, loadedUpdate(len(catalog), liked.Len()))
	return catalog, liked, nil
}

// Prepare merges and balances the loaded tables.
//
// Zero liked matches is logged as a warning at merge time; balancing then fails with [shared.ErrNoLikedTracks].
func (e *PipelineEngine) Prepare(progress chan<- ProgressUpdate, catalog []models.Track, liked models.LikedSet, opts dataset.BalanceOptions) (*PreparedTables, error) {
	full, mstats := dataset.Merge(catalog, liked, e.normalizer)
	e.logger.Info("merged catalog", "rows", mstats.Output, "duplicates", mstats.Duplicates, "liked", mstats.Liked)
	if mstats.UnmatchedLiked > 0 {
		e.logger.Warn("liked ids missing from catalog", "count", mstats.UnmatchedLiked)
	}
	if mstats.Liked == 0 {
		e.logger.Warn("no liked ids matched the catalog; the table has no positive labels")
	}
	e.sendProgress(progress, mergedUpdate(mstats))

	balanced, bstats, err := dataset.Balance(full, opts)
	prepared := &PreparedTables{Full: full, Balanced: balanced, MergeStats: mstats, BalanceStats: bstats}
	if err != nil {
		return prepared, err
	}
	e.logger.Info("balanced table", "liked", bstats.Liked, "synthetic", bstats.Synthetic, "negatives", bstats.Sampled)
	e.sendProgress(progress, balancedUpdate(bstats))

	return prepared, nil
}

// Run loads the configured inputs and executes every phase, recording the run when a recorder is set.
func (e *PipelineEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts PipelineOptions) (*PipelineResult, error) {
	catalog, liked, err := e.Load(progress, opts)
	if err != nil {
		return nil, err
	}
	return e.RunTables(ctx, progress, catalog, liked, opts)
}

// RunTables executes the pipeline on already loaded tables.
func (e *PipelineEngine) RunTables(ctx context.Context, progress chan<- ProgressUpdate, catalog []models.Track, liked models.LikedSet, opts PipelineOptions) (res *PipelineResult, err error) {
	start := time.Now()
	logger := e.logger
	res = &PipelineResult{}

	var run *models.Run
	if e.recorder != nil {
		if run, err = e.recorder.Start(opts.CatalogPath, opts.LikedPath, opts.Balance.Seed); err != nil {
			return nil, err
		}
		res.RunID = run.ID()
		logger = shared.WithLogger(logger, "run_id", run.ID())
		defer func() {
			if err == nil {
				return
			}
			if ferr := e.recorder.Fail(run, res.Summary()); ferr != nil {
				logger.Error("failed to record run failure", "error", ferr)
			}
		}()
	}

	engine := &PipelineEngine{normalizer: e.normalizer, logger: logger}
	prepared, err := engine.Prepare(progress, catalog, liked, opts.Balance)
	if prepared != nil {
		res.PreparedTables = *prepared
	}
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Fit, err = features.Fit(res.Balanced, opts.Split)
	if err != nil {
		return res, fmt.Errorf("feature pipeline: %w", err)
	}
	logger.Debug("fitted features", "columns", res.Fit.Spec.Width(), "train", res.Fit.Train.Len(), "test", res.Fit.Test.Len())
	e.sendProgress(progress, featuresUpdate(res.Fit.Train.Len(), res.Fit.Test.Len(), res.Fit.Spec.Width()))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	e.sendProgress(progress, trainingUpdate(opts.Model))
	res.Model, err = classifier.Fit(res.Fit.Train.Rows, res.Fit.TrainLabels, opts.Model)
	if err != nil {
		return res, fmt.Errorf("classifier: %w", err)
	}
	res.Importance = importance(res.Fit.Spec.Columns(), res.Model.FeatureImportance())
	logger.Info("trained model", "kind", res.Model.Kind(), "trees", res.Model.NumTrees(), "epochs", res.Model.Epochs(), "base_rate", res.Model.BaseRate())
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if res.Fit.Test.Len() > 0 {
		pred, err := res.Model.Predict(res.Fit.Test.Rows)
		if err != nil {
			return res, err
		}
		if res.Report, err = classifier.Evaluate(res.Fit.TestLabels, pred); err != nil {
			return res, err
		}
		res.Evaluated = true
		logger.Info("evaluated model", "accuracy", res.Report.Accuracy, "test_rows", res.Fit.Test.Len())
		e.sendProgress(progress, evaluatedUpdate(res.Report.Accuracy))
	} else {
		logger.Warn("split left no test rows; skipping evaluation")
	}

	res.Recommendations, err = recommender.Recommend(res.Model, res.Fit.Spec, res.Full, res.Balanced, opts.TopN)
	if err != nil {
		return res, err
	}
	logger.Info("ranked recommendations", "count", len(res.Recommendations))
	e.sendProgress(progress, recommendedUpdate(len(res.Recommendations)))

	if run != nil {
		if err := e.recorder.Complete(run, res.Summary(), res.Recommendations); err != nil {
			return res, fmt.Errorf("failed to record run: %w", err)
		}
		e.sendProgress(progress, persistedUpdate(run.ID()))
	}

	res.Duration = time.Since(start)
	logger.Info("pipeline finished", "duration", res.Duration)
	return res, nil
}

func summarize(p *PreparedTables, accuracy float64) models.RunSummary {
	return models.RunSummary{
		CatalogRows:   p.MergeStats.Input,
		LikedRows:     p.MergeStats.Liked,
		SyntheticRows: p.BalanceStats.Synthetic,
		BalancedRows:  len(p.Balanced),
		Accuracy:      accuracy,
	}
}

func importance(columns []string, gains []float64) []FeatureWeight {
	weights := make([]FeatureWeight, len(columns))
	for i, c := range columns {
		weights[i] = FeatureWeight{Column: c, Gain: gains[i]}
	}
	slices.SortStableFunc(weights, func(a, b FeatureWeight) int {
		switch {
		case a.Gain > b.Gain:
			return -1
		case a.Gain < b.Gain:
			return 1
		}
		return 0
	})
	return weights
}

// IsInputError reports whether err stems from missing or malformed input tables.
func IsInputError(err error) bool {
	return errors.Is(err, shared.ErrMissingInput) || errors.Is(err, shared.ErrSchemaMismatch)
}
