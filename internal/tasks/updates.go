package tasks

import (
	"fmt"

	"github.com/desertthunder/tastemaker/internal/classifier"
	"github.com/desertthunder/tastemaker/internal/dataset"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadInputs Phase = iota
	MergeTables
	BalanceTable
	BuildFeatures
	TrainModel
	EvaluateModel
	Recommend
	PersistRun
	FetchPlaylist
	FetchYears
)

// PipelinePhases lists the phases of a full run in execution order.
var PipelinePhases = []Phase{LoadInputs, MergeTables, BalanceTable, BuildFeatures, TrainModel, EvaluateModel, Recommend, PersistRun}

func (p Phase) String() string {
	switch p {
	case LoadInputs:
		return "load"
	case MergeTables:
		return "merge"
	case BalanceTable:
		return "balance"
	case BuildFeatures:
		return "features"
	case TrainModel:
		return "train"
	case EvaluateModel:
		return "evaluate"
	case Recommend:
		return "recommend"
	case PersistRun:
		return "persist"
	case FetchPlaylist:
		return "fetch_playlist"
	case FetchYears:
		return "fetch_years"
	default:
		return ""
	}
}

func phaseUpdate(p Phase, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   p,
		Step:    int(p) + 1,
		Total:   len(PipelinePhases),
		Message: message,
	}
}

func loadedUpdate(catalog, liked int) ProgressUpdate {
	return phaseUpdate(LoadInputs, fmt.Sprintf("Loaded %d catalog rows and %d liked ids", catalog, liked))
}

func mergedUpdate(stats dataset.MergeStats) ProgressUpdate {
	u := phaseUpdate(MergeTables, fmt.Sprintf("Merged catalog: %d rows, %d duplicates dropped, %d liked", stats.Output, stats.Duplicates, stats.Liked))
	u.Data = stats
	return u
}

func balancedUpdate(stats dataset.BalanceStats) ProgressUpdate {
	u := phaseUpdate(BalanceTable, fmt.Sprintf("Balanced table: %d liked (%d synthetic), %d sampled negatives", stats.Liked, stats.Synthetic, stats.Sampled))
	u.Data = stats
	return u
}

func featuresUpdate(train, test, columns int) ProgressUpdate {
	return phaseUpdate(BuildFeatures, fmt.Sprintf("Built features: %d train rows, %d test rows, %d columns", train, test, columns))
}

func trainingUpdate(cfg classifier.Config) ProgressUpdate {
	if cfg.Kind == classifier.KindMLP {
		return phaseUpdate(TrainModel, fmt.Sprintf("Training network %v for up to %d epochs...", cfg.MLP.HiddenLayers, cfg.MLP.MaxEpochs))
	}
	return phaseUpdate(TrainModel, fmt.Sprintf("Training %d trees...", cfg.NumTrees))
}

func evaluatedUpdate(accuracy float64) ProgressUpdate {
	return phaseUpdate(EvaluateModel, fmt.Sprintf("Held-out accuracy: %.1f%%", accuracy*100))
}

func recommendedUpdate(n int) ProgressUpdate {
	return phaseUpdate(Recommend, fmt.Sprintf("Ranked %d recommendations", n))
}

func persistedUpdate(runID string) ProgressUpdate {
	return phaseUpdate(PersistRun, fmt.Sprintf("Recorded run %s", runID))
}

func playlistFetchedUpdate(step, total int, id string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, id, tracks),
	}
}

func playlistFailedUpdate(step, total int, id string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
	}
}

func yearsUpdate(found, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchYears,
		Step:    found,
		Total:   total,
		Message: fmt.Sprintf("Found release years for %d of %d tracks", found, total),
	}
}
