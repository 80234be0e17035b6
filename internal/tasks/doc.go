// Package tasks runs the recommendation pipeline with real-time progress reporting.
//
// # Core Operations
//
// [PipelineEngine] drives three operations:
//
//  1. [PipelineEngine.Run] : full pipeline from CSV inputs
//     - Loads the catalog and liked-id tables
//     - Merges them into one labeled table and balances it
//     - Fits the frozen feature pipeline and the boosted classifier
//     - Evaluates on the held-out split and ranks unseen tracks
//
//  2. [PipelineEngine.Prepare] : merge and balance only, for inspecting the training table
//
//  3. [PipelineEngine.CollectLiked] and [PipelineEngine.FetchYears] : pull liked tracks and
//     release years from a [services.CatalogService]
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [Recorder] interface persists each run and its recommendations
// (repositories.RunRecorder). A run that fails after it started is marked failed with whatever counts
// were known at that point.
package tasks
