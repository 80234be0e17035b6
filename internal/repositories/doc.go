// Package repositories implements SQLite persistence for pipeline runs and their recommendations.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Runs support soft deletes via deleted_at timestamps and deleted runs are excluded from queries by default.
//
// Key Implementations:
//   - [RunRepository] : Run history with status and summary counts
//   - [RecommendationRepository] : Ranked output rows belonging to a run
//   - [RunRecorder] : Adapter the task engine uses to open, complete and fail runs
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// [NextSequence] increments the counter inside the same transaction as the insert that consumes it.
package repositories
