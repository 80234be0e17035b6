// Package models defines the records that flow through the recommendation pipeline and the entities persisted between runs.
//
// The package contains two categories of types:
//
// 1. Pipeline records: plain structs passed by value between stages
//   - [Track] : A catalog row with audio attributes, fine and coarse genre and the liked label
//   - [LikedSet] : Identifiers the user likes, immutable once built
//   - [Recommendation] : A scored unseen track
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Run] : One pipeline execution with its input paths, seed and summary counts
//   - [PersistedRecommendation] : One ranked row of a run's output
//
// All persistent entities implement the Model interface providing ID generation, timestamps and validation.
// Repository[T, F] is the CRUD surface of a stored entity, listed through a typed filter F.
package models
