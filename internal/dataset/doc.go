// Package dataset loads the catalog and liked-list tables, labels and deduplicates the catalog, and balances the labeled table for training.
//
// # Loading
//
// [ReadCatalog] parses a delimited catalog with a header row. The identifier, name, artists and genre
// columns plus every entry of [models.NumericColumns] are required; a missing column or an unparsable
// number fails with [shared.ErrSchemaMismatch]. [ReadLiked] reads the identifier column of a liked list.
//
// # Merging
//
// [Merge] sets the liked label from the [models.LikedSet], assigns the coarse genre through a
// [genre.Normalizer] and collapses rows that share an exact (name, artists) pair, keeping the first.
//
// # Balancing
//
// [Balance] promotes unliked tracks by artist affinity with one seeded Bernoulli draw each, then
// undersamples the unliked rows to a fixed multiple of the liked rows and shuffles the result. A target
// larger than the available unliked rows fails with [shared.ErrSamplingInfeasible]; it is never clipped.
package dataset
