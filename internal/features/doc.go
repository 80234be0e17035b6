// Package features turns track tables into numeric matrices for the classifier.
//
// [Fit] splits a labeled table, derives the column layout and fits a standardizing [Scaler] on the
// training partition only. The resulting [Spec] is frozen: [Transform] replays the exact layout and
// scaling on any other table, so rows scored at recommendation time line up with the rows the model
// was trained on.
package features
