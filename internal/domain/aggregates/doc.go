// Package aggregates declares the transactional writes of the game: resolving
// a click on a session and recording an exercise result. Implementations live
// in internal/data/aggregates.
package aggregates
