// Package aggregates holds the transactional write paths whose invariants
// span more than one table: click resolution with its completion side
// effects, and result recording with its progress fold.
package aggregates
