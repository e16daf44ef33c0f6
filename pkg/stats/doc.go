// Package stats computes summary statistics over [dataset.Table] columns.
package stats
