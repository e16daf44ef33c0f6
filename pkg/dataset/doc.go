// Package dataset discovers CSV files in a directory and loads them into
// in-memory tables.
//
// A [Loader] is bound to one data directory. [Loader.List] enumerates the CSV
// files found there and [Loader.Load] parses one of them into a [Table].
// Files are grouped by a country-like prefix of their name (see [GroupOf]),
// and whole groups can be loaded and concatenated with [Loader.LoadGroups].
package dataset
