// Package tui provides a terminal user interface for browsing CSV files.
//
// [BrowseModel] lists the CSV files of a data directory, loads the chosen
// file in the background and shows it as a scrollable table. It uses the
// Bubble Tea framework.
package tui
