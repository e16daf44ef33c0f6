// Package cli implements the csvdash command line interface.
package cli
