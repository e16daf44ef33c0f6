// Package version reports build information for the csvdash binary.
package version
