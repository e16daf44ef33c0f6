// Package config loads and validates the csvdash configuration file.
//
// The file is YAML. Durations are written as Go duration strings, for
// example "30m". Any field left out keeps its value from [Default].
package config
