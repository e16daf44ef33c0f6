package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"sigs.k8s.io/yaml"
)

var ErrUnknownOutput = errors.New("unknown output format")

const (
	outputText  = "text"
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputCSV   = "csv"
)

func checkOutput(format string, allowed ...string) error {
	if !slices.Contains(allowed, format) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownOutput, format, strings.Join(allowed, ", "))
	}

	return nil
}

// writeStructured writes v as JSON or YAML. YAML keys follow the JSON tags.
func writeStructured(w io.Writer, format string, v any) error {
	var (
		b   []byte
		err error
	)

	switch format {
	case outputJSON:
		b, err = json.MarshalIndent(v, "", "  ")
		b = append(b, '\n')
	case outputYAML:
		b, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, format)
	}

	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}

	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
