package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MacroPower/csvdash/internal/version"
)

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the csvdash CLI",
		Args:  cobra.NoArgs,
		Run: func(cc *cobra.Command, _ []string) {
			fmt.Fprintln(cc.OutOrStdout(), version.String()) //nolint:errcheck // Best effort.
		},
	}
}
