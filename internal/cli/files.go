package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the CSV files in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			output, err := cc.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			if err := checkOutput(output, outputText, outputJSON, outputYAML); err != nil {
				return err
			}

			cfg, err := loadConfig(cc)
			if err != nil {
				return err
			}

			files, err := cfg.Loader().Discover()
			if err != nil {
				return fmt.Errorf("list files: %w", err)
			}

			if output != outputText {
				return writeStructured(cc.OutOrStdout(), output, files)
			}

			if len(files) == 0 {
				cc.PrintErrf("No CSV files found in %s\n", cfg.DataDir)

				return nil
			}

			out := cc.OutOrStdout()
			for _, f := range files {
				fmt.Fprintln(out, f.Name) //nolint:errcheck // Best effort.
			}

			return nil
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().StringP("output", "o", outputText, "Output format (text, json, yaml)")

	return cmd
}
