package cli

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/MacroPower/csvdash/pkg/config"
)

// addConfigFlags registers the flags shared by commands that read CSV
// files.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Path to a config file (default $"+config.EnvFile+")")
	cmd.Flags().StringP("data_dir", "d", config.DefaultDataDir, "Directory containing CSV files")
	cmd.Flags().String("delimiter", ",", "CSV field delimiter")

	must(cmd.MarkFlagFilename("config", "yaml", "yml"))
	must(cmd.MarkFlagDirname("data_dir"))
}

// loadConfig reads the config file named by the command's flags and applies
// any flags that were set explicitly on top of it.
func loadConfig(cc *cobra.Command) (*config.Config, error) {
	var merr error

	flags := cc.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	dataDir, err := flags.GetString("data_dir")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	delimiter, err := flags.GetString("delimiter")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if flags.Changed("data_dir") {
		cfg.DataDir = dataDir
	}

	if flags.Changed("delimiter") {
		cfg.Delimiter = delimiter
	}

	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		addr, err := flags.GetString("addr")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}

		cfg.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return cfg, nil
}
