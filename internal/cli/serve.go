package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MacroPower/csvdash/pkg/config"
	"github.com/MacroPower/csvdash/pkg/web"
)

const serveExample = `  # Serve the CSV files in ./data on :8501
  csvdash serve

  # Serve another directory on localhost only
  csvdash serve --data_dir /srv/csv --addr 127.0.0.1:8080`

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the web dashboard",
		Example: serveExample,
		Args:    cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cc)
			if err != nil {
				return err
			}

			srv, err := web.NewServer(cfg)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cc.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Run(ctx); err != nil {
				return fmt.Errorf("run server: %w", err)
			}

			return nil
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().StringP("addr", "a", config.DefaultAddr, "Address to listen on")

	return cmd
}
