package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MacroPower/csvdash/pkg/tui"
)

var ErrNotTerminal = errors.New("not a terminal")

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func NewBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse CSV files in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cc)
			if err != nil {
				return err
			}

			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return fmt.Errorf("%w: browse needs an interactive terminal, try \"files\" or \"show\"", ErrNotTerminal)
			}

			p := tea.NewProgram(
				tui.NewBrowseModel(cfg.Loader()),
				tea.WithAltScreen(),
				tea.WithContext(cc.Context()),
			)

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run browser: %w", err)
			}

			return nil
		},
	}

	addConfigFlags(cmd)

	return cmd
}
