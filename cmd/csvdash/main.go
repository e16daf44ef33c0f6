package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/MacroPower/csvdash/internal/cli"
)

const (
	cmdName = "csvdash"

	shortDesc = "A dashboard for local CSV files."
	longDesc  = `csvdash reads the CSV files in a directory and lets you explore them.

Run "csvdash serve" to open the web dashboard, which shows box plots and the
top groups of any numeric column, or "csvdash browse" to page through files
in the terminal.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
