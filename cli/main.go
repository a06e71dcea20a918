package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is set at build time.
var Version = "dev"

type rootFlags struct {
	config   string
	id       int
	root     string
	rom      string
	logLevel string
	logFile  string
	headless bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "craftos",
		Short:         "Runs an emulated CraftOS computer in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}

	bindFlags(root.PersistentFlags(), flags)
	root.AddCommand(newVersionCommand())
	return root
}

func bindFlags(pf *pflag.FlagSet, flags *rootFlags) {
	pf.StringVarP(&flags.config, "config", "c", "", "Path to a YAML config file")
	pf.IntVar(&flags.id, "id", 0, "ID of the computer")
	pf.StringVar(&flags.root, "root", "", "Host directory backing the root mount")
	pf.StringVar(&flags.rom, "rom", "", "Host directory mounted read-only as rom")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFile, "log-file", "", "Write logs to this file")
	pf.BoolVar(&flags.headless, "headless", false, "Run without the terminal front-end")
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "craftos %s\n", Version)
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
