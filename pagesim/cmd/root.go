// Package cmd provides the command-line interface for pagesim.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sarchlab/pagesim/sim"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// NewRootCommand creates the pagesim command with all its subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pagesim",
		Short: "pagesim replays memory traces against a virtual memory model.",
		Long: `pagesim replays memory access traces against a page table ` +
			`and a replacement policy, and reports the memory accesses, ` +
			`page faults and dirty pages of the run.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return loadEnv(envFile)
		},
	}

	rootCmd.PersistentFlags().String("env-file", ".env",
		"File with PAGESIM_* defaults, ignored when missing.")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newReportCmd())

	return rootCmd
}

// Execute runs the root command and exits. Exit functions registered by the
// recorders run before the process ends.
func Execute() {
	sim.UseGlobalIDGenerator()

	err := NewRootCommand().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// stringOption returns the flag value when it was set on the command line,
// then the environment variable, then the flag default.
func stringOption(cmd *cobra.Command, flag, env string) string {
	value, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return value
	}

	if v, ok := os.LookupEnv(env); ok && v != "" {
		return v
	}

	return value
}
