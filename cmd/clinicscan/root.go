// Package main provides the entry point for the clinicscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for clinicscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinicscan",
		Short: "Extract clinic metadata from business websites",
		Long: `Clinicscan crawls clinic and small business websites and extracts their
key facts: specialty, treatment modalities, office locations, and
practice size.

The crawl starts small (home page plus the most promising internal
links) and expands its budget only while extracted fields remain
unknown.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
