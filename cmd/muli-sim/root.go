package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// buildVersion is overridden at link time via -ldflags, following the
// common cobra-CLI pattern for stamping a build identifier without a
// generated file.
var buildVersion = "dev"

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var rootCmd = &cobra.Command{
	Use:   "muli-sim",
	Short: "Headless driver for the muli 2D physics engine",
}

func init() {
	rootCmd.AddCommand(runCmd, serveCmd, versionCmd)
}
