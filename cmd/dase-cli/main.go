// Command dase-cli is the line-oriented JSON command server documented in
// SPEC_FULL.md §4.H: read one JSON request per line from stdin, dispatch
// it through internal/router, write one JSON response line to stdout,
// flush, repeat until EOF. Everything operator-facing (startup failures,
// per-line diagnostics) goes to stderr through internal/dlog; stdout
// carries nothing but the response stream.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	kernelPath string
	describe   string
	verbose    bool
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "dase-cli",
	Short:   "JSON command server for the DASE simulation engine core",
	Long:    `dase-cli drives the cellular, IGSOA, SATP, and SID simulation engines through a line-oriented JSON protocol read from stdin and written to stdout.`,
	Version: version,
	Args:    cobra.NoArgs,
	RunE:    runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file (default is built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&kernelPath, "kernel-lib", "", "path to the Phase 4C shared library (phase4b engine type is unavailable if unset or unloadable)")
	rootCmd.PersistentFlags().StringVar(&describe, "describe", "", "print the static description of an engine_type and exit, instead of running the command loop")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug level) logging to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
