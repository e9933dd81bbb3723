// Package cli provides the command-line interface and the composition root
// for the answering service.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Batch document question answering service",
	Long: `Docqa answers a batch of natural-language questions against a single
uploaded document (PDF or JSON) by retrieving relevant passages and asking
a language model to answer strictly from that context, returning answers
with page-level citations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.docqa)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Version returns the build version string.
func Version() string {
	return version
}
