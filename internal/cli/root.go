/*
Package cli implements the paloma command line.

Every command loads ~/.paloma.json (or --config), builds the assistant from
it and releases it before returning.
*/
package cli

import (
	"encoding/json"
	"io"

	"github.com/khanglvm/paloma/internal/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the paloma command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "paloma",
		Short: "Adaptive SYSCOHADA accounting help assistant",
		Long: `paloma answers accounting questions from a SYSCOHADA knowledge base
and adapts its answers to each user from the feedback it receives.

Answers are personalized in tone, length and structure; learned patterns
and rules are persisted in a local key-value store (sqlite by default).`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: ~/.paloma.json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(NewAskCmd(opts))
	rootCmd.AddCommand(NewFeedbackCmd(opts))
	rootCmd.AddCommand(NewInsightsCmd(opts))
	rootCmd.AddCommand(NewProfileCmd(opts))
	rootCmd.AddCommand(NewLearningCmd(opts))
	rootCmd.AddCommand(NewKnowledgeCmd(opts))
	rootCmd.AddCommand(NewConfigCmd(opts))
	rootCmd.AddCommand(NewServeCmd(opts))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// writeJSON pretty-prints v.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
