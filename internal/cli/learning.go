package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/khanglvm/paloma/internal/config"
	"github.com/spf13/cobra"
)

// NewLearningCmd creates the learning command group.
func NewLearningCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learning",
		Short: "Manage the learning system",
		Long: `The learning system records feedback on answers, learns patterns and
user profiles from it and adapts later answers.

Patterns and profiles are persisted in the configured store under
learning.storeKey.

Commands:
  status  Show learning state
  export  Export the learning state as JSON
  reset   Delete all learning data
  disable Turn off learning
  enable  Turn on learning`,
	}

	cmd.AddCommand(newLearningStatusCmd(opts))
	cmd.AddCommand(newLearningExportCmd(opts))
	cmd.AddCommand(newLearningResetCmd(opts))
	cmd.AddCommand(newLearningToggleCmd(opts, true))
	cmd.AddCommand(newLearningToggleCmd(opts, false))

	return cmd
}

// newLearningStatusCmd shows the learning state.
func newLearningStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show learning state",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			data := rt.learning.ExportLearningData()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Learning System Status")
			fmt.Fprintln(out, "======================")
			fmt.Fprintf(out, "Enabled:   %t\n", data.Enabled)
			fmt.Fprintf(out, "Storage:   %s\n", rt.cfg.Storage.Driver)
			fmt.Fprintf(out, "Store key: %s\n", rt.cfg.Learning.StoreKey)
			fmt.Fprintf(out, "Patterns:  %d\n", len(data.Patterns))
			fmt.Fprintf(out, "Profiles:  %d\n", len(data.UserProfiles))
			fmt.Fprintf(out, "Rules:     %s\n", strings.Join(data.Rules, ", "))
			return nil
		},
	}
}

// newLearningExportCmd exports the learning state as JSON.
func newLearningExportCmd(opts *globalOptions) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the learning state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			data := rt.generator.ExportLearningData()
			if outputFile == "" {
				return writeJSON(cmd.OutOrStdout(), data)
			}

			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()
			if err := writeJSON(f, data); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// newLearningResetCmd deletes all learning data.
func newLearningResetCmd(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "reset",
		Aliases: []string{"clear"},
		Short:   "Delete all learning data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "This will delete all learning data. Continue? (y/N): ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.TrimSpace(answer)
				if answer != "y" && answer != "Y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			rt.learning.ResetLearningData()
			fmt.Fprintln(cmd.OutOrStdout(), "Learning data cleared successfully")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// newLearningToggleCmd persists learning.enabled in the config file.
func newLearningToggleCmd(opts *globalOptions, enable bool) *cobra.Command {
	use, short := "disable", "Turn off learning"
	if enable {
		use, short = "enable", "Turn on learning"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			if _, err := config.LoadOrCreate(path); err != nil {
				return err
			}
			// Edit the file as written, without environment overrides.
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}

			cfg.Learning.Enabled = enable
			if err := config.Save(cfg, path); err != nil {
				return err
			}

			state := "disabled"
			if enable {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Learning %s in %s\n", state, path)
			if v := os.Getenv(config.EnvPrefix + "_LEARNING_ENABLED"); v != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Note: %s_LEARNING_ENABLED=%s overrides the file.\n", config.EnvPrefix, v)
			}
			return nil
		},
	}
}
