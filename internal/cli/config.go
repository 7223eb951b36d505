package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/khanglvm/paloma/internal/config"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the paloma configuration file",
		Long: `Create, inspect and verify the configuration file.

Values are read from ~/.paloma.json (or --config) and can be overridden by
PALOMA_* environment variables, e.g. PALOMA_STORAGE_DRIVER=memory.`,
	}

	cmd.AddCommand(newConfigInitCmd(opts))
	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigPathCmd(opts))
	cmd.AddCommand(newConfigValidateCmd(opts))

	return cmd
}

// newConfigInitCmd writes the default configuration.
func newConfigInitCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := config.Save(config.NewConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Config written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")
	return cmd
}

// newConfigShowCmd prints the effective configuration.
func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadFrom(path)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cfg)
		},
	}
}

// newConfigPathCmd prints the config file location.
func newConfigPathCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// newConfigValidateCmd verifies the configuration file.
func newConfigValidateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		Aliases: []string{"verify"},
		Short:   "Verify the configuration",
		Example: `  paloma config validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}

			cfg, err := config.LoadFrom(path)
			if err != nil {
				var notFound *config.ConfigNotFoundError
				if errors.As(err, &notFound) {
					return err
				}
				return fmt.Errorf("configuration error: %w", err)
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Config file: %s\n", path)
			fmt.Fprintf(out, "✓ Storage: %s\n", cfg.Storage.Driver)
			fmt.Fprintf(out, "✓ Learning enabled: %t\n", cfg.Learning.Enabled)
			if cfg.Knowledge.CatalogPath == "" {
				fmt.Fprintln(out, "✓ Knowledge: built-in catalog")
			} else {
				fmt.Fprintf(out, "✓ Knowledge: %s\n", cfg.Knowledge.CatalogPath)
			}
			return nil
		},
	}
}
