package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/khanglvm/paloma/internal/knowledge"
	"github.com/spf13/cobra"
)

// NewKnowledgeCmd creates the knowledge command group.
func NewKnowledgeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Inspect the knowledge base",
	}

	cmd.AddCommand(newKnowledgeListCmd(opts))
	cmd.AddCommand(newKnowledgeSearchCmd(opts))
	cmd.AddCommand(newKnowledgeExportCmd(opts))
	cmd.AddCommand(newKnowledgeValidateCmd())

	return cmd
}

func newKnowledgeListCmd(opts *globalOptions) *cobra.Command {
	var category string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List knowledge entries",
		Example: `  paloma knowledge list
  paloma knowledge list --category fiscalite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			entries := rt.kb.Entries()
			if category != "" {
				entries = rt.kb.ByCategory(category)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list this category")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func newKnowledgeSearchCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			hits, err := rt.kb.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintln(out, "No entries found.")
				return nil
			}
			for _, h := range hits {
				fmt.Fprintf(out, "  %-24s %6.3f  %s\n", h.Entry.ID, h.Score, h.Entry.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (default: knowledge.searchLimit)")
	return cmd
}

func newKnowledgeExportCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the active catalog as YAML",
		Long: `Write the active catalog (built-in or configured) to a YAML file that
can be edited and set as knowledge.catalogPath.`,
		Example: `  paloma knowledge export -o ~/.paloma/catalog.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}

			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			entries := rt.kb.Entries()
			if err := knowledge.SaveFile(output, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d entries to %s\n", len(entries), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output YAML file")
	return cmd
}

func newKnowledgeValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog.yaml>",
		Short: "Check a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := knowledge.LoadFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ %d entries\n", len(entries))

			ids := make(map[string]bool, len(entries))
			for _, e := range entries {
				ids[e.ID] = true
			}
			for _, e := range entries {
				for _, rel := range e.RelatedTopics {
					if !ids[rel] {
						fmt.Fprintf(out, "⚠ %s: related topic %q does not exist\n", e.ID, rel)
					}
				}
			}
			return nil
		},
	}
}

func printEntries(w io.Writer, entries []knowledge.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries.")
		return
	}
	fmt.Fprintf(w, "Knowledge entries (%d):\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  %s\n", e.ID)
		fmt.Fprintf(w, "    Title:    %s\n", e.Title)
		fmt.Fprintf(w, "    Category: %s\n", e.Category)
		if e.NavigationPath != "" {
			fmt.Fprintf(w, "    Path:     %s\n", e.NavigationPath)
		}
		fmt.Fprintln(w)
	}
}
