package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInsightsCmd creates the 'insights' command.
func NewInsightsCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show what the assistant has learned",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			in := rt.generator.GetLearningInsights()
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, in)
			}

			fmt.Fprintln(out, "Learning Insights")
			fmt.Fprintln(out, "=================")
			fmt.Fprintf(out, "Interactions:         %d\n", in.TotalInteractions)
			fmt.Fprintf(out, "Average satisfaction: %.2f\n", in.AverageSatisfaction)
			fmt.Fprintf(out, "Improvement trend:    %+.2f\n", in.ImprovementTrend)

			if len(in.TopPatterns) > 0 {
				fmt.Fprintln(out, "\nTop patterns:")
				for _, p := range in.TopPatterns {
					fmt.Fprintf(out, "  • %s (effectiveness %.2f, seen %d×)\n", p.PatternID, p.Effectiveness, p.Occurrences)
				}
			}
			if len(in.ProblematicAreas) > 0 {
				fmt.Fprintln(out, "\nProblematic areas:")
				for _, a := range in.ProblematicAreas {
					fmt.Fprintf(out, "  • %s\n", a)
				}
			}
			fmt.Fprintln(out, "\nSuggestions:")
			for _, s := range in.Suggestions {
				fmt.Fprintf(out, "  • %s\n", s)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}
