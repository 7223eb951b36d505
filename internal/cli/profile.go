package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewProfileCmd creates the 'profile' command.
func NewProfileCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "profile [user]",
		Short: "Show the personalization state of a user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := ""
			if len(args) == 1 {
				userID = args[0]
			}

			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			exp := rt.generator.GetPersonalizedExperience(userID)
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, exp)
			}

			p := exp.Personality
			fmt.Fprintf(out, "User: %s\n", exp.UserID)
			fmt.Fprintf(out, "Personality: tone=%s length=%s style=%s complexity=%s\n", p.Tone, p.ResponseLength, p.Style, p.Complexity)
			if len(p.FocusAreas) > 0 {
				fmt.Fprintf(out, "Focus areas: %s\n", strings.Join(p.FocusAreas, ", "))
			}
			if exp.Profile == nil {
				fmt.Fprintln(out, "No interactions recorded yet.")
				return nil
			}
			fmt.Fprintf(out, "Expertise: %s\n", exp.Profile.ExpertiseLevel)
			for _, s := range exp.Suggestions {
				fmt.Fprintf(out, "  • %s\n", s)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}
