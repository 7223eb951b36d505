package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/khanglvm/paloma/internal/assistant"
	"github.com/khanglvm/paloma/internal/learning"
	"github.com/spf13/cobra"
)

// contextFlags bind the learning.Context of a query.
type contextFlags struct {
	userID string
	module string
	role   string
	mood   string
}

func (f *contextFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.userID, "user", "", "User id (default: current_user)")
	cmd.Flags().StringVar(&f.module, "module", "", "Module the user is in (e.g. achats)")
	cmd.Flags().StringVar(&f.role, "role", "", "Role of the user")
	cmd.Flags().StringVar(&f.mood, "mood", "", "Detected mood (e.g. frustrated)")
}

func (f *contextFlags) context() *learning.Context {
	if f.userID == "" && f.module == "" && f.role == "" && f.mood == "" {
		return nil
	}
	return &learning.Context{
		UserID:   f.userID,
		Module:   f.module,
		UserRole: f.role,
		Mood:     f.mood,
	}
}

// NewAskCmd creates the 'ask' command.
func NewAskCmd(opts *globalOptions) *cobra.Command {
	var ctxFlags contextFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant a question",
		Long: `Answer a question from the knowledge base, personalized with what
the assistant has learned about the user.`,
		Example: `  paloma ask "Comment créer une facture d'achat ?"
  paloma ask "Où trouver le bilan ?" --user amina --module etats
  paloma ask "tva" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			resp := rt.generator.GenerateResponse(strings.Join(args, " "), ctxFlags.context())
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	ctxFlags.register(cmd)
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// printResponse renders a response for the terminal.
func printResponse(w io.Writer, resp assistant.IntelligentResponse) {
	fmt.Fprintln(w, resp.Message)
	fmt.Fprintln(w)

	if len(resp.Actions) > 0 {
		fmt.Fprintln(w, "Actions:")
		for _, a := range resp.Actions {
			target := a.Path
			if target == "" {
				target = a.Command
			}
			fmt.Fprintf(w, "  [%s] %s → %s\n", a.Type, a.Label, target)
		}
	}
	if len(resp.Suggestions) > 0 {
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range resp.Suggestions {
			fmt.Fprintf(w, "  • %s\n", s)
		}
	}
	fmt.Fprintf(w, "Confidence: %.2f\n", resp.Confidence)
}
