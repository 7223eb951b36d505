package cli

import (
	"fmt"
	"time"

	"github.com/khanglvm/paloma/internal/assistant"
	"github.com/khanglvm/paloma/internal/learning"
	"github.com/spf13/cobra"
)

// NewFeedbackCmd creates the 'feedback' command.
func NewFeedbackCmd(opts *globalOptions) *cobra.Command {
	var ctxFlags contextFlags
	var responseTime time.Duration
	var followUps []string

	cmd := &cobra.Command{
		Use:   "feedback <question> <positive|negative|neutral>",
		Short: "Record feedback on the answer to a question",
		Long: `Answer the question again and record the user's reaction to that
answer, so the assistant can learn from it.`,
		Example: `  paloma feedback "Comment créer une facture d'achat ?" positive --response-time 3s
  paloma feedback "tva" negative --user amina --module fiscalite`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fb, err := parseFeedback(args[1])
			if err != nil {
				return err
			}

			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := ctxFlags.context()
			resp := rt.generator.GenerateResponse(args[0], ctx)
			rt.generator.RecordFeedback(assistant.Feedback{
				Query:           args[0],
				Response:        resp,
				Feedback:        fb,
				ResponseTime:    responseTime,
				Context:         ctx,
				FollowUpActions: followUps,
			})

			in := rt.learning.RecentInteractions(1)
			if len(in) == 1 && in[0].UserSatisfaction != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Feedback recorded (satisfaction %.2f)\n", *in[0].UserSatisfaction)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Learning is disabled, feedback ignored.")
			}
			return nil
		},
	}

	ctxFlags.register(cmd)
	cmd.Flags().DurationVar(&responseTime, "response-time", 0, "How long the user took to react")
	cmd.Flags().StringSliceVar(&followUps, "follow-up", nil, "Actions the user took afterwards")

	return cmd
}

func parseFeedback(s string) (learning.Feedback, error) {
	switch fb := learning.Feedback(s); fb {
	case learning.FeedbackPositive, learning.FeedbackNegative, learning.FeedbackNeutral:
		return fb, nil
	}
	return "", fmt.Errorf("unknown feedback %q (want positive, negative or neutral)", s)
}
