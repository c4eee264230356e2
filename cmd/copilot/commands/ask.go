package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/campuscopilot/copilot-go/internal/logging"
	"github.com/campuscopilot/copilot-go/internal/provider"
)

// NewAskCmd constructs the `copilot ask` command, which resolves a single
// natural language question and prints the answer to stdout.
func NewAskCmd() *cobra.Command {
	var session string
	var showStage bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the campus assistant a question",
		Long: `Ask Campus Copilot a natural language question.

FAQ and knowledge answers work fully offline; anything else goes to the
configured model backend. Use --session to continue a conversation across
invocations.

Examples:
  copilot ask "where is the library?"
  copilot ask "show my attendance"
  copilot ask --session advising "which electives suit a CS minor?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			// A missing model backend is non-fatal unless the prompt
			// embedding backend needs it: the FAQ and knowledge tiers still
			// answer, and the generative tier apologizes.
			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				if getEnvOrDefault("EMBEDDING_PROVIDER", "prompt") == "prompt" {
					return fmt.Errorf("ask: failed to initialise model provider: %w", err)
				}
				fmt.Fprintf(os.Stderr, "warning: %v (generative answers unavailable)\n", err)
				chatModel = nil
			}

			history, closeHistory := openHistory(log)
			defer closeHistory()

			stack, err := buildCopilot(ctx, log, chatModel, history)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer stack.close()

			if session == "" {
				session = uuid.NewString()
			}

			res := stack.copilot.Resolve(ctx, session, strings.Join(args, " "))

			fmt.Println(res.Answer)
			if showStage {
				fmt.Fprintf(os.Stderr, "[stage: %s]\n", res.Stage)
			}
			if len(res.Sources) > 0 {
				fmt.Fprintf(os.Stderr, "[sources: %s]\n", strings.Join(res.Sources, ", "))
			}

			log.Debug("query resolved", slog.String("stage", string(res.Stage)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Session ID for multi-turn conversations (default: random)")
	cmd.Flags().BoolVar(&showStage, "stage", false, "Print the answering pipeline stage to stderr")

	return cmd
}
