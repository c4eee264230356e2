package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/campuscopilot/copilot-go/internal/logging"
	"github.com/campuscopilot/copilot-go/internal/provider"
	"github.com/campuscopilot/copilot-go/internal/rag"
	"github.com/campuscopilot/copilot-go/internal/server"
	"github.com/campuscopilot/copilot-go/internal/tracing"
)

// NewServeCmd constructs the `copilot serve` command, which starts the HTTP
// server for portal integrations.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Campus Copilot HTTP server",
		Long: `Start the Campus Copilot HTTP server on localhost.

The server exposes a JSON API for chat, document ingestion, and retrieval
search, plus health, readiness, and Prometheus metrics endpoints.

Examples:
  copilot serve
  copilot serve --port 9090
  MODEL_PROVIDER=azure copilot serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			providerCfg := provider.ConfigFromEnv()
			chatModel, err := provider.New(ctx, providerCfg)
			if err != nil {
				// The server still serves FAQ and knowledge answers without
				// a model backend, unless the embedder rides on it.
				if getEnvOrDefault("EMBEDDING_PROVIDER", "prompt") == "prompt" {
					return fmt.Errorf("serve: failed to initialise model provider: %w", err)
				}
				log.Warn("model provider unavailable, generative answers disabled", slog.Any("error", err))
				chatModel = nil
			} else {
				log.Info("provider initialised", slog.String("provider", string(providerCfg.Backend)))
			}

			history, closeHistory := openHistory(log)
			defer closeHistory()

			stack, err := buildCopilot(ctx, log, chatModel, history)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer stack.close()

			pingers := []server.Pinger{server.NewKnowledgePinger(stack.knowledge)}
			if providerCfg.Backend == provider.BackendOllama {
				pingers = append(pingers, server.NewOllamaPinger(providerCfg.Ollama.Host))
			}
			if qs, ok := stack.index.(*rag.QdrantStore); ok {
				pingers = append(pingers, server.NewQdrantPinger(qs.Client()))
			}

			srv, err := server.New(stack.copilot, stack.knowledge, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("COPILOT_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
