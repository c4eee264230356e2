package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/campuscopilot/copilot-go/internal/embedder"
	"github.com/campuscopilot/copilot-go/internal/logging"
	"github.com/campuscopilot/copilot-go/internal/provider"
)

// NewIngestCmd constructs the `copilot ingest` command, which chunks, embeds,
// and indexes campus documents into the vector store.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Index campus documents into the knowledge store",
		Long: `Chunk, embed, and index campus documents for retrieval.

Indexed documents feed the knowledge tier of the assistant: when a student's
question matches ingested text, the answer comes straight from the document
with its source attached.

Required environment variables for the qdrant backend:
  VECTOR_STORE         Set to "qdrant" (default: memory)
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: copilot-docs)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  EMBEDDING_PROVIDER   Embedding backend: prompt, ollama (default: prompt)
  EMBEDDING_*          Backend-specific overrides (see README)

The in-memory backend indexes documents for the lifetime of one process and
is only useful together with 'copilot serve'.

Examples:
  copilot ingest docs/handbook.txt docs/exam_schedule.txt
  VECTOR_STORE=qdrant EMBEDDING_PROVIDER=ollama copilot ingest docs/*.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			if err := embedder.ValidateForRAG(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			// The prompt embedding backend rides on the chat model, so the
			// provider must initialize when that backend is selected.
			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				if getEnvOrDefault("EMBEDDING_PROVIDER", "prompt") == "prompt" {
					return fmt.Errorf("ingest: failed to initialise model provider: %w", err)
				}
				fmt.Fprintf(os.Stderr, "warning: %v (continuing with standalone embedder)\n", err)
				chatModel = nil
			}

			emb, err := embedder.NewFromEnv(chatModel)
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}

			idx, closeIdx, err := buildVectorStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer closeIdx()

			ks, err := buildKnowledge(ctx, emb, idx)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("starting ingestion", slog.Int("documents", len(args)))

			for _, path := range args {
				if err := ks.AddDocument(ctx, path); err != nil {
					return fmt.Errorf("ingest: %w", err)
				}
			}

			log.Info("ingestion complete", slog.Int("documents", len(args)))
			return nil
		},
	}

	return cmd
}
