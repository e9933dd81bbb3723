package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	embeddingollama "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/extractor/pdfservice"
	llmollama "github.com/custodia-labs/docqa/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/docqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorindex/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/retry"
	"github.com/custodia-labs/docqa/internal/workerpool"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the answering HTTP server",
	Long: `Start the HTTP server exposing POST /answer and GET /health.

Providers, models and retrieval parameters are read from the config file
(default ~/.docqa/config.toml); the OpenAI API key comes from the
OPENAI_API_KEY environment variable.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Debug("config loaded from %s", cfg.Path())

	promptDir := ""
	if flagConfigDir != "" {
		promptDir = filepath.Join(flagConfigDir, "prompts")
	}
	prompts, err := configfile.NewPromptStore(promptDir)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	llm, err := buildLLM(cfg)
	if err != nil {
		return err
	}
	defer llm.Close()

	tokenizer, err := tiktoken.New(cfg.GetString("chunker.encoding"))
	if err != nil {
		return fmt.Errorf("load tokenizer: %w", err)
	}

	var chunkOpts []chunker.Option
	if size := cfg.GetInt("chunker.size"); size > 0 {
		chunkOpts = append(chunkOpts, chunker.WithChunkSize(size))
	}
	if overlap := cfg.GetInt("chunker.overlap"); overlap > 0 {
		chunkOpts = append(chunkOpts, chunker.WithOverlap(overlap))
	}

	extractor := pdfservice.New(pdfservice.Config{
		ServiceURL: cfg.GetString("extractor.url"),
	})

	pool := workerpool.New(cfg.GetInt("pool.workers"))
	defer pool.Close()

	callTimeout := time.Duration(cfg.GetInt("llm.timeout_secs")) * time.Second
	synthesizer := services.NewSynthesizer(llm, prompts, retry.New(retry.DefaultConfig()), callTimeout)

	svc := services.NewAnswerService(
		services.NewIngestor(extractor),
		chunker.New(tokenizer, chunkOpts...),
		embedder,
		services.NewRetriever(embedder),
		synthesizer,
		func() driven.VectorIndex { return memory.New() },
		pool,
		retrievalConfig(cfg),
	)

	addr := flagAddr
	if addr == "" {
		addr = cfg.GetString("server.addr")
	}
	server := httpapi.NewServer(httpapi.Config{
		Addr:    addr,
		Version: version,
	}, svc)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}

// retrievalConfig reads retrieval parameters from config, falling back to
// the defaults for unset fields.
func retrievalConfig(cfg driven.ConfigStore) domain.RetrievalConfig {
	rc := domain.DefaultRetrievalConfig()
	if k := cfg.GetInt("retrieval.k"); k > 0 {
		rc.K = k
	}
	if fetchK := cfg.GetInt("retrieval.fetch_k"); fetchK > 0 {
		rc.FetchK = fetchK
	}
	if lambda := cfg.GetFloat("retrieval.lambda"); lambda > 0 {
		rc.Lambda = lambda
	}
	return rc
}

// buildEmbedder constructs the embedding service named by
// embedding.provider (default: openai).
func buildEmbedder(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := cfg.GetString("embedding.provider")
	switch provider {
	case "", "openai":
		svc, err := embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
		if err != nil {
			return nil, fmt.Errorf("build embedder: %w", err)
		}
		return svc, nil
	case "ollama":
		return embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildLLM constructs the language model service named by llm.provider
// (default: openai).
func buildLLM(cfg driven.ConfigStore) (driven.LLMService, error) {
	provider := cfg.GetString("llm.provider")
	switch provider {
	case "", "openai":
		svc, err := llmopenai.NewLLMService(llmopenai.LLMConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
		if err != nil {
			return nil, fmt.Errorf("build llm: %w", err)
		}
		return svc, nil
	case "ollama":
		return llmollama.NewLLMService(llmollama.LLMConfig{
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
