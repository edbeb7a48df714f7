// Command guidebot serves Indonesian-language question answering over a
// directory of documents.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hctpa/guidebot/internal/adapters/embedding"
	"github.com/hctpa/guidebot/internal/adapters/filewatcher"
	"github.com/hctpa/guidebot/internal/adapters/llm"
	"github.com/hctpa/guidebot/internal/adapters/loader"
	"github.com/hctpa/guidebot/internal/adapters/parser"
	"github.com/hctpa/guidebot/internal/adapters/vectordb"
	"github.com/hctpa/guidebot/internal/config"
	httpserver "github.com/hctpa/guidebot/internal/infrastructure/http"
	"github.com/hctpa/guidebot/internal/domain/ports"
	"github.com/hctpa/guidebot/internal/domain/usecases"
	"github.com/hctpa/guidebot/internal/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer zlog.Sync()

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		zlog.Fatal("building embedder", zap.Error(err))
	}
	model, err := buildLLM(cfg)
	if err != nil {
		zlog.Fatal("building language model", zap.Error(err))
	}

	var snapshot ports.IndexSnapshot
	if cfg.Index.SnapshotPath != "" {
		store, err := vectordb.NewSnapshotStore(cfg.Index.SnapshotPath)
		if err != nil {
			zlog.Fatal("opening index snapshot", zap.Error(err))
		}
		defer store.Close()
		snapshot = store
	}

	source := loader.NewDirectorySource(parser.NewSidecarPDFParser(cfg.PDF.ServiceURL))
	builder := usecases.NewIndexBuilder(
		source,
		embedder,
		snapshot,
		vectordb.BuildIndex,
		cfg.Documents.Dir,
		cfg.Chunker.Size,
		cfg.Chunker.Overlap,
		zlog,
	)
	manager := usecases.NewIndexManager(builder, zlog)

	pipeline := usecases.NewAnswerPipeline(
		embedder,
		manager,
		model,
		usecases.NewPromptBuilder(cfg.Prompt.MaxChars),
		cfg.Retrieval.TopK,
		time.Duration(cfg.LLM.TimeoutSecs)*time.Second,
		zlog,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cold-start build in the background; queries block on the manager
	// until it completes, and /api/health reports the build state.
	go func() {
		if _, err := manager.Index(ctx); err != nil {
			zlog.Error("cold-start index build failed", zap.Error(err))
		}
	}()

	if cfg.Documents.Watch {
		startWatcher(ctx, cfg.Documents.Dir, manager, zlog)
	}

	server := httpserver.NewServer(pipeline, manager, cfg.Server.Addr, zlog)
	if err := server.Start(ctx); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}

func buildEmbedder(cfg *config.Config) (ports.Embedder, error) {
	switch cfg.Embedder.Type {
	case "ollama", "":
		var baseURL, model string
		if cfg.Embedder.Ollama != nil {
			baseURL = cfg.Embedder.Ollama.BaseURL
			model = cfg.Embedder.Ollama.Model
		}
		return embedding.NewOllamaEmbedder(baseURL, model), nil
	case "huggingface":
		hf := cfg.Embedder.HuggingFace
		return embedding.NewHuggingFaceEmbedder(hf.BaseURL, config.APIKey(hf.APIKeyEnv), hf.Model), nil
	case "openai":
		oa := cfg.Embedder.OpenAI
		return embedding.NewOpenAIEmbedder(oa.BaseURL, config.APIKey(oa.APIKeyEnv), oa.Model)
	default:
		return nil, &configTypeError{kind: "embedder", value: cfg.Embedder.Type}
	}
}

func buildLLM(cfg *config.Config) (ports.LLM, error) {
	switch cfg.LLM.Type {
	case "groq", "":
		g := cfg.LLM.Groq
		return llm.NewGroqLLM(g.BaseURL, config.APIKey(g.APIKeyEnv), g.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	case "ollama":
		var baseURL, model string
		if cfg.LLM.Ollama != nil {
			baseURL = cfg.LLM.Ollama.BaseURL
			model = cfg.LLM.Ollama.Model
		}
		return llm.NewOllamaLLM(baseURL, model, cfg.LLM.Temperature, cfg.LLM.MaxTokens), nil
	default:
		return nil, &configTypeError{kind: "llm", value: cfg.LLM.Type}
	}
}

// startWatcher invalidates the managed index on document changes so the
// next question triggers a wholesale rebuild.
func startWatcher(ctx context.Context, dir string, manager *usecases.IndexManager, zlog *zap.Logger) {
	watcher, err := filewatcher.NewFSNotifyWatcher(nil)
	if err != nil {
		zlog.Warn("document watcher unavailable", zap.Error(err))
		return
	}
	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		zlog.Warn("watching documents failed", zap.Error(err))
		watcher.Stop()
		return
	}
	go func() {
		defer watcher.Stop()
		for ev := range events {
			zlog.Info("document changed, index invalidated", zap.String("path", ev.Path))
			manager.Invalidate()
		}
	}()
}

type configTypeError struct {
	kind  string
	value string
}

func (e *configTypeError) Error() string {
	return "unknown " + e.kind + " type: " + e.value
}
