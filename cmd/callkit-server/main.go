// Command callkit-server runs the voice-agent media endpoint: a websocket
// stream handler for telephony audio, backed by the STT → retrieval → LLM →
// TTS pipeline, with a prometheus exporter alongside.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AltairaLabs/CallKit/config"
	"github.com/AltairaLabs/CallKit/gateway"
	"github.com/AltairaLabs/CallKit/logger"
	"github.com/AltairaLabs/CallKit/metrics/prometheus"
	"github.com/AltairaLabs/CallKit/pipeline"
	"github.com/AltairaLabs/CallKit/session"
	"github.com/AltairaLabs/CallKit/store"
	"github.com/AltairaLabs/CallKit/version"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to server config YAML")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.DefaultServerConfig()
	if configPath != "" {
		loaded, err := config.LoadServerConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	logger.SetLevel(parseLevel(cfg.LogLevel))
	logger.Info("callkit-server starting", version.LogAttrs()...)

	credentials := config.EmptyCredentials()
	if cfg.CredentialsFile != "" {
		loaded, err := config.LoadCredentials(cfg.CredentialsFile)
		if err != nil {
			return err
		}
		credentials = loaded
	}

	configs := store.NewMemoryAgentConfigStore()
	if cfg.AgentsDir != "" {
		agents, err := config.LoadAgentDir(cfg.AgentsDir)
		if err != nil {
			return err
		}
		for _, agent := range agents {
			configs.Put(agent)
		}
		logger.Info("loaded agent configs", "count", len(agents), "dir", cfg.AgentsDir)
	}

	var agentStore store.AgentConfigStore = configs
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		agentStore = store.NewRedisConfigCache(client, configs)
		logger.Info("agent-config cache enabled", "redis_addr", cfg.RedisAddr)
	}

	gw := gateway.New()
	resolver := &pipeline.GatewayResolver{Gateway: gw, Credentials: credentials}

	var orchestratorOpts []pipeline.Option
	if cfg.KnowledgeDir != "" {
		searcher, err := buildSearcher(gw, credentials, cfg.KnowledgeDir)
		if err != nil {
			return err
		}
		if searcher != nil {
			orchestratorOpts = append(orchestratorOpts, pipeline.WithSearcher(searcher))
		}
	}
	orchestrator := pipeline.NewOrchestrator(agentStore, resolver, orchestratorOpts...)

	calls := store.NewMemoryCallStore()
	manager := session.NewManager(calls, agentStore, resolver, orchestrator,
		session.NewRegistry(), managerOptions(gw, credentials)...)

	mux := http.NewServeMux()
	mux.Handle("/stream", manager.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	var exporter *prometheus.Exporter
	if cfg.MetricsAddr != "" {
		exporter = prometheus.NewExporter(cfg.MetricsAddr)
		if err := exporter.Start(); err != nil {
			return fmt.Errorf("failed to start metrics exporter: %w", err)
		}
		logger.Info("metrics exporter listening", "addr", cfg.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("media endpoint listening", "addr", cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if exporter != nil {
		if merr := exporter.Shutdown(shutdownCtx); merr != nil && err == nil {
			err = merr
		}
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// buildSearcher indexes knowledge_dir/<tenant_id>/*.txt|*.md into an
// in-memory embedding searcher. Without an embeddings credential retrieval
// stays degraded and the directory is skipped with a warning.
func buildSearcher(gw *gateway.Gateway, credentials *config.Credentials,
	dir string) (*store.EmbeddingSearcher, error) {
	credential, err := credentials.Lookup("embeddings", config.DefaultEmbeddingsProvider)
	if err != nil {
		logger.Warn("knowledge dir configured but no embeddings credential, retrieval disabled",
			"dir", dir)
		return nil, nil
	}
	embedder, err := gw.Embeddings(config.DefaultEmbeddingsProvider, credential, "")
	if err != nil {
		return nil, err
	}
	searcher := store.NewEmbeddingSearcher(embedder)

	tenants, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge directory: %w", err)
	}
	for _, tenant := range tenants {
		if !tenant.IsDir() {
			continue
		}
		docs, err := loadDocuments(filepath.Join(dir, tenant.Name()))
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			continue
		}
		if err := searcher.Index(context.Background(), tenant.Name(), docs); err != nil {
			return nil, err
		}
		logger.Info("indexed knowledge documents",
			"tenant_id", tenant.Name(), "count", len(docs))
	}
	return searcher, nil
}

func loadDocuments(dir string) ([]store.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenant knowledge: %w", err)
	}
	var docs []store.Document
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".txt" && ext != ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, store.Document{
			Title: strings.TrimSuffix(entry.Name(), ext),
			Text:  string(data),
		})
	}
	return docs, nil
}

// managerOptions enables the start-failure apology voice when any TTS
// provider has a credential.
func managerOptions(gw *gateway.Gateway, credentials *config.Credentials) []session.ManagerOption {
	for _, provider := range config.TTSProviders {
		credential, err := credentials.Lookup("tts", provider)
		if err != nil {
			continue
		}
		svc, err := gw.TTS(provider, credential, "")
		if err != nil {
			continue
		}
		return []session.ManagerOption{session.WithFallbackTTS(svc)}
	}
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
