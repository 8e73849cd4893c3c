package main

import (
	"log"
	"log/slog"

	"github.com/sozercan/research-ai-mole/internal/agents"
	"github.com/sozercan/research-ai-mole/internal/config"
	"github.com/sozercan/research-ai-mole/internal/llm"
	"github.com/sozercan/research-ai-mole/internal/server"
	"github.com/sozercan/research-ai-mole/internal/tools"
	"github.com/sozercan/research-ai-mole/internal/uploads"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	provider, err := llm.NewOpenAI(&cfg.LLM)
	if err != nil {
		log.Fatalf("failed to create LLM provider: %v", err)
	}

	registry := tools.NewRegistry(&cfg.Search, cfg.Upload.Dir)
	runner := agents.NewRunner(provider, registry, cfg.LLM.Model)

	store := uploads.NewStore(cfg.Upload)
	if err := store.StartJanitor(); err != nil {
		log.Fatalf("failed to start artifact janitor: %v", err)
	}
	defer store.StopJanitor()

	srv := server.New(*cfg, runner, store)
	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port, "model", cfg.LLM.Model)
	if err := srv.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
