package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	apiconfig "filingqa/pkg/api/config"
	"filingqa/pkg/api/qa"
	"filingqa/pkg/core/agent"
	"filingqa/pkg/core/edgar"
	"filingqa/pkg/core/llm"
	"filingqa/pkg/core/pipeline"
	"filingqa/pkg/core/prompt"
	"filingqa/pkg/core/store"
	"filingqa/pkg/core/ticker"
)

// managedAnswerer resolves the active provider on every call so that
// /api/config/switch takes effect without a restart.
type managedAnswerer struct {
	mgr         *agent.Manager
	maxTokens   int
	temperature float64
}

func (a *managedAnswerer) invoker() *llm.Invoker {
	inv := llm.NewInvoker(a.mgr.GetProvider())
	inv.MaxTokens = a.maxTokens
	inv.Temperature = a.temperature
	return inv
}

func (a *managedAnswerer) AskPrompt(ctx context.Context, p string) *llm.InferenceResult {
	return a.invoker().AskPrompt(ctx, p)
}

func (a *managedAnswerer) AskStructured(ctx context.Context, p string) (*llm.InferenceResult, *llm.StructuredAnswer) {
	return a.invoker().AskStructured(ctx, p)
}

func (a *managedAnswerer) ModelID() string {
	return a.mgr.GetProvider().ModelID()
}

func loadConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	data, err := os.ReadFile("config/app.yaml")
	if err != nil {
		fmt.Printf("[CONFIG] No config/app.yaml, using defaults: %v\n", err)
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Printf("[CONFIG] Failed to parse config/app.yaml, using defaults: %v\n", err)
		return pipeline.DefaultConfig()
	}
	return cfg
}

func main() {
	// Load environment variables
	godotenv.Load()

	cfg := loadConfig()

	// Initialize Prompt Library
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
		fmt.Println("  Falling back to built-in prompts")
	} else {
		fmt.Printf("[PROMPT] Loaded %d prompts\n", prompt.Get().Count())
	}

	// Ticker index; a failed load leaves an empty index and every lookup
	// resolves to not-found rather than crashing the server.
	index := ticker.NewIndex(cfg.UserAgent)
	index.Load(cfg.UseTickerCache, cfg.TickerCachePath)
	if index.Len() == 0 {
		fmt.Println("[WARNING] Ticker index is empty; all lookups will fail")
	}

	agentMgr := agent.NewManager(cfg.LLM)

	answerer := &managedAnswerer{
		mgr:         agentMgr,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}

	orchestrator := pipeline.NewOrchestrator(
		index,
		edgar.NewCatalog(cfg.UserAgent),
		edgar.NewDocumentClient(cfg.UserAgent),
		answerer,
		cfg,
	)

	// Optional persistence
	var results *store.ResultsRepo
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[WARNING] Database init failed, persistence disabled: %v\n", err)
		} else {
			results = store.NewResultsRepo()
			fmt.Println("[STORE] Result persistence enabled")
		}
	}

	qaHandler := qa.NewHandler(orchestrator, results)
	http.HandleFunc("/api/qa", qaHandler.HandleAsk)
	http.HandleFunc("/api/qa/result", qaHandler.HandleResult)
	http.HandleFunc("/api/qa/recent", qaHandler.HandleRecent)

	configHandler := apiconfig.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - POST /api/qa")
	fmt.Println("  - GET  /api/qa/result")
	fmt.Println("  - GET  /api/qa/recent")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
