package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"filingqa/pkg/core/agent"
	"filingqa/pkg/core/edgar"
	"filingqa/pkg/core/llm"
	"filingqa/pkg/core/pipeline"
	"filingqa/pkg/core/ticker"
)

func main() {
	tickerFlag := flag.String("ticker", "", "Company ticker symbol, e.g. AAPL")
	yearFlag := flag.Int("year", 0, "Filing year, e.g. 2024")
	formFlag := flag.String("form", "10-Q", "Form type, e.g. 10-K or 10-Q")
	questionFlag := flag.String("question", "", "Question about the filing")
	providerFlag := flag.String("provider", "", "Inference provider (deepseek or gemini)")
	structuredFlag := flag.Bool("structured", false, "Request a structured JSON answer")
	jsonFlag := flag.Bool("json", false, "Print the full response envelope as JSON")
	flag.Parse()

	if *tickerFlag == "" || *yearFlag == 0 || *questionFlag == "" {
		fmt.Println("Usage: ask -ticker AAPL -year 2024 -question \"What was total revenue?\" [-form 10-K] [-provider gemini]")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	cfg := pipeline.DefaultConfig()
	if *providerFlag != "" {
		cfg.LLM.ActiveProvider = *providerFlag
	}

	index := ticker.NewIndex(cfg.UserAgent)
	index.Load(cfg.UseTickerCache, cfg.TickerCachePath)
	if index.Len() == 0 {
		fmt.Println("Error: ticker index is empty, cannot resolve any symbol")
		os.Exit(1)
	}

	agentMgr := agent.NewManager(cfg.LLM)
	provider := agentMgr.GetProviderByName(cfg.LLM.ActiveProvider)
	if provider == nil {
		fmt.Printf("Error: unknown provider %q, available: %v\n", cfg.LLM.ActiveProvider, agentMgr.Available())
		os.Exit(1)
	}

	invoker := llm.NewInvoker(provider)
	invoker.MaxTokens = cfg.MaxTokens
	invoker.Temperature = cfg.Temperature

	orchestrator := pipeline.NewOrchestrator(
		index,
		edgar.NewCatalog(cfg.UserAgent),
		edgar.NewDocumentClient(cfg.UserAgent),
		invoker,
		cfg,
	)

	resp := orchestrator.Answer(context.Background(), pipeline.Request{
		Question:   *questionFlag,
		Ticker:     *tickerFlag,
		Year:       pipeline.Year(*yearFlag),
		FormType:   *formFlag,
		Structured: *structuredFlag,
	})

	if *jsonFlag {
		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(out))
		if !resp.Success {
			os.Exit(1)
		}
		return
	}

	if !resp.Success {
		fmt.Printf("Error: %s\n", resp.Error)
		os.Exit(1)
	}

	fmt.Printf("Company: %s\n", resp.CompanyName)
	if resp.FilingInfo != nil {
		fmt.Printf("Filing:  %s %s (filed %s)\n", resp.FilingInfo.Form, resp.FilingInfo.AccessionNumber, resp.FilingInfo.FilingDate)
	}
	if resp.Truncated {
		fmt.Println("Note: document was truncated to fit the context budget")
	}
	fmt.Println()
	fmt.Println(resp.Answer)
	if resp.Usage != nil {
		fmt.Printf("\n[%s] tokens in=%d out=%d\n", resp.ModelID, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
}
