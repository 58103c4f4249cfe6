package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/marketscope/config"
	"github.com/mohammad-safakhou/marketscope/internal/research"
	"github.com/mohammad-safakhou/marketscope/internal/store"
	"github.com/mohammad-safakhou/marketscope/provider"
	"github.com/mohammad-safakhou/marketscope/tools/web_fetch"
	"github.com/mohammad-safakhou/marketscope/tools/web_search"
)

func analyzeCMD() *cobra.Command {
	var cfgPath string
	var analyze = &cobra.Command{
		Use:   "analyze [instruction]",
		Short: "Run one analysis and print the result envelope",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			orch, err := buildOrchestrator(cfg)
			if err != nil {
				return err
			}
			env := orch.RunAnalysis(context.Background(), strings.Join(args, " "))
			b, err := json.MarshalIndent(env, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		},
	}
	analyze.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return analyze
}

// buildOrchestrator wires the pipeline for one-shot runs: no Postgres, no
// Redis, searches uncached, results land in the file sink only.
func buildOrchestrator(cfg *config.Config) (*research.Orchestrator, error) {
	searchOracle, err := web_search.NewSearchOracle(web_search.Provider(cfg.Search.Provider), cfg.Search, nil)
	if err != nil {
		return nil, err
	}
	searchOracle, err = web_fetch.NewEnrichedSearch(cfg.Fetch, searchOracle, log.New(log.Writer(), "[FETCH] ", log.LstdFlags))
	if err != nil {
		return nil, err
	}
	chatOracle, err := provider.NewChatOracle(provider.OpenAI, cfg.LLM)
	if err != nil {
		return nil, err
	}
	pipeline := research.NewPipeline(searchOracle, chatOracle, log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags))
	sink, err := store.NewFileStore(cfg.Storage.File.DataDir)
	if err != nil {
		return nil, err
	}
	return research.NewOrchestrator(pipeline, sink, cfg.Pipeline.MaxIterations, log.New(log.Writer(), "[ORCH] ", log.LstdFlags)), nil
}
