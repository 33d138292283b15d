package cli

import (
	"context"
	"fmt"

	"github.com/soyeahso/finsight/internal/agent"
	"github.com/soyeahso/finsight/internal/agent/finance"
	"github.com/soyeahso/finsight/internal/agent/news"
	"github.com/soyeahso/finsight/internal/agent/websearch"
	"github.com/soyeahso/finsight/internal/config"
	"github.com/soyeahso/finsight/internal/llm"
	"github.com/soyeahso/finsight/internal/logging"
	"github.com/soyeahso/finsight/internal/router"
)

// buildAgents wires the backend agents from config. The web search and
// finance agents need no credentials and are always registered; the news
// agent requires a Google API key and engine ID.
func buildAgents(ctx context.Context, cfg config.Config, log *logging.Logger) (*agent.Registry, error) {
	registry := agent.NewRegistry(log)

	registry.Register(websearch.New(cfg.Agents.WebSearch.Endpoint, cfg.Agents.WebSearch.MaxResults, log))
	registry.Register(finance.New(cfg.Agents.Finance.Endpoint, log))

	if cfg.Agents.News.APIKey != "" && cfg.Agents.News.EngineID != "" {
		newsAgent, err := news.New(ctx, cfg.Agents.News.APIKey, cfg.Agents.News.EngineID,
			cfg.Agents.News.Endpoint, cfg.Agents.News.MaxItems, log)
		if err != nil {
			return nil, fmt.Errorf("creating news agent: %w", err)
		}
		registry.Register(newsAgent)
	} else {
		log.Warn().Msg("news agent disabled — set agents.news.apiKey and agents.news.engineId to enable it")
	}

	return registry, nil
}

// buildComposer wires the optional LLM composer. Returns nil when no
// provider is configured; the router then concatenates agent outputs.
func buildComposer(cfg config.Config, log *logging.Logger) router.Composer {
	registry := llm.NewRegistryFromConfig(cfg.LLM, log)
	providers := registry.List()
	if len(providers) == 0 {
		return nil
	}

	log.Info().Strs("providers", providers).Msg("LLM providers available")
	failover := llm.NewFailoverClient(registry, cfg.LLM.Provider, cfg.LLM.Fallbacks, log)
	return llm.NewComposer(failover, cfg.LLM.MaxTokens, log)
}
