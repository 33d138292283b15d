// Package config loads and validates the finsight YAML configuration.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port: 18990,
			Bind: "loopback",
		},
		Agents: AgentsConfig{
			WebSearch: WebSearchConfig{
				Endpoint:   "https://api.duckduckgo.com",
				MaxResults: 8,
			},
			News: NewsConfig{
				MaxItems: 4,
			},
			Finance: FinanceConfig{
				Endpoint: "https://query1.finance.yahoo.com",
			},
		},
		Router: RouterConfig{
			Compose:          "concat",
			QueryTimeoutSecs: 60,
			AgentTimeoutSecs: 30,
		},
		LLM: LLMConfig{
			Provider: "",
			Endpoint: "https://api.groq.com/openai/v1",
			Model:    "qwen/qwen3-32b",
		},
		History: HistoryConfig{
			Store: "sqlite",
			Limit: 50,
		},
		Logging: LoggingConfig{
			Level: "info",
			Style: "pretty",
		},
	}
}
