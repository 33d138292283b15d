package config

// Config is the root configuration for finsight.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Agents  AgentsConfig  `yaml:"agents,omitempty"`
	Router  RouterConfig  `yaml:"router,omitempty"`
	LLM     LLMConfig     `yaml:"llm,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// GatewayConfig controls the HTTP/WebSocket server the UI talks to.
type GatewayConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	Token          string   `yaml:"token,omitempty"` // supports ${ENV_VAR}
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// AgentsConfig holds per-agent provider settings.
type AgentsConfig struct {
	WebSearch WebSearchConfig `yaml:"websearch,omitempty"`
	News      NewsConfig      `yaml:"news,omitempty"`
	Finance   FinanceConfig   `yaml:"finance,omitempty"`
}

// WebSearchConfig configures the DuckDuckGo-backed web search agent.
type WebSearchConfig struct {
	Endpoint   string `yaml:"endpoint,omitempty"`
	MaxResults int    `yaml:"maxResults,omitempty"`
}

// NewsConfig configures the Google Custom Search news agent.
type NewsConfig struct {
	APIKey   string `yaml:"apiKey,omitempty"` // supports ${ENV_VAR}
	EngineID string `yaml:"engineId,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"` // override for tests
	MaxItems int    `yaml:"maxItems,omitempty"` // unique items kept after dedup
}

// FinanceConfig configures the Yahoo Finance agent.
type FinanceConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
}

// RouterConfig controls query fan-out and merging.
type RouterConfig struct {
	Compose          string `yaml:"compose,omitempty"` // "concat" | "llm"
	QueryTimeoutSecs int    `yaml:"queryTimeoutSecs,omitempty"`
	AgentTimeoutSecs int    `yaml:"agentTimeoutSecs,omitempty"`
}

// LLMConfig configures the optional result composer.
type LLMConfig struct {
	Provider  string   `yaml:"provider,omitempty"` // "groq" | "ollama"
	APIKey    string   `yaml:"apiKey,omitempty"`   // supports ${ENV_VAR}
	Model     string   `yaml:"model,omitempty"`
	Endpoint  string   `yaml:"endpoint,omitempty"`
	Fallbacks []string `yaml:"fallbacks,omitempty"`
	MaxTokens int      `yaml:"maxTokens,omitempty"`
}

// HistoryConfig selects the query-history store backend.
type HistoryConfig struct {
	Store string `yaml:"store,omitempty"` // "sqlite" | "memory"
	Limit int    `yaml:"limit,omitempty"` // default page size for listings
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	Style string `yaml:"style,omitempty"` // "pretty" | "compact" | "json"
}
