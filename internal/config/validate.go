package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}

	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Gateway.Bind),
		})
	}

	validComposes := []string{"concat", "llm"}
	if cfg.Router.Compose != "" && !slices.Contains(validComposes, cfg.Router.Compose) {
		issues = append(issues, ValidationIssue{
			Path:    "router.compose",
			Message: fmt.Sprintf("must be one of %v, got %q", validComposes, cfg.Router.Compose),
		})
	}

	if cfg.Router.Compose == "llm" && cfg.LLM.Provider == "" {
		issues = append(issues, ValidationIssue{
			Path:    "llm.provider",
			Message: "required when router.compose is llm",
		})
	}

	validProviders := []string{"", "groq", "ollama"}
	if !slices.Contains(validProviders, cfg.LLM.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.provider",
			Message: fmt.Sprintf("must be one of [groq ollama], got %q", cfg.LLM.Provider),
		})
	}

	if cfg.LLM.Provider == "groq" && cfg.LLM.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "llm.apiKey",
			Message: "required for the groq provider",
		})
	}

	// News agent needs both halves of the Custom Search credential pair.
	if (cfg.Agents.News.APIKey == "") != (cfg.Agents.News.EngineID == "") {
		issues = append(issues, ValidationIssue{
			Path:    "agents.news",
			Message: "apiKey and engineId must be set together",
		})
	}

	validStores := []string{"sqlite", "memory"}
	if cfg.History.Store != "" && !slices.Contains(validStores, cfg.History.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "history.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.History.Store),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validStyles := []string{"pretty", "compact", "json"}
	if cfg.Logging.Style != "" && !slices.Contains(validStyles, cfg.Logging.Style) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.style",
			Message: fmt.Sprintf("must be one of %v, got %q", validStyles, cfg.Logging.Style),
		})
	}

	return issues
}
