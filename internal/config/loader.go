package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} references in string values.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} references with environment variable
// values. Unset variables are left as-is.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes env references in credential fields so
// API keys and tokens can be stored as ${ENV_VAR} in the config file.
func expandSensitiveFields(cfg *Config) {
	cfg.Gateway.Token = expandEnvVars(cfg.Gateway.Token)
	cfg.Agents.News.APIKey = expandEnvVars(cfg.Agents.News.APIKey)
	cfg.LLM.APIKey = expandEnvVars(cfg.LLM.APIKey)
}

// Load reads the config file, fills defaults, and applies environment
// overrides. A missing file produces defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields after unmarshalling over Defaults()
// may have cleared them.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 18990
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = "loopback"
	}
	if cfg.Agents.WebSearch.Endpoint == "" {
		cfg.Agents.WebSearch.Endpoint = "https://api.duckduckgo.com"
	}
	if cfg.Agents.WebSearch.MaxResults == 0 {
		cfg.Agents.WebSearch.MaxResults = 8
	}
	if cfg.Agents.News.MaxItems == 0 {
		cfg.Agents.News.MaxItems = 4
	}
	if cfg.Agents.Finance.Endpoint == "" {
		cfg.Agents.Finance.Endpoint = "https://query1.finance.yahoo.com"
	}
	if cfg.Router.Compose == "" {
		cfg.Router.Compose = "concat"
	}
	if cfg.Router.QueryTimeoutSecs == 0 {
		cfg.Router.QueryTimeoutSecs = 60
	}
	if cfg.Router.AgentTimeoutSecs == 0 {
		cfg.Router.AgentTimeoutSecs = 30
	}
	if cfg.LLM.Endpoint == "" {
		cfg.LLM.Endpoint = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "qwen/qwen3-32b"
	}
	if cfg.History.Store == "" {
		cfg.History.Store = "sqlite"
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = 50
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Style == "" {
		cfg.Logging.Style = "pretty"
	}
}

// applyEnvOverrides reads FINSIGHT_* environment variables over config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FINSIGHT_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("FINSIGHT_GATEWAY_BIND"); v != "" {
		cfg.Gateway.Bind = v
	}
	if v := os.Getenv("FINSIGHT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("FINSIGHT_NEWS_API_KEY"); v != "" {
		cfg.Agents.News.APIKey = v
	}
	if v := os.Getenv("FINSIGHT_NEWS_ENGINE_ID"); v != "" {
		cfg.Agents.News.EngineID = v
	}
	if v := os.Getenv("FINSIGHT_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
}
