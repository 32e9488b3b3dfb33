// Package config resolves runtime settings from, in ascending
// precedence: built-in defaults, the YAML config file, environment
// variables, and CLI flags. Every resolved value remembers where it
// came from so `hearth serve` can log an auditable configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue carries a setting plus its provenance: the layer that
// set it and the concrete file, env var, or flag it came from.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries CLI-level overrides into resolution.
type ResolveOptions struct {
	ConfigPath  string
	CLIParser   string
	CLIModel    string
	CLIProvider string
	CLIDBPath   string
	CLIAddr     string
}

// ResolvedConfig is the full resolved runtime configuration.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	Parser     ResolvedValue `json:"parser"`
	Model      ResolvedValue `json:"model"`
	Provider   ResolvedValue `json:"provider"`
	DBPath     ResolvedValue `json:"db_path"`
	Addr       ResolvedValue `json:"addr"`
	SessionTTL ResolvedValue `json:"session_ttl"`
	Debug      ResolvedValue `json:"debug"`

	LLMKeys map[string]ResolvedValue `json:"llm_keys,omitempty"`
}

// Defaults applied when no layer sets a value.
const (
	DefaultParser   = "rule-based"
	DefaultProvider = "static"
	DefaultAddr     = ":8080"
)

// DefaultSessionTTL bounds idle session lifetime. Zero disables expiry.
const DefaultSessionTTL = 30 * time.Minute

type fileConfig struct {
	Parser     string `yaml:"parser"`
	Model      string `yaml:"model"`
	Provider   string `yaml:"provider"`
	DBPath     string `yaml:"db_path"`
	Addr       string `yaml:"addr"`
	SessionTTL string `yaml:"session_ttl"`
	Debug      bool   `yaml:"debug"`
	LLM        struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"llm"`
}

// DefaultConfigPath is ~/.hearth/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hearth", "config.yaml")
}

// ResolveConfig layers file, env, and CLI settings over defaults.
// A missing config file is not an error; a malformed one is.
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath: path,
		Parser:     ResolvedValue{Value: DefaultParser, Source: SourceDefault, From: "built-in default"},
		Provider:   ResolvedValue{Value: DefaultProvider, Source: SourceDefault, From: "built-in default"},
		Addr:       ResolvedValue{Value: DefaultAddr, Source: SourceDefault, From: "built-in default"},
		SessionTTL: ResolvedValue{Value: DefaultSessionTTL.String(), Source: SourceDefault, From: "built-in default"},
		LLMKeys:    map[string]ResolvedValue{},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.Parser, cfg.Parser, SourceConfig, path)
		apply(&out.Model, cfg.Model, SourceConfig, path)
		apply(&out.Provider, cfg.Provider, SourceConfig, path)
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.Addr, cfg.Addr, SourceConfig, path)
		apply(&out.SessionTTL, cfg.SessionTTL, SourceConfig, path)
		if cfg.Debug {
			out.Debug = ResolvedValue{Value: "true", Source: SourceConfig, From: path}
		}
		if key := strings.TrimSpace(cfg.LLM.APIKey); key != "" {
			out.LLMKeys["default"] = ResolvedValue{Value: key, Source: SourceConfig, From: path}
		}
	}

	applyEnv(&out.Parser, "HEARTH_PARSER")
	applyEnv(&out.Model, "HEARTH_MODEL")
	applyEnv(&out.Provider, "HEARTH_PROVIDER")
	applyEnv(&out.DBPath, "HEARTH_DB")
	applyEnv(&out.DBPath, "HEARTH_DB_PATH")
	applyEnv(&out.Addr, "HEARTH_ADDR")
	applyEnv(&out.SessionTTL, "HEARTH_SESSION_TTL")
	applyEnv(&out.Debug, "HEARTH_DEBUG")

	for env, provider := range map[string]string{
		"OPENAI_API_KEY":     "openai",
		"ANTHROPIC_API_KEY":  "anthropic",
		"OPENROUTER_API_KEY": "openrouter",
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			out.LLMKeys[provider] = ResolvedValue{Value: v, Source: SourceEnv, From: env}
		}
	}

	apply(&out.Parser, opts.CLIParser, SourceCLI, "--parser")
	apply(&out.Model, opts.CLIModel, SourceCLI, "--model")
	apply(&out.Provider, opts.CLIProvider, SourceCLI, "--provider")
	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.Addr, opts.CLIAddr, SourceCLI, "--addr")

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

// EffectiveSessionTTL parses the resolved TTL, falling back to the
// default on a malformed duration string.
func (r ResolvedConfig) EffectiveSessionTTL() time.Duration {
	v := strings.TrimSpace(r.SessionTTL.Value)
	if v == "" {
		return DefaultSessionTTL
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return DefaultSessionTTL
	}
	return d
}

// DebugEnabled reports whether debug logging is on.
func (r ResolvedConfig) DebugEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(r.Debug.Value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// APIKeyForProvider returns the key for a provider name, falling back
// to the config file's shared key.
func (r ResolvedConfig) APIKeyForProvider(provider string) ResolvedValue {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return ResolvedValue{}
	}
	if v, ok := r.LLMKeys[provider]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	if v, ok := r.LLMKeys["default"]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	return ResolvedValue{}
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
