package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "KAYINBOOKS_CONFIG"

// Config holds all server settings. Values come from an optional YAML file
// (KAYINBOOKS_CONFIG) with environment variables taking precedence.
type Config struct {
	Addr     string         `yaml:"addr"`
	Auth     AuthConfig     `yaml:"auth"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	AI       AIConfig       `yaml:"ai"`
	Comments CommentsConfig `yaml:"comments"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwtSecret"`
	JWTIssuer   string        `yaml:"jwtIssuer"`
	JWTDuration time.Duration `yaml:"jwtDuration"`
}

// CatalogConfig tunes the external ISBN lookups.
type CatalogConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	Placeholder string        `yaml:"placeholderCoverUrl"`
}

// AIConfig wires the text-generation call. An empty token disables the
// remote call and the deterministic fallback is used instead.
type AIConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

type CommentsConfig struct {
	CooldownWindow time.Duration `yaml:"cooldownWindow"`
}

func defaultConfig() Config {
	return Config{
		Addr: ":8080",
		Auth: AuthConfig{
			JWTSecret:   "dev-secret-change-me",
			JWTIssuer:   "kayinbooks",
			JWTDuration: 7 * 24 * time.Hour,
		},
		Catalog: CatalogConfig{
			Timeout:     10 * time.Second,
			Placeholder: "https://via.placeholder.com/400x600/E7C6C1/1F1F1F?text=No+Cover",
		},
		AI: AIConfig{
			Endpoint: "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.2",
			Timeout:  45 * time.Second,
		},
		Comments: CommentsConfig{
			CooldownWindow: 30 * time.Second,
		},
	}
}

// Load reads the YAML config file if present and applies env overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: cannot read %s: %v (using defaults)\n", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "config: cannot parse %s: %v (using defaults)\n", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KAYINBOOKS_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("KAYINBOOKS_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("KAYINBOOKS_JWT_ISSUER"); v != "" {
		c.Auth.JWTIssuer = v
	}
	if v := os.Getenv("KAYINBOOKS_JWT_TTL_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			c.Auth.JWTDuration = time.Duration(hours) * time.Hour
		}
	}
	if v := os.Getenv("HUGGINGFACE_API_TOKEN"); v != "" {
		c.AI.Token = v
	}
	if v := os.Getenv("KAYINBOOKS_AI_ENDPOINT"); v != "" {
		c.AI.Endpoint = v
	}
	if v := os.Getenv("KAYINBOOKS_COMMENT_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Comments.CooldownWindow = d
		}
	}
}
