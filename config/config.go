// Package config provides loading and validation of the connector
// configuration: identity-directory credentials, the identity search query,
// the managed source, the uniqueness scope, the counter-state backend, and
// the attribute rule set.
//
// Configuration arrives either as a YAML file or as the map[string]any
// payload the host runtime supplies. Validation is fail-fast: a broken
// configuration aborts before any processing begins.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	genattr "github.com/identitykit/genattr"
	"github.com/identitykit/genattr/engine"
	"github.com/identitykit/genattr/input"
	"github.com/identitykit/genattr/rule"
)

// StateBackend selects where counter state is persisted between runs.
type StateBackend string

const (
	// BackendMemory round-trips counter state through the host-persisted
	// state blob. This is the default.
	BackendMemory StateBackend = "memory"

	// BackendRedis keeps counter state in a shared Redis hash, for
	// deployments running more than one connector replica.
	BackendRedis StateBackend = "redis"
)

// StateConfig configures counter-state persistence.
type StateConfig struct {
	Backend  StateBackend `yaml:"backend,omitempty"`
	RedisURL string       `yaml:"redisUrl,omitempty"`
	RedisKey string       `yaml:"redisKey,omitempty"`
}

// Config is the connector configuration.
type Config struct {
	// BaseURL is the identity directory API base URL.
	BaseURL string `yaml:"baseUrl"`

	// ClientID and ClientSecret are the OAuth2 client credentials for the
	// identity directory.
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`

	// SourceID identifies the managed source whose accounts this connector
	// generates.
	SourceID string `yaml:"sourceId"`

	// Search is the identity search query selecting the population.
	Search string `yaml:"search"`

	// UniquenessScope selects which existing accounts seed uniqueness
	// tracking: "source" (default) or "population".
	UniquenessScope engine.Scope `yaml:"uniquenessScope,omitempty"`

	// RequestTimeout bounds individual identity-directory calls.
	// Default: 30s.
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty"`

	// State configures counter-state persistence.
	State StateConfig `yaml:"state,omitempty"`

	// Attributes is the ordered attribute rule set.
	Attributes rule.Set `yaml:"attributes"`
}

// Load reads and parses a YAML configuration file and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromMap builds a configuration from the host-supplied payload and
// validates it.
func FromMap(m map[string]any) (*Config, error) {
	cfg := &Config{
		BaseURL:         input.GetString(m, "baseUrl", ""),
		ClientID:        input.GetString(m, "clientId", ""),
		ClientSecret:    input.GetString(m, "clientSecret", ""),
		SourceID:        input.GetString(m, "sourceId", ""),
		Search:          input.GetString(m, "search", ""),
		UniquenessScope: engine.Scope(input.GetString(m, "uniquenessScope", "")),
	}

	if timeout := input.GetString(m, "requestTimeout", ""); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, genattr.NewConfigurationError("config.FromMap",
				fmt.Errorf("invalid requestTimeout %q: %w", timeout, err))
		}
		cfg.RequestTimeout = d
	}

	if st := input.GetAnyMap(m, "state"); st != nil {
		cfg.State = StateConfig{
			Backend:  StateBackend(input.GetString(st, "backend", "")),
			RedisURL: input.GetString(st, "redisUrl", ""),
			RedisKey: input.GetString(st, "redisKey", ""),
		}
	}

	for _, entry := range input.GetMapSlice(m, "attributes") {
		cfg.Attributes = append(cfg.Attributes, rule.Rule{
			Name:         input.GetString(entry, "name", ""),
			Kind:         rule.Kind(input.GetString(entry, "kind", string(rule.KindNormal))),
			Expression:   input.GetString(entry, "expression", ""),
			Refresh:      input.GetBool(entry, "refresh", false),
			Case:         rule.Case(input.GetString(entry, "case", "")),
			RemoveSpaces: input.GetBool(entry, "removeSpaces", false),
			Normalize:    input.GetBool(entry, "normalize", false),
			Digits:       input.GetInt(entry, "digits", 0),
			CounterStart: input.GetInt(entry, "counterStart", 0),
			MaxLength:    input.GetInt(entry, "maxLength", 0),
		})
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.UniquenessScope == "" {
		c.UniquenessScope = engine.ScopeSource
	}
	if c.State.Backend == "" {
		c.State.Backend = BackendMemory
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

// Validate checks the configuration, failing fast on the first problem.
func (c *Config) Validate() error {
	const op = "config.Validate"

	if c.BaseURL == "" {
		return genattr.NewConfigurationError(op, errors.New("baseUrl is required"))
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return genattr.NewConfigurationError(op, errors.New("clientId and clientSecret are required"))
	}
	if c.SourceID == "" {
		return genattr.NewConfigurationError(op, genattr.ErrSourceNotFound)
	}
	if c.Search == "" {
		return genattr.NewConfigurationError(op, errors.New("search query is required"))
	}
	if !c.UniquenessScope.IsValid() {
		return genattr.NewConfigurationError(op,
			fmt.Errorf("unknown uniquenessScope %q", c.UniquenessScope))
	}
	switch c.State.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.State.RedisURL == "" {
			return genattr.NewConfigurationError(op, errors.New("state.redisUrl is required for the redis backend"))
		}
	default:
		return genattr.NewConfigurationError(op,
			fmt.Errorf("unknown state backend %q", c.State.Backend))
	}
	if len(c.Attributes) == 0 {
		return genattr.NewConfigurationError(op, errors.New("at least one attribute rule is required"))
	}
	if err := c.Attributes.Validate(); err != nil {
		return genattr.NewConfigurationError(op, err)
	}
	return nil
}
