package cmd

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/spf13/viper"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module/lock"
	"github.com/evote-ccr/control-component/network/http"
)

// Config is the configuration of a node, assembled by viper from flags,
// CCR_ prefixed environment variables and the optional config file.
type Config struct {
	NodeID     uint8  `mapstructure:"node-id"`
	Datadir    string `mapstructure:"datadir"`
	MaxOptions int    `mapstructure:"max-options"`
	LogLevel   string `mapstructure:"log-level"`

	Listen    string  `mapstructure:"listen"`
	Workers   int     `mapstructure:"workers"`
	RateLimit float64 `mapstructure:"rate-limit"`
	RateBurst int     `mapstructure:"rate-burst"`

	PublishURL     string        `mapstructure:"publish-url"`
	PublishTimeout time.Duration `mapstructure:"publish-timeout"`
	PublishRetries uint64        `mapstructure:"publish-retries"`

	PublishBreakerFailures uint32        `mapstructure:"publish-breaker-failures"`
	PublishBreakerTimeout  time.Duration `mapstructure:"publish-breaker-timeout"`

	LockTimeout        time.Duration `mapstructure:"lock-timeout"`
	LockRetries        uint64        `mapstructure:"lock-retries"`
	LockInitialBackoff time.Duration `mapstructure:"lock-initial-backoff"`

	SigningKey   string            `mapstructure:"signing-key"`
	SigningAlias string            `mapstructure:"signing-alias"`
	TrustedKeys  map[string]string `mapstructure:"trusted-keys"`
}

func loadConfig() (Config, error) {
	var config Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("could not decode configuration: %w", err)
	}
	if config.SigningAlias == "" {
		config.SigningAlias = fmt.Sprintf("ccr-%d", config.NodeID)
	}
	return config, nil
}

func (c Config) nodeID() (ccr.NodeID, error) {
	nodeID := ccr.NodeID(c.NodeID)
	if err := nodeID.Validate(); err != nil {
		return 0, fmt.Errorf("invalid node-id: %w", err)
	}
	return nodeID, nil
}

func (c Config) lockConfig() lock.RetryConfig {
	config := lock.DefaultRetryConfig()
	if c.LockTimeout > 0 {
		config.Timeout = c.LockTimeout
	}
	if c.LockRetries > 0 {
		config.Retries = c.LockRetries
	}
	if c.LockInitialBackoff > 0 {
		config.InitialBackoff = c.LockInitialBackoff
	}
	return config
}

func (c Config) serverConfig() http.Config {
	return http.Config{
		ListenAddress: c.Listen,
		RateLimit:     c.RateLimit,
		RateBurst:     c.RateBurst,
	}
}

func (c Config) breakerConfig() http.CircuitBreakerConfig {
	config := http.DefaultCircuitBreakerConfig()
	if c.PublishBreakerFailures > 0 {
		config.MaxFailures = c.PublishBreakerFailures
	}
	if c.PublishBreakerTimeout > 0 {
		config.RestoreTimeout = c.PublishBreakerTimeout
	}
	return config
}

// openDB opens the node database in the configured data directory.
func (c Config) openDB(readOnly bool) (*badger.DB, error) {
	opts := badger.
		DefaultOptions(c.Datadir).
		WithKeepL0InMemory(true).
		WithLogger(nil).
		WithReadOnly(readOnly)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open database in %s: %w", c.Datadir, err)
	}
	return db, nil
}
