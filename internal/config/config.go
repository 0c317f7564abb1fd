package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is built once at
// startup and passed to the components that need it.
type Config struct {
	Phantombuster PhantombusterConfig `yaml:"phantombuster" mapstructure:"phantombuster"`
	Hunter        HunterConfig        `yaml:"hunter" mapstructure:"hunter"`
	Leads         LeadsConfig         `yaml:"leads" mapstructure:"leads"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// PhantombusterConfig holds Phantombuster API credentials and poll tuning.
type PhantombusterConfig struct {
	Key              string `yaml:"key" mapstructure:"key"`
	AgentID          string `yaml:"agent_id" mapstructure:"agent_id"`
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	PollIntervalSecs int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	PollTimeoutSecs  int    `yaml:"poll_timeout_secs" mapstructure:"poll_timeout_secs"`
	HTTPTimeoutSecs  int    `yaml:"http_timeout_secs" mapstructure:"http_timeout_secs"`
}

// HunterConfig holds Hunter API settings. DelayMillis is the minimum gap
// between email-finder calls within one request.
type HunterConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	DelayMillis int    `yaml:"delay_millis" mapstructure:"delay_millis"`
}

// LeadsConfig bounds the per-request lead count.
type LeadsConfig struct {
	DefaultCount int `yaml:"default_count" mapstructure:"default_count"`
	MaxCount     int `yaml:"max_count" mapstructure:"max_count"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so env-only deployments bind
	// without a config file.
	v.SetDefault("phantombuster.key", "")
	v.SetDefault("phantombuster.agent_id", "")
	v.SetDefault("hunter.key", "")
	v.SetDefault("phantombuster.base_url", "https://api.phantombuster.com/api/v2")
	v.SetDefault("phantombuster.poll_interval_secs", 10)
	v.SetDefault("phantombuster.poll_timeout_secs", 600)
	v.SetDefault("phantombuster.http_timeout_secs", 30)
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("hunter.delay_millis", 1000)
	v.SetDefault("leads.default_count", 10)
	v.SetDefault("leads.max_count", 500)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// MissingSecrets returns the names of required secrets that are not set.
// The service still starts without them; startup logs the gaps so a
// misconfigured deployment is visible before the first request fails.
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.Phantombuster.Key == "" {
		missing = append(missing, "phantombuster.key")
	}
	if c.Phantombuster.AgentID == "" {
		missing = append(missing, "phantombuster.agent_id")
	}
	if c.Hunter.Key == "" {
		missing = append(missing, "hunter.key")
	}
	return missing
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
