// Package config provides configuration loading and validation. The config
// is built once at startup, before any adapter dispatch, and never mutated
// afterwards; vendor reads therefore never observe a half-applied override.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App         AppConfig                   `mapstructure:"app"`
	Swap        SwapConfig                  `mapstructure:"swap"`
	Aggregators map[string]AggregatorConfig `mapstructure:"aggregators"`
	Pricing     PricingConfig               `mapstructure:"pricing"`
	Telemetry   TelemetryConfig             `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// SwapConfig holds orchestration settings shared by all adapters.
type SwapConfig struct {
	DefaultAggregators []string      `mapstructure:"default_aggregators"`
	IntegratorID       string        `mapstructure:"integrator_id"`
	MaxSlippageBps     uint16        `mapstructure:"max_slippage_bps"`
	AdapterTimeout     time.Duration `mapstructure:"adapter_timeout"`
	TUIMode            bool          `mapstructure:"-"` // set at runtime, not from config file
}

// AggregatorConfig holds one vendor's settings. Values left empty fall back
// to adapter defaults; caller-supplied SwapParams always win over both.
type AggregatorConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Referrer     string        `mapstructure:"referrer"`
	Integrator   string        `mapstructure:"integrator"`
	FeeBps       uint16        `mapstructure:"fee_bps"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimitRPM int           `mapstructure:"rate_limit_rpm"`
}

// PricingConfig holds the native-coin USD price feed settings.
type PricingConfig struct {
	HTTPURL      string        `mapstructure:"http_url"`
	WebSocketURL string        `mapstructure:"websocket_url"`
	StaleTimeout time.Duration `mapstructure:"stale_timeout"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceExporter  string `mapstructure:"trace_exporter"` // otlp-grpc | otlp-http | zipkin | console | none
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// Aggregator returns the config block for a vendor id. Vendors the file does
// not mention run enabled with adapter defaults.
func (c *Config) Aggregator(id string) AggregatorConfig {
	if agg, ok := c.Aggregators[strings.ToLower(id)]; ok {
		return agg
	}
	return AggregatorConfig{Enabled: true}
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SWAPR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SWAPR_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SWAPR_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SWAPR_LOG_LEVEL", "LOG_LEVEL")

	// Swap
	v.BindEnv("swap.default_aggregators", "SWAPR_DEFAULT_AGGREGATORS")
	v.BindEnv("swap.integrator_id", "SWAPR_INTEGRATOR_ID")
	v.BindEnv("swap.max_slippage_bps", "SWAPR_MAX_SLIPPAGE_BPS")
	v.BindEnv("swap.adapter_timeout", "SWAPR_ADAPTER_TIMEOUT")

	// Per-vendor credentials
	v.BindEnv("aggregators.lifi.api_key", "SWAPR_LIFI_API_KEY", "LIFI_API_KEY")
	v.BindEnv("aggregators.socket.api_key", "SWAPR_SOCKET_API_KEY", "SOCKET_API_KEY")
	v.BindEnv("aggregators.squid.api_key", "SWAPR_SQUID_API_KEY", "SQUID_API_KEY")

	// Pricing
	v.BindEnv("pricing.http_url", "SWAPR_PRICING_HTTP_URL")
	v.BindEnv("pricing.websocket_url", "SWAPR_PRICING_WS_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SWAPR_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SWAPR_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SWAPR_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "swapr")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Swap defaults
	v.SetDefault("swap.default_aggregators", []string{"lifi", "socket", "squid"})
	v.SetDefault("swap.max_slippage_bps", 500)
	v.SetDefault("swap.adapter_timeout", "20s")

	// Vendor defaults; API roots live with the adapters, only knobs here
	v.SetDefault("aggregators.lifi.enabled", true)
	v.SetDefault("aggregators.lifi.rate_limit_rpm", 60)
	v.SetDefault("aggregators.socket.enabled", true)
	v.SetDefault("aggregators.socket.rate_limit_rpm", 60)
	v.SetDefault("aggregators.squid.enabled", true)
	v.SetDefault("aggregators.squid.rate_limit_rpm", 60)

	// Pricing defaults
	v.SetDefault("pricing.http_url", "https://api.binance.com")
	v.SetDefault("pricing.websocket_url", "wss://stream.binance.com:9443")
	v.SetDefault("pricing.stale_timeout", "30s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "swapr")
	v.SetDefault("telemetry.trace_exporter", "otlp-grpc")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Swap.DefaultAggregators) == 0 {
		return fmt.Errorf("swap.default_aggregators cannot be empty")
	}
	if c.Swap.MaxSlippageBps == 0 || c.Swap.MaxSlippageBps > 10000 {
		return fmt.Errorf("swap.max_slippage_bps must be within (0, 10000]: %d", c.Swap.MaxSlippageBps)
	}
	if c.Swap.AdapterTimeout <= 0 {
		return fmt.Errorf("swap.adapter_timeout must be positive")
	}
	for id, agg := range c.Aggregators {
		if agg.FeeBps > 10000 {
			return fmt.Errorf("aggregators.%s.fee_bps out of range: %d", id, agg.FeeBps)
		}
	}
	return nil
}
