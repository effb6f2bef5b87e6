package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Secret precedence order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (GROWTHOS_AI_APIKEY, GROWTHOS_DATABASE_URL, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	GitHub        GitHubConfig        `mapstructure:"github"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds AI service configuration
type AIConfig struct {
	Provider         string        `mapstructure:"provider"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	APIKey           string        `mapstructure:"apiKey"`
	MaxRetries       int           `mapstructure:"maxRetries"`
	Temperature      float32       `mapstructure:"temperature"`
	UseSystemPrompts bool          `mapstructure:"useSystemPrompts"`

	// Gap analysis overrides
	Analysis OperationAIConfig `mapstructure:"analysis"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for a specific operation
type OperationAIConfig struct {
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          *time.Duration       `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	MaxRetries       *int                 `mapstructure:"maxRetries"`
	Temperature      *float32             `mapstructure:"temperature"`
	UseSystemPrompts *bool                `mapstructure:"useSystemPrompts"`
	Prompts          PromptConfig         `mapstructure:"prompts"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PromptConfig holds inline prompts and prompt file paths
type PromptConfig struct {
	System     string `mapstructure:"system"`
	SystemFile string `mapstructure:"systemFile"`
	User       string `mapstructure:"user"`
	UserFile   string `mapstructure:"userFile"`
	// WatchFiles reloads prompt files when they change on disk
	WatchFiles bool `mapstructure:"watchFiles"`
}

// DatabaseConfig holds the hosted database connection settings.
// URL+ServiceKey is the privileged connection; PublicURL+PublicKey is the
// restricted one used for read paths.
type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver"` // postgres or sqlite
	URL          string        `mapstructure:"url"`
	ServiceKey   string        `mapstructure:"serviceKey"`
	PublicURL    string        `mapstructure:"publicURL"`
	PublicKey    string        `mapstructure:"publicKey"`
	AutoMigrate  bool          `mapstructure:"autoMigrate"`
	MaxOpenConns int           `mapstructure:"maxOpenConns"`
	MaxIdleConns int           `mapstructure:"maxIdleConns"`
	ConnMaxLife  time.Duration `mapstructure:"connMaxLife"`
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwtSecret"`
	Issuer     string        `mapstructure:"issuer"`
	CookieName string        `mapstructure:"cookieName"`
	SessionTTL time.Duration `mapstructure:"sessionTTL"`
}

// GitHubConfig holds GitHub REST API settings
type GitHubConfig struct {
	APIBaseURL string        `mapstructure:"apiBaseURL"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"userAgent"`
	PerPage    int           `mapstructure:"perPage"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	PublicURL    string        `mapstructure:"publicURL"` // base URL used to reach internal lookup routes
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`

	// set when PublicURL was derived from Host and Port
	derivedPublicURL bool
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int           `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int           `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool          `mapstructure:"byIP"`           // Enable per-IP rate limiting
	TrustProxy     bool          `mapstructure:"trustProxy"`     // Take the client IP from X-Forwarded-For / X-Real-IP
	Window         time.Duration `mapstructure:"window"`         // Idle time before a client bucket is evicted
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel      string      `mapstructure:"logLevel"`
	MaxUploadSize int64       `mapstructure:"maxUploadSize"`
	Limits        LimitConfig `mapstructure:"limits"`
}

// LimitConfig holds the character caps applied to intake data
type LimitConfig struct {
	ResumeChars   int `mapstructure:"resumeChars"`
	GitHubChars   int `mapstructure:"githubChars"`
	FeedbackChars int `mapstructure:"feedbackChars"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	AIOperations    AIOperationsMetricsConfig   `mapstructure:"aiOperations"`
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// AIOperationsMetricsConfig holds AI operation metrics configuration
type AIOperationsMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
}

// BusinessMetricsConfig holds business metrics configuration
type BusinessMetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	TrackSuccessRates bool `mapstructure:"trackSuccessRates"`
	TrackContentSizes bool `mapstructure:"trackContentSizes"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("GROWTHOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'GROWTHOS'")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/growthos/")
	v.AddConfigPath("$HOME/.growthos")
	v.AddConfigPath(".")
	log.Println("[CONFIG] Configured config file search paths: /etc/growthos/, $HOME/.growthos, .")

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	config.logConfigurationSources(configFileUsed)

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid.
// Missing credentials are not errors: dependent features degrade instead.
func (c *Config) Validate() error {
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid database driver: %s (must be 'postgres' or 'sqlite')", c.Database.Driver)
	}

	switch c.App.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.App.LogLevel)
	}

	limits := c.App.Limits
	if limits.ResumeChars <= 0 || limits.GitHubChars <= 0 || limits.FeedbackChars <= 0 {
		return fmt.Errorf("intake limits must be positive (resume=%d, github=%d, feedback=%d)",
			limits.ResumeChars, limits.GitHubChars, limits.FeedbackChars)
	}

	if c.App.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	if c.GitHub.APIBaseURL == "" {
		return fmt.Errorf("github API base URL is required")
	}

	return nil
}

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetAnalysisConfig returns the AI configuration for gap analysis with fallback to global config
func (c *Config) GetAnalysisConfig() OperationAIConfig {
	config := c.AI.Analysis
	c.applyOperationDefaults(&config)
	return config
}

// AIEnabled reports whether an AI API key is available for gap analysis
func (c *Config) AIEnabled() bool {
	return c.GetAnalysisConfig().APIKey != ""
}

// ListenAddr returns the host:port the server binds to
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// SetListenAddress overrides the bind address. A public URL derived from the
// previous address follows the new one; an explicitly configured URL is kept.
func (c *Config) SetListenAddress(host, port string) {
	c.Server.Host = host
	c.Server.Port = port
	if c.Server.derivedPublicURL {
		c.Server.PublicURL = "http://" + c.ListenAddr()
	}
}

// SetPublicURL overrides the base URL used in share links
func (c *Config) SetPublicURL(url string) {
	c.Server.PublicURL = strings.TrimSuffix(url, "/")
	c.Server.derivedPublicURL = false
}

// applyFallbacks fills derived settings and legacy environment variables
func (c *Config) applyFallbacks() {
	// Legacy variable names used by hosted deployments
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Database.URL == "" {
		c.Database.URL = os.Getenv("DATABASE_URL")
	}
	if c.Database.PublicURL == "" {
		c.Database.PublicURL = c.Database.URL
	}

	if c.Server.PublicURL == "" {
		c.Server.PublicURL = "http://" + c.ListenAddr()
		c.Server.derivedPublicURL = true
	}
	c.Server.PublicURL = strings.TrimSuffix(c.Server.PublicURL, "/")

	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-%s", c.Observability.ServiceName, hostname)
		} else {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-1", c.Observability.ServiceName)
		}
	}

	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"GROWTHOS_AI_APIKEY",
		"GROWTHOS_AI_MODEL",
		"GROWTHOS_DATABASE_DRIVER",
		"GROWTHOS_DATABASE_URL",
		"GROWTHOS_DATABASE_SERVICEKEY",
		"GROWTHOS_DATABASE_PUBLICKEY",
		"GROWTHOS_AUTH_JWTSECRET",
		"GROWTHOS_SERVER_PORT",
		"GROWTHOS_SERVER_HOST",
		"GROWTHOS_APP_LOGLEVEL",
		"GROWTHOS_VAULT_ENABLED",
		"GEMINI_API_KEY",
		"DATABASE_URL",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if isSensitiveKey(envVar) {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	log.Printf("[CONFIG] AI API Key: %s", configuredMarker(c.AI.APIKey))
	log.Printf("[CONFIG] Database Driver: %s", c.Database.Driver)
	log.Printf("[CONFIG] Database URL: %s", configuredMarker(c.Database.URL))
	log.Printf("[CONFIG] Database Service Key: %s", configuredMarker(c.Database.ServiceKey))
	log.Printf("[CONFIG] Database Public Key: %s", configuredMarker(c.Database.PublicKey))
	log.Printf("[CONFIG] Session Secret: %s", configuredMarker(c.Auth.JWTSecret))
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}

// isSensitiveKey reports whether a variable name looks like it holds a secret
func isSensitiveKey(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{"key", "secret", "token", "url", "password"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func configuredMarker(value string) string {
	if value != "" {
		return "***CONFIGURED***"
	}
	return "***NOT SET***"
}
