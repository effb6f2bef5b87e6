package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// AI Configuration - Gap analysis defaults
	v.SetDefault("ai.analysis.provider", "gemini")
	v.SetDefault("ai.analysis.model", "")
	v.SetDefault("ai.analysis.timeout", 90*time.Second) // long structured output
	v.SetDefault("ai.analysis.apiKey", "")
	v.SetDefault("ai.analysis.maxRetries", 2)
	v.SetDefault("ai.analysis.temperature", 0.3)
	v.SetDefault("ai.analysis.useSystemPrompts", true)
	v.SetDefault("ai.analysis.prompts.watchFiles", false)

	v.SetDefault("ai.analysis.circuitBreaker.enabled", true)
	v.SetDefault("ai.analysis.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.analysis.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.analysis.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.analysis.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.analysis.circuitBreaker.failureThreshold", 0.6)

	// Database Configuration
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.serviceKey", "")
	v.SetDefault("database.publicURL", "")
	v.SetDefault("database.publicKey", "")
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLife", 30*time.Minute)

	// Session Configuration
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "growthos")
	v.SetDefault("auth.cookieName", "growthos_session")
	v.SetDefault("auth.sessionTTL", 7*24*time.Hour)

	// GitHub Configuration
	v.SetDefault("github.apiBaseURL", "https://api.github.com")
	v.SetDefault("github.timeout", 15*time.Second)
	v.SetDefault("github.userAgent", "growthos")
	v.SetDefault("github.perPage", 30)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.publicURL", "")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // analysis generation is slow
	v.SetDefault("server.idleTimeout", 120*time.Second)

	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.trustProxy", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.maxUploadSize", 10*1024*1024) // 10MB
	v.SetDefault("app.limits.resumeChars", 8000)
	v.SetDefault("app.limits.githubChars", 4000)
	v.SetDefault("app.limits.feedbackChars", 500)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.aiKey", "")
	v.SetDefault("vault.secrets.database", "")
	v.SetDefault("vault.secrets.session", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "growthos")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
