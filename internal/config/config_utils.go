package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strings"
)

// ExportURL is the absolute export endpoint of the local server, for
// report pages that are not served by it.
func (c *Config) ExportURL() string {
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, c.Server.Port) + "/api/export"
}

// applyFallbacks normalizes values that cannot be expressed as plain defaults
func (c *Config) applyFallbacks() {
	c.applyBackendDefaults()
	c.applyExportDefaults()
	c.applyObservabilityDefaults()
}

// applyBackendDefaults trims the base URL so routes can be appended verbatim
func (c *Config) applyBackendDefaults() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
}

// applyExportDefaults keeps an empty title from reaching the filename builder
func (c *Config) applyExportDefaults() {
	if strings.TrimSpace(c.Export.DefaultTitle) == "" {
		c.Export.DefaultTitle = "자소서_분석결과"
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "."
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}

	// Set console output based on log level if not explicitly configured
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	// Try to get hostname, fallback to default
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// watchedEnvVars are reported by logConfigurationSources when set
var watchedEnvVars = []string{
	EnvPrefix + "_BACKEND_BASEURL",
	EnvPrefix + "_BACKEND_TIMEOUT",
	EnvPrefix + "_SERVER_PORT",
	EnvPrefix + "_SERVER_HOST",
	EnvPrefix + "_SERVER_WATCHFILE",
	EnvPrefix + "_EXPORT_CHROMEPATH",
	EnvPrefix + "_APP_LOGLEVEL",
	EnvPrefix + "_APP_ENVIRONMENT",
	EnvPrefix + "_OBSERVABILITY_OTLP_HEADERS",
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range watchedEnvVars {
		if value := os.Getenv(envVar); value != "" {
			log.Printf("[CONFIG]   %s=%s", envVar, maskValue(envVar, value))
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Backend URL: %s", c.Backend.BaseURL)
	log.Printf("[CONFIG] Backend Timeout: %s", c.Backend.Timeout)
	log.Printf("[CONFIG] Circuit Breaker Enabled: %t", c.Backend.CircuitBreaker.Enabled)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Environment: %s", c.App.Environment)
	if c.Export.ChromePath != "" {
		log.Printf("[CONFIG] Chrome Path: %s", c.Export.ChromePath)
	} else {
		log.Println("[CONFIG] Chrome Path: auto-detect")
	}
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}

// maskValue hides header values, which may carry collector credentials
func maskValue(name, value string) string {
	if strings.Contains(strings.ToLower(name), "headers") {
		return "***MASKED***"
	}
	return value
}
