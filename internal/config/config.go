package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tradewire/fixgate/internal/fix"
)

// Config holds the gateway configuration.
type Config struct {
	// Service name
	ServiceName string

	// Log level: debug, info, warn, error
	LogLevel string

	// FIX session settings
	FIX fix.Config

	// Credential env values placed into the Logon message
	APIKey    string
	APISecret string

	// Execution journal SQLite path
	JournalPath string

	// Kafka brokers (comma-separated); empty disables the relay
	KafkaBrokers string

	// Kafka topic for execution events
	ExecutionsTopic string

	// HTTP health/status port
	HTTPPort int
}

// LoadConfig loads configuration from environment variables with defaults.
func LoadConfig(serviceName string) *Config {
	fixCfg := fix.DefaultConfig()
	fixCfg.Version = fix.Version(getEnvAsString("FIX_VERSION", string(fix.Version44)))
	fixCfg.SenderCompID = getEnvAsString("FIX_SENDER_COMP_ID", "")
	fixCfg.TargetCompID = getEnvAsString("FIX_TARGET_COMP_ID", "")
	fixCfg.Host = getEnvAsString("FIX_HOST", "127.0.0.1")
	fixCfg.Port = getEnvAsInt("FIX_PORT", 5001)
	fixCfg.HeartbeatInterval = getEnvAsDuration("FIX_HEARTBEAT_INTERVAL", 30*time.Second)
	fixCfg.ReconnectEnabled = getEnvAsBool("FIX_RECONNECT_ENABLED", true)
	fixCfg.ReconnectMaxAttempts = getEnvAsInt("FIX_RECONNECT_MAX_ATTEMPTS", 5)
	fixCfg.ReconnectDelay = getEnvAsDuration("FIX_RECONNECT_DELAY", time.Second)
	fixCfg.MessageLogging = getEnvAsBool("FIX_MESSAGE_LOGGING", false)
	fixCfg.ResetOnLogon = getEnvAsBool("FIX_RESET_ON_LOGON", false)

	return &Config{
		ServiceName:     serviceName,
		LogLevel:        getEnvAsString("LOG_LEVEL", "info"),
		FIX:             fixCfg,
		APIKey:          getEnvAsString("FIX_API_KEY", ""),
		APISecret:       getEnvAsString("FIX_API_SECRET", ""),
		JournalPath:     getEnvAsString("JOURNAL_PATH", "data/executions.db"),
		KafkaBrokers:    getEnvAsString("KAFKA_BROKERS", ""),
		ExecutionsTopic: getEnvAsString("EXECUTIONS_TOPIC", "fix.executions"),
		HTTPPort:        getEnvAsInt("PORT_HTTP", 8080),
	}
}

// Credentials returns the FIX logon credentials.
func (c *Config) Credentials() fix.Credentials {
	return fix.Credentials{APIKey: c.APIKey, APISecret: c.APISecret}
}

// Brokers splits the comma-separated broker list.
func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
