package fix

import (
	"fmt"
	"time"
)

// Version is the FIX protocol version used as BeginString(8).
type Version string

const (
	Version42 Version = "FIX.4.2"
	Version44 Version = "FIX.4.4"
)

// Config is the immutable session configuration. It is created once at
// startup and cloned into the session and encoder.
type Config struct {
	// Version is the protocol version stamped as BeginString.
	Version Version
	// SenderCompID identifies us on the wire (tag 49).
	SenderCompID string
	// TargetCompID identifies the counterparty (tag 56).
	TargetCompID string
	// Host and Port locate the counterparty's FIX endpoint.
	Host string
	Port int
	// HeartbeatInterval is the negotiated liveness interval (tag 108).
	HeartbeatInterval time.Duration
	// LogonTimeout bounds the wait for the counterparty's Logon reply.
	LogonTimeout time.Duration
	// LogoutTimeout bounds the best-effort wait for a Logout confirmation.
	LogoutTimeout time.Duration
	// ReconnectEnabled turns on the reconnect-with-backoff wrapper.
	ReconnectEnabled bool
	// ReconnectMaxAttempts bounds reconnect attempts before giving up.
	ReconnectMaxAttempts int
	// ReconnectDelay is the base backoff delay, doubled per attempt.
	ReconnectDelay time.Duration
	// MessageLogging logs raw wire messages at debug level when set.
	MessageLogging bool
	// ResetOnLogon sends ResetSeqNumFlag=Y (tag 141) in the Logon message.
	ResetOnLogon bool
}

// DefaultConfig returns the standard session defaults.
func DefaultConfig() Config {
	return Config{
		Version:              Version44,
		Port:                 5001,
		HeartbeatInterval:    30 * time.Second,
		LogonTimeout:         30 * time.Second,
		LogoutTimeout:        5 * time.Second,
		ReconnectEnabled:     true,
		ReconnectMaxAttempts: 5,
		ReconnectDelay:       time.Second,
	}
}

// Validate checks the configuration for a usable session.
func (c Config) Validate() error {
	if c.Version != Version42 && c.Version != Version44 {
		return fmt.Errorf("%w: unsupported version %q", ErrConfiguration, c.Version)
	}
	if c.SenderCompID == "" {
		return fmt.Errorf("%w: sender comp id is required", ErrConfiguration)
	}
	if c.TargetCompID == "" {
		return fmt.Errorf("%w: target comp id is required", ErrConfiguration)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: heartbeat interval must be positive", ErrConfiguration)
	}
	return nil
}

// Addr returns the host:port endpoint.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Credentials is the opaque API key and secret pair placed into the Logon
// Username(553) and Password(554) fields.
type Credentials struct {
	APIKey    string
	APISecret string
}
