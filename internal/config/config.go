package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SMSCHAT_SERVER_PORT
const EnvPrefix = "SMSCHAT"

// TransportConfig selects and configures the outbound SMS transport.
// It is passed explicitly to transport.New; nothing reads it globally.
type TransportConfig struct {
	Mock        bool          `json:"mock" mapstructure:"mock"`
	DefaultFrom string        `json:"default_from" mapstructure:"default_from"`
	AccountSID  string        `json:"account_sid" mapstructure:"account_sid"`
	AuthToken   string        `json:"auth_token" mapstructure:"auth_token"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Config holds all configuration settings
type Config struct {
	Server struct {
		Port int    `json:"port" mapstructure:"port"`
		Host string `json:"host" mapstructure:"host"`
		// ForceHTTPS redirects plain HTTP requests; honors X-Forwarded-Proto
		ForceHTTPS bool `json:"force_https" mapstructure:"force_https"`
	} `json:"server" mapstructure:"server"`
	Database struct {
		Driver string `json:"driver" mapstructure:"driver"`
		DSN    string `json:"dsn" mapstructure:"dsn"`
	} `json:"database" mapstructure:"database"`
	JWT struct {
		Secret      string        `json:"secret" mapstructure:"secret"`
		TokenExpiry time.Duration `json:"token_expiry" mapstructure:"token_expiry"`
	} `json:"jwt" mapstructure:"jwt"`
	Logging struct {
		Level string `json:"level" mapstructure:"level"`
		Path  string `json:"path" mapstructure:"path"`
	} `json:"logging" mapstructure:"logging"`
	Admin struct {
		// KeyHash is the bcrypt hash of the X-Admin-Key header value.
		// Empty leaves the admin surface open.
		KeyHash string `json:"key_hash" mapstructure:"key_hash"`
	} `json:"admin" mapstructure:"admin"`
	Security struct {
		// OTPEncryptionKey must be 32 bytes; empty stores OTP secrets in the clear.
		OTPEncryptionKey string `json:"otp_encryption_key" mapstructure:"otp_encryption_key"`
		// CORSOrigins lists web client origins; "*" allows any
		CORSOrigins []string `json:"cors_origins" mapstructure:"cors_origins"`
	} `json:"security" mapstructure:"security"`
	Transport TransportConfig `json:"transport" mapstructure:"transport"`
	Events    struct {
		NATSURL string `json:"nats_url" mapstructure:"nats_url"`
		Subject string `json:"subject" mapstructure:"subject"`
	} `json:"events" mapstructure:"events"`
	Fanout struct {
		Concurrency int `json:"concurrency" mapstructure:"concurrency"`
	} `json:"fanout" mapstructure:"fanout"`
	Messages struct {
		HistoryLimit int `json:"history_limit" mapstructure:"history_limit"`
	} `json:"messages" mapstructure:"messages"`
}

// LoadConfig loads configuration from a JSON or YAML file, then applies
// SMSCHAT_* environment overrides (including those from a local .env file).
// An empty path loads defaults plus environment only.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if path != "" {
		// Validate path to prevent directory traversal
		cleanPath := filepath.Clean(path)
		if !filepath.IsAbs(cleanPath) {
			return nil, fmt.Errorf("config path must be absolute")
		}

		fileInfo, err := os.Stat(cleanPath)
		if err != nil {
			return nil, fmt.Errorf("config file error: %w", err)
		}
		if !fileInfo.Mode().IsRegular() {
			return nil, fmt.Errorf("config path is not a regular file")
		}

		v.SetConfigFile(cleanPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail much later at runtime
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("invalid server port")
	}
	switch c.Database.Driver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Transport.DefaultFrom == "" {
		return errors.New("transport default_from number is required")
	}
	if !c.Transport.Mock && (c.Transport.AccountSID == "" || c.Transport.AuthToken == "") {
		return errors.New("transport credentials are required when mock mode is off")
	}
	if k := c.Security.OTPEncryptionKey; k != "" && len(k) != 32 {
		return errors.New("otp encryption key must be 32 bytes")
	}
	return nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	config := &Config{}
	config.Server.Port = 8080
	config.Server.Host = "localhost"
	config.Database.Driver = "sqlite3"
	config.Database.DSN = "file:smschat.db?cache=shared&mode=rwc&_foreign_keys=on"
	config.JWT.Secret = "your-secret-key" // This should be changed in production
	config.JWT.TokenExpiry = 24 * time.Hour
	config.Logging.Level = "info"
	config.Logging.Path = "logs/server.log"
	config.Security.CORSOrigins = []string{"*"}
	config.Transport.Mock = true
	config.Transport.DefaultFrom = "+15550000000"
	config.Transport.Timeout = 10 * time.Second
	config.Events.Subject = "sms_chat.group.message.created"
	config.Fanout.Concurrency = 8
	config.Messages.HistoryLimit = 50
	return config
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.force_https", d.Server.ForceHTTPS)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("jwt.secret", d.JWT.Secret)
	v.SetDefault("jwt.token_expiry", d.JWT.TokenExpiry)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("admin.key_hash", d.Admin.KeyHash)
	v.SetDefault("security.otp_encryption_key", d.Security.OTPEncryptionKey)
	v.SetDefault("security.cors_origins", d.Security.CORSOrigins)
	v.SetDefault("transport.mock", d.Transport.Mock)
	v.SetDefault("transport.default_from", d.Transport.DefaultFrom)
	v.SetDefault("transport.account_sid", d.Transport.AccountSID)
	v.SetDefault("transport.auth_token", d.Transport.AuthToken)
	v.SetDefault("transport.timeout", d.Transport.Timeout)
	v.SetDefault("events.nats_url", d.Events.NATSURL)
	v.SetDefault("events.subject", d.Events.Subject)
	v.SetDefault("fanout.concurrency", d.Fanout.Concurrency)
	v.SetDefault("messages.history_limit", d.Messages.HistoryLimit)
}
