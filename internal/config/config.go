package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Upstream UpstreamConfig `toml:"upstream"`
	Images   ImagesConfig   `toml:"images"`
	Client   ClientConfig   `toml:"client"`
	Logging  LoggingConfig  `toml:"logging"`
	Ngrok    NgrokConfig    `toml:"ngrok"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `toml:"port"`
	Host         string `toml:"host"`
	StaticDir    string `toml:"static_dir"`
	EnableCORS   bool   `toml:"enable_cors"`
	ReadTimeout  int    `toml:"read_timeout_seconds"`
	WriteTimeout int    `toml:"write_timeout_seconds"`
	WatchConfig  bool   `toml:"watch_config"`
}

// UpstreamConfig describes the third-party lyrics API
type UpstreamConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ImagesConfig describes album art resolution
type ImagesConfig struct {
	ProxyURL       string `toml:"proxy_url"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	Fit            string `toml:"fit"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ClientConfig contains settings for the terminal client
type ClientConfig struct {
	ServerURL          string `toml:"server_url"`
	HistoryPath        string `toml:"history_path"`
	HistoryLimit       int    `toml:"history_limit"`
	NotificationMillis int    `toml:"notification_millis"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level          string `toml:"level"`
	Format         string `toml:"format"`
	File           string `toml:"file"`
	RequestLogging bool   `toml:"request_logging"`
}

// NgrokConfig contains ngrok tunnel configuration
type NgrokConfig struct {
	Enabled      bool   `toml:"enabled"`
	AuthToken    string `toml:"auth_token"`
	Domain       string `toml:"domain"`
	EnableAuth   bool   `toml:"enable_auth"`
	AuthProvider string `toml:"auth_provider"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Host:         "0.0.0.0",
			StaticDir:    "./static",
			EnableCORS:   true,
			ReadTimeout:  30,
			WriteTimeout: 30,
			WatchConfig:  true,
		},
		Upstream: UpstreamConfig{
			BaseURL:        "https://miko-utilis.vercel.app/api/lyrics",
			TimeoutSeconds: 10,
		},
		Images: ImagesConfig{
			ProxyURL:       "https://images.weserv.nl/",
			Width:          200,
			Height:         200,
			Fit:            "cover",
			TimeoutSeconds: 5,
		},
		Client: ClientConfig{
			ServerURL:          "http://localhost:8080",
			HistoryPath:        "./lyrify-history.db",
			HistoryLimit:       8,
			NotificationMillis: 3000,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			File:           "",
			RequestLogging: true,
		},
		Ngrok: NgrokConfig{
			Enabled:      false,
			AuthToken:    "",
			Domain:       "",
			EnableAuth:   false,
			AuthProvider: "google",
		},
	}
}

// LoadConfig loads configuration from a TOML file, then applies environment
// overrides (including any found in a local .env file).
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create it with defaults
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		fmt.Printf("Created default configuration file at: %s\n", configPath)
	} else if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.ApplyEnv(".env"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ApplyEnv loads envFile when present and overrides fields from LYRIFY_*
// variables. Variables already set in the process win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	if v := os.Getenv("LYRIFY_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("LYRIFY_UPSTREAM_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("LYRIFY_SERVER_URL"); v != "" {
		c.Client.ServerURL = v
	}
	if c.Ngrok.AuthToken == "" {
		c.Ngrok.AuthToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	return nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	header := `# Lyrify Configuration
# Settings for the lyrics relay server and the terminal client.
# Edit the values below to customize them.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	if err := validateHTTPURL("upstream base url", c.Upstream.BaseURL); err != nil {
		return err
	}
	if c.Upstream.TimeoutSeconds < 1 {
		return fmt.Errorf("upstream timeout must be at least 1 second")
	}

	if err := validateHTTPURL("image proxy url", c.Images.ProxyURL); err != nil {
		return err
	}
	if c.Images.Width < 1 || c.Images.Height < 1 {
		return fmt.Errorf("image width and height must be positive")
	}
	if c.Images.TimeoutSeconds < 1 {
		return fmt.Errorf("image timeout must be at least 1 second")
	}

	if err := validateHTTPURL("client server url", c.Client.ServerURL); err != nil {
		return err
	}
	if c.Client.HistoryPath == "" {
		return fmt.Errorf("client history path cannot be empty")
	}
	if c.Client.HistoryLimit < 1 {
		return fmt.Errorf("client history limit must be at least 1")
	}
	if c.Client.NotificationMillis < 0 {
		return fmt.Errorf("client notification delay cannot be negative")
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

func validateHTTPURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", name)
	}
	return nil
}

// GetAddress returns the full server address
func (c *Config) GetAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// UpstreamTimeout returns the outbound call budget.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

// ImageTimeout returns the budget for a single album art load attempt.
func (c *Config) ImageTimeout() time.Duration {
	return time.Duration(c.Images.TimeoutSeconds) * time.Second
}

// NotificationDelay returns how long a notification stays visible.
func (c *Config) NotificationDelay() time.Duration {
	return time.Duration(c.Client.NotificationMillis) * time.Millisecond
}

// ReadFile decodes configPath over the defaults without validating, writing
// or applying environment overrides.
func ReadFile(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
