package config

import "time"

// MediaConfig selects and configures the media backend used to provision
// video rooms. Mode is one of "none", "janus", "livekit".
type MediaConfig struct {
	Mode             string `mapstructure:"mode" yaml:"mode"`
	JanusAdminURL    string `mapstructure:"janus_admin_url" yaml:"janus_admin_url"`
	JanusAdminSecret string `mapstructure:"janus_admin_secret" yaml:"janus_admin_secret"`
	LiveKitURL       string `mapstructure:"livekit_url" yaml:"livekit_url"`
	LiveKitAPIKey    string `mapstructure:"livekit_api_key" yaml:"livekit_api_key"`
	LiveKitAPISecret string `mapstructure:"livekit_api_secret" yaml:"livekit_api_secret"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret  string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer  string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl" yaml:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl" yaml:"refresh_ttl"`

	// WSRateLimit caps inbound events per connection per minute. Zero
	// disables the limit.
	WSRateLimit int `mapstructure:"ws_rate_limit" yaml:"ws_rate_limit"`

	Media MediaConfig `mapstructure:"media" yaml:"media"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "kumpul.db",
		LogLevel:          "info",
		JWTSecret:         "change-me",
		JWTIssuer:         "kumpul",
		AccessTTL:         15 * time.Minute,
		RefreshTTL:        7 * 24 * time.Hour,
		WSRateLimit:       300,
		Media: MediaConfig{
			Mode: "none",
		},
	}
}
