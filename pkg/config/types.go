package config

import "fmt"

// Config mirrors the yaml config file.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		TLS     struct {
			CertFile string `yaml:"cert_file"`
			KeyFile  string `yaml:"key_file"`
		} `yaml:"tls"`
	} `yaml:"server"`
	Storage struct {
		// Mode selects the note backend: "session" keeps annotations in the
		// embedded pebble store, "workspace" persists them as a single JSON
		// document at the root of the opened directory.
		Mode          string `yaml:"mode"`
		DBPath        string `yaml:"db_path"`
		WorkspaceRoot string `yaml:"workspace_root"`
	} `yaml:"storage"`
	Security struct {
		CORS struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
		IPWhitelist []string `yaml:"ip_whitelist"`
		APIKeys     struct {
			Viewer []string `yaml:"viewer"`
			Editor []string `yaml:"editor"`
			Admin  []string `yaml:"admin"`
		} `yaml:"api_keys"`
	} `yaml:"security"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	GitHub struct {
		BaseURL string  `yaml:"base_url"`
		Token   string  `yaml:"token"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"github"`
	Sweep struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
		// Prune deletes orphaned annotations instead of only reporting them.
		Prune bool `yaml:"prune"`
	} `yaml:"sweep"`
	Validation struct {
		MaxContentLen  int  `yaml:"max_content_len"`
		RequireContent bool `yaml:"require_content"`
	} `yaml:"validation"`
	Viewer struct {
		LineHeight float64 `yaml:"line_height"`
	} `yaml:"viewer"`
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "127.0.0.1"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// LineHeight returns the configured viewer line height or the default unit
// both panes render with.
func (c *Config) LineHeight() float64 {
	if c.Viewer.LineHeight > 0 {
		return c.Viewer.LineHeight
	}
	return 21
}

// EffectiveConfigResult is the merged flags+env+file configuration handed to
// the app.
type EffectiveConfigResult struct {
	Config        *Config
	Addr          string
	Mode          string
	DBPath        string
	WorkspaceRoot string
	// Source names the winning config origin: flags, env or config.
	Source string
}
