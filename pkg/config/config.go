package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig holds derived runtime values that other packages may query
// at runtime (populated during startup after merging env+file).
type RuntimeConfig struct {
	EditorKeys map[string]struct{}
}

var (
	runtimeMu  sync.RWMutex
	runtimeCfg *RuntimeConfig
)

// SetRuntime sets the canonical runtime config used by the running server.
func SetRuntime(rc *RuntimeConfig) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtimeCfg = rc
}

// GetEditorKeys returns a copy of configured editor keys.
func GetEditorKeys() map[string]struct{} {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	out := map[string]struct{}{}
	if runtimeCfg == nil || runtimeCfg.EditorKeys == nil {
		return out
	}
	for k := range runtimeCfg.EditorKeys {
		out[k] = struct{}{}
	}
	return out
}

// Load reads and parses the yaml config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr, mode, workspace, dbPath, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", "127.0.0.1:8080", "HTTP listen address")
	modePtr := flag.String("mode", "workspace", "note persistence mode: workspace|session")
	wsPtr := flag.String("workspace", ".", "workspace directory to open")
	dbPtr := flag.String("db", "./.marginalia-db", "pebble path for session mode")
	cfgPtr := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *modePtr, *wsPtr, *dbPtr, *cfgPtr, setFlags
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and the MARGINALIA_CONFIG env var when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("MARGINALIA_CONFIG"); p != "" {
		return p
	}
	return flagPath
}

// LoadEnvOverrides applies MARGINALIA_* environment overrides onto cfg and
// reports whether any env var was used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false
	parseList := func(v string) []string {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}

	if v := os.Getenv("MARGINALIA_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("MARGINALIA_MODE"); v != "" {
		envUsed = true
		cfg.Storage.Mode = v
	}
	if v := os.Getenv("MARGINALIA_WORKSPACE"); v != "" {
		envUsed = true
		cfg.Storage.WorkspaceRoot = v
	}
	if v := os.Getenv("MARGINALIA_DB_PATH"); v != "" {
		envUsed = true
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("MARGINALIA_CORS_ORIGINS"); v != "" {
		envUsed = true
		cfg.Security.CORS.AllowedOrigins = parseList(v)
	}
	if v := os.Getenv("MARGINALIA_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Security.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("MARGINALIA_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Security.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("MARGINALIA_IP_WHITELIST"); v != "" {
		envUsed = true
		cfg.Security.IPWhitelist = parseList(v)
	}
	if v := os.Getenv("MARGINALIA_API_VIEWER_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Viewer = parseList(v)
	}
	if v := os.Getenv("MARGINALIA_API_EDITOR_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Editor = parseList(v)
	}
	if v := os.Getenv("MARGINALIA_API_ADMIN_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Admin = parseList(v)
	}
	if v := os.Getenv("MARGINALIA_GITHUB_TOKEN"); v != "" {
		envUsed = true
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("MARGINALIA_GITHUB_BASE_URL"); v != "" {
		envUsed = true
		cfg.GitHub.BaseURL = v
	}
	if c := os.Getenv("MARGINALIA_TLS_CERT"); c != "" {
		envUsed = true
		cfg.Server.TLS.CertFile = c
	}
	if k := os.Getenv("MARGINALIA_TLS_KEY"); k != "" {
		envUsed = true
		cfg.Server.TLS.KeyFile = k
	}
	return envUsed
}

// LoadEffective merges the config file, env overrides and explicit flags
// into the effective startup configuration. Flags win over env, env wins
// over file.
func LoadEffective(cfgPath, addrVal, modeVal, wsVal, dbVal string, setFlags map[string]bool) (EffectiveConfigResult, error) {
	cfg, err := Load(cfgPath)
	fileUsed := err == nil
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)

	eff := EffectiveConfigResult{Config: cfg}

	eff.Addr = cfg.Addr()
	if setFlags["addr"] {
		eff.Addr = addrVal
	}
	eff.Mode = cfg.Storage.Mode
	if eff.Mode == "" || setFlags["mode"] {
		eff.Mode = modeVal
	}
	eff.WorkspaceRoot = cfg.Storage.WorkspaceRoot
	if eff.WorkspaceRoot == "" || setFlags["workspace"] {
		eff.WorkspaceRoot = wsVal
	}
	eff.DBPath = cfg.Storage.DBPath
	if eff.DBPath == "" || setFlags["db"] {
		eff.DBPath = dbVal
	}

	switch {
	case len(setFlags) > 0:
		eff.Source = "flags"
	case envUsed:
		eff.Source = "env"
	case fileUsed:
		eff.Source = "config"
	default:
		eff.Source = "defaults"
	}
	return eff, nil
}
