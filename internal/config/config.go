package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/seo-joon/benkyou/internal/logging"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appDir = "benkyou"

type Config struct {
	APIURL           string   `yaml:"api_url" toml:"api_url"`
	AppName          string   `yaml:"app_name" toml:"app_name"`
	RequestTimeout   string   `yaml:"request_timeout" toml:"request_timeout"`
	ExportDir        string   `yaml:"export_dir" toml:"export_dir"`
	HistoryRetention string   `yaml:"history_retention" toml:"history_retention"`
	SessionCookie    string   `yaml:"session_cookie,omitempty" toml:"session_cookie"`
	Tracks           []string `yaml:"tracks" toml:"tracks"`
}

// Session returns the session cookie value, preferring the environment.
func (c *Config) Session() string {
	if v := os.Getenv("BENKYOU_SESSION"); v != "" {
		return v
	}
	return c.SessionCookie
}

// TrackList returns the selectable tracks, always starting with "all".
func (c *Config) TrackList() []string {
	out := []string{"all"}
	seen := map[string]bool{"all": true}
	for _, t := range c.Tracks {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Name returns the application name used in export file names.
func (c *Config) Name() string {
	if strings.TrimSpace(c.AppName) == "" {
		return appDir
	}
	return strings.TrimSpace(c.AppName)
}

func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	if c.HistoryRetention == "" {
		return 90 * 24 * time.Hour
	}
	// Support "Nd" day syntax
	if len(c.HistoryRetention) > 1 && c.HistoryRetention[len(c.HistoryRetention)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(c.HistoryRetention, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(c.HistoryRetention)
	if err != nil {
		return 90 * 24 * time.Hour
	}
	return d
}

// ExportPath returns the directory CSV exports are written to.
func (c *Config) ExportPath() string {
	if c.ExportDir != "" {
		return c.ExportDir
	}
	if xdg.UserDirs.Download != "" {
		return xdg.UserDirs.Download
	}
	return "."
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appDir, "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, appDir, "benkyou.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, appDir, "benkyou.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (YAML, or TOML when the extension is .toml)
// on top of the embedded defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := writeDefaults(path); err != nil {
				// Non-fatal: the embedded defaults still apply
				logging.Logger().Warn("writing default config", "path", path, "err", err)
			}
			applyEnv(cfg)
			return cfg, validate(cfg)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnv(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BENKYOU_API_URL"); v != "" {
		cfg.APIURL = v
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	u, err := url.Parse(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url %q has no host", cfg.APIURL)
	}
	return nil
}
