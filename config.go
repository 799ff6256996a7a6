package arxivhunter

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfig []byte

// RootEnv overrides the configured root directory.
const RootEnv = "ARXIVHUNTER_ROOT"

// Config holds every fixed setting. It is loaded once at startup and passed
// to the components that need it.
type Config struct {
	Root        string        `yaml:"root"`
	Viewer      string        `yaml:"viewer"`
	LaTeX       string        `yaml:"latex"`
	Document    string        `yaml:"document"`
	Author      string        `yaml:"author"`
	BaseURL     string        `yaml:"base_url"`
	RSSURL      string        `yaml:"rss_url"`
	UserAgent   string        `yaml:"user_agent"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	MemoSize    int           `yaml:"memo_size"`
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "arxivhunter", "config.yaml")
}

// DefaultRoot returns the per-user data directory.
func DefaultRoot() string {
	return filepath.Join(xdg.DataHome, "arxivhunter")
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfig, &cfg); err != nil {
		return nil, fmt.Errorf("parse embedded config: %w", err)
	}
	cfg.Root = DefaultRoot()
	return &cfg, nil
}

// LoadConfig reads the config file at path (DefaultConfigPath when empty)
// over the embedded defaults. A missing file is not an error. RootEnv, when
// set, overrides the root directory.
func LoadConfig(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if root := os.Getenv(RootEnv); root != "" {
		cfg.Root = root
	}
	if cfg.Root == "" {
		cfg.Root = DefaultRoot()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("config: root is required")
	}
	if c.Document == "" {
		return fmt.Errorf("config: document is required")
	}
	if filepath.Base(c.Document) != c.Document {
		return fmt.Errorf("config: document must be a bare name, got %q", c.Document)
	}
	if c.LaTeX == "" {
		return fmt.Errorf("config: latex is required")
	}
	for name, raw := range map[string]string{"base_url": c.BaseURL, "rss_url": c.RSSURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("config: invalid %s: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("config: %s scheme must be http or https, got %q", name, u.Scheme)
		}
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("config: http_timeout must not be negative")
	}
	return nil
}

// DataDir is the directory holding the category stores.
func (c *Config) DataDir() string {
	return filepath.Join(c.Root, "data")
}

// TeXPath is the aggregate document.
func (c *Config) TeXPath() string {
	return filepath.Join(c.Root, c.Document+".tex")
}

// PDFPath is the compiled document.
func (c *Config) PDFPath() string {
	return filepath.Join(c.Root, c.Document+".pdf")
}

// PDFDir holds downloaded preprint PDFs.
func (c *Config) PDFDir() string {
	return filepath.Join(c.Root, "pdf")
}

// IndexPath is the metadata index database.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Root, "index.db")
}
