package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/ksyq12/vhostprov/internal/platform"
)

// Config represents the application configuration
type Config struct {
	WebUser        string   `yaml:"web_user" env:"WEB_USER"`
	WebGroup       string   `yaml:"web_group" env:"WEB_GROUP"`
	WWWRoot        string   `yaml:"www_root" env:"WWW_ROOT"`
	SitesAvailable string   `yaml:"sites_available,omitempty" env:"SITES_AVAILABLE"`
	SitesEnabled   string   `yaml:"sites_enabled,omitempty" env:"SITES_ENABLED"`
	Service        string   `yaml:"service" env:"SERVICE"`
	PHPVersion     string   `yaml:"php_version" env:"PHP_VERSION"`
	PHPSocket      string   `yaml:"php_socket,omitempty" env:"PHP_SOCKET"`
	CertDir        string   `yaml:"cert_dir" env:"CERT_DIR"`
	SSLOptions     string   `yaml:"ssl_options" env:"SSL_OPTIONS"`
	DHParam        string   `yaml:"ssl_dhparam" env:"SSL_DHPARAM"`
	CertbotLog     string   `yaml:"certbot_log" env:"CERTBOT_LOG"`
	Redirect       string   `yaml:"redirect" env:"REDIRECT"`
	TrustedProxies []string `yaml:"trusted_proxies,omitempty" env:"TRUSTED_PROXIES" envSeparator:","`
	TestConfig     bool     `yaml:"test_config" env:"TEST_CONFIG"`
	WriteIndex     bool     `yaml:"write_index" env:"WRITE_INDEX"`
	LogLevel       string   `yaml:"log_level,omitempty" env:"LOG_LEVEL"`

	Sites map[string]*Site `yaml:"sites,omitempty"`

	path string
}

const (
	configDir  = ".config/vhostprov"
	configFile = "config.yaml"

	// EnvPrefix prefixes every environment override, e.g. VHOSTPROV_WEB_USER.
	EnvPrefix = "VHOSTPROV_"
)

// New creates a new Config with default values. Site directories are left
// empty so platform detection can fill them in.
func New() *Config {
	return &Config{
		WebUser:    "www-data",
		WebGroup:   "www-data",
		WWWRoot:    "/var/www",
		Service:    "nginx",
		PHPVersion: "8.2",
		CertDir:    "/etc/letsencrypt/live",
		SSLOptions: "/etc/letsencrypt/options-ssl-nginx.conf",
		DHParam:    "/etc/letsencrypt/ssl-dhparams.pem",
		CertbotLog: "/var/log/letsencrypt/letsencrypt.log",
		Redirect:   RedirectForceHTTPS,
		TestConfig: true,
		WriteIndex: true,
		Sites:      make(map[string]*Site),
	}
}

// DefaultPath returns ~/.config/vhostprov/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// Load reads the config at path (DefaultPath when empty), then applies
// VHOSTPROV_* overrides from the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil map means the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := New()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if cfg.Sites == nil {
		cfg.Sites = make(map[string]*Site)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was loaded from and is saved to.
func (c *Config) Path() string {
	return c.path
}

// SetPath changes where Save writes.
func (c *Config) SetPath(path string) {
	c.path = path
}

// ApplyPlatform fills unset site directories from detected paths.
func (c *Config) ApplyPlatform(paths platform.SitePaths) {
	if c.SitesAvailable == "" {
		c.SitesAvailable = paths.Available
	}
	if c.SitesEnabled == "" {
		c.SitesEnabled = paths.Enabled
	}
}

// SitePaths returns the configured site directories.
func (c *Config) SitePaths() platform.SitePaths {
	return platform.SitePaths{Available: c.SitesAvailable, Enabled: c.SitesEnabled}
}

// PHPSocketPath returns the PHP-FPM socket, derived from PHPVersion unless
// set explicitly.
func (c *Config) PHPSocketPath() string {
	if c.PHPSocket != "" {
		return c.PHPSocket
	}
	return fmt.Sprintf("/run/php/php%s-fpm.sock", c.PHPVersion)
}

// Validate checks values that would otherwise surface as broken nginx config.
func (c *Config) Validate() error {
	if !IsValidRedirect(c.Redirect) {
		return fmt.Errorf("invalid redirect strategy %q (valid: %s)", c.Redirect, strings.Join(ValidRedirects(), ", "))
	}
	if c.WebUser == "" || c.WebGroup == "" {
		return fmt.Errorf("web_user and web_group must be set")
	}
	if !filepath.IsAbs(c.WWWRoot) {
		return fmt.Errorf("www_root must be an absolute path: %q", c.WWWRoot)
	}
	for _, p := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(p); err == nil {
			continue
		}
		if net.ParseIP(p) == nil {
			return fmt.Errorf("invalid trusted proxy %q: expected IP or CIDR", p)
		}
	}
	return nil
}

// Save writes the recorded sites to the config file. Only the sites key
// is replaced; every other key and comment in the file is left as the
// operator wrote it, so environment overrides and detected directories
// never reach disk.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config path not set")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	doc, err := readDocument(c.path)
	if err != nil {
		return err
	}

	var sites yaml.Node
	if err := sites.Encode(c.Sites); err != nil {
		return fmt.Errorf("failed to marshal sites: %w", err)
	}
	setKey(doc.Content[0], "sites", &sites)

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// readDocument parses the file at path as a YAML document whose root is a
// mapping. A missing or empty file yields an empty mapping.
func readDocument(path string) (*yaml.Node, error) {
	doc := &yaml.Node{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config %s: top level must be a mapping", path)
	}
	return doc, nil
}

// setKey replaces the value of key in mapping m, appending it when absent.
func setKey(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

// RecordSite inserts or replaces the record for site.Domain.
func (c *Config) RecordSite(site *Site) {
	if c.Sites == nil {
		c.Sites = make(map[string]*Site)
	}
	c.Sites[site.Domain] = site
}

// GetSite returns a recorded site by domain
func (c *Config) GetSite(domain string) (*Site, error) {
	site, exists := c.Sites[domain]
	if !exists {
		return nil, fmt.Errorf("site %s not found", domain)
	}
	return site, nil
}

// ListSites returns all recorded sites sorted by domain
func (c *Config) ListSites() []*Site {
	sites := make([]*Site, 0, len(c.Sites))
	for _, s := range c.Sites {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool {
		return sites[i].Domain < sites[j].Domain
	})
	return sites
}
