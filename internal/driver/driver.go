package driver

import "github.com/ksyq12/vhostprov/internal/platform"

// Driver manages site configuration files and the web server daemon.
type Driver interface {
	// Name returns the driver name
	Name() string

	// Paths returns the site directories
	Paths() platform.SitePaths

	// WriteConfig overwrites the site's configuration file and returns its path
	WriteConfig(domain, content string) (string, error)

	// Activate (re)creates the enabled-site symlink
	Activate(domain string) error

	// IsEnabled checks if a site is enabled
	IsEnabled(domain string) (bool, error)

	// List returns the domains that have a configuration file
	List() ([]string, error)

	// Test validates the web server config syntax
	Test() error

	// IsActive reports whether the daemon is running
	IsActive() (bool, error)

	// Apply starts the daemon when it is stopped and reloads it otherwise
	Apply() error
}

// ConfigName returns the configuration file name for domain.
func ConfigName(domain string) string {
	return domain + ".conf"
}
