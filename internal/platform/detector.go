// Package platform detects where the local nginx installation keeps its
// virtual host files.
package platform

import (
	"fmt"
	"os"
	"runtime"
)

// SitePaths contains the directories nginx reads site configs from.
// On layouts without a separate enabled directory both fields are equal.
type SitePaths struct {
	Available string
	Enabled   string
}

// Split reports whether activation needs a symlink from Enabled to Available.
func (p SitePaths) Split() bool {
	return p.Available != p.Enabled
}

// Debian-family and RHEL-family layouts.
var (
	DebianPaths = SitePaths{
		Available: "/etc/nginx/sites-available",
		Enabled:   "/etc/nginx/sites-enabled",
	}
	RHELPaths = SitePaths{
		Available: "/etc/nginx/conf.d",
		Enabled:   "/etc/nginx/conf.d",
	}
)

// DetectPaths returns the nginx site directories for this host.
func DetectPaths() (SitePaths, error) {
	if runtime.GOOS != "linux" {
		return SitePaths{}, fmt.Errorf("unsupported platform: %s (systemd-managed Linux required)", runtime.GOOS)
	}
	return detectLinuxPaths(pathExists)
}

// detectLinuxPaths prefers the Debian layout, falling back to conf.d.
func detectLinuxPaths(exists func(string) bool) (SitePaths, error) {
	if exists(DebianPaths.Available) {
		return DebianPaths, nil
	}
	if exists(RHELPaths.Available) {
		return RHELPaths, nil
	}
	// A bare /etc/nginx without either directory: the Debian layout will be created.
	if exists("/etc/nginx") {
		return DebianPaths, nil
	}
	return SitePaths{}, fmt.Errorf("nginx configuration paths not found (checked %s, %s)", DebianPaths.Available, RHELPaths.Available)
}

// pathExists checks if a path exists on the filesystem.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
