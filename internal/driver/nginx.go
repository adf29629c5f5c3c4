package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/ksyq12/vhostprov/internal/errors"
	"github.com/ksyq12/vhostprov/internal/executor"
	"github.com/ksyq12/vhostprov/internal/logger"
	"github.com/ksyq12/vhostprov/internal/platform"
)

const (
	configMode = 0644
	dirMode    = 0755
)

// NginxDriver implements the Driver interface for nginx under systemd
type NginxDriver struct {
	paths   platform.SitePaths
	service string
	exec    executor.CommandExecutor
}

// NewNginx creates a new nginx driver for the given site directories
func NewNginx(paths platform.SitePaths, service string) *NginxDriver {
	return NewNginxWithExecutor(paths, service, executor.NewSystemExecutor())
}

// NewNginxWithExecutor creates a new nginx driver with a custom executor (for testing)
func NewNginxWithExecutor(paths platform.SitePaths, service string, exec executor.CommandExecutor) *NginxDriver {
	if service == "" {
		service = "nginx"
	}
	return &NginxDriver{paths: paths, service: service, exec: exec}
}

// Name returns the driver name
func (n *NginxDriver) Name() string {
	return "nginx"
}

// Paths returns the site directories
func (n *NginxDriver) Paths() platform.SitePaths {
	return n.paths
}

func (n *NginxDriver) configPath(domain string) string {
	return filepath.Join(n.paths.Available, ConfigName(domain))
}

func (n *NginxDriver) linkPath(domain string) string {
	return filepath.Join(n.paths.Enabled, ConfigName(domain))
}

// WriteConfig overwrites <available>/<domain>.conf. Writing the final
// configuration over the bootstrap one is how the bootstrap is retired.
func (n *NginxDriver) WriteConfig(domain, content string) (string, error) {
	if err := os.MkdirAll(n.paths.Available, dirMode); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeFilesystem, "failed to create site directory", err)
	}

	path := n.configPath(domain)
	if err := os.WriteFile(path, []byte(content), configMode); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeFilesystem, "failed to write config file", err)
	}
	logger.Debug("wrote %s (%d bytes)", path, len(content))
	return path, nil
}

// Activate links the configuration into the enabled directory. A link left
// behind by an earlier run is replaced. A regular file in its place is not
// touched. On single-directory layouts (conf.d) there is nothing to do.
func (n *NginxDriver) Activate(domain string) error {
	if !n.paths.Split() {
		return nil
	}

	source := n.configPath(domain)
	target := n.linkPath(domain)

	if _, err := os.Stat(source); os.IsNotExist(err) {
		return apperrors.Wrap(apperrors.ErrCodeFilesystem, fmt.Sprintf("site %s not found in %s", domain, n.paths.Available), err)
	}

	if err := os.MkdirAll(n.paths.Enabled, dirMode); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeFilesystem, "failed to create enabled directory", err)
	}

	info, err := os.Lstat(target)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return apperrors.Wrap(apperrors.ErrCodeFilesystem, "failed to check site status", err)
	case info.Mode()&os.ModeSymlink == 0:
		return apperrors.Wrap(apperrors.ErrCodeFilesystem,
			fmt.Sprintf("%s is not a symlink, refusing to replace it", target), nil)
	default:
		if err := os.Remove(target); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeFilesystem, "failed to remove stale link", err)
		}
		logger.Debug("removed stale link %s", target)
	}

	if err := os.Symlink(source, target); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeFilesystem, "failed to enable site", err)
	}
	return nil
}

// IsEnabled checks if a site is enabled
func (n *NginxDriver) IsEnabled(domain string) (bool, error) {
	path := n.linkPath(domain)
	if !n.paths.Split() {
		path = n.configPath(domain)
	}
	_, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check site status: %w", err)
	}
	return true, nil
}

// List returns the domains with a .conf file in the available directory
func (n *NginxDriver) List() ([]string, error) {
	entries, err := os.ReadDir(n.paths.Available)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", n.paths.Available, err)
	}

	domains := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".conf") {
			continue
		}
		domains = append(domains, strings.TrimSuffix(name, ".conf"))
	}
	sort.Strings(domains)
	return domains, nil
}

// Test validates the nginx config syntax
func (n *NginxDriver) Test() error {
	output, err := n.exec.Execute("nginx", "-t")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeDaemon,
			fmt.Sprintf("nginx config test failed: %s", strings.TrimSpace(string(output))), err)
	}
	return nil
}

// IsActive asks systemd whether the service is running. A non-zero exit
// from is-active means inactive; failing to run systemctl is an error.
func (n *NginxDriver) IsActive() (bool, error) {
	_, err := n.exec.Execute("systemctl", "is-active", "--quiet", n.service)
	if err == nil {
		return true, nil
	}
	if executor.ExitCode(err) > 0 {
		return false, nil
	}
	return false, apperrors.Wrap(apperrors.ErrCodeDaemon, "failed to query service state", err)
}

// Apply starts nginx if it is stopped and reloads it otherwise. It never
// restarts, so open connections survive.
func (n *NginxDriver) Apply() error {
	active, err := n.IsActive()
	if err != nil {
		return err
	}

	action := "reload"
	if !active {
		action = "start"
	}

	logger.Debug("systemctl %s %s", action, n.service)
	output, err := n.exec.Execute("systemctl", action, n.service)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeDaemon,
			fmt.Sprintf("failed to %s %s: %s", action, n.service, strings.TrimSpace(string(output))), err)
	}
	return nil
}
