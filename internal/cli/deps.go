package cli

import (
	"os"

	"github.com/ksyq12/vhostprov/internal/config"
	"github.com/ksyq12/vhostprov/internal/driver"
	apperrors "github.com/ksyq12/vhostprov/internal/errors"
	"github.com/ksyq12/vhostprov/internal/executor"
	"github.com/ksyq12/vhostprov/internal/input"
	"github.com/ksyq12/vhostprov/internal/layout"
	"github.com/ksyq12/vhostprov/internal/platform"
	"github.com/ksyq12/vhostprov/internal/provision"
	"github.com/ksyq12/vhostprov/internal/ssl"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader     ConfigLoader
	PlatformDetector PlatformDetector
	System           SystemFactory
	RootChecker      RootChecker
	Prompter         PrompterFactory
}

// ConfigLoader handles configuration loading
type ConfigLoader interface {
	Load(path string) (*config.Config, error)
}

// PlatformDetector handles platform path detection
type PlatformDetector interface {
	DetectPaths() (platform.SitePaths, error)
}

// SystemFactory creates the components that touch the host
type SystemFactory interface {
	Executor() executor.CommandExecutor
	Driver(cfg *config.Config) driver.Driver
	Issuer(cfg *config.Config) *ssl.Issuer
	Filesystem(cfg *config.Config) provision.Filesystem
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error
}

// PrompterFactory creates the interactive prompter
type PrompterFactory interface {
	NewPrompter() input.Prompter
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:     &realConfigLoader{},
	PlatformDetector: &realPlatformDetector{},
	System:           &realSystemFactory{exec: executor.NewSystemExecutor()},
	RootChecker:      &realRootChecker{},
	Prompter:         &realPrompterFactory{},
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load(path string) (*config.Config, error) {
	return config.Load(path)
}

type realPlatformDetector struct{}

func (r *realPlatformDetector) DetectPaths() (platform.SitePaths, error) {
	return platform.DetectPaths()
}

type realSystemFactory struct {
	exec executor.CommandExecutor
}

func (r *realSystemFactory) Executor() executor.CommandExecutor {
	return r.exec
}

func (r *realSystemFactory) Driver(cfg *config.Config) driver.Driver {
	return driver.NewNginxWithExecutor(cfg.SitePaths(), cfg.Service, r.exec)
}

func (r *realSystemFactory) Issuer(cfg *config.Config) *ssl.Issuer {
	return ssl.NewIssuerWithExecutor(cfg.CertDir, cfg.CertbotLog, r.exec)
}

func (r *realSystemFactory) Filesystem(cfg *config.Config) provision.Filesystem {
	return layout.NewProvisioner(cfg)
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return errRootRequired
	}
	return nil
}

type realPrompterFactory struct{}

func (r *realPrompterFactory) NewPrompter() input.Prompter {
	return input.NewPrompter(os.Stdin, os.Stderr)
}

// errRootRequired is the sentinel error for root privilege check
var errRootRequired = apperrors.WithHint(apperrors.ErrRootRequired, "run with sudo")
