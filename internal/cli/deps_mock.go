package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ksyq12/vhostprov/internal/config"
	"github.com/ksyq12/vhostprov/internal/driver"
	"github.com/ksyq12/vhostprov/internal/executor"
	"github.com/ksyq12/vhostprov/internal/input"
	"github.com/ksyq12/vhostprov/internal/layout"
	"github.com/ksyq12/vhostprov/internal/platform"
	"github.com/ksyq12/vhostprov/internal/provision"
	"github.com/ksyq12/vhostprov/internal/ssl"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	LoadCalls []string
}

func (m *MockConfigLoader) Load(path string) (*config.Config, error) {
	m.LoadCalls = append(m.LoadCalls, path)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

// MockPlatformDetector is a test double for PlatformDetector
type MockPlatformDetector struct {
	Paths platform.SitePaths
	Err   error
}

func (m *MockPlatformDetector) DetectPaths() (platform.SitePaths, error) {
	if m.Err != nil {
		return platform.SitePaths{}, m.Err
	}
	if m.Paths != (platform.SitePaths{}) {
		return m.Paths, nil
	}
	return platform.DebianPaths, nil
}

// MockSystemFactory is a test double for SystemFactory. Driver falls back
// to a real nginx driver on top of Exec when no MockDriver is set.
type MockSystemFactory struct {
	Exec       *executor.MockExecutor
	MockDriver *driver.MockDriver
}

func (m *MockSystemFactory) Executor() executor.CommandExecutor {
	return m.Exec
}

func (m *MockSystemFactory) Driver(cfg *config.Config) driver.Driver {
	if m.MockDriver != nil {
		return m.MockDriver
	}
	return driver.NewNginxWithExecutor(cfg.SitePaths(), cfg.Service, m.Exec)
}

func (m *MockSystemFactory) Issuer(cfg *config.Config) *ssl.Issuer {
	return ssl.NewIssuerWithExecutor(cfg.CertDir, cfg.CertbotLog, m.Exec)
}

func (m *MockSystemFactory) Filesystem(cfg *config.Config) provision.Filesystem {
	p := layout.NewProvisioner(cfg)
	p.Lookup = func(string, string) (layout.Identity, error) {
		return layout.Identity{UID: os.Getuid(), GID: os.Getgid()}, nil
	}
	return p
}

// MockRootChecker is a test double for RootChecker
type MockRootChecker struct {
	IsRoot bool
	Calls  int
}

func (m *MockRootChecker) RequireRoot() error {
	m.Calls++
	if !m.IsRoot {
		return errRootRequired
	}
	return nil
}

// MockPrompter answers prompts from a fixed list
type MockPrompter struct {
	Answers []string
	Labels  []string
	Err     error
}

func (m *MockPrompter) Prompt(label string) (string, error) {
	m.Labels = append(m.Labels, label)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Answers) == 0 {
		return "", errors.New("EOF")
	}
	answer := m.Answers[0]
	m.Answers = m.Answers[1:]
	return answer, nil
}

// MockPrompterFactory hands out a single MockPrompter
type MockPrompterFactory struct {
	Prompter *MockPrompter
}

func (m *MockPrompterFactory) NewPrompter() input.Prompter {
	return m.Prompter
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:     &MockConfigLoader{Cfg: config.New()},
			PlatformDetector: &MockPlatformDetector{},
			System:           &MockSystemFactory{Exec: &executor.MockExecutor{}},
			RootChecker:      &MockRootChecker{IsRoot: true},
			Prompter:         &MockPrompterFactory{Prompter: &MockPrompter{Answers: []string{"ops@example.com", ""}}},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithSystem sets the system factory
func (b *MockDependenciesBuilder) WithSystem(system SystemFactory) *MockDependenciesBuilder {
	b.deps.System = system
	return b
}

// WithRootAccess sets whether root access is available
func (b *MockDependenciesBuilder) WithRootAccess(isRoot bool) *MockDependenciesBuilder {
	b.deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
	return b
}

// WithAnswers sets the prompt answers, in order
func (b *MockDependenciesBuilder) WithAnswers(answers ...string) *MockDependenciesBuilder {
	b.deps.Prompter = &MockPrompterFactory{Prompter: &MockPrompter{Answers: answers}}
	return b
}

// WithPlatformPaths sets custom platform paths
func (b *MockDependenciesBuilder) WithPlatformPaths(paths platform.SitePaths) *MockDependenciesBuilder {
	b.deps.PlatformDetector = &MockPlatformDetector{Paths: paths}
	return b
}

// WithPlatformError sets an error for platform detection
func (b *MockDependenciesBuilder) WithPlatformError(err error) *MockDependenciesBuilder {
	b.deps.PlatformDetector = &MockPlatformDetector{Err: err}
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// TestHelper provides utilities for CLI tests
type TestHelper struct {
	T interface {
		Helper()
		Cleanup(func())
	}
	Root       string
	OldDeps    *Dependencies
	Config     *config.Config
	Exec       *executor.MockExecutor
	Prompter   *MockPrompter
	RootAccess *MockRootChecker
}

// NewTestHelper installs mock dependencies rooted at a temp directory. The
// config points every path below root, and flags are reset on cleanup.
func NewTestHelper(t interface {
	Helper()
	Cleanup(func())
}, root string) *TestHelper {
	t.Helper()

	cfg := config.New()
	cfg.WWWRoot = filepath.Join(root, "www")
	cfg.SitesAvailable = filepath.Join(root, "nginx", "sites-available")
	cfg.SitesEnabled = filepath.Join(root, "nginx", "sites-enabled")
	cfg.CertDir = filepath.Join(root, "letsencrypt", "live")
	cfg.SetPath(filepath.Join(root, "config.yaml"))

	helper := &TestHelper{
		T:          t,
		Root:       root,
		OldDeps:    deps,
		Config:     cfg,
		Exec:       &executor.MockExecutor{},
		Prompter:   &MockPrompter{Answers: []string{"ops@example.com", ""}},
		RootAccess: &MockRootChecker{IsRoot: true},
	}

	deps = &Dependencies{
		ConfigLoader:     &MockConfigLoader{Cfg: cfg},
		PlatformDetector: &MockPlatformDetector{},
		System:           &MockSystemFactory{Exec: helper.Exec},
		RootChecker:      helper.RootAccess,
		Prompter:         &MockPrompterFactory{Prompter: helper.Prompter},
	}

	// Cleanup function to restore original deps and flags
	t.Cleanup(func() {
		deps = helper.OldDeps
		resetFlags()
	})

	return helper
}

// SetAnswers replaces the prompt answers
func (h *TestHelper) SetAnswers(answers ...string) {
	h.Prompter.Answers = answers
}

// SetRootAccess sets whether root access is available
func (h *TestHelper) SetRootAccess(isRoot bool) {
	h.RootAccess.IsRoot = isRoot
}
