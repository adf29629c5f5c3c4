package driver

import (
	"path/filepath"

	"github.com/ksyq12/vhostprov/internal/platform"
)

// MockDriver is a test double for Driver interface
type MockDriver struct {
	name  string
	paths platform.SitePaths

	// Function mocks - set these to customize behavior
	WriteConfigFunc func(domain, content string) (string, error)
	ActivateFunc    func(domain string) error
	IsEnabledFunc   func(domain string) (bool, error)
	ListFunc        func() ([]string, error)
	TestFunc        func() error
	IsActiveFunc    func() (bool, error)
	ApplyFunc       func() error

	// Call tracking - check these to verify interactions
	WriteCalls     []WriteCall
	ActivateCalls  []string
	IsEnabledCalls []string
	ListCalls      int
	TestCalls      int
	IsActiveCalls  int
	ApplyCalls     int

	// Events records every call in order, e.g. "write", "activate", "test"
	Events []string
}

// WriteCall records arguments passed to WriteConfig
type WriteCall struct {
	Domain  string
	Content string
}

// NewMockDriver creates a new MockDriver with default no-op implementations
func NewMockDriver(name, availableDir, enabledDir string) *MockDriver {
	return &MockDriver{
		name:  name,
		paths: platform.SitePaths{Available: availableDir, Enabled: enabledDir},
	}
}

// Name returns the driver name
func (m *MockDriver) Name() string {
	return m.name
}

// Paths returns the configured paths
func (m *MockDriver) Paths() platform.SitePaths {
	return m.paths
}

// WriteConfig records the call and invokes the mock function if set
func (m *MockDriver) WriteConfig(domain, content string) (string, error) {
	m.WriteCalls = append(m.WriteCalls, WriteCall{Domain: domain, Content: content})
	m.Events = append(m.Events, "write")
	if m.WriteConfigFunc != nil {
		return m.WriteConfigFunc(domain, content)
	}
	return filepath.Join(m.paths.Available, ConfigName(domain)), nil
}

// Activate records the call and invokes the mock function if set
func (m *MockDriver) Activate(domain string) error {
	m.ActivateCalls = append(m.ActivateCalls, domain)
	m.Events = append(m.Events, "activate")
	if m.ActivateFunc != nil {
		return m.ActivateFunc(domain)
	}
	return nil
}

// IsEnabled records the call and invokes the mock function if set
func (m *MockDriver) IsEnabled(domain string) (bool, error) {
	m.IsEnabledCalls = append(m.IsEnabledCalls, domain)
	if m.IsEnabledFunc != nil {
		return m.IsEnabledFunc(domain)
	}
	return false, nil
}

// List records the call and invokes the mock function if set
func (m *MockDriver) List() ([]string, error) {
	m.ListCalls++
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return []string{}, nil
}

// Test records the call and invokes the mock function if set
func (m *MockDriver) Test() error {
	m.TestCalls++
	m.Events = append(m.Events, "test")
	if m.TestFunc != nil {
		return m.TestFunc()
	}
	return nil
}

// IsActive records the call and invokes the mock function if set
func (m *MockDriver) IsActive() (bool, error) {
	m.IsActiveCalls++
	if m.IsActiveFunc != nil {
		return m.IsActiveFunc()
	}
	return true, nil
}

// Apply records the call and invokes the mock function if set
func (m *MockDriver) Apply() error {
	m.ApplyCalls++
	m.Events = append(m.Events, "apply")
	if m.ApplyFunc != nil {
		return m.ApplyFunc()
	}
	return nil
}

// LastContent returns the most recently written configuration
func (m *MockDriver) LastContent() string {
	if len(m.WriteCalls) == 0 {
		return ""
	}
	return m.WriteCalls[len(m.WriteCalls)-1].Content
}

// Reset clears all call tracking
func (m *MockDriver) Reset() {
	m.WriteCalls = nil
	m.ActivateCalls = nil
	m.IsEnabledCalls = nil
	m.Events = nil
	m.ListCalls = 0
	m.TestCalls = 0
	m.IsActiveCalls = 0
	m.ApplyCalls = 0
}
