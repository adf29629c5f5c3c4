package provision

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ksyq12/vhostprov/internal/config"
	"github.com/ksyq12/vhostprov/internal/driver"
	apperrors "github.com/ksyq12/vhostprov/internal/errors"
	"github.com/ksyq12/vhostprov/internal/executor"
	"github.com/ksyq12/vhostprov/internal/layout"
	"github.com/ksyq12/vhostprov/internal/logger"
	"github.com/ksyq12/vhostprov/internal/platform"
	"github.com/ksyq12/vhostprov/internal/ssl"
)

// mockIssuer records issuance requests.
type mockIssuer struct {
	err      error
	requests []ssl.Request
}

func (m *mockIssuer) Issue(req ssl.Request) (*ssl.Cert, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &ssl.Cert{Domain: req.Domain}, nil
}

type env struct {
	cfg    *config.Config
	exec   *executor.MockExecutor
	issuer *mockIssuer
	drv    *driver.NginxDriver
	prov   *Provisioner
}

func newEnv(t *testing.T) *env {
	t.Helper()
	root := t.TempDir()

	cfg := config.New()
	cfg.WWWRoot = filepath.Join(root, "www")
	cfg.ApplyPlatform(platform.SitePaths{
		Available: filepath.Join(root, "nginx", "sites-available"),
		Enabled:   filepath.Join(root, "nginx", "sites-enabled"),
	})
	cfg.CertDir = filepath.Join(root, "letsencrypt", "live")
	cfg.SetPath(filepath.Join(root, "state", "config.yaml"))

	fs := layout.NewProvisioner(cfg)
	fs.Lookup = func(string, string) (layout.Identity, error) {
		return layout.Identity{UID: os.Getuid(), GID: os.Getgid()}, nil
	}

	e := &env{
		cfg:    cfg,
		exec:   &executor.MockExecutor{},
		issuer: &mockIssuer{},
	}
	e.drv = driver.NewNginxWithExecutor(cfg.SitePaths(), cfg.Service, e.exec)
	e.prov = New(Options{
		Config:     cfg,
		Driver:     e.drv,
		Issuer:     e.issuer,
		Filesystem: fs,
		Executor:   e.exec,
		Now:        func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	return e
}

func site() Site {
	return Site{Domain: "example.com", Email: "ops@example.com"}
}

func (e *env) configContent(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.cfg.SitesEnabled, "example.com.conf"))
	if err != nil {
		t.Fatalf("failed to read enabled config: %v", err)
	}
	return string(data)
}

func TestRun(t *testing.T) {
	e := newEnv(t)

	result, err := e.prov.Run(site())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.DocRoot != filepath.Join(e.cfg.WWWRoot, "example.com", "wwwroot") {
		t.Errorf("unexpected document root %s", result.DocRoot)
	}
	if strings.Join(result.Steps, ",") != "preflight,layout,bootstrap,certificate,final,reload,record" {
		t.Errorf("unexpected steps %v", result.Steps)
	}

	content := e.configContent(t)
	if !strings.Contains(content, "server_name example.com www.example.com;") {
		t.Error("expected server_name with www alias")
	}
	if !strings.Contains(content, "root "+result.DocRoot+";") {
		t.Error("expected document root in config")
	}
	if strings.Contains(content, "X-Powered-By") {
		t.Error("empty header should not appear")
	}
	if !strings.Contains(content, "listen 443 ssl") {
		t.Error("enabled config should be the final form")
	}

	lines := e.exec.CommandLines()
	expected := []string{
		"nginx -t",
		"systemctl is-active --quiet nginx",
		"systemctl reload nginx",
		"nginx -t",
		"systemctl is-active --quiet nginx",
		"systemctl reload nginx",
	}
	if strings.Join(lines, "|") != strings.Join(expected, "|") {
		t.Errorf("unexpected commands:\n%s", strings.Join(lines, "\n"))
	}

	if len(e.issuer.requests) != 1 {
		t.Fatalf("expected one issuance, got %d", len(e.issuer.requests))
	}
	req := e.issuer.requests[0]
	if req.Webroot != result.DocRoot || req.Email != "ops@example.com" || req.Aliases[0] != "www.example.com" {
		t.Errorf("unexpected issuance request %+v", req)
	}

	loaded, err := config.LoadWithEnv(e.cfg.Path(), map[string]string{})
	if err != nil {
		t.Fatalf("failed to load state: %v", err)
	}
	recorded, err := loaded.GetSite("example.com")
	if err != nil {
		t.Fatalf("site not recorded: %v", err)
	}
	if recorded.Redirect != config.RedirectForceHTTPS || recorded.Email != "ops@example.com" {
		t.Errorf("unexpected record %+v", recorded)
	}
}

func TestRunWithHeader(t *testing.T) {
	e := newEnv(t)
	s := site()
	s.PoweredBy = "Acme"

	if _, err := e.prov.Run(s); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := strings.Count(e.configContent(t), "add_header"); n != 1 {
		t.Errorf("expected one add_header, got %d", n)
	}
}

func TestRunStartsInactiveService(t *testing.T) {
	e := newEnv(t)
	started := false
	e.exec.ExecuteFunc = func(name string, args ...string) ([]byte, error) {
		if len(args) > 0 && args[0] == "is-active" && !started {
			return nil, &executor.ExitError{Command: "systemctl is-active", Code: 3}
		}
		if len(args) > 0 && args[0] == "start" {
			started = true
		}
		return nil, nil
	}

	if _, err := e.prov.Run(site()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	lines := strings.Join(e.exec.CommandLines(), "|")
	if !strings.Contains(lines, "systemctl start nginx") || !strings.Contains(lines, "systemctl reload nginx") {
		t.Errorf("expected start then reload, got %s", lines)
	}
	if strings.Contains(lines, "restart") {
		t.Error("nginx must never be restarted")
	}
}

func TestRunCertificateFailure(t *testing.T) {
	e := newEnv(t)
	e.issuer.err = apperrors.WithHint(
		apperrors.Wrap(apperrors.ErrCodeSSL, "certbot failed", errors.New("exit status 1")),
		"see /var/log/letsencrypt/letsencrypt.log for details")

	_, err := e.prov.Run(site())
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.Is(err, apperrors.ErrIssuanceFailed) {
		t.Errorf("expected issuance error, got %v", err)
	}

	var pe *apperrors.ProvisionError
	if !apperrors.As(err, &pe) {
		t.Fatalf("expected ProvisionError, got %T", err)
	}
	if pe.Step != StepCertificate || pe.Domain != "example.com" {
		t.Errorf("unexpected step context %+v", pe)
	}
	if !strings.Contains(pe.Hint, "letsencrypt.log") {
		t.Errorf("hint should name the log: %q", pe.Hint)
	}

	content := e.configContent(t)
	if !strings.Contains(content, "bootstrap configuration") {
		t.Error("bootstrap configuration should stay active")
	}
	if strings.Contains(content, "ssl_certificate") {
		t.Error("no final configuration should be written")
	}

	// Only the bootstrap test and apply ran.
	if n := len(e.exec.Calls); n != 3 {
		t.Errorf("expected 3 commands, got %v", e.exec.CommandLines())
	}
	if _, err := os.Stat(e.cfg.Path()); !os.IsNotExist(err) {
		t.Error("failed run should not be recorded")
	}
}

func TestRunIdempotent(t *testing.T) {
	e := newEnv(t)

	if _, err := e.prov.Run(site()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	s := site()
	s.PoweredBy = "Acme"
	if _, err := e.prov.Run(s); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	entries, err := os.ReadDir(e.cfg.SitesEnabled)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected a single enabled entry, got %d", len(entries))
	}

	content := e.configContent(t)
	if strings.Contains(content, "bootstrap") {
		t.Error("final configuration should fully replace bootstrap content")
	}
	if strings.Count(content, "add_header") != 1 {
		t.Error("expected the second run's header")
	}

	siteEntries, _ := os.ReadDir(filepath.Join(e.cfg.WWWRoot, "example.com"))
	if len(siteEntries) != 2 {
		t.Errorf("expected wwwroot and logs, got %d entries", len(siteEntries))
	}

	loaded, _ := config.LoadWithEnv(e.cfg.Path(), map[string]string{})
	if len(loaded.ListSites()) != 1 {
		t.Errorf("expected one recorded site, got %d", len(loaded.ListSites()))
	}
}

func TestRunPreflightFailure(t *testing.T) {
	e := newEnv(t)
	e.exec.LookPathFunc = func(file string) (string, error) {
		if file == "certbot" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + file, nil
	}

	_, err := e.prov.Run(site())
	if err == nil || !strings.Contains(err.Error(), "certbot not found") {
		t.Fatalf("expected preflight error, got %v", err)
	}
	if _, statErr := os.Stat(e.cfg.WWWRoot); !os.IsNotExist(statErr) {
		t.Error("nothing should be created when preflight fails")
	}
	if len(e.exec.Calls) != 0 {
		t.Error("no commands should run")
	}
}

func TestRunWarnsWithoutTrustedProxies(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(nil)

	e := newEnv(t)
	s := site()
	s.Redirect = config.RedirectForwardedProto
	if _, err := e.prov.Run(s); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "trusted_proxies is empty") {
		t.Errorf("expected trusted_proxies warning, got %q", out)
	}
	if !strings.Contains(out, "redirect=forwarded-proto") {
		t.Errorf("expected redirect field, got %q", out)
	}
}

func TestRunBootstrapTestFailure(t *testing.T) {
	e := newEnv(t)
	e.exec.ExecuteFunc = func(name string, args ...string) ([]byte, error) {
		if name == "nginx" {
			return []byte("nginx: [emerg] unknown directive"), &executor.ExitError{Code: 1}
		}
		return nil, nil
	}

	_, err := e.prov.Run(site())
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *apperrors.ProvisionError
	if !apperrors.As(err, &pe) || pe.Step != StepBootstrap || pe.Code != apperrors.ErrCodeDaemon {
		t.Errorf("expected daemon error in bootstrap, got %v", err)
	}
	if len(e.issuer.requests) != 0 {
		t.Error("certificate step should not run")
	}
}

func TestRunSkipsConfigTest(t *testing.T) {
	e := newEnv(t)
	e.cfg.TestConfig = false

	if _, err := e.prov.Run(site()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, line := range e.exec.CommandLines() {
		if line == "nginx -t" {
			t.Error("nginx -t should be skipped")
		}
	}
}

func TestRunInvalidRedirect(t *testing.T) {
	e := newEnv(t)
	s := site()
	s.Redirect = "sometimes"
	if _, err := e.prov.Run(s); err == nil {
		t.Error("expected validation error")
	}
}

func TestRunWithMockDriver(t *testing.T) {
	e := newEnv(t)
	mock := driver.NewMockDriver("nginx", e.cfg.SitesAvailable, e.cfg.SitesEnabled)
	e.prov.driver = mock

	if _, err := e.prov.Run(site()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := "write,activate,test,apply,write,test,apply"
	if got := strings.Join(mock.Events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
	if !strings.Contains(mock.WriteCalls[0].Content, "bootstrap") {
		t.Error("first write should be the bootstrap form")
	}
	if !strings.Contains(mock.LastContent(), "ssl_certificate") {
		t.Error("last write should be the final form")
	}
}
