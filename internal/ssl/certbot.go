package ssl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/ksyq12/vhostprov/internal/errors"
	"github.com/ksyq12/vhostprov/internal/executor"
	"github.com/ksyq12/vhostprov/internal/logger"
)

// Cert represents an SSL certificate
type Cert struct {
	Domain   string
	CertPath string
	KeyPath  string
}

// Default locations used by certbot.
const (
	DefaultCertDir = "/etc/letsencrypt/live"
	DefaultLogPath = "/var/log/letsencrypt/letsencrypt.log"
)

// Request describes one webroot issuance.
type Request struct {
	Domain  string
	Aliases []string
	Email   string
	Webroot string
}

// Issuer obtains certificates by running certbot in webroot mode. The
// challenge files are served by the bootstrap configuration.
type Issuer struct {
	certDir string
	logPath string
	exec    executor.CommandExecutor
}

// NewIssuer creates an Issuer for the given certificate directory and
// certbot log file (used in failure hints)
func NewIssuer(certDir, logPath string) *Issuer {
	return NewIssuerWithExecutor(certDir, logPath, executor.NewSystemExecutor())
}

// NewIssuerWithExecutor creates an Issuer with a custom executor (for testing)
func NewIssuerWithExecutor(certDir, logPath string, exec executor.CommandExecutor) *Issuer {
	if certDir == "" {
		certDir = DefaultCertDir
	}
	if logPath == "" {
		logPath = DefaultLogPath
	}
	return &Issuer{certDir: certDir, logPath: logPath, exec: exec}
}

// IsInstalled checks if certbot is installed
func (i *Issuer) IsInstalled() bool {
	_, err := i.exec.LookPath("certbot")
	return err == nil
}

// CertPaths returns the certificate paths for a domain
func (i *Issuer) CertPaths(domain string) *Cert {
	return &Cert{
		Domain:   domain,
		CertPath: filepath.Join(i.certDir, domain, "fullchain.pem"),
		KeyPath:  filepath.Join(i.certDir, domain, "privkey.pem"),
	}
}

// Exists reports whether both certificate files are present.
func (i *Issuer) Exists(domain string) bool {
	cert := i.CertPaths(domain)
	for _, p := range []string{cert.CertPath, cert.KeyPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// Args returns the certbot arguments for req.
func Args(req Request) []string {
	args := []string{
		"certonly",
		"--webroot",
		"-w", req.Webroot,
		"--non-interactive",
		"--agree-tos",
		"--no-eff-email",
		"--keep-until-expiring",
		"--email", req.Email,
		"-d", req.Domain,
	}
	for _, alias := range req.Aliases {
		args = append(args, "-d", alias)
	}
	return args
}

// Issue obtains (or keeps, when still valid) a certificate for req. On
// failure the returned error points at certbot's log file.
func (i *Issuer) Issue(req Request) (*Cert, error) {
	if req.Domain == "" || req.Email == "" || req.Webroot == "" {
		return nil, apperrors.Validation("domain, email and webroot are required for issuance")
	}
	if !i.IsInstalled() {
		return nil, apperrors.WithHint(
			apperrors.Wrap(apperrors.ErrCodeSSL, "certbot is not installed", nil),
			"Install it with: apt install certbot")
	}

	args := Args(req)
	logger.Debug("running %s", executor.CommandLine("certbot", args...))

	output, err := i.exec.Execute("certbot", args...)
	if err != nil {
		msg := "certbot failed"
		if out := lastLine(output); out != "" {
			msg = fmt.Sprintf("certbot failed: %s", out)
		}
		return nil, apperrors.WithHint(
			apperrors.Wrap(apperrors.ErrCodeSSL, msg, err),
			fmt.Sprintf("see %s for details", i.logPath))
	}

	return i.CertPaths(req.Domain), nil
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
