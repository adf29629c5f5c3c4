// Package provision runs the ordered steps that bring one nginx site from
// nothing to HTTPS:
//
//	preflight    required binaries are present
//	layout       site directories, ownership and modes
//	bootstrap    HTTP-only config written, activated, tested, applied
//	certificate  certbot webroot issuance against the bootstrap config
//	final        TLS config written over the bootstrap file
//	reload       final config tested and applied
//	record       site saved to the state file
//
// If the certificate step fails the bootstrap configuration stays active
// and no final configuration is written.
package provision

import (
	"fmt"
	"time"

	"github.com/ksyq12/vhostprov/internal/config"
	"github.com/ksyq12/vhostprov/internal/driver"
	apperrors "github.com/ksyq12/vhostprov/internal/errors"
	"github.com/ksyq12/vhostprov/internal/executor"
	"github.com/ksyq12/vhostprov/internal/layout"
	"github.com/ksyq12/vhostprov/internal/logger"
	"github.com/ksyq12/vhostprov/internal/ssl"
	"github.com/ksyq12/vhostprov/internal/template"
)

// Step names.
const (
	StepPreflight   = "preflight"
	StepLayout      = "layout"
	StepBootstrap   = "bootstrap"
	StepCertificate = "certificate"
	StepFinal       = "final"
	StepReload      = "reload"
	StepRecord      = "record"
)

// StepNames returns the pipeline steps in execution order.
func StepNames() []string {
	return []string{StepPreflight, StepLayout, StepBootstrap, StepCertificate, StepFinal, StepReload, StepRecord}
}

// requiredBinaries must be on PATH before anything is touched.
var requiredBinaries = []string{"nginx", "systemctl", "certbot"}

// Site carries the per-run values threaded through every step.
type Site struct {
	Domain    string
	Email     string
	PoweredBy string
	Redirect  string
}

// Issuer obtains certificates.
type Issuer interface {
	Issue(req ssl.Request) (*ssl.Cert, error)
}

// Filesystem creates a site's directory tree.
type Filesystem interface {
	Provision(l layout.Layout) error
}

// Options wires a Provisioner. Config, Driver, Issuer, Filesystem and
// Executor are required.
type Options struct {
	Config     *config.Config
	Driver     driver.Driver
	Issuer     Issuer
	Filesystem Filesystem
	Executor   executor.CommandExecutor
	Now        func() time.Time
}

// Provisioner builds and runs the step pipeline for a site.
type Provisioner struct {
	cfg    *config.Config
	driver driver.Driver
	issuer Issuer
	fs     Filesystem
	exec   executor.CommandExecutor
	now    func() time.Time

	onStart StepHook
	onDone  StepHook
}

// New creates a Provisioner.
func New(opts Options) *Provisioner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Provisioner{
		cfg:    opts.Config,
		driver: opts.Driver,
		issuer: opts.Issuer,
		fs:     opts.Filesystem,
		exec:   opts.Executor,
		now:    now,
	}
}

// OnStep registers progress hooks passed to every pipeline.
func (p *Provisioner) OnStep(start, done StepHook) {
	p.onStart = start
	p.onDone = done
}

// Result summarizes a successful run.
type Result struct {
	Domain     string    `json:"domain"`
	Redirect   string    `json:"redirect"`
	DocRoot    string    `json:"document_root"`
	ConfigFile string    `json:"config_file"`
	CertFile   string    `json:"certificate"`
	Steps      []string  `json:"steps"`
	FinishedAt time.Time `json:"finished_at"`
}

// redirect returns the site's strategy, falling back to the configured one.
func (p *Provisioner) redirect(site Site) string {
	if site.Redirect != "" {
		return site.Redirect
	}
	return p.cfg.Redirect
}

// Data builds the template parameters for site.
func (p *Provisioner) Data(site Site, l layout.Layout) template.Data {
	return template.Data{
		Domain:         site.Domain,
		Aliases:        l.Aliases(),
		Root:           l.DocRoot,
		LogDir:         l.LogDir,
		Redirect:       p.redirect(site),
		TrustedProxies: p.cfg.TrustedProxies,
		PoweredBy:      site.PoweredBy,
		PHPSocket:      p.cfg.PHPSocketPath(),
		SSLCert:        l.CertFile,
		SSLKey:         l.KeyFile,
		SSLOptions:     p.cfg.SSLOptions,
		DHParam:        p.cfg.DHParam,
	}
}

// Pipeline returns the full step pipeline for site.
func (p *Provisioner) Pipeline(site Site) (*Pipeline, error) {
	redirect := p.redirect(site)
	if !config.IsValidRedirect(redirect) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid redirect strategy %q", redirect))
	}

	l := layout.Derive(site.Domain, p.cfg)
	data := p.Data(site, l)

	steps := []Step{
		{
			Name:      StepPreflight,
			Operation: "Check required tools",
			Code:      apperrors.ErrCodeConfig,
			Fn:        func() error { return p.preflight(data) },
		},
		{
			Name:      StepLayout,
			Operation: fmt.Sprintf("Prepare %s", l.SiteDir),
			Code:      apperrors.ErrCodeFilesystem,
			Fn:        func() error { return p.fs.Provision(l) },
		},
		{
			Name:      StepBootstrap,
			Operation: "Activate HTTP-only configuration",
			Code:      apperrors.ErrCodeDaemon,
			Fn:        func() error { return p.bootstrap(data) },
		},
		{
			Name:      StepCertificate,
			Operation: "Obtain certificate",
			Code:      apperrors.ErrCodeSSL,
			Fn:        func() error { return p.certificate(site, l) },
		},
		{
			Name:      StepFinal,
			Operation: "Write HTTPS configuration",
			Code:      apperrors.ErrCodeFilesystem,
			Fn:        func() error { return p.final(data) },
		},
		{
			Name:      StepReload,
			Operation: "Apply HTTPS configuration",
			Code:      apperrors.ErrCodeDaemon,
			Fn:        p.reload,
		},
		{
			Name:      StepRecord,
			Operation: "Record site",
			Code:      apperrors.ErrCodeConfig,
			Fn:        func() error { return p.record(site, l) },
		},
	}

	pipe := NewPipeline(site.Domain, steps)
	pipe.OnStep(p.onStart, p.onDone)
	return pipe, nil
}

// Run provisions site end to end.
func (p *Provisioner) Run(site Site) (*Result, error) {
	pipe, err := p.Pipeline(site)
	if err != nil {
		return nil, err
	}
	if err := pipe.Execute(); err != nil {
		return nil, err
	}

	l := layout.Derive(site.Domain, p.cfg)
	names := make([]string, 0, len(pipe.Steps()))
	for _, s := range pipe.Steps() {
		names = append(names, s.Name)
	}
	return &Result{
		Domain:     site.Domain,
		Redirect:   p.redirect(site),
		DocRoot:    l.DocRoot,
		ConfigFile: l.ConfigFile,
		CertFile:   l.CertFile,
		Steps:      names,
		FinishedAt: p.now(),
	}, nil
}

func (p *Provisioner) preflight(data template.Data) error {
	for _, bin := range requiredBinaries {
		if _, err := p.exec.LookPath(bin); err != nil {
			return apperrors.WithHint(
				apperrors.Wrap(apperrors.ErrCodeConfig, fmt.Sprintf("%s not found in PATH", bin), err),
				fmt.Sprintf("install %s before provisioning", bin))
		}
	}
	if data.ForwardedProto() && len(data.TrustedProxies) == 0 {
		logger.WarnFields("trusted_proxies is empty; plain HTTP will always redirect", logger.Fields{
			"domain":   data.Domain,
			"redirect": data.Redirect,
		})
	}
	return nil
}

// apply tests the configuration (when enabled) and starts or reloads nginx.
func (p *Provisioner) apply() error {
	if p.cfg.TestConfig {
		if err := p.driver.Test(); err != nil {
			return err
		}
	}
	return p.driver.Apply()
}

func (p *Provisioner) bootstrap(data template.Data) error {
	content, err := template.RenderBootstrap(data)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to render bootstrap configuration", err)
	}
	if _, err := p.driver.WriteConfig(data.Domain, content); err != nil {
		return err
	}
	if err := p.driver.Activate(data.Domain); err != nil {
		return err
	}
	return p.apply()
}

func (p *Provisioner) certificate(site Site, l layout.Layout) error {
	_, err := p.issuer.Issue(ssl.Request{
		Domain:  site.Domain,
		Aliases: l.Aliases(),
		Email:   site.Email,
		Webroot: l.DocRoot,
	})
	return err
}

func (p *Provisioner) final(data template.Data) error {
	content, err := template.RenderFinal(data)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to render final configuration", err)
	}
	_, err = p.driver.WriteConfig(data.Domain, content)
	return err
}

func (p *Provisioner) reload() error {
	return p.apply()
}

func (p *Provisioner) record(site Site, l layout.Layout) error {
	if p.cfg.Path() == "" {
		logger.Debug("no state file configured, skipping record")
		return nil
	}
	p.cfg.RecordSite(&config.Site{
		Domain:        site.Domain,
		Email:         site.Email,
		Redirect:      p.redirect(site),
		PoweredBy:     site.PoweredBy,
		DocumentRoot:  l.DocRoot,
		ConfigFile:    l.ConfigFile,
		ProvisionedAt: p.now(),
	})
	if err := p.cfg.Save(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeConfig, "failed to record site", err)
	}
	logger.InfoFields("site recorded", logger.Fields{"domain": site.Domain, "state": p.cfg.Path()})
	return nil
}
