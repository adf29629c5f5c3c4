package provision

import (
	"fmt"
	"strings"

	"github.com/ksyq12/vhostprov/internal/layout"
	"github.com/ksyq12/vhostprov/internal/ssl"
	"github.com/ksyq12/vhostprov/internal/template"
)

// DryRunOperation is one system change a run would make.
type DryRunOperation struct {
	Step    string `json:"step"`
	Action  string `json:"action"`
	Target  string `json:"target"`
	Details string `json:"details,omitempty"`
}

// DryRunResult lists the planned operations and both rendered configs.
type DryRunResult struct {
	Domain     string            `json:"domain"`
	Redirect   string            `json:"redirect"`
	Operations []DryRunOperation `json:"operations"`
	Bootstrap  string            `json:"bootstrap_config"`
	Final      string            `json:"final_config"`
}

// Plan renders both configurations and lists what Run would do, without
// touching the system.
func (p *Provisioner) Plan(site Site) (*DryRunResult, error) {
	if _, err := p.Pipeline(site); err != nil {
		return nil, err
	}

	l := layout.Derive(site.Domain, p.cfg)
	data := p.Data(site, l)

	bootstrap, err := template.RenderBootstrap(data)
	if err != nil {
		return nil, err
	}
	final, err := template.RenderFinal(data)
	if err != nil {
		return nil, err
	}

	owner := fmt.Sprintf("%s:%s", p.cfg.WebUser, p.cfg.WebGroup)
	var ops []DryRunOperation
	add := func(step, action, target, details string) {
		ops = append(ops, DryRunOperation{Step: step, Action: action, Target: target, Details: details})
	}

	add(StepPreflight, "check_binaries", strings.Join(requiredBinaries, ", "), "Must be found in PATH")
	for _, dir := range l.Dirs() {
		add(StepLayout, "create_directory", dir, "")
	}
	add(StepLayout, "set_owner", l.SiteDir, fmt.Sprintf("Recursive %s, mode 0750", owner))
	if p.cfg.WriteIndex {
		add(StepLayout, "create_file", l.IndexFile(), "Only if absent, mode 0644")
	}

	add(StepBootstrap, "write_file", l.ConfigFile, "HTTP-only configuration")
	if p.driver.Paths().Split() {
		add(StepBootstrap, "create_symlink", l.EnabledLink, "Replaces an existing link")
	}
	p.addApply(StepBootstrap, add)

	add(StepCertificate, "run", "certbot "+strings.Join(ssl.Args(ssl.Request{
		Domain:  site.Domain,
		Aliases: l.Aliases(),
		Email:   site.Email,
		Webroot: l.DocRoot,
	}), " "), "")
	add(StepFinal, "write_file", l.ConfigFile, "HTTPS configuration, replaces bootstrap")
	p.addApply(StepReload, add)

	if p.cfg.Path() != "" {
		add(StepRecord, "update_file", p.cfg.Path(), "Record site")
	}

	return &DryRunResult{
		Domain:     site.Domain,
		Redirect:   data.Redirect,
		Operations: ops,
		Bootstrap:  bootstrap,
		Final:      final,
	}, nil
}

func (p *Provisioner) addApply(step string, add func(step, action, target, details string)) {
	service := p.cfg.Service
	if p.cfg.TestConfig {
		add(step, "test_config", "nginx -t", "Validate configuration syntax")
	}
	add(step, "apply", "systemctl "+service, "start when inactive, reload otherwise")
}
