package cli

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/vhostprov/internal/config"
	"github.com/ksyq12/vhostprov/internal/driver"
	"github.com/ksyq12/vhostprov/internal/executor"
	"github.com/ksyq12/vhostprov/internal/layout"
	"github.com/ksyq12/vhostprov/internal/output"
	"github.com/ksyq12/vhostprov/internal/ssl"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the host is ready for provisioning",
	Long: `Run diagnostic checks on the system and on provisioned sites.

Checks:
  - nginx, systemctl and certbot installation
  - PHP-FPM socket
  - nginx site directories and certbot's shared TLS files
  - nginx configuration syntax
  - Recorded sites: config, activation, certificate, document root

Examples:
  vhostprov doctor
  vhostprov doctor --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// Check statuses.
const (
	statusSuccess = "success"
	statusWarning = "warning"
	statusError   = "error"
)

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// SiteStatus represents the status of a single recorded site
type SiteStatus struct {
	Domain  string        `json:"domain"`
	Enabled bool          `json:"enabled"`
	Checks  []CheckResult `json:"checks"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	SystemRequirements []CheckResult `json:"system_requirements"`
	Configuration      []CheckResult `json:"configuration"`
	Sites              []SiteStatus  `json:"sites"`
}

// HasErrors reports whether any check failed.
func (r *DoctorReport) HasErrors() bool {
	all := append(append([]CheckResult{}, r.SystemRequirements...), r.Configuration...)
	for _, s := range r.Sites {
		all = append(all, s.Checks...)
	}
	for _, c := range all {
		if c.Status == statusError {
			return true
		}
	}
	return false
}

var nginxVersionPattern = regexp.MustCompile(`nginx/(\d+\.\d+\.\d+)`)

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	exec := deps.System.Executor()
	drv := deps.System.Driver(cfg)

	report := &DoctorReport{
		SystemRequirements: checkSystemRequirements(exec, cfg),
		Configuration:      checkConfiguration(drv, cfg),
		Sites:              checkSites(drv, deps.System.Issuer(cfg), cfg),
	}

	if jsonOutput {
		return output.JSON(report)
	}

	displayDoctorResults(report)
	return nil
}

func checkSystemRequirements(exec executor.CommandExecutor, cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	if _, err := exec.LookPath("nginx"); err == nil {
		version := "unknown"
		// nginx -v prints to stderr, which Execute folds into the output.
		if out, err := exec.Execute("nginx", "-v"); err == nil {
			if m := nginxVersionPattern.FindStringSubmatch(string(out)); len(m) >= 2 {
				version = m[1]
			}
		}
		results = append(results, CheckResult{Status: statusSuccess, Message: fmt.Sprintf("nginx installed (%s)", version)})
	} else {
		results = append(results, CheckResult{Status: statusError, Message: "nginx not installed"})
	}

	for _, bin := range []string{"systemctl", "certbot"} {
		if _, err := exec.LookPath(bin); err == nil {
			results = append(results, CheckResult{Status: statusSuccess, Message: fmt.Sprintf("%s installed", bin)})
		} else {
			results = append(results, CheckResult{Status: statusError, Message: fmt.Sprintf("%s not installed", bin)})
		}
	}

	socket := cfg.PHPSocketPath()
	if _, err := os.Stat(socket); err == nil {
		results = append(results, CheckResult{Status: statusSuccess, Message: fmt.Sprintf("PHP-FPM socket present (%s)", socket)})
	} else {
		results = append(results, CheckResult{Status: statusWarning, Message: fmt.Sprintf("PHP-FPM socket not found (%s)", socket)})
	}

	return results
}

func checkConfiguration(drv driver.Driver, cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	if path := cfg.Path(); path != "" {
		displayPath := strings.Replace(path, os.Getenv("HOME"), "~", 1)
		if _, err := os.Stat(path); err == nil {
			results = append(results, CheckResult{Status: statusSuccess, Message: fmt.Sprintf("Config file exists (%s)", displayPath)})
		} else {
			results = append(results, CheckResult{Status: statusWarning, Message: fmt.Sprintf("Config file not found, using defaults (%s)", displayPath)})
		}
	}

	paths := drv.Paths()
	dirs := []string{paths.Available}
	if paths.Split() {
		dirs = append(dirs, paths.Enabled)
	}
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			results = append(results, CheckResult{Status: statusSuccess, Message: fmt.Sprintf("Site directory exists (%s)", dir)})
		} else {
			results = append(results, CheckResult{Status: statusError, Message: fmt.Sprintf("Site directory missing (%s)", dir)})
		}
	}

	// certbot creates these on first use; the final form includes them.
	for _, f := range []string{cfg.SSLOptions, cfg.DHParam} {
		if _, err := os.Stat(f); err == nil {
			results = append(results, CheckResult{Status: statusSuccess, Message: fmt.Sprintf("TLS file present (%s)", f)})
		} else {
			results = append(results, CheckResult{Status: statusWarning, Message: fmt.Sprintf("TLS file missing (%s)", f)})
		}
	}

	if cfg.Redirect == config.RedirectForwardedProto && len(cfg.TrustedProxies) == 0 {
		results = append(results, CheckResult{
			Status:  statusWarning,
			Message: "redirect is forwarded-proto but trusted_proxies is empty",
		})
	}

	if err := drv.Test(); err == nil {
		results = append(results, CheckResult{Status: statusSuccess, Message: fmt.Sprintf("%s config syntax OK", drv.Name())})
	} else {
		results = append(results, CheckResult{Status: statusError, Message: fmt.Sprintf("%s config syntax error", drv.Name())})
	}

	return results
}

func checkSites(drv driver.Driver, issuer *ssl.Issuer, cfg *config.Config) []SiteStatus {
	statuses := []SiteStatus{}

	for _, site := range cfg.ListSites() {
		status := SiteStatus{Domain: site.Domain, Checks: []CheckResult{}}
		if enabled, err := drv.IsEnabled(site.Domain); err == nil {
			status.Enabled = enabled
		}

		l := layout.Derive(site.Domain, cfg)
		allOK := true
		fail := func(s, msg string) {
			status.Checks = append(status.Checks, CheckResult{Status: s, Message: msg})
			allOK = false
		}

		if _, err := os.Stat(l.ConfigFile); os.IsNotExist(err) {
			fail(statusError, "config file missing")
		}
		if !status.Enabled {
			fail(statusWarning, "not enabled")
		}
		if !issuer.Exists(site.Domain) {
			fail(statusError, "certificate missing")
		}
		if _, err := os.Stat(l.DocRoot); os.IsNotExist(err) {
			fail(statusWarning, "document root missing")
		}

		if allOK {
			status.Checks = append(status.Checks, CheckResult{Status: statusSuccess, Message: "enabled, certificate present"})
		}
		statuses = append(statuses, status)
	}

	return statuses
}

func displayDoctorResults(report *DoctorReport) {
	output.Print("Checking system requirements...")
	for _, check := range report.SystemRequirements {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking configuration...")
	for _, check := range report.Configuration {
		displayCheck(check)
	}
	output.Print("")

	if len(report.Sites) == 0 {
		output.Print("No sites provisioned")
		return
	}
	output.Print("Checking sites...")
	for _, site := range report.Sites {
		for _, check := range site.Checks {
			displayCheck(CheckResult{Status: check.Status, Message: fmt.Sprintf("%s - %s", site.Domain, check.Message)})
		}
	}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case statusSuccess:
		output.Success("%s", check.Message)
	case statusWarning:
		output.Warn("%s", check.Message)
	case statusError:
		output.Error("%s", check.Message)
	}
}
