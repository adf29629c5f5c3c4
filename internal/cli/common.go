package cli

import (
	"fmt"

	"github.com/ksyq12/vhostprov/internal/config"
	apperrors "github.com/ksyq12/vhostprov/internal/errors"
	"github.com/ksyq12/vhostprov/internal/logger"
	"github.com/ksyq12/vhostprov/internal/output"
	"github.com/ksyq12/vhostprov/internal/provision"
)

// loadConfig loads the config file and fills site directories from
// platform detection when the file does not set them
func loadConfig() (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load(configPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfig, "failed to load config", err)
	}

	if cfg.LogLevel != "" && !verbose {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeConfig, "invalid log_level", err)
		}
		logger.SetLevel(level)
	}

	if cfg.SitesAvailable == "" || cfg.SitesEnabled == "" {
		paths, err := deps.PlatformDetector.DetectPaths()
		if err != nil {
			return nil, apperrors.WithHint(
				apperrors.Wrap(apperrors.ErrCodeConfig, "could not detect nginx site directories", err),
				"set sites_available and sites_enabled in the config file")
		}
		cfg.ApplyPlatform(paths)
	}

	logger.DebugFields("config loaded", logger.Fields{
		"path":            cfg.Path(),
		"sites_available": cfg.SitesAvailable,
		"sites_enabled":   cfg.SitesEnabled,
		"redirect":        cfg.Redirect,
	})
	return cfg, nil
}

// newProvisioner wires a provisioner from the system factory
func newProvisioner(cfg *config.Config) *provision.Provisioner {
	return provision.New(provision.Options{
		Config:     cfg,
		Driver:     deps.System.Driver(cfg),
		Issuer:     deps.System.Issuer(cfg),
		Filesystem: deps.System.Filesystem(cfg),
		Executor:   deps.System.Executor(),
	})
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// outputDryRun prints the planned operations and both config previews
func outputDryRun(plan *provision.DryRunResult) error {
	if jsonOutput {
		return output.JSON(plan)
	}

	output.Info("Dry run for %s (redirect: %s), nothing will be changed", plan.Domain, plan.Redirect)
	output.Print("")

	rows := make([][]string, 0, len(plan.Operations))
	for _, op := range plan.Operations {
		rows = append(rows, []string{op.Step, op.Action, op.Target, op.Details})
	}
	output.Table([]string{"STEP", "ACTION", "TARGET", "DETAILS"}, rows)
	output.Print("")

	output.Preview("bootstrap configuration", plan.Bootstrap)
	output.Print("")
	output.Preview("final configuration", plan.Final)
	return nil
}

// ErrorResult is the JSON form of a failed command
type ErrorResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Domain  string `json:"domain,omitempty"`
	Step    string `json:"step,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// newErrorResult extracts the structured parts of err
func newErrorResult(err error) ErrorResult {
	res := ErrorResult{Error: err.Error(), Code: string(apperrors.CodeOf(err))}
	var pe *apperrors.ProvisionError
	if apperrors.As(err, &pe) {
		res.Domain = pe.Domain
		res.Step = pe.Step
		res.Hint = apperrors.HintOf(err)
	}
	return res
}

// outputError reports a failed command on stdout
func outputError(err error) {
	if err == nil {
		return
	}
	if jsonOutput {
		_ = output.JSON(newErrorResult(err))
		return
	}
	output.Error("%v", err)
}

// yesNo formats a boolean for tables
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// stepLabel formats a step for progress output
func stepLabel(step provision.Step) string {
	return fmt.Sprintf("%s (%s)", step.Operation, step.Name)
}
