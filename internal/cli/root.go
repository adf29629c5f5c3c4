package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/vhostprov/internal/config"
	apperrors "github.com/ksyq12/vhostprov/internal/errors"
	"github.com/ksyq12/vhostprov/internal/input"
	"github.com/ksyq12/vhostprov/internal/logger"
	"github.com/ksyq12/vhostprov/internal/output"
	"github.com/ksyq12/vhostprov/internal/provision"
)

var (
	jsonOutput   bool
	verbose      bool
	configPath   string
	redirectFlag string
	dryRun       bool
	version      = "dev"
)

// rootCmd provisions a site
var rootCmd = &cobra.Command{
	Use:   "vhostprov <domain>",
	Short: "Provision an nginx virtual host with a Let's Encrypt certificate",
	Long: `vhostprov provisions a single nginx virtual host for a domain.

It creates the site directories, activates an HTTP-only configuration,
obtains a certificate with certbot (webroot mode) and replaces the
configuration with the HTTPS one. The notification email and the optional
X-Powered-By header value are asked for interactively.

Examples:
  sudo vhostprov example.com
  sudo vhostprov example.com --redirect forwarded-proto
  vhostprov example.com --dry-run`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE:          runProvision,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		outputError(err)
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.config/vhostprov/config.yaml)")

	rootCmd.Flags().StringVarP(&redirectFlag, "redirect", "r", "", "Redirect strategy: none, force-https, forwarded-proto (default from config)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")
}

// resetFlags restores flag defaults between test runs
func resetFlags() {
	jsonOutput = false
	verbose = false
	configPath = ""
	redirectFlag = ""
	dryRun = false
	renderForm = "final"
	renderPoweredBy = ""
}

func runProvision(cmd *cobra.Command, args []string) error {
	if cmd != nil {
		cmd.SilenceUsage = true
	}

	domain, err := input.NormalizeDomain(args[0])
	if err != nil {
		return err
	}
	if redirectFlag != "" && !config.IsValidRedirect(redirectFlag) {
		return apperrors.Validation("invalid redirect strategy " + redirectFlag)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !dryRun {
		if err := deps.RootChecker.RequireRoot(); err != nil {
			return err
		}
	}

	answers, err := input.Collect(deps.Prompter.NewPrompter())
	if err != nil {
		return err
	}

	site := provision.Site{
		Domain:    domain,
		Email:     answers.Email,
		PoweredBy: answers.PoweredBy,
		Redirect:  redirectFlag,
	}
	prov := newProvisioner(cfg)

	if dryRun {
		plan, err := prov.Plan(site)
		if err != nil {
			return err
		}
		return outputDryRun(plan)
	}

	if !jsonOutput {
		total := len(provision.StepNames())
		n := 0
		prov.OnStep(func(step provision.Step) {
			n++
			output.Step(n, total, "%s", stepLabel(step))
		}, nil)
	}

	result, err := prov.Run(site)
	if err != nil {
		return err
	}
	return outputResult(result, "Provisioned https://%s (document root %s)", domain, result.DocRoot)
}
