package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksyq12/vhostprov/internal/config"
	apperrors "github.com/ksyq12/vhostprov/internal/errors"
	"github.com/ksyq12/vhostprov/internal/input"
	"github.com/ksyq12/vhostprov/internal/layout"
	"github.com/ksyq12/vhostprov/internal/output"
	"github.com/ksyq12/vhostprov/internal/provision"
	"github.com/ksyq12/vhostprov/internal/template"
)

var (
	renderForm      = "final"
	renderPoweredBy string
)

var renderCmd = &cobra.Command{
	Use:   "render <domain>",
	Short: "Print a rendered nginx configuration",
	Long: `Render the bootstrap or final configuration for a domain and print it.
Nothing is written.

Examples:
  vhostprov render example.com
  vhostprov render example.com --form bootstrap
  vhostprov render example.com --powered-by "Acme" --redirect none`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderForm, "form", "f", "final", "Configuration form: bootstrap or final")
	renderCmd.Flags().StringVar(&renderPoweredBy, "powered-by", "", "X-Powered-By header value (empty to omit)")
	renderCmd.Flags().StringVarP(&redirectFlag, "redirect", "r", "", "Redirect strategy: none, force-https, forwarded-proto (default from config)")
	rootCmd.AddCommand(renderCmd)
}

// renderOutput is the JSON form of a rendered configuration
type renderOutput struct {
	Domain   string `json:"domain"`
	Form     string `json:"form"`
	Redirect string `json:"redirect"`
	Content  string `json:"content"`
}

func runRender(cmd *cobra.Command, args []string) error {
	domain, err := input.NormalizeDomain(args[0])
	if err != nil {
		return err
	}
	if err := input.ValidateHeaderValue(renderPoweredBy); err != nil {
		return err
	}
	if redirectFlag != "" && !config.IsValidRedirect(redirectFlag) {
		return apperrors.Validation("invalid redirect strategy " + redirectFlag)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	site := provision.Site{Domain: domain, PoweredBy: renderPoweredBy, Redirect: redirectFlag}
	data := provision.New(provision.Options{Config: cfg}).Data(site, layout.Derive(domain, cfg))

	content, err := template.Render(template.Form(renderForm), data)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeValidation, "failed to render configuration", err)
	}

	if jsonOutput {
		return output.JSON(renderOutput{Domain: domain, Form: renderForm, Redirect: data.Redirect, Content: content})
	}
	fmt.Print(content)
	return nil
}
