package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/ksyq12/vhostprov/internal/output"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List provisioned sites",
	Long: `List sites recorded by earlier runs, plus any other .conf files found
in the nginx site directory.

Examples:
  vhostprov list
  vhostprov ls
  vhostprov list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type siteListItem struct {
	Domain        string `json:"domain"`
	Redirect      string `json:"redirect,omitempty"`
	Root          string `json:"root,omitempty"`
	ProvisionedAt string `json:"provisioned_at,omitempty"`
	Recorded      bool   `json:"recorded"`
	Enabled       bool   `json:"enabled"`
	Certificate   bool   `json:"certificate"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	drv := deps.System.Driver(cfg)
	issuer := deps.System.Issuer(cfg)

	// Get list from driver (to find sites not recorded in config)
	driverDomains, err := drv.List()
	if err != nil {
		output.Warn("Could not read from %s: %v", drv.Name(), err)
	}

	items := make([]siteListItem, 0)
	for _, site := range cfg.ListSites() {
		enabled, _ := drv.IsEnabled(site.Domain)
		item := siteListItem{
			Domain:      site.Domain,
			Redirect:    site.Redirect,
			Root:        site.DocumentRoot,
			Recorded:    true,
			Enabled:     enabled,
			Certificate: issuer.Exists(site.Domain),
		}
		if !site.ProvisionedAt.IsZero() {
			item.ProvisionedAt = site.ProvisionedAt.Format("2006-01-02 15:04")
		}
		items = append(items, item)
	}

	for _, domain := range driverDomains {
		if _, exists := cfg.Sites[domain]; exists {
			continue
		}
		enabled, _ := drv.IsEnabled(domain)
		items = append(items, siteListItem{
			Domain:      domain,
			Enabled:     enabled,
			Certificate: issuer.Exists(domain),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Domain < items[j].Domain
	})

	if jsonOutput {
		return output.JSON(items)
	}
	if len(items) == 0 {
		output.Info("No sites provisioned")
		return nil
	}

	headers := []string{"DOMAIN", "REDIRECT", "ROOT", "ENABLED", "CERT", "PROVISIONED"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		redirect := item.Redirect
		provisioned := item.ProvisionedAt
		if !item.Recorded {
			redirect = "-"
			provisioned = "not recorded"
		}
		rows = append(rows, []string{
			item.Domain,
			redirect,
			item.Root,
			yesNo(item.Enabled),
			yesNo(item.Certificate),
			provisioned,
		})
	}

	output.Table(headers, rows)
	return nil
}
