// Package layout derives and creates the on-disk structure of a site.
//
// For domain D under the configured www root:
//
//	<www_root>/D/                             site directory
//	<www_root>/D/wwwroot/                     document root
//	<www_root>/D/wwwroot/.well-known/acme-challenge/
//	<www_root>/D/logs/                        access.log, error.log
//
// Everything under the site directory is owned by the web user and group
// with mode 0750. The optional index.php is mode 0644.
package layout

import (
	"path/filepath"

	"github.com/ksyq12/vhostprov/internal/config"
)

const (
	docRootName = "wwwroot"
	logDirName  = "logs"
	indexName   = "index.php"
)

// ACMEPath is the challenge location relative to the document root.
const ACMEPath = ".well-known/acme-challenge"

// Layout holds every path derived from a domain.
type Layout struct {
	Domain      string
	SiteDir     string
	DocRoot     string
	LogDir      string
	ACMEDir     string
	ConfigFile  string
	EnabledLink string
	CertFile    string
	KeyFile     string
}

// Derive computes the layout of domain. domain must already be validated.
func Derive(domain string, cfg *config.Config) Layout {
	site := filepath.Join(cfg.WWWRoot, domain)
	docRoot := filepath.Join(site, docRootName)
	conf := domain + ".conf"
	certDir := filepath.Join(cfg.CertDir, domain)

	return Layout{
		Domain:      domain,
		SiteDir:     site,
		DocRoot:     docRoot,
		LogDir:      filepath.Join(site, logDirName),
		ACMEDir:     filepath.Join(docRoot, ACMEPath),
		ConfigFile:  filepath.Join(cfg.SitesAvailable, conf),
		EnabledLink: filepath.Join(cfg.SitesEnabled, conf),
		CertFile:    filepath.Join(certDir, "fullchain.pem"),
		KeyFile:     filepath.Join(certDir, "privkey.pem"),
	}
}

// Dirs returns the directories Provision creates, parents first.
func (l Layout) Dirs() []string {
	return []string{l.DocRoot, l.LogDir, l.ACMEDir}
}

// IndexFile returns the default entry file path.
func (l Layout) IndexFile() string {
	return filepath.Join(l.DocRoot, indexName)
}

// Aliases returns the extra server names issued and served with Domain.
func (l Layout) Aliases() []string {
	return []string{"www." + l.Domain}
}
