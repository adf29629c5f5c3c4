package config

import "time"

// Site records a domain that completed provisioning.
type Site struct {
	Domain        string    `yaml:"domain"`
	Email         string    `yaml:"email"`
	Redirect      string    `yaml:"redirect"`
	PoweredBy     string    `yaml:"powered_by,omitempty"`
	DocumentRoot  string    `yaml:"document_root"`
	ConfigFile    string    `yaml:"config_file"`
	ProvisionedAt time.Time `yaml:"provisioned_at"`
}

// Redirect strategy constants
const (
	RedirectNone           = "none"
	RedirectForceHTTPS     = "force-https"
	RedirectForwardedProto = "forwarded-proto"
)

// ValidRedirects returns all valid redirect strategies
func ValidRedirects() []string {
	return []string{RedirectNone, RedirectForceHTTPS, RedirectForwardedProto}
}

// IsValidRedirect checks if the given redirect strategy is valid
func IsValidRedirect(r string) bool {
	for _, valid := range ValidRedirects() {
		if r == valid {
			return true
		}
	}
	return false
}
