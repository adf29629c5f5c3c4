// Package config holds vhostprov's settings and the record of provisioned
// sites, stored as YAML.
//
// Settings are resolved in three layers: built-in defaults, the YAML file
// (~/.config/vhostprov/config.yaml unless --config is given), then
// VHOSTPROV_* environment variables. A missing file is not an error.
//
// Example config.yaml:
//
//	web_user: www-data
//	web_group: www-data
//	www_root: /var/www
//	php_version: "8.2"
//	redirect: forwarded-proto
//	trusted_proxies:
//	  - 173.245.48.0/20
//	  - 103.21.244.0/22
//	sites:
//	  example.com:
//	    domain: example.com
//	    email: ops@example.com
//	    redirect: forwarded-proto
//	    document_root: /var/www/example.com/wwwroot
//	    config_file: /etc/nginx/sites-available/example.com.conf
//	    provisioned_at: 2026-10-14T10:00:00Z
//
// # Redirect Strategies
//
//   - none: the site answers on both port 80 and 443
//   - force-https: port 80 only serves ACME challenges and redirects the rest
//   - forwarded-proto: plain HTTP is redirected unless a trusted proxy
//     reports X-Forwarded-Proto: https
//
// Use the constants (RedirectNone, RedirectForceHTTPS, RedirectForwardedProto)
// instead of string literals.
//
// Config operations are NOT thread-safe.
package config
