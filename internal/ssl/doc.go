// Package ssl obtains Let's Encrypt certificates through certbot.
//
// Issuance uses webroot mode: certbot writes the challenge into the site's
// document root and the bootstrap nginx configuration serves it. Renewal is
// left to certbot's own timer.
//
// # Prerequisites
//
// Certbot must be installed on the system:
//
//	# Ubuntu/Debian
//	sudo apt install certbot
//
//	# CentOS/RHEL
//	sudo dnf install certbot
//
// # Usage
//
//	issuer := ssl.NewIssuer("/etc/letsencrypt/live", "/var/log/letsencrypt/letsencrypt.log")
//	cert, err := issuer.Issue(ssl.Request{
//	    Domain:  "example.com",
//	    Aliases: []string{"www.example.com"},
//	    Email:   "ops@example.com",
//	    Webroot: "/var/www/example.com/wwwroot",
//	})
//
// Certificates are stored in certbot's standard directory:
//
//	/etc/letsencrypt/live/{domain}/fullchain.pem  (certificate chain)
//	/etc/letsencrypt/live/{domain}/privkey.pem    (private key)
//
// # Error Handling
//
// A failed run returns an SSL-coded error whose hint names the certbot log.
// Common causes:
//   - DNS not pointing at this server
//   - Port 80 blocked by a firewall
//   - Rate limiting: Let's Encrypt has strict limits
package ssl
