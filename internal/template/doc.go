// Package template renders nginx server configuration from embedded Go
// templates.
//
// Two forms exist for every site:
//
//	nginx/bootstrap.tmpl  HTTP only, serves the ACME challenge path
//	nginx/final.tmpl      TLS, PHP-FPM, deny rules and redirect policy
//
// Shared blocks (logs, ACME location, trusted proxy geo map, forwarded
// proto redirect) are defined in nginx/partials.tmpl.
//
// # Rendering
//
//	content, err := template.Render(template.FormFinal, template.Data{
//	    Domain:     "example.com",
//	    Aliases:    []string{"www.example.com"},
//	    Root:       "/var/www/example.com/wwwroot",
//	    LogDir:     "/var/www/example.com/logs",
//	    Redirect:   "force-https",
//	    PHPSocket:  "/run/php/php8.2-fpm.sock",
//	    SSLCert:    "/etc/letsencrypt/live/example.com/fullchain.pem",
//	    SSLKey:     "/etc/letsencrypt/live/example.com/privkey.pem",
//	    SSLOptions: "/etc/letsencrypt/options-ssl-nginx.conf",
//	    DHParam:    "/etc/letsencrypt/ssl-dhparams.pem",
//	})
//
// Values are inserted as-is. Callers validate the domain and header value
// before building Data.
//
// # Redirect strategies
//
//   - none: a single server listens on 80 and 443
//   - force-https: port 80 serves ACME and redirects everything else
//   - forwarded-proto: a single server on 80 and 443 that redirects plain
//     HTTP unless a trusted proxy reports X-Forwarded-Proto: https
package template
