package template

import (
	"strings"
	"testing"
)

func siteData(redirect, poweredBy string) Data {
	return Data{
		Domain:     "example.com",
		Aliases:    []string{"www.example.com"},
		Root:       "/var/www/example.com/wwwroot",
		LogDir:     "/var/www/example.com/logs",
		Redirect:   redirect,
		PoweredBy:  poweredBy,
		PHPSocket:  "/run/php/php8.2-fpm.sock",
		SSLCert:    "/etc/letsencrypt/live/example.com/fullchain.pem",
		SSLKey:     "/etc/letsencrypt/live/example.com/privkey.pem",
		SSLOptions: "/etc/letsencrypt/options-ssl-nginx.conf",
		DHParam:    "/etc/letsencrypt/ssl-dhparams.pem",
	}
}

func TestRenderBootstrap(t *testing.T) {
	for _, redirect := range []string{"none", "force-https", "forwarded-proto"} {
		t.Run(redirect, func(t *testing.T) {
			result, err := RenderBootstrap(siteData(redirect, "Acme"))
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			for _, expected := range []string{
				"listen 80;",
				"server_name example.com www.example.com;",
				"root /var/www/example.com/wwwroot;",
				"access_log /var/www/example.com/logs/access.log;",
				"location ^~ /.well-known/acme-challenge/",
			} {
				if !strings.Contains(result, expected) {
					t.Errorf("expected output to contain %q", expected)
				}
			}

			for _, unexpected := range []string{
				"listen 443",
				"ssl_certificate",
				"fastcgi_pass",
				"/etc/letsencrypt/live",
				"X-Powered-By",
			} {
				if strings.Contains(result, unexpected) {
					t.Errorf("bootstrap output should not contain %q", unexpected)
				}
			}
		})
	}
}

func TestRenderBootstrapRedirect(t *testing.T) {
	plain, err := RenderBootstrap(siteData("force-https", ""))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(plain, "return 301") {
		t.Error("force-https bootstrap should not redirect before a certificate exists")
	}

	forwarded, err := RenderBootstrap(siteData("forwarded-proto", ""))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, expected := range []string{
		"geo $realip_remote_addr $vhostprov_trusted_example_com {",
		`set $vhostprov_redirect "acme";`,
		"return 301 https://$host$request_uri;",
	} {
		if !strings.Contains(forwarded, expected) {
			t.Errorf("expected output to contain %q", expected)
		}
	}
}

func TestRenderFinal(t *testing.T) {
	result, err := RenderFinal(siteData("force-https", ""))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, expected := range []string{
		"listen 443 ssl http2;",
		"ssl_certificate /etc/letsencrypt/live/example.com/fullchain.pem;",
		"ssl_certificate_key /etc/letsencrypt/live/example.com/privkey.pem;",
		"include /etc/letsencrypt/options-ssl-nginx.conf;",
		"ssl_dhparam /etc/letsencrypt/ssl-dhparams.pem;",
		"try_files $uri $uri/ /index.php?$args;",
		"fastcgi_pass unix:/run/php/php8.2-fpm.sock;",
		"fastcgi_read_timeout 600s;",
		"fastcgi_send_timeout 600s;",
		"fastcgi_connect_timeout 600s;",
		"fastcgi_buffer_size 16k;",
		"location = /xmlrpc.php",
		"return 444;",
	} {
		if !strings.Contains(result, expected) {
			t.Errorf("expected output to contain %q", expected)
		}
	}

	if strings.Contains(result, "bootstrap") {
		t.Error("final output should not carry bootstrap content")
	}
}

func TestRenderFinalHeader(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		result, err := RenderFinal(siteData("force-https", "Acme Hosting"))
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if n := strings.Count(result, "add_header"); n != 1 {
			t.Errorf("expected exactly one add_header, got %d", n)
		}
		if !strings.Contains(result, `add_header X-Powered-By "Acme Hosting" always;`) {
			t.Error("expected header directive carrying the value")
		}
	})

	t.Run("empty", func(t *testing.T) {
		for _, redirect := range []string{"none", "force-https", "forwarded-proto"} {
			result, err := RenderFinal(siteData(redirect, ""))
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if strings.Contains(result, "add_header") || strings.Contains(result, "X-Powered-By") {
				t.Errorf("%s: header should not be mentioned", redirect)
			}
		}
	})
}

func TestRenderFinalRedirectStrategies(t *testing.T) {
	testCases := []struct {
		redirect    string
		servers     int
		contains    []string
		notContains []string
	}{
		{
			redirect:    "none",
			servers:     1,
			contains:    []string{"listen 80;", "listen 443 ssl http2;"},
			notContains: []string{"return 301"},
		},
		{
			redirect: "force-https",
			servers:  2,
			contains: []string{"return 301 https://$host$request_uri;"},
		},
		{
			redirect: "forwarded-proto",
			servers:  1,
			contains: []string{
				"listen 80;",
				"$scheme:$vhostprov_trusted_example_com:$http_x_forwarded_proto",
				`if ($vhostprov_redirect = "http:1:https")`,
				"return 301 https://$host$request_uri;",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.redirect, func(t *testing.T) {
			result, err := RenderFinal(siteData(tc.redirect, ""))
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if n := strings.Count(result, "server {"); n != tc.servers {
				t.Errorf("expected %d server blocks, got %d", tc.servers, n)
			}
			for _, expected := range tc.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("expected output to contain %q", expected)
				}
			}
			for _, unexpected := range tc.notContains {
				if strings.Contains(result, unexpected) {
					t.Errorf("output should not contain %q", unexpected)
				}
			}
		})
	}
}

func TestRenderTrustedProxies(t *testing.T) {
	data := siteData("forwarded-proto", "")
	data.TrustedProxies = []string{"173.245.48.0/20", "2400:cb00::/32"}

	result, err := RenderFinal(data)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, expected := range []string{
		"default 0;",
		"173.245.48.0/20 1;",
		"2400:cb00::/32 1;",
	} {
		if !strings.Contains(result, expected) {
			t.Errorf("expected output to contain %q", expected)
		}
	}
}

func TestRenderInvalid(t *testing.T) {
	if _, err := Render("modern", siteData("none", "")); err == nil {
		t.Error("expected error for unknown form")
	}

	missing := siteData("none", "")
	missing.Domain = ""
	if _, err := RenderBootstrap(missing); err == nil {
		t.Error("expected error for missing domain")
	}

	noCert := siteData("none", "")
	noCert.SSLCert = ""
	if _, err := RenderBootstrap(noCert); err != nil {
		t.Errorf("bootstrap should not need a certificate: %v", err)
	}
	if _, err := RenderFinal(noCert); err == nil {
		t.Error("expected error for missing certificate")
	}

	quoted := siteData("none", `Acme" always; add_header X "1`)
	if _, err := RenderFinal(quoted); err == nil {
		t.Error("expected error for quoted header value")
	}
}

func TestTrustVar(t *testing.T) {
	d := Data{Domain: "my-site.example.com"}
	if got := d.TrustVar(); got != "vhostprov_trusted_my__site_example_com" {
		t.Errorf("unexpected variable name %s", got)
	}
}

func TestTrustVarDistinct(t *testing.T) {
	pairs := [][2]string{
		{"a.b-c.com", "a-b.c.com"},
		{"a-b.com", "a.b.com"},
		{"xn--bcher-kva.com", "xn-.bcher-kva.com"},
		{"a--b.com", "a-b.b.com"},
	}
	for _, p := range pairs {
		x := Data{Domain: p[0]}.TrustVar()
		y := Data{Domain: p[1]}.TrustVar()
		if x == y {
			t.Errorf("%s and %s share geo variable %s", p[0], p[1], x)
		}
	}
}
