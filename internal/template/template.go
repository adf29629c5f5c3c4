package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Form selects which configuration is rendered.
type Form string

const (
	// FormBootstrap is the HTTP-only configuration used during issuance.
	FormBootstrap Form = "bootstrap"
	// FormFinal is the TLS configuration with PHP handling.
	FormFinal Form = "final"
)

const (
	redirectForceHTTPS     = "force-https"
	redirectForwardedProto = "forwarded-proto"
)

// ValidForms returns the forms Render accepts.
func ValidForms() []string {
	return []string{string(FormBootstrap), string(FormFinal)}
}

// Data contains everything a template may reference. Nothing is read from
// the environment during rendering.
type Data struct {
	Domain         string
	Aliases        []string
	Root           string
	LogDir         string
	Redirect       string
	TrustedProxies []string
	PoweredBy      string
	PHPSocket      string
	SSLCert        string
	SSLKey         string
	SSLOptions     string
	DHParam        string
}

// ServerNames returns the server_name arguments.
func (d Data) ServerNames() string {
	return strings.Join(append([]string{d.Domain}, d.Aliases...), " ")
}

// ForceHTTPS reports whether plain HTTP gets its own redirecting server.
func (d Data) ForceHTTPS() bool {
	return d.Redirect == redirectForceHTTPS
}

// ForwardedProto reports whether redirects depend on X-Forwarded-Proto.
func (d Data) ForwardedProto() bool {
	return d.Redirect == redirectForwardedProto
}

// TrustVar names the per-site geo variable. geo blocks live at http level,
// so the name has to be unique across sites. Dots become "_" and hyphens
// "__"; labels never start or end with a hyphen, so the mapping is
// reversible for any valid hostname.
func (d Data) TrustVar() string {
	r := strings.NewReplacer(".", "_", "-", "__")
	return "vhostprov_trusted_" + r.Replace(d.Domain)
}

// Render renders form for data.
func Render(form Form, data Data) (string, error) {
	if err := data.check(form); err != nil {
		return "", err
	}

	tmpl, err := parse(form)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, string(form)+".tmpl", data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}

// RenderBootstrap renders the HTTP-only form.
func RenderBootstrap(data Data) (string, error) {
	return Render(FormBootstrap, data)
}

// RenderFinal renders the TLS form.
func RenderFinal(data Data) (string, error) {
	return Render(FormFinal, data)
}

func parse(form Form) (*template.Template, error) {
	name := fmt.Sprintf("nginx/%s.tmpl", form)
	content, err := nginxTemplates.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("template not found: %s", form)
	}
	partials, err := nginxTemplates.ReadFile("nginx/partials.tmpl")
	if err != nil {
		return nil, fmt.Errorf("template not found: partials")
	}

	tmpl, err := template.New(string(form) + ".tmpl").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if _, err := tmpl.New("partials.tmpl").Parse(string(partials)); err != nil {
		return nil, fmt.Errorf("failed to parse partials: %w", err)
	}
	return tmpl, nil
}

func (d Data) check(form Form) error {
	switch form {
	case FormBootstrap, FormFinal:
	default:
		return fmt.Errorf("unknown template form %q (valid: %s)", form, strings.Join(ValidForms(), ", "))
	}

	if d.Domain == "" || d.Root == "" || d.LogDir == "" {
		return fmt.Errorf("domain, root and log directory are required")
	}
	if strings.ContainsAny(d.PoweredBy, "\"\n\r") {
		return fmt.Errorf("header value cannot contain quotes or line breaks")
	}
	if form == FormFinal {
		if d.SSLCert == "" || d.SSLKey == "" {
			return fmt.Errorf("certificate and key paths are required for the final form")
		}
		if d.PHPSocket == "" {
			return fmt.Errorf("PHP-FPM socket is required for the final form")
		}
	}
	return nil
}
