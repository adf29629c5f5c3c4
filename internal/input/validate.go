package input

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/idna"

	apperrors "github.com/ksyq12/vhostprov/internal/errors"
)

const (
	maxDomainLength = 253
	maxHeaderLength = 256
)

var (
	labelPattern   = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
)

// NormalizeDomain validates domain against the hostname grammar and returns
// its lower-case ASCII (punycode) form. Internationalized names are accepted
// and converted. Wildcards, IP addresses, single labels and trailing dots are
// rejected because the value ends up in paths and server_name.
func NormalizeDomain(domain string) (string, error) {
	if domain == "" {
		return "", apperrors.InvalidDomain(domain, fmt.Errorf("domain cannot be empty"))
	}
	if strings.HasSuffix(domain, ".") {
		return "", apperrors.InvalidDomain(domain, fmt.Errorf("trailing dot is not allowed"))
	}

	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return "", apperrors.InvalidDomain(domain, err)
	}

	if len(ascii) > maxDomainLength {
		return "", apperrors.InvalidDomain(domain, fmt.Errorf("longer than %d characters", maxDomainLength))
	}

	labels := strings.Split(ascii, ".")
	if len(labels) < 2 {
		return "", apperrors.InvalidDomain(domain, fmt.Errorf("at least two labels are required"))
	}
	for _, label := range labels {
		if !labelPattern.MatchString(label) {
			return "", apperrors.InvalidDomain(domain, fmt.Errorf("invalid label %q", label))
		}
	}
	if numericPattern.MatchString(labels[len(labels)-1]) {
		return "", apperrors.InvalidDomain(domain, fmt.Errorf("looks like an IP address"))
	}

	return ascii, nil
}

// ValidateEmail requires a bare address such as ops@example.com.
func ValidateEmail(email string) error {
	if email == "" {
		return apperrors.Input("email address is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return apperrors.Validation(fmt.Sprintf("invalid email address %q", email))
	}
	if !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
		return apperrors.Validation(fmt.Sprintf("email domain must be fully qualified: %q", email))
	}
	return nil
}

// ValidateHeaderValue rejects characters that would escape the quoted
// add_header argument or be interpolated by nginx. Empty is valid.
func ValidateHeaderValue(value string) error {
	if len(value) > maxHeaderLength {
		return apperrors.Validation(fmt.Sprintf("header value longer than %d characters", maxHeaderLength))
	}
	for _, r := range value {
		switch {
		case r == '"', r == '\\', r == '$', r == '\'', r == ';', r == '{', r == '}':
			return apperrors.Validation(fmt.Sprintf("header value contains forbidden character %q", r))
		case unicode.IsControl(r):
			return apperrors.Validation("header value contains control characters")
		}
	}
	return nil
}
