package hostname

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

// Validate checks a custom domain against a conservative FQDN shape before
// any network call is made: lowercase letters, digits, hyphens, dot-separated
// labels, a final multi-letter TLD-like label. Uppercase input is rejected
// rather than folded so the caller gets a specific validation error instead
// of a provider-side failure on a name that differs from what they typed.
func Validate(domain string) error {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), ".")

	if domain == "" {
		return fmt.Errorf("domain must not be empty")
	}
	if len(domain) > maxDomainLength {
		return fmt.Errorf("domain exceeds %d characters: %s", maxDomainLength, domain)
	}

	// Reject IP literals, with or without brackets
	if net.ParseIP(domain) != nil {
		return fmt.Errorf("IP address is not allowed as domain: %s", domain)
	}
	if strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		return fmt.Errorf("IP address is not allowed as domain: %s", domain)
	}

	if !strings.Contains(domain, ".") {
		return fmt.Errorf("domain must contain at least one dot: %s", domain)
	}

	labels := strings.Split(domain, ".")
	for _, label := range labels {
		if err := validateLabel(label); err != nil {
			return fmt.Errorf("invalid domain %s: %w", domain, err)
		}
	}

	// Final label must look like a TLD: letters only, at least two
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return fmt.Errorf("invalid domain %s: top-level label too short", domain)
	}
	for _, r := range tld {
		if r < 'a' || r > 'z' {
			return fmt.Errorf("invalid domain %s: top-level label must be letters", domain)
		}
	}

	// Must have a registrable part below the public suffix
	suffix, _ := publicsuffix.PublicSuffix(domain)
	if domain == suffix {
		return fmt.Errorf("domain %s is a public suffix, not a registrable domain", domain)
	}

	return nil
}

// ValidateSlug checks a tenant slug used as a subdomain label:
// lowercase letters, digits and inner hyphens only.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug must not be empty")
	}
	if strings.Contains(slug, ".") {
		return fmt.Errorf("slug must not contain dots: %s", slug)
	}
	if err := validateLabel(slug); err != nil {
		return fmt.Errorf("invalid slug %s: %w", slug, err)
	}
	return nil
}

// Compose builds the FQDN for a tenant subdomain label under the base domain.
// A label that already carries the base domain is returned as-is.
func Compose(label, baseDomain string) string {
	label = strings.TrimSpace(label)
	baseDomain = strings.TrimSpace(baseDomain)

	if label == "" || label == "@" {
		return baseDomain
	}
	if label == baseDomain || strings.HasSuffix(label, "."+baseDomain) {
		return label
	}
	return label + "." + baseDomain
}

// WWW returns the www alias name for a subdomain FQDN.
func WWW(fqdn string) string {
	return "www." + fqdn
}

func validateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("empty label")
	}
	if len(label) > maxLabelLength {
		return fmt.Errorf("label exceeds %d characters: %s", maxLabelLength, label)
	}
	if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
		return fmt.Errorf("label must not start or end with '-': %s", label)
	}
	for _, r := range label {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return fmt.Errorf("label contains invalid character %q: %s", r, label)
		}
	}
	return nil
}
