package provider

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a DNS record or hostname is not registered at the provider
	ErrNotFound = errors.New("DNS record not found")
)

// Status represents the lifecycle status of a tenant domain
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusError   Status = "error"
)

// DNSRecord represents a DNS record for provider operations
type DNSRecord struct {
	Type    string // A, AAAA, CNAME, TXT
	Name    string // FQDN (e.g., ornek-okul.i-ep.app)
	Value   string // IP address or target
	TTL     int    // Time to live
	Proxied bool   // Edge proxy (Cloudflare orange cloud; ignored by providers without a proxy layer)
}

// VerificationDetails describes the record a tenant must create on their own
// DNS to point a custom domain at the platform
type VerificationDetails struct {
	Type  string `json:"type"`  // CNAME or A
	Name  string `json:"name"`  // record name the tenant must create
	Value string `json:"value"` // record target/content
}

// VerificationStatus is the result of one live verification query.
// Adapters fill Domain, DNSConfigured, SSLActive, ExpiresAt and LastChecked;
// the verifier folds those into Verified, Status and Message.
type VerificationStatus struct {
	Domain        string     `json:"domain"`
	Verified      bool       `json:"verified"`
	DNSConfigured bool       `json:"dns_configured"`
	SSLActive     bool       `json:"ssl_active"`
	Status        Status     `json:"status"`
	Message       string     `json:"message"`
	Error         string     `json:"error,omitempty"`
	LastChecked   time.Time  `json:"last_checked"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Provider defines the interface for domain/edge providers.
//
// Mutating calls report provider-API acceptance only, never DNS propagation:
// propagation and certificate issuance are asynchronous and observed through
// VerifyCustomDomain. VerifyCustomDomain is a live query against the provider,
// stateless and safe to call repeatedly.
type Provider interface {
	// Name returns the provider identifier (e.g. "cloudflare", "vercel")
	Name() string

	// CreateSubdomain issues the DNS records needed so {label}.{baseDomain}
	// resolves to the platform edge. Both the bare label record and the www
	// alias must be accepted; partial failure is overall failure.
	CreateSubdomain(ctx context.Context, tenantID, label string) error

	// SetupCustomDomain registers an externally-owned hostname and returns
	// the record the tenant must configure. Does not wait for propagation.
	SetupCustomDomain(ctx context.Context, tenantID, domain string) (*VerificationDetails, error)

	// RemoveSubdomain deletes all records previously created for the label,
	// enumerating by name rather than by cached record id. Zero matching
	// records is success, which makes retries safe.
	RemoveSubdomain(ctx context.Context, tenantID, label string) error

	// RemoveCustomDomain deregisters a custom hostname so the FQDN can be
	// set up again later. A hostname that is already gone is success.
	RemoveCustomDomain(ctx context.Context, tenantID, domain string) error

	// VerifyCustomDomain queries the provider for the hostname's DNS and
	// certificate state. An unreachable or misbehaving provider API surfaces
	// as an error; a hostname that is simply not configured yet does not.
	VerifyCustomDomain(ctx context.Context, domain string) (*VerificationStatus, error)
}
