package tenantdomain

import (
	"context"
	"time"

	"go_domains/internal/provider"
)

// User-facing message classes. The DNS-vs-certificate distinction is kept on
// purpose: one pending message tells the tenant to fix their DNS, the other
// tells them to simply wait.
const (
	MessageDNSPending   = "DNS records not yet verified, waiting for propagation"
	MessageSSLPending   = "DNS configured, TLS certificate is being provisioned"
	MessageActive       = "domain is verified and active"
	MessageVerifyFailed = "verification failed, will retry"
)

// Verifier folds one provider status lookup into a verification outcome.
//
// The provider answers two logically separate questions (is DNS configured,
// is the certificate active); for the adapters in this repo one fetch answers
// both, but the fold lives here so a provider that needs two round-trips
// would not change the contract.
type Verifier struct {
	provider provider.Provider
	now      func() time.Time
}

// NewVerifier creates a verifier for the configured provider
func NewVerifier(p provider.Provider) *Verifier {
	return &Verifier{
		provider: p,
		now:      time.Now,
	}
}

// Verify runs one verification pass for a domain. It always returns a
// status: provider API failures, timeouts included, come back as
// Status=error with a non-empty Error rather than as a Go error, so callers
// can persist the outcome uniformly. A hostname that is merely not
// configured yet stays pending, never error.
func (v *Verifier) Verify(ctx context.Context, domain string) *provider.VerificationStatus {
	reported, err := v.provider.VerifyCustomDomain(ctx, domain)
	checked := v.now()

	if err != nil {
		return &provider.VerificationStatus{
			Domain:      domain,
			Status:      provider.StatusError,
			Message:     MessageVerifyFailed,
			Error:       err.Error(),
			LastChecked: checked,
		}
	}

	status := *reported
	if status.LastChecked.IsZero() {
		status.LastChecked = checked
	}

	status.Verified = status.DNSConfigured && status.SSLActive
	switch {
	case status.Verified:
		status.Status = provider.StatusActive
		status.Message = MessageActive
	case status.DNSConfigured:
		status.Status = provider.StatusPending
		status.Message = MessageSSLPending
	default:
		status.Status = provider.StatusPending
		status.Message = MessageDNSPending
	}

	return &status
}
