package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go_domains/internal/hostname"
	"go_domains/internal/provider"
)

const (
	defaultAPIBase = "https://api.cloudflare.com/client/v4"
	requestTimeout = 10 * time.Second

	defaultTTL = 120
)

// Config holds Cloudflare credentials and zone scoping
type Config struct {
	APIToken    string // bearer token
	ZoneID      string // zone of the platform base domain
	BaseDomain  string // e.g. i-ep.app
	EdgeIP      string // A record target for tenant subdomains
	CNAMETarget string // fallback CNAME target returned for custom domains
	APIBase     string // override API base URL (tests)
}

// Provider implements provider.Provider against the Cloudflare v4 API
type Provider struct {
	cfg     Config
	apiBase string
	client  *http.Client
}

// New creates a new Cloudflare provider
func New(cfg Config) *Provider {
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Provider{
		cfg:     cfg,
		apiBase: apiBase,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string { return "cloudflare" }

// apiRecord represents a Cloudflare DNS record (API response)
type apiRecord struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}

// apiResponse represents a Cloudflare API envelope
type apiResponse struct {
	Success bool            `json:"success"`
	Errors  []apiError      `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

// apiError represents a Cloudflare API error
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// customHostname represents a Cloudflare custom hostname (API response)
type customHostname struct {
	ID       string `json:"id"`
	Hostname string `json:"hostname"`
	Status   string `json:"status"`
	SSL      struct {
		Status    string `json:"status"`
		ExpiresOn string `json:"expires_on,omitempty"`
	} `json:"ssl"`
}

// CreateSubdomain creates the two records backing {label}.{baseDomain}:
// a proxied A record for the bare label and a proxied CNAME for the www
// alias. If the second create fails the first record is rolled back
// best-effort; the call still reports failure either way.
func (p *Provider) CreateSubdomain(ctx context.Context, tenantID, label string) error {
	fqdn := hostname.Compose(label, p.cfg.BaseDomain)

	rootID, err := p.createRecord(ctx, provider.DNSRecord{
		Type:    "A",
		Name:    fqdn,
		Value:   p.cfg.EdgeIP,
		TTL:     defaultTTL,
		Proxied: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create A record for %s: %w", fqdn, err)
	}

	_, err = p.createRecord(ctx, provider.DNSRecord{
		Type:    "CNAME",
		Name:    hostname.WWW(fqdn),
		Value:   fqdn,
		TTL:     defaultTTL,
		Proxied: true,
	})
	if err != nil {
		// Roll back the A record so a retry starts clean; if this also
		// fails the caller recovers via RemoveSubdomain before retrying.
		_ = p.deleteRecord(ctx, rootID)
		return fmt.Errorf("failed to create www CNAME for %s: %w", fqdn, err)
	}

	return nil
}

// RemoveSubdomain enumerates records by name for the label and its www alias
// and deletes each one. Zero matching records is success.
func (p *Provider) RemoveSubdomain(ctx context.Context, tenantID, label string) error {
	fqdn := hostname.Compose(label, p.cfg.BaseDomain)

	for _, name := range []string{fqdn, hostname.WWW(fqdn)} {
		records, err := p.listRecordsByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to list records for %s: %w", name, err)
		}
		for _, record := range records {
			if err := p.deleteRecord(ctx, record.ID); err != nil && err != provider.ErrNotFound {
				return fmt.Errorf("failed to delete record %s (%s): %w", record.ID, name, err)
			}
		}
	}

	return nil
}

// RemoveCustomDomain deletes the custom hostname registrations matching the
// domain so it can be registered again later. Zero matches is success.
func (p *Provider) RemoveCustomDomain(ctx context.Context, tenantID, domain string) error {
	endpoint := fmt.Sprintf("%s/zones/%s/custom_hostnames?hostname=%s",
		p.apiBase, p.cfg.ZoneID, url.QueryEscape(domain))

	var hostnames []customHostname
	if err := p.doJSON(ctx, http.MethodGet, endpoint, nil, &hostnames); err != nil {
		return fmt.Errorf("failed to query custom hostname %s: %w", domain, err)
	}

	for _, ch := range hostnames {
		endpoint := fmt.Sprintf("%s/zones/%s/custom_hostnames/%s", p.apiBase, p.cfg.ZoneID, ch.ID)
		if err := p.doJSON(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
			var cfErr *cloudflareError
			if errors.As(err, &cfErr) && cfErr.notFound() {
				continue
			}
			return fmt.Errorf("failed to delete custom hostname %s (%s): %w", ch.ID, domain, err)
		}
	}

	return nil
}

// SetupCustomDomain registers the hostname as a Cloudflare custom hostname
// and returns the CNAME the tenant must create on their own DNS.
func (p *Provider) SetupCustomDomain(ctx context.Context, tenantID, domain string) (*provider.VerificationDetails, error) {
	if err := hostname.Validate(domain); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"hostname": domain,
		"ssl": map[string]interface{}{
			"method": "http",
			"type":   "dv",
		},
	}

	var created customHostname
	endpoint := fmt.Sprintf("%s/zones/%s/custom_hostnames", p.apiBase, p.cfg.ZoneID)
	if err := p.doJSON(ctx, http.MethodPost, endpoint, payload, &created); err != nil {
		return nil, fmt.Errorf("failed to register custom hostname %s: %w", domain, err)
	}

	target := p.cfg.CNAMETarget
	if target == "" {
		target = p.cfg.BaseDomain
	}

	return &provider.VerificationDetails{
		Type:  "CNAME",
		Name:  domain,
		Value: target,
	}, nil
}

// VerifyCustomDomain queries the custom hostname status. One fetch answers
// both the DNS and the certificate question; the caller keeps them as two
// logical steps.
func (p *Provider) VerifyCustomDomain(ctx context.Context, domain string) (*provider.VerificationStatus, error) {
	status := &provider.VerificationStatus{
		Domain:      domain,
		LastChecked: time.Now(),
	}

	endpoint := fmt.Sprintf("%s/zones/%s/custom_hostnames?hostname=%s",
		p.apiBase, p.cfg.ZoneID, url.QueryEscape(domain))

	var hostnames []customHostname
	if err := p.doJSON(ctx, http.MethodGet, endpoint, nil, &hostnames); err != nil {
		return nil, fmt.Errorf("failed to query custom hostname %s: %w", domain, err)
	}

	if len(hostnames) == 0 {
		// Hostname not registered or not yet visible: a normal transient
		// state, not an error
		return status, nil
	}

	ch := hostnames[0]
	status.DNSConfigured = ch.Status == "active"
	status.SSLActive = ch.SSL.Status == "active"

	if ch.SSL.ExpiresOn != "" {
		if expires, err := time.Parse(time.RFC3339, ch.SSL.ExpiresOn); err == nil {
			status.ExpiresAt = &expires
		}
	}

	return status, nil
}

// createRecord creates a new DNS record in the configured zone
func (p *Provider) createRecord(ctx context.Context, record provider.DNSRecord) (string, error) {
	endpoint := fmt.Sprintf("%s/zones/%s/dns_records", p.apiBase, p.cfg.ZoneID)

	payload := map[string]interface{}{
		"type":    record.Type,
		"name":    record.Name,
		"content": record.Value,
		"ttl":     record.TTL,
		"proxied": record.Proxied,
	}

	var created apiRecord
	if err := p.doJSON(ctx, http.MethodPost, endpoint, payload, &created); err != nil {
		return "", err
	}

	return created.ID, nil
}

// listRecordsByName lists DNS records matching an exact name
func (p *Provider) listRecordsByName(ctx context.Context, name string) ([]apiRecord, error) {
	endpoint := fmt.Sprintf("%s/zones/%s/dns_records?name=%s",
		p.apiBase, p.cfg.ZoneID, url.QueryEscape(name))

	var records []apiRecord
	if err := p.doJSON(ctx, http.MethodGet, endpoint, nil, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// deleteRecord deletes a DNS record by its provider-internal ID.
// A record that is already gone returns provider.ErrNotFound.
func (p *Provider) deleteRecord(ctx context.Context, recordID string) error {
	endpoint := fmt.Sprintf("%s/zones/%s/dns_records/%s", p.apiBase, p.cfg.ZoneID, recordID)

	err := p.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
	if err != nil {
		var cfErr *cloudflareError
		if errors.As(err, &cfErr) && cfErr.notFound() {
			return provider.ErrNotFound
		}
		return err
	}

	return nil
}

// cloudflareError carries the provider-reported error codes through doJSON
type cloudflareError struct {
	httpStatus int
	errors     []apiError
}

func (e *cloudflareError) Error() string {
	if len(e.errors) == 0 {
		return fmt.Sprintf("cloudflare API error: status %d", e.httpStatus)
	}
	var msgs []string
	for _, apiErr := range e.errors {
		msgs = append(msgs, fmt.Sprintf("[%d] %s", apiErr.Code, apiErr.Message))
	}
	return fmt.Sprintf("cloudflare API error: %v", msgs)
}

// notFound reports whether the error means the record does not exist
// (HTTP 404 or the dedicated record-not-found codes)
func (e *cloudflareError) notFound() bool {
	if e.httpStatus == http.StatusNotFound {
		return true
	}
	for _, apiErr := range e.errors {
		if apiErr.Code == 81044 || apiErr.Code == 81043 {
			return true
		}
	}
	return false
}

// doJSON issues one request and decodes the Cloudflare envelope into result
func (p *Provider) doJSON(ctx context.Context, method, endpoint string, payload, result interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return &cloudflareError{httpStatus: resp.StatusCode}
	}

	if !envelope.Success {
		return &cloudflareError{httpStatus: resp.StatusCode, errors: envelope.Errors}
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to parse result: %w", err)
		}
	}

	return nil
}
