package vercel

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
	defaultAPIBase = "https://api.vercel.com"
	requestTimeout = 10 * time.Second

	// Targets Vercel tells domain owners to point at
	apexARecord = "76.76.21.21"
	cnameTarget = "cname.vercel-dns.com"
)

// Config holds Vercel credentials and project scoping
type Config struct {
	Token      string // bearer token
	ProjectID  string // project the domains attach to
	TeamID     string // optional team scope
	BaseDomain string // e.g. i-ep.app
	APIBase    string // override API base URL (tests)
}

// Provider implements provider.Provider against the Vercel project-domains API
type Provider struct {
	cfg     Config
	apiBase string
	client  *http.Client
}

// New creates a new Vercel provider
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
func (p *Provider) Name() string { return "vercel" }

// projectDomain represents a Vercel project domain (API response)
type projectDomain struct {
	Name         string `json:"name"`
	ApexName     string `json:"apexName"`
	Verified     bool   `json:"verified"`
	Verification []struct {
		Type   string `json:"type"`
		Domain string `json:"domain"`
		Value  string `json:"value"`
		Reason string `json:"reason"`
	} `json:"verification"`
}

// domainConfig represents the Vercel domain config response
type domainConfig struct {
	Misconfigured bool `json:"misconfigured"`
}

// vercelError carries the API error body through doJSON
type vercelError struct {
	httpStatus int
	Detail     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *vercelError) Error() string {
	if e.Detail.Message != "" {
		return fmt.Sprintf("vercel API error: %s (%s)", e.Detail.Message, e.Detail.Code)
	}
	return fmt.Sprintf("vercel API error: status %d", e.httpStatus)
}

func (e *vercelError) notFound() bool {
	return e.httpStatus == http.StatusNotFound || e.Detail.Code == "not_found"
}

// CreateSubdomain attaches {label}.{baseDomain} and its www alias to the
// project. Vercel keys project domains by name, so the alias is a second
// domain attachment rather than a second DNS record. Both must be accepted;
// on a second-call failure the first attachment is rolled back best-effort.
func (p *Provider) CreateSubdomain(ctx context.Context, tenantID, label string) error {
	fqdn := hostname.Compose(label, p.cfg.BaseDomain)

	if _, err := p.addProjectDomain(ctx, fqdn); err != nil {
		return fmt.Errorf("failed to attach %s: %w", fqdn, err)
	}

	if _, err := p.addProjectDomain(ctx, hostname.WWW(fqdn)); err != nil {
		_ = p.deleteProjectDomain(ctx, fqdn)
		return fmt.Errorf("failed to attach %s: %w", hostname.WWW(fqdn), err)
	}

	return nil
}

// RemoveSubdomain detaches the label and its www alias from the project.
// Vercel addresses project domains by name, which is exactly the
// delete-by-query the contract asks for; a domain that is already gone
// (404) counts as success so retries are safe.
func (p *Provider) RemoveSubdomain(ctx context.Context, tenantID, label string) error {
	fqdn := hostname.Compose(label, p.cfg.BaseDomain)

	for _, name := range []string{fqdn, hostname.WWW(fqdn)} {
		if err := p.deleteProjectDomain(ctx, name); err != nil && err != provider.ErrNotFound {
			return fmt.Errorf("failed to detach %s: %w", name, err)
		}
	}

	return nil
}

// RemoveCustomDomain detaches the tenant-owned hostname from the project so
// it can be attached again later. An already-detached domain is success.
func (p *Provider) RemoveCustomDomain(ctx context.Context, tenantID, domain string) error {
	if err := p.deleteProjectDomain(ctx, domain); err != nil && err != provider.ErrNotFound {
		return fmt.Errorf("failed to detach %s: %w", domain, err)
	}
	return nil
}

// SetupCustomDomain attaches the tenant-owned hostname to the project and
// returns the record the tenant must create. An apex domain needs an A
// record at Vercel's anycast IP, anything deeper a CNAME.
func (p *Provider) SetupCustomDomain(ctx context.Context, tenantID, domain string) (*provider.VerificationDetails, error) {
	if err := hostname.Validate(domain); err != nil {
		return nil, err
	}

	added, err := p.addProjectDomain(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to attach custom domain %s: %w", domain, err)
	}

	// Ownership challenges (TXT) take precedence when Vercel asks for them
	if len(added.Verification) > 0 {
		challenge := added.Verification[0]
		return &provider.VerificationDetails{
			Type:  challenge.Type,
			Name:  challenge.Domain,
			Value: challenge.Value,
		}, nil
	}

	if added.ApexName == domain {
		return &provider.VerificationDetails{Type: "A", Name: domain, Value: apexARecord}, nil
	}
	return &provider.VerificationDetails{Type: "CNAME", Name: domain, Value: cnameTarget}, nil
}

// VerifyCustomDomain reads the domain object and its config. Vercel reports
// DNS health through config.misconfigured and certificate readiness through
// the domain's verified flag, so the one round-trip pair answers both
// questions.
func (p *Provider) VerifyCustomDomain(ctx context.Context, domain string) (*provider.VerificationStatus, error) {
	status := &provider.VerificationStatus{
		Domain:      domain,
		LastChecked: time.Now(),
	}

	var pd projectDomain
	endpoint := fmt.Sprintf("%s/v9/projects/%s/domains/%s%s",
		p.apiBase, url.PathEscape(p.cfg.ProjectID), url.PathEscape(domain), p.teamQuery())
	if err := p.doJSON(ctx, http.MethodGet, endpoint, nil, &pd); err != nil {
		var vErr *vercelError
		if errors.As(err, &vErr) && vErr.notFound() {
			// Domain not attached to the project: transient, not an error
			return status, nil
		}
		return nil, fmt.Errorf("failed to query domain %s: %w", domain, err)
	}

	var cfg domainConfig
	endpoint = fmt.Sprintf("%s/v6/domains/%s/config%s", p.apiBase, url.PathEscape(domain), p.teamQuery())
	if err := p.doJSON(ctx, http.MethodGet, endpoint, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to query domain config %s: %w", domain, err)
	}

	status.DNSConfigured = !cfg.Misconfigured
	status.SSLActive = status.DNSConfigured && pd.Verified

	return status, nil
}

// addProjectDomain attaches a domain to the configured project
func (p *Provider) addProjectDomain(ctx context.Context, domain string) (*projectDomain, error) {
	endpoint := fmt.Sprintf("%s/v10/projects/%s/domains%s",
		p.apiBase, url.PathEscape(p.cfg.ProjectID), p.teamQuery())

	var added projectDomain
	if err := p.doJSON(ctx, http.MethodPost, endpoint, map[string]string{"name": domain}, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

// deleteProjectDomain detaches a domain; returns provider.ErrNotFound when
// the domain is not attached
func (p *Provider) deleteProjectDomain(ctx context.Context, domain string) error {
	endpoint := fmt.Sprintf("%s/v9/projects/%s/domains/%s%s",
		p.apiBase, url.PathEscape(p.cfg.ProjectID), url.PathEscape(domain), p.teamQuery())

	err := p.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
	if err != nil {
		var vErr *vercelError
		if errors.As(err, &vErr) && vErr.notFound() {
			return provider.ErrNotFound
		}
		return err
	}
	return nil
}

func (p *Provider) teamQuery() string {
	if p.cfg.TeamID == "" {
		return ""
	}
	return "?teamId=" + url.QueryEscape(p.cfg.TeamID)
}

// doJSON issues one request and decodes the response body into result
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

	req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
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

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		vErr := &vercelError{httpStatus: resp.StatusCode}
		_ = json.Unmarshal(respBody, vErr)
		return vErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
