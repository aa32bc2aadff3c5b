package vercel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go_domains/internal/provider"
)

// fakeProject is an in-memory stand-in for the Vercel project-domains API
type fakeProject struct {
	mu            sync.Mutex
	domains       map[string]bool // name -> verified
	misconfigured map[string]bool
	failName      string // domain whose attach should fail
	requests      int
}

func (f *fakeProject) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++

		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/domains"):
			var payload struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("bad attach payload: %v", err)
			}
			if payload.Name == f.failName {
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]string{"code": "domain_taken", "message": "domain already in use"},
				})
				return
			}
			f.domains[payload.Name] = false
			apex := payload.Name
			if parts := strings.Split(payload.Name, "."); len(parts) > 2 {
				apex = strings.Join(parts[len(parts)-2:], ".")
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"name": payload.Name, "apexName": apex, "verified": false,
			})

		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/config"):
			parts := strings.Split(r.URL.Path, "/")
			name := parts[len(parts)-2]
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"misconfigured": f.misconfigured[name],
			})

		case r.Method == http.MethodGet:
			parts := strings.Split(r.URL.Path, "/")
			name := parts[len(parts)-1]
			verified, ok := f.domains[name]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]string{"code": "not_found", "message": "domain not found"},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"name": name, "apexName": name, "verified": verified,
			})

		case r.Method == http.MethodDelete:
			parts := strings.Split(r.URL.Path, "/")
			name := parts[len(parts)-1]
			if _, ok := f.domains[name]; !ok {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]string{"code": "not_found", "message": "domain not found"},
				})
				return
			}
			delete(f.domains, name)
			w.WriteHeader(http.StatusOK)

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newFakeProject() *fakeProject {
	return &fakeProject{domains: map[string]bool{}, misconfigured: map[string]bool{}}
}

func newTestProvider(serverURL string) *Provider {
	return New(Config{
		Token:      "test-token",
		ProjectID:  "prj_1",
		BaseDomain: "i-ep.app",
		APIBase:    serverURL,
	})
}

func TestCreateSubdomainAttachesBothNames(t *testing.T) {
	project := newFakeProject()
	srv := httptest.NewServer(project.handler(t))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	if err := p.CreateSubdomain(context.Background(), "tenant-1", "ornek-okul"); err != nil {
		t.Fatalf("CreateSubdomain() error = %v", err)
	}

	for _, name := range []string{"ornek-okul.i-ep.app", "www.ornek-okul.i-ep.app"} {
		if _, ok := project.domains[name]; !ok {
			t.Errorf("expected %s attached to project", name)
		}
	}
}

func TestCreateSubdomainRollsBackOnPartialFailure(t *testing.T) {
	project := newFakeProject()
	project.failName = "www.ornek-okul.i-ep.app"
	srv := httptest.NewServer(project.handler(t))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	if err := p.CreateSubdomain(context.Background(), "tenant-1", "ornek-okul"); err == nil {
		t.Fatal("CreateSubdomain() expected error on partial failure")
	}
	if len(project.domains) != 0 {
		t.Errorf("expected rollback to detach the first domain, %d remain", len(project.domains))
	}
}

func TestRemoveSubdomainIsIdempotent(t *testing.T) {
	project := newFakeProject()
	srv := httptest.NewServer(project.handler(t))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	ctx := context.Background()

	if err := p.CreateSubdomain(ctx, "tenant-1", "ornek-okul"); err != nil {
		t.Fatalf("CreateSubdomain() error = %v", err)
	}
	if err := p.RemoveSubdomain(ctx, "tenant-1", "ornek-okul"); err != nil {
		t.Fatalf("RemoveSubdomain() error = %v", err)
	}
	if err := p.RemoveSubdomain(ctx, "tenant-1", "ornek-okul"); err != nil {
		t.Errorf("repeated RemoveSubdomain() error = %v", err)
	}
}

func TestRemoveCustomDomainIsIdempotent(t *testing.T) {
	project := newFakeProject()
	srv := httptest.NewServer(project.handler(t))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	ctx := context.Background()

	if _, err := p.SetupCustomDomain(ctx, "tenant-1", "okulum.com"); err != nil {
		t.Fatalf("SetupCustomDomain() error = %v", err)
	}
	if err := p.RemoveCustomDomain(ctx, "tenant-1", "okulum.com"); err != nil {
		t.Fatalf("RemoveCustomDomain() error = %v", err)
	}
	if _, ok := project.domains["okulum.com"]; ok {
		t.Error("domain was not detached from the project")
	}
	if err := p.RemoveCustomDomain(ctx, "tenant-1", "okulum.com"); err != nil {
		t.Errorf("repeated RemoveCustomDomain() error = %v", err)
	}
}

func TestSetupCustomDomainValidatesBeforeNetwork(t *testing.T) {
	project := newFakeProject()
	srv := httptest.NewServer(project.handler(t))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	if _, err := p.SetupCustomDomain(context.Background(), "tenant-1", "UPPERCASE.com"); err == nil {
		t.Error("SetupCustomDomain() expected validation error")
	}
	if project.requests != 0 {
		t.Errorf("validation must happen before any network call, saw %d requests", project.requests)
	}
}

func TestSetupCustomDomainApexGetsARecord(t *testing.T) {
	project := newFakeProject()
	srv := httptest.NewServer(project.handler(t))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	details, err := p.SetupCustomDomain(context.Background(), "tenant-1", "okulum.com")
	if err != nil {
		t.Fatalf("SetupCustomDomain() error = %v", err)
	}
	if details.Type != "A" || details.Value != apexARecord {
		t.Errorf("apex domain should get an A record, got %+v", details)
	}

	details, err = p.SetupCustomDomain(context.Background(), "tenant-1", "portal.okulum.com")
	if err != nil {
		t.Fatalf("SetupCustomDomain() error = %v", err)
	}
	if details.Type != "CNAME" || details.Value != cnameTarget {
		t.Errorf("non-apex domain should get a CNAME, got %+v", details)
	}
}

func TestVerifyCustomDomainMapping(t *testing.T) {
	tests := []struct {
		name          string
		attached      bool
		verified      bool
		misconfigured bool
		dnsConfigured bool
		sslActive     bool
	}{
		{
			name: "not attached",
		},
		{
			name:          "attached but misconfigured",
			attached:      true,
			misconfigured: true,
		},
		{
			name:          "DNS ok, not yet verified",
			attached:      true,
			dnsConfigured: true,
		},
		{
			name:          "fully verified",
			attached:      true,
			verified:      true,
			dnsConfigured: true,
			sslActive:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := newFakeProject()
			if tt.attached {
				project.domains["okulum.com"] = tt.verified
				project.misconfigured["okulum.com"] = tt.misconfigured
			}
			srv := httptest.NewServer(project.handler(t))
			defer srv.Close()

			p := newTestProvider(srv.URL)
			status, err := p.VerifyCustomDomain(context.Background(), "okulum.com")
			if err != nil {
				t.Fatalf("VerifyCustomDomain() error = %v", err)
			}
			if status.DNSConfigured != tt.dnsConfigured || status.SSLActive != tt.sslActive {
				t.Errorf("got dns=%v ssl=%v; want dns=%v ssl=%v",
					status.DNSConfigured, status.SSLActive, tt.dnsConfigured, tt.sslActive)
			}
		})
	}
}

var _ provider.Provider = (*Provider)(nil)
