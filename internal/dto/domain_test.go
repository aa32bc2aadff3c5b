package dto

import (
	"encoding/json"
	"testing"
	"time"

	"gorm.io/datatypes"

	"go_domains/internal/model"
)

func TestFromTenantDomain(t *testing.T) {
	verified := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	record := &model.TenantDomain{
		ID:                  "rec-1",
		TenantID:            "tenant-1",
		Domain:              "okulum.com",
		Type:                model.TenantDomainTypeCustom,
		Status:              model.TenantDomainStatusActive,
		Provider:            "cloudflare",
		VerificationDetails: datatypes.JSON(`{"type":"CNAME","name":"okulum.com","value":"edge.i-ep.app"}`),
		CheckCount:          3,
		VerifiedAt:          &verified,
	}

	item := FromTenantDomain(record)
	if item.ID != "rec-1" || item.TenantID != "tenant-1" || item.Domain != "okulum.com" {
		t.Errorf("identity fields not mapped: %+v", item)
	}
	if item.Type != "custom" || item.Status != "active" || item.Provider != "cloudflare" {
		t.Errorf("enum fields not mapped: %+v", item)
	}
	if item.VerificationDetails == nil || item.VerificationDetails.Value != "edge.i-ep.app" {
		t.Errorf("verification details not decoded: %+v", item.VerificationDetails)
	}
	if item.VerifiedAt == nil || !item.VerifiedAt.Equal(verified) {
		t.Errorf("verifiedAt not mapped: %v", item.VerifiedAt)
	}
}

func TestFromTenantDomainWireShape(t *testing.T) {
	record := &model.TenantDomain{
		ID:       "rec-1",
		TenantID: "tenant-1",
		Domain:   "ornek-okul.i-ep.app",
		Type:     model.TenantDomainTypeSubdomain,
		Status:   model.TenantDomainStatusPending,
		Provider: "vercel",
	}

	raw, err := json.Marshal(FromTenantDomain(record))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"id", "tenantId", "domain", "type", "status", "provider", "checkCount", "createdAt", "updatedAt"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("wire payload missing %q: %v", key, fields)
		}
	}
	for _, key := range []string{"tenant_id", "check_count", "lastError", "verifiedAt"} {
		if _, ok := fields[key]; ok {
			t.Errorf("wire payload should omit %q: %v", key, fields)
		}
	}
}

func TestFromTenantDomainToleratesBadDetails(t *testing.T) {
	record := &model.TenantDomain{
		ID:                  "rec-1",
		VerificationDetails: datatypes.JSON(`not json`),
	}
	if item := FromTenantDomain(record); item.VerificationDetails != nil {
		t.Errorf("expected nil details for undecodable payload, got %+v", item.VerificationDetails)
	}
}

func TestFromTenantDomainsKeepsOrder(t *testing.T) {
	records := []model.TenantDomain{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	items := FromTenantDomains(records)
	if len(items) != 3 || items[0].ID != "a" || items[2].ID != "c" {
		t.Errorf("unexpected conversion: %+v", items)
	}
}
