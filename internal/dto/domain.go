package dto

import (
	"encoding/json"
	"time"

	"go_domains/internal/model"
	"go_domains/internal/provider"
)

// DomainDTO represents a tenant domain in API responses and websocket events
type DomainDTO struct {
	ID                  string                        `json:"id"`
	TenantID            string                        `json:"tenantId"`
	Domain              string                        `json:"domain"`
	Type                string                        `json:"type"`
	Status              string                        `json:"status"`
	Provider            string                        `json:"provider"`
	VerificationDetails *provider.VerificationDetails `json:"verificationDetails,omitempty"`
	LastError           string                        `json:"lastError,omitempty"`
	CheckCount          int                           `json:"checkCount"`
	NextCheckAt         *time.Time                    `json:"nextCheckAt,omitempty"`
	VerifiedAt          *time.Time                    `json:"verifiedAt,omitempty"`
	ExpiresAt           *time.Time                    `json:"expiresAt,omitempty"`
	CreatedAt           time.Time                     `json:"createdAt"`
	UpdatedAt           time.Time                     `json:"updatedAt"`
}

// FromTenantDomain converts a TenantDomain row into its wire representation
func FromTenantDomain(record *model.TenantDomain) DomainDTO {
	item := DomainDTO{
		ID:          record.ID,
		TenantID:    record.TenantID,
		Domain:      record.Domain,
		Type:        string(record.Type),
		Status:      string(record.Status),
		Provider:    record.Provider,
		LastError:   record.LastError,
		CheckCount:  record.CheckCount,
		NextCheckAt: record.NextCheckAt,
		VerifiedAt:  record.VerifiedAt,
		ExpiresAt:   record.ExpiresAt,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}

	if len(record.VerificationDetails) > 0 {
		var details provider.VerificationDetails
		if err := json.Unmarshal(record.VerificationDetails, &details); err == nil {
			item.VerificationDetails = &details
		}
	}

	return item
}

// FromTenantDomains converts a result set, keeping its order
func FromTenantDomains(records []model.TenantDomain) []DomainDTO {
	items := make([]DomainDTO, len(records))
	for i := range records {
		items[i] = FromTenantDomain(&records[i])
	}
	return items
}
