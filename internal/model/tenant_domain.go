package model

import (
	"time"

	"gorm.io/datatypes"
)

// TenantDomainType represents how a domain record came to exist
type TenantDomainType string

const (
	// TenantDomainTypeSubdomain is a platform-assigned {slug}.{baseDomain} name
	TenantDomainTypeSubdomain TenantDomainType = "subdomain"
	// TenantDomainTypeCustom is a tenant-owned FQDN pointed at the platform
	TenantDomainTypeCustom TenantDomainType = "custom"
)

// TenantDomainStatus represents the verification lifecycle of a domain
type TenantDomainStatus string

const (
	TenantDomainStatusPending TenantDomainStatus = "pending"
	TenantDomainStatusActive  TenantDomainStatus = "active"
	TenantDomainStatusError   TenantDomainStatus = "error"
)

// TenantDomain represents one domain assignment for a tenant.
//
// Domain is immutable once created: providers key records by name, so a
// rename is a delete plus a recreate. The FQDN is globally unique across
// tenants; the unique index backs up what the providers enforce anyway.
// VerifiedAt records the first transition to active and is never cleared
// by a later failed re-check.
type TenantDomain struct {
	ID                  string             `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID            string             `gorm:"type:char(36);index:idx_tenant_domains_tenant;not null" json:"tenant_id"`
	Domain              string             `gorm:"type:varchar(255);uniqueIndex;not null" json:"domain"`
	Type                TenantDomainType   `gorm:"type:enum('subdomain','custom');not null" json:"type"`
	Status              TenantDomainStatus `gorm:"type:enum('pending','active','error');default:'pending'" json:"status"`
	Provider            string             `gorm:"type:varchar(32);not null" json:"provider"`
	VerificationDetails datatypes.JSON     `json:"verification_details,omitempty"`
	LastError           string             `gorm:"type:varchar(255)" json:"last_error,omitempty"`
	CheckCount          int                `gorm:"default:0" json:"check_count"`
	NextCheckAt         *time.Time         `json:"next_check_at,omitempty"`
	VerifiedAt          *time.Time         `json:"verified_at,omitempty"`
	ExpiresAt           *time.Time         `json:"expires_at,omitempty"`
	CreatedAt           time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for TenantDomain model
func (TenantDomain) TableName() string {
	return "tenant_domains"
}
