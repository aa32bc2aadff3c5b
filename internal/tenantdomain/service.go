package tenantdomain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"go_domains/internal/hostname"
	"go_domains/internal/model"
	"go_domains/internal/provider"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	lockTTL        = 30 * time.Second
	statusCacheTTL = 30 * time.Second

	// pending domains are re-checked at a flat interval; errors back off
	pendingRecheck = time.Minute
	maxCheckCount  = 10
)

var (
	// ErrInvalidInput wraps slug and hostname validation failures
	ErrInvalidInput = errors.New("invalid input")
	// ErrSubdomainExists means the tenant already holds its one subdomain record
	ErrSubdomainExists = errors.New("tenant already has a subdomain")
	// ErrDomainExists means the FQDN is already assigned (to any tenant)
	ErrDomainExists = errors.New("domain is already assigned")
	// ErrDomainNotFound means no record matches the requested id/name
	ErrDomainNotFound = errors.New("domain record not found")
	// ErrProvisioningLocked means another provisioning call holds the per-domain lock
	ErrProvisioningLocked = errors.New("provisioning already in progress for this domain")
	// ErrProviderFailure marks errors originating from the provider API
	ErrProviderFailure = errors.New("provider request failed")
)

// Service owns the tenant_domains table and coordinates the configured
// provider with it. Verification calls are read-only and commutative;
// provisioning for one FQDN is serialized through a redis lock because the
// provider APIs do not guarantee atomic create-or-no-op across concurrent
// callers.
type Service struct {
	db         *gorm.DB
	rdb        *redis.Client
	provider   provider.Provider
	verifier   *Verifier
	baseDomain string
}

// NewService creates a new tenant domain service
func NewService(db *gorm.DB, rdb *redis.Client, p provider.Provider, baseDomain string) *Service {
	return &Service{
		db:         db,
		rdb:        rdb,
		provider:   p,
		verifier:   NewVerifier(p),
		baseDomain: baseDomain,
	}
}

// CreateSubdomain provisions {slug}.{baseDomain} at the provider and
// persists a pending record. Exactly one subdomain record may exist per
// tenant.
func (s *Service) CreateSubdomain(ctx context.Context, tenantID, slug string) (*model.TenantDomain, error) {
	if err := hostname.ValidateSlug(slug); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.TenantDomain{}).
		Where("tenant_id = ? AND type = ?", tenantID, model.TenantDomainTypeSubdomain).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing subdomain: %w", err)
	}
	if count > 0 {
		return nil, ErrSubdomainExists
	}

	fqdn := hostname.Compose(slug, s.baseDomain)

	unlock, err := s.acquireLock(ctx, fqdn)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.provider.CreateSubdomain(ctx, tenantID, slug); err != nil {
		return nil, fmt.Errorf("%w: subdomain %s: %w", ErrProviderFailure, fqdn, err)
	}

	record := s.newRecord(tenantID, fqdn, model.TenantDomainTypeSubdomain, nil)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDomainExists
		}
		return nil, fmt.Errorf("failed to persist subdomain record: %w", err)
	}

	log.Printf("[Tenant Domains] Subdomain provisioned: tenant=%s domain=%s provider=%s",
		tenantID, fqdn, s.provider.Name())

	return record, nil
}

// SetupCustomDomain registers a tenant-owned FQDN at the provider, persists
// a pending record and returns it together with the DNS instructions the
// tenant must apply. The hostname is validated before any network call.
func (s *Service) SetupCustomDomain(ctx context.Context, tenantID, domain string) (*model.TenantDomain, *provider.VerificationDetails, error) {
	if err := hostname.Validate(domain); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.TenantDomain{}).
		Where("domain = ?", domain).
		Count(&count).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to check existing domain: %w", err)
	}
	if count > 0 {
		return nil, nil, ErrDomainExists
	}

	unlock, err := s.acquireLock(ctx, domain)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	details, err := s.provider.SetupCustomDomain(ctx, tenantID, domain)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: custom domain %s: %w", ErrProviderFailure, domain, err)
	}

	record := s.newRecord(tenantID, domain, model.TenantDomainTypeCustom, details)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrDomainExists
		}
		return nil, nil, fmt.Errorf("failed to persist custom domain record: %w", err)
	}

	log.Printf("[Tenant Domains] Custom domain registered: tenant=%s domain=%s provider=%s",
		tenantID, domain, s.provider.Name())

	return record, details, nil
}

// RemoveSubdomain deletes the provider records for a tenant's subdomain
// label and the stored record. Missing provider records are tolerated, so
// the call is safe to repeat after an ambiguous earlier outcome.
func (s *Service) RemoveSubdomain(ctx context.Context, tenantID, slug string) error {
	fqdn := hostname.Compose(slug, s.baseDomain)

	var record model.TenantDomain
	err := s.db.WithContext(ctx).Where("tenant_id = ? AND domain = ?", tenantID, fqdn).First(&record).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load record for %s: %w", fqdn, err)
	}

	unlock, lockErr := s.acquireLock(ctx, fqdn)
	if lockErr != nil {
		return lockErr
	}
	defer unlock()

	if err := s.provider.RemoveSubdomain(ctx, tenantID, slug); err != nil {
		return fmt.Errorf("%w: removal of %s: %w", ErrProviderFailure, fqdn, err)
	}

	if record.ID != "" {
		if err := s.db.WithContext(ctx).Delete(&model.TenantDomain{}, "id = ?", record.ID).Error; err != nil {
			return fmt.Errorf("failed to delete record for %s: %w", fqdn, err)
		}
	}

	s.dropCachedStatus(ctx, fqdn)
	log.Printf("[Tenant Domains] Subdomain removed: tenant=%s domain=%s", tenantID, fqdn)

	return nil
}

// Remove deletes a domain record by id. Subdomain records clean up their
// provider-side DNS; custom records deregister the hostname at the provider
// so the FQDN can be set up again later (the documented rename path is
// delete then recreate). Both provider removals tolerate already-gone state.
func (s *Service) Remove(ctx context.Context, id string) error {
	var record model.TenantDomain
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDomainNotFound
		}
		return fmt.Errorf("failed to load record %s: %w", id, err)
	}

	if record.Type == model.TenantDomainTypeSubdomain {
		return s.RemoveSubdomain(ctx, record.TenantID, s.subdomainLabel(record.Domain))
	}

	unlock, err := s.acquireLock(ctx, record.Domain)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.provider.RemoveCustomDomain(ctx, record.TenantID, record.Domain); err != nil {
		return fmt.Errorf("%w: removal of %s: %w", ErrProviderFailure, record.Domain, err)
	}

	if err := s.db.WithContext(ctx).Delete(&model.TenantDomain{}, "id = ?", record.ID).Error; err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	s.dropCachedStatus(ctx, record.Domain)
	log.Printf("[Tenant Domains] Custom domain removed: tenant=%s domain=%s", record.TenantID, record.Domain)

	return nil
}

// Verify runs one verification pass for a record and persists the outcome.
// With force=false a recent cached result is returned instead of a new
// provider round-trip, which keeps dashboard polling cheap; a manual recheck
// passes force=true. Returns the refreshed record, the verification status,
// and whether the stored status changed.
func (s *Service) Verify(ctx context.Context, id string, force bool) (*model.TenantDomain, *provider.VerificationStatus, bool, error) {
	var record model.TenantDomain
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, ErrDomainNotFound
		}
		return nil, nil, false, fmt.Errorf("failed to load record %s: %w", id, err)
	}

	if !force {
		if cached := s.cachedStatus(ctx, record.Domain); cached != nil {
			return &record, cached, false, nil
		}
	}

	status := s.verifier.Verify(ctx, record.Domain)

	prev := record.Status
	updates := verifyUpdates(&record, status, time.Now())

	if err := s.db.WithContext(ctx).Model(&model.TenantDomain{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
		return nil, nil, false, fmt.Errorf("failed to persist verification for %s: %w", record.Domain, err)
	}
	if err := s.db.WithContext(ctx).Where("id = ?", record.ID).First(&record).Error; err != nil {
		return nil, nil, false, fmt.Errorf("failed to reload record %s: %w", id, err)
	}

	s.cacheStatus(ctx, record.Domain, status)

	changed := prev != record.Status
	if changed {
		log.Printf("[Tenant Domains] Status transition: domain=%s %s -> %s (%s)",
			record.Domain, prev, record.Status, status.Message)
	}

	return &record, status, changed, nil
}

// ListByTenant returns all domain records owned by a tenant
func (s *Service) ListByTenant(ctx context.Context, tenantID string) ([]model.TenantDomain, error) {
	var records []model.TenantDomain
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

// GetDue retrieves records whose verification is due: pending or error
// status with next_check_at unset or in the past
func (s *Service) GetDue(ctx context.Context, limit int) ([]model.TenantDomain, error) {
	var records []model.TenantDomain
	err := s.db.WithContext(ctx).
		Where("status IN ?", []string{
			string(model.TenantDomainStatusPending),
			string(model.TenantDomainStatusError),
		}).
		Where("(next_check_at IS NULL OR next_check_at <= ?)", time.Now()).
		Limit(limit).
		Find(&records).Error
	return records, err
}

// verifyUpdates builds the column updates one verification outcome persists.
// verified_at is written only on the first transition to active and is never
// cleared by a later failed re-check; expires_at is written only when the
// provider reported a certificate window.
func verifyUpdates(record *model.TenantDomain, status *provider.VerificationStatus, now time.Time) map[string]interface{} {
	checkCount := record.CheckCount + 1
	updates := map[string]interface{}{
		"status":        string(status.Status),
		"last_error":    truncateError(status.Error),
		"check_count":   checkCount,
		"next_check_at": nextCheckAt(status.Status, checkCount, now),
	}
	if status.Verified && record.VerifiedAt == nil {
		updates["verified_at"] = status.LastChecked
	}
	if status.ExpiresAt != nil {
		updates["expires_at"] = *status.ExpiresAt
	}
	return updates
}

// newRecord builds a pending TenantDomain row
func (s *Service) newRecord(tenantID, domain string, domainType model.TenantDomainType, details *provider.VerificationDetails) *model.TenantDomain {
	now := time.Now()
	record := &model.TenantDomain{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Domain:      domain,
		Type:        domainType,
		Status:      model.TenantDomainStatusPending,
		Provider:    s.provider.Name(),
		NextCheckAt: &now,
	}
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			record.VerificationDetails = data
		}
	}
	return record
}

// subdomainLabel strips the base domain from a stored subdomain FQDN
func (s *Service) subdomainLabel(domain string) string {
	return strings.TrimSuffix(domain, "."+s.baseDomain)
}

// nextCheckAt schedules the next automatic verification.
// Pending domains re-check at a flat interval (propagation delay is normal,
// not a failure). Errors back off exponentially, min(2^n * 30s, 30m), and
// stop after maxCheckCount so a dead domain does not poll forever; a manual
// verify still works at any time.
func nextCheckAt(status provider.Status, checkCount int, now time.Time) *time.Time {
	switch status {
	case provider.StatusActive:
		return nil
	case provider.StatusPending:
		next := now.Add(pendingRecheck)
		return &next
	default:
		if checkCount >= maxCheckCount {
			return nil
		}
		backoffSeconds := math.Min(math.Pow(2, float64(checkCount))*30, 1800)
		next := now.Add(time.Duration(backoffSeconds) * time.Second)
		return &next
	}
}

// truncateError fits an error message into the 255-char column
func truncateError(msg string) string {
	if len(msg) > 255 {
		return msg[:252] + "..."
	}
	return msg
}

// acquireLock serializes provisioning per FQDN through redis SET NX.
// Without redis (tests) provisioning proceeds unlocked.
func (s *Service) acquireLock(ctx context.Context, domain string) (func(), error) {
	if s.rdb == nil {
		return func() {}, nil
	}

	key := "domains:lock:" + domain
	ok, err := s.rdb.SetNX(ctx, key, 1, lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire provisioning lock for %s: %w", domain, err)
	}
	if !ok {
		return nil, ErrProvisioningLocked
	}

	return func() {
		_ = s.rdb.Del(context.Background(), key).Err()
	}, nil
}

// cachedStatus returns a recent verification result, if any
func (s *Service) cachedStatus(ctx context.Context, domain string) *provider.VerificationStatus {
	if s.rdb == nil {
		return nil
	}

	data, err := s.rdb.Get(ctx, "domains:verify:"+domain).Bytes()
	if err != nil {
		return nil
	}

	var status provider.VerificationStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil
	}
	return &status
}

func (s *Service) cacheStatus(ctx context.Context, domain string, status *provider.VerificationStatus) {
	if s.rdb == nil {
		return
	}
	if data, err := json.Marshal(status); err == nil {
		_ = s.rdb.Set(ctx, "domains:verify:"+domain, data, statusCacheTTL).Err()
	}
}

func (s *Service) dropCachedStatus(ctx context.Context, domain string) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, "domains:verify:"+domain).Err()
}
