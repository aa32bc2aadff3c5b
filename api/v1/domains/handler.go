package domains

import (
	"errors"

	"go_domains/internal/dto"
	"go_domains/internal/httpx"
	"go_domains/internal/tenantdomain"
	"go_domains/internal/ws"

	"github.com/gin-gonic/gin"
)

// CreateSubdomainRequest represents create subdomain request
type CreateSubdomainRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
}

// SetupCustomDomainRequest represents setup custom domain request
type SetupCustomDomainRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	Domain   string `json:"domain" binding:"required"`
}

// DeleteRequest represents delete domain request
type DeleteRequest struct {
	ID string `json:"id" binding:"required"`
}

// VerifyRequest represents verify domain request
type VerifyRequest struct {
	ID    string `json:"id" binding:"required"`
	Force bool   `json:"force"`
}

// Handler handles tenant domain API
type Handler struct {
	service *tenantdomain.Service
}

// NewHandler creates a new domains handler
func NewHandler(service *tenantdomain.Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/v1/domains?tenant_id=xxx
func (h *Handler) List(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		httpx.FailErr(c, httpx.ErrParamInvalid("tenant_id is required"))
		return
	}

	records, err := h.service.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to query domains", err))
		return
	}

	items := dto.FromTenantDomains(records)

	httpx.OK(c, gin.H{
		"items": items,
		"total": len(items),
	})
}

// CreateSubdomain handles POST /api/v1/domains/subdomain
func (h *Handler) CreateSubdomain(c *gin.Context) {
	var req CreateSubdomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	record, err := h.service.CreateSubdomain(c.Request.Context(), req.TenantID, req.Slug)
	if err != nil {
		httpx.FailErr(c, mapServiceError(err))
		return
	}

	item := dto.FromTenantDomain(record)
	_ = ws.PublishDomainEvent("add", item)

	httpx.OK(c, item)
}

// SetupCustomDomain handles POST /api/v1/domains/custom
func (h *Handler) SetupCustomDomain(c *gin.Context) {
	var req SetupCustomDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	record, details, err := h.service.SetupCustomDomain(c.Request.Context(), req.TenantID, req.Domain)
	if err != nil {
		httpx.FailErr(c, mapServiceError(err))
		return
	}

	item := dto.FromTenantDomain(record)
	_ = ws.PublishDomainEvent("add", item)

	httpx.OK(c, gin.H{
		"domain":       item,
		"instructions": details,
	})
}

// Delete handles POST /api/v1/domains/delete
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	if err := h.service.Remove(c.Request.Context(), req.ID); err != nil {
		httpx.FailErr(c, mapServiceError(err))
		return
	}

	_ = ws.PublishDomainEvent("delete", gin.H{"id": req.ID})

	httpx.OKMsg(c, "domain removed", gin.H{"id": req.ID})
}

// Verify handles POST /api/v1/domains/verify
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	record, status, changed, err := h.service.Verify(c.Request.Context(), req.ID, req.Force)
	if err != nil {
		httpx.FailErr(c, mapServiceError(err))
		return
	}

	item := dto.FromTenantDomain(record)
	if changed {
		_ = ws.PublishDomainEvent("update", item)
	}

	httpx.OK(c, VerifyResultDTO{
		Domain: item,
		Result: status,
	})
}

// mapServiceError translates service sentinels to API errors
func mapServiceError(err error) *httpx.AppError {
	switch {
	case errors.Is(err, tenantdomain.ErrSubdomainExists),
		errors.Is(err, tenantdomain.ErrDomainExists):
		return httpx.ErrAlreadyExists(err.Error())
	case errors.Is(err, tenantdomain.ErrDomainNotFound):
		return httpx.ErrNotFound(err.Error())
	case errors.Is(err, tenantdomain.ErrProvisioningLocked):
		return httpx.ErrStateConflict(err.Error())
	case errors.Is(err, tenantdomain.ErrProviderFailure):
		return httpx.ErrProviderError("provider request failed", err)
	case errors.Is(err, tenantdomain.ErrInvalidInput):
		return httpx.ErrParamInvalid(err.Error())
	default:
		return httpx.ErrInternalError("request failed", err)
	}
}
