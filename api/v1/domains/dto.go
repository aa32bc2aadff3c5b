package domains

import (
	"go_domains/internal/dto"
	"go_domains/internal/provider"
)

// VerifyResultDTO pairs the refreshed record with the live verification outcome
type VerifyResultDTO struct {
	Domain dto.DomainDTO                `json:"domain"`
	Result *provider.VerificationStatus `json:"result"`
}
