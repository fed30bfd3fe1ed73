package models

import (
	"time"

	"mintgate/pkg/domain"
)

// PurchaseRecord is one successful issuance. Append-only; never mutated or
// deleted once written.
type PurchaseRecord struct {
	ID        domain.PurchaseID `json:"id"`
	ProjectID domain.ProjectID  `json:"project_id"`
	Purchaser domain.Address    `json:"purchaser"`
	PricePaid uint64            `json:"price_paid"`
	TokenID   domain.TokenID    `json:"token_id"`
	CreatedAt time.Time         `json:"created_at"`
}
