package models

import (
	"time"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// PolicyBinding attaches exactly one pricing policy to a project. Rebinding
// replaces, never stacks.
//
// Invariants:
//   - at most one binding per project
//   - Sales counts purchases recorded against this binding, monotonic
//   - once Sales > 0 the binding and its pricing parameters are frozen;
//     reconfiguration after the first sale would change terms under earlier
//     purchasers' feet
type PolicyBinding struct {
	ProjectID domain.ProjectID `json:"project_id"`
	Config    PricingConfig    `json:"config"`
	Sales     uint64           `json:"sales"`
	BoundAt   time.Time        `json:"bound_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Frozen reports whether the binding may still be reconfigured.
func (b *PolicyBinding) Frozen() bool {
	return b.Sales > 0
}

// CanReconfigure returns a coded error when the binding is frozen.
func (b *PolicyBinding) CanReconfigure() error {
	if b.Frozen() {
		return dErrors.New(dErrors.CodeConflict, "binding is frozen after first sale")
	}
	return nil
}

// ApplySale records one more purchase against the binding.
func (b *PolicyBinding) ApplySale(now time.Time) {
	b.Sales++
	b.UpdatedAt = now
}
