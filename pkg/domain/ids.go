// Package domain holds the shared domain primitives: typed identifiers,
// addresses, and basis-point arithmetic. Keeping them here lets every
// context agree on the same types without import cycles.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ProjectID identifies a generative-art project in the registry.
type ProjectID uuid.UUID

// ParseProjectID validates and returns a ProjectID from its string form.
func ParseProjectID(s string) (ProjectID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ProjectID{}, fmt.Errorf("invalid project id: %w", err)
	}
	return ProjectID(u), nil
}

// NewProjectID returns a fresh random ProjectID.
func NewProjectID() ProjectID {
	return ProjectID(uuid.New())
}

func (id ProjectID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero UUID.
func (id ProjectID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler so the ID serializes as a
// UUID string in JSON payloads and event records.
func (id ProjectID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ProjectID) UnmarshalText(b []byte) error {
	parsed, err := ParseProjectID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// PurchaseID identifies a single purchase record.
type PurchaseID uuid.UUID

// NewPurchaseID returns a fresh random PurchaseID.
func NewPurchaseID() PurchaseID {
	return PurchaseID(uuid.New())
}

func (id PurchaseID) String() string {
	return uuid.UUID(id).String()
}

// MarshalText implements encoding.TextMarshaler.
func (id PurchaseID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *PurchaseID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return fmt.Errorf("invalid purchase id: %w", err)
	}
	*id = PurchaseID(u)
	return nil
}

// TokenID is the sequential number assigned to a minted slot. Token IDs for a
// project run from StartingTokenID upward with no gaps.
type TokenID uint64
