package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// PermissionTier is the ordered access level a user holds on a list.
// The ordinal defines a total order; tier changes through redemption are
// monotonic non-decreasing.
type PermissionTier int

const (
	TierRead  PermissionTier = 1
	TierWrite PermissionTier = 2
	TierAdmin PermissionTier = 3
)

// Valid reports whether t is one of the defined tiers.
func (t PermissionTier) Valid() bool {
	return t >= TierRead && t <= TierAdmin
}

func (t PermissionTier) String() string {
	switch t {
	case TierRead:
		return "read"
	case TierWrite:
		return "write"
	case TierAdmin:
		return "admin"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier maps the wire representation ("read", "write", "admin") to a tier.
func ParseTier(s string) (PermissionTier, error) {
	switch s {
	case "read":
		return TierRead, nil
	case "write":
		return TierWrite, nil
	case "admin":
		return TierAdmin, nil
	default:
		return 0, fmt.Errorf("%w: unknown permission tier %q", ErrInvalidInput, s)
	}
}

// MarshalJSON serializes the tier by name, keeping the ordinal an internal detail.
func (t PermissionTier) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid permission tier %d", int(t))
	}
	return json.Marshal(t.String())
}

func (t *PermissionTier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Permission represents the access a user holds on a list. At most one row
// exists per (user, list) pair.
// swagger:model Permission
type Permission struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	ListID    string         `json:"list_id"`
	Tier      PermissionTier `json:"tier"`
	GrantedAt time.Time      `json:"granted_at"`
}

// PermissionLedger defines storage for per-(user, list) permission grants.
// UpsertMaxTier is the only mutation path for tiers: it creates the row at
// the given tier or raises an existing row to max(current, tier), never
// lowering it.
type PermissionLedger interface {
	Get(ctx context.Context, userID, listID string) (*Permission, error)
	HasAny(ctx context.Context, userID, listID string) (bool, error)
	HasAtLeast(ctx context.Context, userID, listID string, tier PermissionTier) (bool, error)
	ListByListID(ctx context.Context, listID string) ([]*Permission, error)
	UpsertMaxTier(ctx context.Context, userID, listID string, tier PermissionTier) (*Permission, error)
	Revoke(ctx context.Context, userID, listID string) error
	RevokeAll(ctx context.Context, listID string) (int64, error)
}
