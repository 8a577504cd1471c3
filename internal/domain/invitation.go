package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for invitation operations. Expired and inactive are
// distinct so clients can render "this link expired" vs "this link was
// revoked".
var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation expired")
	ErrInvitationInactive = errors.New("invitation inactive")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrHashExhausted      = errors.New("exhausted attempts to generate a unique hash")
)

// Invitation represents a single share link for a list. The capability hash
// is the sole credential: anyone presenting it may redeem until the
// invitation is cancelled or expires. Redemption does not consume it.
// swagger:model Invitation
type Invitation struct {
	ID             string         `json:"id"`
	ListID         string         `json:"list_id"`
	IssuedByUserID string         `json:"issued_by_user_id"`
	Hash           string         `json:"hash"`
	Tier           PermissionTier `json:"tier"`
	CreatedAt      time.Time      `json:"created_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
	Active         bool           `json:"active"`
}

// Valid reports whether the invitation is redeemable at the given instant.
// The wall-clock comparison wins over a stale active flag.
func (i *Invitation) Valid(now time.Time) bool {
	return i.Active && now.Before(i.ExpiresAt)
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	GetByHash(ctx context.Context, hash string) (*Invitation, error)
	ListActiveByListID(ctx context.Context, listID string) ([]*Invitation, error)
	// ActiveHashes returns the set of hashes of all currently active
	// invitations system-wide, used as the uniqueness snapshot at issue time.
	ActiveHashes(ctx context.Context) (map[string]struct{}, error)
	Deactivate(ctx context.Context, id string) error
	// DeactivateExpired flips all active invitations whose expiry has passed
	// and returns the number of rows affected.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	DeactivateByListID(ctx context.Context, listID string) (int64, error)
}

// HashGenerator produces and validates opaque capability tokens.
type HashGenerator interface {
	Generate(listID, issuerUserID string) (string, error)
	// GenerateUnique retries Generate up to maxAttempts times, rejecting any
	// result present in existing. Returns ErrHashExhausted when no unique
	// value is found.
	GenerateUnique(listID, issuerUserID string, existing map[string]struct{}, maxAttempts int) (string, error)
	ValidateFormat(candidate string) bool
}

// SharingService defines invitation issuance, redemption, and revocation.
type SharingService interface {
	// Issue creates an invitation for the list. The issuer must hold ADMIN
	// tier on the list.
	Issue(ctx context.Context, listID, issuerUserID string, tier PermissionTier, ttl time.Duration) (*Invitation, error)
	// Redeem grants the redeeming user the invitation's tier on its list,
	// creating the permission or raising a lower one. Returns the invitation
	// and the resulting permission.
	Redeem(ctx context.Context, hash, userID string) (*Invitation, *Permission, error)
	Cancel(ctx context.Context, invitationID, actingUserID string) error
	ListActive(ctx context.Context, listID, userID string) ([]*Invitation, error)
	// RevokeAccess removes the target user's grant on the list. The acting
	// user must hold ADMIN tier on the list. Invitations the target could
	// still redeem are untouched.
	RevokeAccess(ctx context.Context, listID, targetUserID, actingUserID string) error
	// SweepExpired deactivates all invitations past their expiry.
	SweepExpired(ctx context.Context) (int64, error)
}
