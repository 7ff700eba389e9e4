// Package pool_in defines inbound command/query interfaces the HTTP edge (C8) drives.
package pool_in

import (
	"context"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// MemberCommand covers registration and member mutation reachable from HTTP.
type MemberCommand interface {
	// GetOrRegister implements the §4.2 registration policy: local hit
	// returns as-is; local miss + on-chain hit inserts locally
	// (is_approved=false); local miss + on-chain miss returns NotFound and
	// creates nothing on-chain.
	GetOrRegister(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error)
}

// MemberQuery covers read-only member lookups.
type MemberQuery interface {
	Get(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error)
}

// ContributeCommand is the admission + aggregation pipeline (C4 → C3)
// triggered by POST /contribute.
type ContributeCommand struct {
	Authority pool_vo.Authority
	Solution  pool_vo.Solution
	Signature []byte
}

func (c *ContributeCommand) Validate() error {
	if c.Authority.IsZero() {
		return &ValidationError{Field: "authority", Message: "authority is required"}
	}
	if len(c.Signature) == 0 {
		return &ValidationError{Field: "signature", Message: "signature is required"}
	}
	return nil
}

type ContributionCommand interface {
	Contribute(ctx context.Context, cmd ContributeCommand) error
}

// ValidationError represents a malformed-input (§7) rejection.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
