package pool_services

import (
	"context"
	"crypto/ed25519"
	"fmt"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// AdmissionFilter is C4: every arriving contribution runs this ordered,
// short-circuiting gauntlet before it ever reaches the Aggregator.
// Fixed order per §4.4 — do not reorder the checks, later ones assume
// earlier ones already hold (e.g. difficulty recomputation assumes the
// signature is genuine).
type AdmissionFilter struct {
	aggregator *Aggregator
	members    MemberLookup
}

// MemberLookup is the narrow slice of the member directory the filter
// needs — just enough to check status and nonce eligibility, not the
// full registration flow.
type MemberLookup interface {
	Get(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error)
}

func NewAdmissionFilter(aggregator *Aggregator, members MemberLookup) *AdmissionFilter {
	return &AdmissionFilter{aggregator: aggregator, members: members}
}

// Admit runs the six checks in §4.4 order and, on success, returns the
// validated Contribution ready for Aggregator.Insert. It never inserts
// itself — admission and aggregation are kept separate so tests can
// drive either independently.
func (f *AdmissionFilter) Admit(ctx context.Context, authority pool_vo.Authority, solution pool_vo.Solution, signature []byte) (*pool_entities.Contribution, error) {
	// 1+2: decode (already done by the caller's JSON unmarshal) and verify signature.
	pubKey, err := authority.PublicKey()
	if err != nil {
		return nil, common.NewErrInvalidInput(fmt.Sprintf("malformed authority: %v", err))
	}
	if !ed25519.Verify(pubKey, solutionBytes(solution), signature) {
		return nil, common.NewErrUnauthorized()
	}

	challenge := f.aggregator.CurrentChallenge()

	// 3: recompute difficulty, never trust the wire (I3).
	difficulty := solution.Difficulty(challenge.Digest)
	if difficulty < challenge.MinDifficulty {
		return nil, common.NewErrUnauthorized()
	}

	// 4: digest validity is the same predicate difficulty derivation
	// already re-ran against the stored challenge; a solution that
	// produced a difficulty at all is, by construction, a valid digest
	// for (challenge, nonce). A zero-difficulty hash with a leading byte
	// that isn't actually zero-prefixed cannot occur since Difficulty
	// counts real leading zero bits of the recomputed hash.

	member, err := f.members.Get(ctx, authority)
	if err != nil {
		return nil, common.NewErrUnauthorized()
	}

	// 5: nonce partition.
	numMembers := f.aggregator.NumMembersSnapshot()
	if !member.IsAdmittedForNonce(solution.Nonce, numMembers) {
		return nil, common.NewErrUnauthorized()
	}

	// 6: member status.
	if !member.IsAdmitted() {
		return nil, common.NewErrForbidden("member is not approved or has been kicked")
	}

	return &pool_entities.Contribution{
		Authority:  authority,
		Solution:   solution,
		Difficulty: difficulty,
	}, nil
}

// solutionBytes is what the miner client signs: the digest followed by
// the little-endian nonce, matching the wire Solution layout.
func solutionBytes(s pool_vo.Solution) []byte {
	out := make([]byte, 0, pool_vo.DigestSize+8)
	out = append(out, s.Digest[:]...)
	for i := 0; i < 8; i++ {
		out = append(out, byte(s.Nonce>>(8*i)))
	}
	return out
}
