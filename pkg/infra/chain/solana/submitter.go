package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
)

// Submitter lands a set of instructions as one transaction, refetching
// the blockhash on every retry (stale blockhashes are the single most
// common reason a Solana transaction silently fails to land) and tipping
// a random address each attempt, per §4.6/§6's retry policy.
type Submitter struct {
	chain   pool_out.ChainClient
	program pool_out.PoolProgramClient
	keypair *Keypair
}

func NewSubmitter(chain pool_out.ChainClient, program pool_out.PoolProgramClient, keypair *Keypair) *Submitter {
	return &Submitter{chain: chain, program: program, keypair: keypair}
}

var _ pool_out.TransactionSubmitter = (*Submitter)(nil)

func (s *Submitter) SubmitAndConfirm(ctx context.Context, instructions []pool_out.Instruction) (string, error) {
	var lastErr error

	for attempt := 0; attempt < common.SubmitRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(common.SubmitRetryInterval):
			}
		}

		blockhash, err := s.chain.LatestBlockhash(ctx)
		if err != nil {
			lastErr = fmt.Errorf("submit: fetch blockhash: %w", err)
			slog.ErrorContext(ctx, "submit: attempt failed", "attempt", attempt, "error", lastErr)
			continue
		}

		withTip := append(append([]pool_out.Instruction{}, instructions...), s.program.TipInstruction(s.keypair.Address))
		msg := compileMessage(s.keypair.Address, blockhash, withTip)
		signers := map[string]ed25519.PrivateKey{s.keypair.Address: s.keypair.PrivateKey}
		encoded, err := signAndEncode(msg, signers)
		if err != nil {
			lastErr = fmt.Errorf("submit: sign transaction: %w", err)
			slog.ErrorContext(ctx, "submit: attempt failed", "attempt", attempt, "error", lastErr)
			continue
		}

		signature, err := s.chain.SendTransaction(ctx, encoded)
		if err != nil {
			lastErr = fmt.Errorf("submit: send transaction: %w", err)
			slog.ErrorContext(ctx, "submit: attempt failed", "attempt", attempt, "error", lastErr)
			continue
		}

		confirmed, err := s.pollConfirm(ctx, signature)
		if err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "submit: confirmation failed, will retry with fresh blockhash", "attempt", attempt, "signature", signature, "error", err)
			continue
		}
		if confirmed {
			return signature, nil
		}
		lastErr = fmt.Errorf("submit: signature %s never confirmed within poll budget", signature)
	}

	return "", fmt.Errorf("submit: exhausted %d attempts: %w", common.SubmitRetryAttempts, lastErr)
}

// CoSignAndSubmit fills the operator's signature slot into the client's
// own already-built transaction bytes and lands exactly that transaction.
// The client's signature covers the message bytes (including the
// blockhash it chose), so unlike SubmitAndConfirm this never re-fetches a
// blockhash between attempts — re-signing over a different message would
// invalidate the client's own signature.
func (s *Submitter) CoSignAndSubmit(ctx context.Context, tx *pool_out.ParsedAttributionTransaction) (string, error) {
	signed := make([]byte, len(tx.Raw))
	copy(signed, tx.Raw)

	signature := ed25519.Sign(s.keypair.PrivateKey, signed[tx.MessageOffset:])
	copy(signed[tx.OperatorSignatureOffset:tx.OperatorSignatureOffset+ed25519.SignatureSize], signature)

	encoded := base64.StdEncoding.EncodeToString(signed)

	var lastErr error
	for attempt := 0; attempt < common.SubmitRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(common.SubmitRetryInterval):
			}
		}

		sig, err := s.chain.SendTransaction(ctx, encoded)
		if err != nil {
			lastErr = fmt.Errorf("co-sign submit: send transaction: %w", err)
			slog.ErrorContext(ctx, "co-sign submit: attempt failed", "attempt", attempt, "error", lastErr)
			continue
		}

		confirmed, err := s.pollConfirm(ctx, sig)
		if err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "co-sign submit: confirmation failed, will retry", "attempt", attempt, "signature", sig, "error", err)
			continue
		}
		if confirmed {
			return sig, nil
		}
		lastErr = fmt.Errorf("co-sign submit: signature %s never confirmed within poll budget", sig)
	}

	return "", fmt.Errorf("co-sign submit: exhausted %d attempts: %w", common.SubmitRetryAttempts, lastErr)
}

func (s *Submitter) pollConfirm(ctx context.Context, signature string) (bool, error) {
	for i := 0; i < common.ConfirmPollAttempts; i++ {
		confirmed, err := s.chain.ConfirmTransaction(ctx, signature)
		if err != nil {
			return false, err
		}
		if confirmed {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(common.ConfirmPollInterval):
		}
	}
	return false, nil
}
