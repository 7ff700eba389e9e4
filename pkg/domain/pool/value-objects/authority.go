package pool_vo

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// Authority is a base58-encoded Solana ed25519 public key: a miner's
// wallet, a member PDA authority, or the pool's own signer.
type Authority string

func NewAuthority(base58Encoded string) (Authority, error) {
	raw, err := base58.Decode(base58Encoded)
	if err != nil {
		return "", fmt.Errorf("authority: invalid base58 encoding: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return "", fmt.Errorf("authority: expected %d raw bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return Authority(base58Encoded), nil
}

func (a Authority) String() string {
	return string(a)
}

// PublicKey decodes the base58 string into a raw ed25519 public key.
func (a Authority) PublicKey() (ed25519.PublicKey, error) {
	raw, err := base58.Decode(string(a))
	if err != nil {
		return nil, fmt.Errorf("authority: invalid base58 encoding: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("authority: expected %d raw bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

func (a Authority) IsZero() bool {
	return a == ""
}
