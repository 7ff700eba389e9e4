package solana

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
)

// Keypair is the operator's own signing key, loaded from the Solana CLI's
// standard JSON byte-array keypair format: a 64-byte array of
// [seed(32)||pubkey(32)].
type Keypair struct {
	PrivateKey ed25519.PrivateKey
	Address    string
}

func LoadKeypair(path string) (*Keypair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("solana: read keypair file: %w", err)
	}

	var bytes []byte
	if err := json.Unmarshal(raw, &bytes); err != nil {
		return nil, fmt.Errorf("solana: parse keypair file %s: %w", path, err)
	}
	if len(bytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("solana: keypair file %s: expected %d bytes, got %d", path, ed25519.PrivateKeySize, len(bytes))
	}

	key := ed25519.PrivateKey(bytes)
	pub := key.Public().(ed25519.PublicKey)

	return &Keypair{
		PrivateKey: key,
		Address:    base58.Encode(pub),
	}, nil
}
