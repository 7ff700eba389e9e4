package pool_out

import (
	"context"

	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// Instruction is a minimal, transport-agnostic mirror of a Solana
// instruction: a program id, the accounts it touches, and opaque
// borsh/raw data. Building and signing full transactions is the
// PoolProgramClient's job; ChainClient only ever moves already-built,
// already-serialized transactions across the wire.
type Instruction struct {
	ProgramID string
	Accounts  []AccountMeta
	Data      []byte
}

type AccountMeta struct {
	Pubkey     string
	IsSigner   bool
	IsWritable bool
}

// ChainClient is the low-level Solana JSON-RPC collaborator. No Solana
// SDK exists anywhere in the reference corpus (see DESIGN.md), so this
// is a small hand-rolled surface over the handful of RPC methods the
// operator actually calls, in the shape of the teacher's own bespoke
// HTTP collaborators (pkg/infra/clients).
type ChainClient interface {
	LatestBlockhash(ctx context.Context) (string, error)
	GetAccountInfo(ctx context.Context, address string) ([]byte, error)
	SendTransaction(ctx context.Context, signedTxBase64 string) (signature string, err error)
	SimulateTransaction(ctx context.Context, signedTxBase64 string) (logMessages []string, err error)
	ConfirmTransaction(ctx context.Context, signature string) (confirmed bool, err error)
	GetTransactionLogs(ctx context.Context, signature string) ([]string, error)
}

// ProofAccount mirrors the on-chain proof account this operator polls
// for challenge rotation (C1).
type ProofAccount struct {
	Challenge     [32]byte
	LastHashAt    int64
	MinDifficulty uint32
}

// PoolProgramClient derives addresses and builds the pool program's
// instructions. Kept separate from ChainClient (transport) the same way
// the teacher separates ChainClient from VaultContract/LedgerContract in
// pkg/domain/blockchain/ports/out — a program-aware layer above a
// program-agnostic transport.
type PoolProgramClient interface {
	PoolPDA(operatorAuthority pool_vo.Authority) (address string, bump uint8)
	MemberPDA(memberAuthority pool_vo.Authority, poolAddress string) (address string, bump uint8)

	GetProof(ctx context.Context, poolAddress string) (*ProofAccount, error)
	GetPoolConfigMinDifficulty(ctx context.Context) (uint32, error)
	GetOnChainMember(ctx context.Context, memberAuthority pool_vo.Authority, poolAddress string) (exists bool, id uint64, err error)

	BuildSubmitInstruction(poolAddress string, digest [16]byte, nonce uint64, attestation [32]byte) Instruction
	BuildAttributeInstruction(poolAddress, memberAddress string, totalBalance uint64) Instruction
	ComputeBudgetInstructions() []Instruction
	TipInstruction(feePayer string) Instruction
}
