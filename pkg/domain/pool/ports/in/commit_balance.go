package pool_in

import (
	"context"

	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// CommitBalanceCommand is the on-demand commit path (§4.7): the client
// submits a partially-signed transaction whose fee payer isn't the
// operator, containing exactly an attribute() instruction (optionally
// followed by a claim()).
type CommitBalanceCommand struct {
	Authority           pool_vo.Authority
	TransactionBase64    string
	RecentBlockhash      string
}

type CommitBalanceResult struct {
	TotalBalance uint64
	Signature    string
}

type CommitBalanceCommandHandler interface {
	CommitBalance(ctx context.Context, cmd CommitBalanceCommand) (*CommitBalanceResult, error)
}

// WebhookCommand is the raw payload POST /webhook/mine-event delivers:
// the authenticated upstream's notification of a landed transaction,
// carrying the full set of program log lines to scan for the mining
// event's program-return line.
type WebhookCommand struct {
	AuthToken   string
	Signature   string
	Slot        uint64
	BlockTime   int64
	LogMessages []string
}

type WebhookCommandHandler interface {
	HandleMineEvent(ctx context.Context, cmd WebhookCommand) error
}
