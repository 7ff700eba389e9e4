package pool_out

import "context"

// TransactionSubmitter lands a built instruction set on-chain with the
// operator's fixed retry/confirm policy (§4.6/§4.7/§5): a fresh blockhash
// fetched on every attempt (never pooled across retries), a tip
// instruction to a randomly chosen address, bounded send retries, and
// bounded confirmation polling. Both the Submission Coordinator (C6) and
// the Attribution Engine's reconciliation runner (C7) go through this one
// choke point so the retry/tip/compute-budget policy lives in exactly
// one place.
type TransactionSubmitter interface {
	SubmitAndConfirm(ctx context.Context, instructions []Instruction) (signature string, err error)

	// CoSignAndSubmit co-signs a client-built, partially-signed transaction
	// with the operator's own key and lands exactly that transaction —
	// never a freshly built one — so on-demand commit-balance requests
	// (§4.7) submit whatever instructions the client actually included,
	// claim() among them. The client's blockhash is fixed by its own
	// signature over the message, so unlike SubmitAndConfirm this never
	// re-fetches a blockhash between retries; it only resends and re-polls.
	CoSignAndSubmit(ctx context.Context, tx *ParsedAttributionTransaction) (signature string, err error)
}
