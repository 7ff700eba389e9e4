package pool_usecases

import (
	"context"
	"log/slog"
	"time"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_in "github.com/ore-pool-go/operator/pkg/domain/pool/ports/in"
	pool_services "github.com/ore-pool-go/operator/pkg/domain/pool/services"
)

// attributionWindow is the narrow slice HandleWebhookUseCase needs from
// pool_entities.AttributionWindow.
type attributionWindow interface {
	Get(lastHashAt int64) (*pool_entities.AttributionBucket, bool)
}

// attributionSplitter is the narrow slice needed from
// pool_services.AttributionEngine.
type attributionSplitter interface {
	Split(ctx context.Context, bucket *pool_entities.AttributionBucket, event pool_entities.MiningEvent) (memberRewards, memberScores map[string]uint64, err error)
}

// eventRecorder is the narrow slice needed from pool_services.Aggregator
// to publish a confirmed event for GET /event/{authority}.
type eventRecorder interface {
	RecordEvent(e pool_entities.PoolMiningEvent)
}

// HandleWebhookUseCase implements POST /webhook/mine-event (§4.6): the
// single entry point by which a confirmed submission's on-chain reward
// becomes a per-member balance increment. Runs once per landed
// submission transaction, driven by an upstream log-delivery webhook
// rather than the operator polling for it itself.
type HandleWebhookUseCase struct {
	expectedAuthToken string
	programID         string
	window            attributionWindow
	engine            attributionSplitter
	events            eventRecorder
}

func NewHandleWebhookUseCase(expectedAuthToken, programID string, window attributionWindow, engine attributionSplitter, events eventRecorder) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		expectedAuthToken: expectedAuthToken,
		programID:         programID,
		window:            window,
		engine:            engine,
		events:            events,
	}
}

func (uc *HandleWebhookUseCase) HandleMineEvent(ctx context.Context, cmd pool_in.WebhookCommand) error {
	if cmd.AuthToken != uc.expectedAuthToken {
		return common.NewErrUnauthorized()
	}

	event, err := pool_services.ParseMineEvent(cmd.LogMessages, uc.programID)
	if err != nil {
		// A malformed or foreign program-return line is a permanent, not a
		// transient, failure: log and accept the webhook rather than make the
		// sender retry forever (§7).
		slog.ErrorContext(ctx, "webhook: could not parse mine event, dropping", "signature", cmd.Signature, "error", err)
		return nil
	}

	bucket, ok := uc.window.Get(event.LastHashAt)
	if !ok {
		// I5: the challenge this event finalizes has already aged out of the
		// attribution window (or never entered it). Nothing to attribute.
		slog.WarnContext(ctx, "webhook: mine event for unknown or expired challenge", "last_hash_at", event.LastHashAt, "signature", cmd.Signature)
		return nil
	}

	memberRewards, memberScores, err := uc.engine.Split(ctx, bucket, event)
	if err != nil {
		return err
	}

	uc.events.RecordEvent(pool_entities.PoolMiningEvent{
		Signature:     cmd.Signature,
		Block:         cmd.Slot,
		Timestamp:     time.Unix(cmd.BlockTime, 0),
		LastHashAt:    event.LastHashAt,
		RawMineEvent:  event,
		MemberRewards: memberRewards,
		MemberScores:  memberScores,
	})

	return nil
}
