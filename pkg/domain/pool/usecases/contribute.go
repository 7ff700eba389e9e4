package pool_usecases

import (
	"context"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_in "github.com/ore-pool-go/operator/pkg/domain/pool/ports/in"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// admissionFilter and aggregator are the narrow slices ContributeUseCase
// needs from pool_services.AdmissionFilter / pool_services.Aggregator.
type admissionFilter interface {
	Admit(ctx context.Context, authority pool_vo.Authority, solution pool_vo.Solution, signature []byte) (*pool_entities.Contribution, error)
}

type aggregatorInserter interface {
	Insert(c pool_entities.Contribution)
}

// ContributeUseCase implements POST /contribute: C4 then C3, in that
// order, with nothing else in between.
type ContributeUseCase struct {
	filter     admissionFilter
	aggregator aggregatorInserter
}

func NewContributeUseCase(filter admissionFilter, aggregator aggregatorInserter) *ContributeUseCase {
	return &ContributeUseCase{filter: filter, aggregator: aggregator}
}

func (uc *ContributeUseCase) Contribute(ctx context.Context, cmd pool_in.ContributeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	contribution, err := uc.filter.Admit(ctx, cmd.Authority, cmd.Solution, cmd.Signature)
	if err != nil {
		return err
	}

	uc.aggregator.Insert(*contribution)
	return nil
}
