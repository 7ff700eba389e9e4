package pool_usecases

import (
	"context"

	pool_in "github.com/ore-pool-go/operator/pkg/domain/pool/ports/in"
)

// GetAddressUseCase implements GET /address: the pool's own PDA, derived
// once at startup and handed out verbatim thereafter.
type GetAddressUseCase struct {
	view pool_in.AddressView
}

func NewGetAddressUseCase(poolAddress string, bump uint8) *GetAddressUseCase {
	return &GetAddressUseCase{view: pool_in.AddressView{PoolAddress: poolAddress, Bump: bump}}
}

func (uc *GetAddressUseCase) Address(ctx context.Context) (*pool_in.AddressView, error) {
	v := uc.view
	return &v, nil
}
