package pool_usecases

import (
	"context"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// memberDirectory is the narrow dependency these use cases need from
// pool_services.MemberDirectory — declared here so the use case package
// depends on behavior, not the concrete service type.
type memberDirectory interface {
	GetOrRegister(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error)
	Get(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error)
}

// RegisterMemberUseCase implements POST /register.
type RegisterMemberUseCase struct {
	members memberDirectory
}

func NewRegisterMemberUseCase(members memberDirectory) *RegisterMemberUseCase {
	return &RegisterMemberUseCase{members: members}
}

func (uc *RegisterMemberUseCase) GetOrRegister(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error) {
	return uc.members.GetOrRegister(ctx, authority)
}

// GetMemberUseCase implements GET /member/{authority}.
type GetMemberUseCase struct {
	members memberDirectory
}

func NewGetMemberUseCase(members memberDirectory) *GetMemberUseCase {
	return &GetMemberUseCase{members: members}
}

func (uc *GetMemberUseCase) Get(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error) {
	return uc.members.Get(ctx, authority)
}
