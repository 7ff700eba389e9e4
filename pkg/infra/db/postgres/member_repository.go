// Package postgres is the relational persistence driver: members are the
// only durable aggregate this operator keeps (§6), via sqlx over lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// Schema (see SPEC_FULL.md §6):
//
//	CREATE TABLE members (
//	    id               UUID PRIMARY KEY,
//	    member_id        BIGINT NOT NULL,
//	    address          TEXT NOT NULL UNIQUE,
//	    authority        TEXT NOT NULL UNIQUE,
//	    pool_address     TEXT NOT NULL,
//	    total_balance    NUMERIC(20, 0) NOT NULL DEFAULT 0,
//	    is_approved      BOOLEAN NOT NULL DEFAULT false,
//	    is_kyc           BOOLEAN NOT NULL DEFAULT false,
//	    is_kicked        BOOLEAN NOT NULL DEFAULT false,
//	    is_synced        BOOLEAN NOT NULL DEFAULT true,
//	    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
//	);

type memberRow struct {
	ID          string `db:"id"`
	MemberID    int64  `db:"member_id"`
	Address     string `db:"address"`
	Authority   string `db:"authority"`
	PoolAddress string `db:"pool_address"`
	// total_balance is stored NUMERIC to hold a full u64 range; sqlx scans
	// it through a string to avoid float64 truncation.
	TotalBalance string    `db:"total_balance"`
	IsApproved   bool      `db:"is_approved"`
	IsKYC        bool      `db:"is_kyc"`
	IsKicked     bool      `db:"is_kicked"`
	IsSynced     bool      `db:"is_synced"`
	CreatedAt    sql.NullTime `db:"created_at"`
	UpdatedAt    sql.NullTime `db:"updated_at"`
}

type MemberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(dataSourceURL string) (*MemberRepository, error) {
	db, err := sqlx.Connect("postgres", dataSourceURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return &MemberRepository{db: db}, nil
}

var _ pool_out.MemberRepository = (*MemberRepository)(nil)

// DB exposes the underlying handle for health checks; no other caller
// should reach through this.
func (r *MemberRepository) DB() *sqlx.DB {
	return r.db
}

func (r *MemberRepository) FindByAuthority(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error) {
	var row memberRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM members WHERE authority = $1`, authority.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find member by authority: %w", err)
	}
	return rowToMember(row)
}

func (r *MemberRepository) FindByAddress(ctx context.Context, address string) (*pool_entities.Member, error) {
	var row memberRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM members WHERE address = $1`, address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find member by address: %w", err)
	}
	return rowToMember(row)
}

func (r *MemberRepository) Insert(ctx context.Context, member *pool_entities.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (id, member_id, address, authority, pool_address, total_balance, is_approved, is_kyc, is_kicked, is_synced, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		ON CONFLICT (authority) DO NOTHING`,
		member.GetID(), member.ID, member.Address, member.Authority.String(), member.PoolAddress,
		fmt.Sprintf("%d", member.TotalBalance), member.IsApproved, member.IsKYC, member.IsKicked, member.IsSynced)
	if err != nil {
		return fmt.Errorf("postgres: insert member: %w", err)
	}
	return nil
}

func (r *MemberRepository) IncrementTotalBalance(ctx context.Context, address string, delta uint64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE members SET total_balance = total_balance + $2, is_synced = false, updated_at = now()
		WHERE address = $1`, address, fmt.Sprintf("%d", delta))
	if err != nil {
		return fmt.Errorf("postgres: increment total balance: %w", err)
	}
	return nil
}

func (r *MemberRepository) MarkSynced(ctx context.Context, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE members SET is_synced = true, updated_at = now() WHERE address = ANY($1)`, addresses)
	if err != nil {
		return fmt.Errorf("postgres: mark synced: %w", err)
	}
	return nil
}

func (r *MemberRepository) ListUnsynced(ctx context.Context, limit int) ([]pool_entities.Member, error) {
	var rows []memberRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM members WHERE is_synced = false ORDER BY updated_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list unsynced: %w", err)
	}

	members := make([]pool_entities.Member, 0, len(rows))
	for _, row := range rows {
		m, err := rowToMember(row)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, nil
}

func (r *MemberRepository) CountApproved(ctx context.Context) (uint64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM members WHERE is_approved = true AND is_kicked = false`)
	if err != nil {
		return 0, fmt.Errorf("postgres: count approved: %w", err)
	}
	return uint64(count), nil
}

func rowToMember(row memberRow) (*pool_entities.Member, error) {
	authority, err := pool_vo.NewAuthority(row.Authority)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode authority: %w", err)
	}

	var totalBalance uint64
	if _, err := fmt.Sscanf(row.TotalBalance, "%d", &totalBalance); err != nil {
		return nil, fmt.Errorf("postgres: decode total_balance: %w", err)
	}

	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode id: %w", err)
	}

	return &pool_entities.Member{
		BaseEntity: common.BaseEntity{
			ID:        id,
			CreatedAt: row.CreatedAt.Time,
			UpdatedAt: row.UpdatedAt.Time,
		},
		Address:      row.Address,
		ID:           uint64(row.MemberID),
		Authority:    authority,
		PoolAddress:  row.PoolAddress,
		TotalBalance: totalBalance,
		IsApproved:   row.IsApproved,
		IsKYC:        row.IsKYC,
		IsKicked:     row.IsKicked,
		IsSynced:     row.IsSynced,
	}, nil
}
