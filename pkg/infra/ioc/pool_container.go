package ioc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	container "github.com/golobby/container/v3"
	"github.com/joho/godotenv"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
	pool_services "github.com/ore-pool-go/operator/pkg/domain/pool/services"
	pool_usecases "github.com/ore-pool-go/operator/pkg/domain/pool/usecases"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
	"github.com/ore-pool-go/operator/pkg/infra/chain/solana"
	"github.com/ore-pool-go/operator/pkg/infra/db/postgres"
)

// PoolEnvironmentConfig reads §6's environment variables into common.Config.
// KEYPAIR_PATH, RPC_URL, DB_URL, OPERATOR_COMMISSION, and POOL_PROGRAM_ID are
// required; a missing one is a fatal configuration error (§6's "non-zero on
// fatal configuration (missing env)"), not a silent default.
func PoolEnvironmentConfig() (common.Config, error) {
	keypairPath, err := requireEnv("KEYPAIR_PATH")
	if err != nil {
		return common.Config{}, err
	}
	rpcURL, err := requireEnv("RPC_URL")
	if err != nil {
		return common.Config{}, err
	}
	poolAddress, err := requireEnv("POOL_PROGRAM_ID")
	if err != nil {
		return common.Config{}, err
	}
	dbURL, err := requireEnv("DB_URL")
	if err != nil {
		return common.Config{}, err
	}
	commissionRaw, err := requireEnv("OPERATOR_COMMISSION")
	if err != nil {
		return common.Config{}, err
	}
	commission, err := strconv.ParseUint(commissionRaw, 10, 8)
	if err != nil {
		return common.Config{}, fmt.Errorf("invalid OPERATOR_COMMISSION: %w", err)
	}

	minFloor, err := strconv.ParseUint(getenvDefault("OPERATOR_MIN_DIFFICULTY_FLOOR", "0"), 10, 32)
	if err != nil {
		return common.Config{}, fmt.Errorf("invalid OPERATOR_MIN_DIFFICULTY_FLOOR: %w", err)
	}

	return common.Config{
		Chain: common.ChainConfig{
			KeypairPath: keypairPath,
			RPCURL:      rpcURL,
			PoolAddress: poolAddress,
		},
		Database: common.DatabaseConfig{
			URL: dbURL,
		},
		Webhook: common.WebhookConfig{
			HeliusAuthToken: os.Getenv("HELIUS_AUTH_TOKEN"),
		},
		Operator: common.OperatorConfig{
			CommissionPercent:  uint8(commission),
			MinDifficultyFloor: uint32(minFloor),
		},
	}, nil
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("missing required environment variable %s", key)
	}
	return v, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// WithPoolEnvFile loads a local .env in development, same as the rest of
// the module.
func (b *ContainerBuilder) WithPoolEnvFile() *ContainerBuilder {
	if os.Getenv("DEV_ENV") == "true" {
		if err := godotenv.Load(); err != nil {
			slog.Warn("no .env file loaded", "error", err)
		}
	}

	err := b.Container.Singleton(func() (common.Config, error) {
		return PoolEnvironmentConfig()
	})
	if err != nil {
		slog.Error("failed to register pool config")
		panic(err)
	}
	return b
}

// WithPoolAPI wires every domain and infra component the operator needs:
// the Solana RPC/program/submitter/parser trio, the Postgres member
// repository, and every pool_services collaborator on top of them. One
// Aggregator, one AttributionWindow, one MemberDirectory — singletons for
// the whole process lifetime (§9: no lazy singletons, no per-request
// construction).
func (b *ContainerBuilder) WithPoolAPI() *ContainerBuilder {
	c := b.Container

	mustSingleton(c, func() (*solana.Keypair, error) {
		var cfg common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return solana.LoadKeypair(cfg.Chain.KeypairPath)
	})

	mustSingleton(c, func() (*solana.RPCClient, error) {
		var cfg common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return solana.NewRPCClient(cfg.Chain.RPCURL), nil
	})

	mustSingleton(c, func() (pool_out.ChainClient, error) {
		var rpc *solana.RPCClient
		if err := c.Resolve(&rpc); err != nil {
			return nil, err
		}
		return rpc, nil
	})

	mustSingleton(c, func() (*solana.ProgramClient, error) {
		var chain pool_out.ChainClient
		var cfg common.Config
		if err := c.Resolve(&chain); err != nil {
			return nil, err
		}
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return solana.NewProgramClient(chain, cfg.Chain.PoolAddress), nil
	})

	mustSingleton(c, func() (pool_out.PoolProgramClient, error) {
		var program *solana.ProgramClient
		if err := c.Resolve(&program); err != nil {
			return nil, err
		}
		return program, nil
	})

	mustSingleton(c, func() (pool_out.TransactionSubmitter, error) {
		var chain pool_out.ChainClient
		var program pool_out.PoolProgramClient
		var keypair *solana.Keypair
		if err := c.Resolve(&chain); err != nil {
			return nil, err
		}
		if err := c.Resolve(&program); err != nil {
			return nil, err
		}
		if err := c.Resolve(&keypair); err != nil {
			return nil, err
		}
		return solana.NewSubmitter(chain, program, keypair), nil
	})

	mustSingleton(c, func() (pool_out.TransactionParser, error) {
		var cfg common.Config
		var keypair *solana.Keypair
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		if err := c.Resolve(&keypair); err != nil {
			return nil, err
		}
		return solana.NewParser(cfg.Chain.PoolAddress, keypair.Address), nil
	})

	mustSingleton(c, func() (pool_out.MemberRepository, error) {
		var cfg common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		repo, err := postgres.NewMemberRepository(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return repo, nil
	})

	mustSingleton(c, func() (*pool_services.MemberDirectory, error) {
		var repo pool_out.MemberRepository
		var program pool_out.PoolProgramClient
		var cfg common.Config
		if err := c.Resolve(&repo); err != nil {
			return nil, err
		}
		if err := c.Resolve(&program); err != nil {
			return nil, err
		}
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return pool_services.NewMemberDirectory(repo, program, cfg.Chain.PoolAddress), nil
	})

	mustSingleton(c, func() (*pool_services.ChallengeReader, error) {
		var program pool_out.PoolProgramClient
		var members *pool_services.MemberDirectory
		var cfg common.Config
		if err := c.Resolve(&program); err != nil {
			return nil, err
		}
		if err := c.Resolve(&members); err != nil {
			return nil, err
		}
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return pool_services.NewChallengeReader(program, cfg.Chain.PoolAddress, cfg.Operator.MinDifficultyFloor, members), nil
	})

	mustSingleton(c, func() (*pool_services.Aggregator, error) {
		var reader *pool_services.ChallengeReader
		if err := c.Resolve(&reader); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		initial, err := reader.CurrentChallenge(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: fetch initial challenge: %w", err)
		}
		return pool_services.NewAggregator(initial, initial.NumMembersSnapshot), nil
	})

	mustSingleton(c, func() (*pool_services.AdmissionFilter, error) {
		var aggregator *pool_services.Aggregator
		var members *pool_services.MemberDirectory
		if err := c.Resolve(&aggregator); err != nil {
			return nil, err
		}
		if err := c.Resolve(&members); err != nil {
			return nil, err
		}
		return pool_services.NewAdmissionFilter(aggregator, members), nil
	})

	mustSingleton(c, func() (*pool_entities.AttributionWindow, error) {
		return pool_entities.NewAttributionWindow(common.AttributionWindowSize), nil
	})

	mustSingleton(c, func() (*pool_services.SubmissionCoordinator, error) {
		var aggregator *pool_services.Aggregator
		var reader *pool_services.ChallengeReader
		var program pool_out.PoolProgramClient
		var submitter pool_out.TransactionSubmitter
		var window *pool_entities.AttributionWindow
		if err := c.Resolve(&aggregator); err != nil {
			return nil, err
		}
		if err := c.Resolve(&reader); err != nil {
			return nil, err
		}
		if err := c.Resolve(&program); err != nil {
			return nil, err
		}
		if err := c.Resolve(&submitter); err != nil {
			return nil, err
		}
		if err := c.Resolve(&window); err != nil {
			return nil, err
		}
		return pool_services.NewSubmissionCoordinator(aggregator, reader, program, submitter, window), nil
	})

	mustSingleton(c, func() (*pool_services.AttributionEngine, error) {
		var members *pool_services.MemberDirectory
		var program pool_out.PoolProgramClient
		var submitter pool_out.TransactionSubmitter
		var cfg common.Config
		if err := c.Resolve(&members); err != nil {
			return nil, err
		}
		if err := c.Resolve(&program); err != nil {
			return nil, err
		}
		if err := c.Resolve(&submitter); err != nil {
			return nil, err
		}
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return pool_services.NewAttributionEngine(members, program, submitter, cfg.Chain.PoolAddress, cfg.Operator.CommissionPercent), nil
	})

	b.withPoolUseCases()

	return b
}

func (b *ContainerBuilder) withPoolUseCases() *ContainerBuilder {
	c := b.Container

	mustSingleton(c, func() (*pool_usecases.GetAddressUseCase, error) {
		var program *solana.ProgramClient
		var keypair *solana.Keypair
		var cfg common.Config
		if err := c.Resolve(&program); err != nil {
			return nil, err
		}
		if err := c.Resolve(&keypair); err != nil {
			return nil, err
		}
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		authority, err := pool_vo.NewAuthority(keypair.Address)
		if err != nil {
			return nil, err
		}
		address, bump := program.PoolPDA(authority)
		return pool_usecases.NewGetAddressUseCase(address, bump), nil
	})

	mustSingleton(c, func() (*pool_usecases.RegisterMemberUseCase, error) {
		var members *pool_services.MemberDirectory
		if err := c.Resolve(&members); err != nil {
			return nil, err
		}
		return pool_usecases.NewRegisterMemberUseCase(members), nil
	})

	mustSingleton(c, func() (*pool_usecases.GetMemberUseCase, error) {
		var members *pool_services.MemberDirectory
		if err := c.Resolve(&members); err != nil {
			return nil, err
		}
		return pool_usecases.NewGetMemberUseCase(members), nil
	})

	mustSingleton(c, func() (*pool_usecases.GetChallengeUseCase, error) {
		var aggregator *pool_services.Aggregator
		var members *pool_services.MemberDirectory
		if err := c.Resolve(&aggregator); err != nil {
			return nil, err
		}
		if err := c.Resolve(&members); err != nil {
			return nil, err
		}
		return pool_usecases.NewGetChallengeUseCase(aggregator, members), nil
	})

	mustSingleton(c, func() (*pool_usecases.ContributeUseCase, error) {
		var filter *pool_services.AdmissionFilter
		var aggregator *pool_services.Aggregator
		if err := c.Resolve(&filter); err != nil {
			return nil, err
		}
		if err := c.Resolve(&aggregator); err != nil {
			return nil, err
		}
		return pool_usecases.NewContributeUseCase(filter, aggregator), nil
	})

	mustSingleton(c, func() (*pool_usecases.GetEventUseCase, error) {
		var aggregator *pool_services.Aggregator
		if err := c.Resolve(&aggregator); err != nil {
			return nil, err
		}
		return pool_usecases.NewGetEventUseCase(aggregator), nil
	})

	mustSingleton(c, func() (*pool_usecases.CommitBalanceUseCase, error) {
		var members *pool_services.MemberDirectory
		var parser pool_out.TransactionParser
		var submitter pool_out.TransactionSubmitter
		var keypair *solana.Keypair
		if err := c.Resolve(&members); err != nil {
			return nil, err
		}
		if err := c.Resolve(&parser); err != nil {
			return nil, err
		}
		if err := c.Resolve(&submitter); err != nil {
			return nil, err
		}
		if err := c.Resolve(&keypair); err != nil {
			return nil, err
		}
		return pool_usecases.NewCommitBalanceUseCase(members, parser, submitter, keypair.Address), nil
	})

	mustSingleton(c, func() (*pool_usecases.HandleWebhookUseCase, error) {
		var window *pool_entities.AttributionWindow
		var engine *pool_services.AttributionEngine
		var aggregator *pool_services.Aggregator
		var cfg common.Config
		if err := c.Resolve(&window); err != nil {
			return nil, err
		}
		if err := c.Resolve(&engine); err != nil {
			return nil, err
		}
		if err := c.Resolve(&aggregator); err != nil {
			return nil, err
		}
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return pool_usecases.NewHandleWebhookUseCase(cfg.Webhook.HeliusAuthToken, cfg.Chain.PoolAddress, window, engine, aggregator), nil
	})

	return b
}

func mustSingleton(c container.Container, resolver interface{}) {
	if err := c.Singleton(resolver); err != nil {
		slog.Error("failed to register singleton in pool container", "error", err)
		panic(err)
	}
}
