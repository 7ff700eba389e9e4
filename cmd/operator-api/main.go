package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ore-pool-go/operator/cmd/operator-api/controllers"
	"github.com/ore-pool-go/operator/cmd/operator-api/routing"
	jobs "github.com/ore-pool-go/operator/pkg/app/jobs"
	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
	pool_services "github.com/ore-pool-go/operator/pkg/domain/pool/services"
	pool_usecases "github.com/ore-pool-go/operator/pkg/domain/pool/usecases"
	"github.com/ore-pool-go/operator/pkg/infra/db/postgres"
	ioc "github.com/ore-pool-go/operator/pkg/infra/ioc"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	builder := ioc.NewContainerBuilder()
	c := builder.WithPoolEnvFile().WithPoolAPI().Build()

	var cfg common.Config
	if err := c.Resolve(&cfg); err != nil {
		slog.ErrorContext(ctx, "failed to resolve config", "error", err)
		panic(err)
	}

	var memberRepo pool_out.MemberRepository
	if err := c.Resolve(&memberRepo); err != nil {
		slog.ErrorContext(ctx, "failed to resolve member repository", "error", err)
		panic(err)
	}
	pgRepo, _ := memberRepo.(*postgres.MemberRepository)

	var chain pool_out.ChainClient
	if err := c.Resolve(&chain); err != nil {
		slog.ErrorContext(ctx, "failed to resolve chain client", "error", err)
		panic(err)
	}

	healthController := controllers.NewHealthController(pgRepo.DB(), func(ctx context.Context) error {
		_, err := chain.LatestBlockhash(ctx)
		return err
	}, "1.0.0")

	var coordinator *pool_services.SubmissionCoordinator
	if err := c.Resolve(&coordinator); err != nil {
		slog.ErrorContext(ctx, "failed to resolve submission coordinator", "error", err)
		panic(err)
	}
	submissionJob := jobs.NewSubmissionCoordinatorJob(coordinator, cfg.Chain.PoolAddress, time.Duration(common.ChainTickSeconds)*time.Second)
	go submissionJob.Run(ctx)
	slog.InfoContext(ctx, "submission coordinator job started")

	var engine *pool_services.AttributionEngine
	if err := c.Resolve(&engine); err != nil {
		slog.ErrorContext(ctx, "failed to resolve attribution engine", "error", err)
		panic(err)
	}
	reconciliationJob := jobs.NewAttributionReconciliationJob(engine, common.MaxAttributeInstructionsPerTx, common.ReconciliationTick)
	go reconciliationJob.Run(ctx)
	slog.InfoContext(ctx, "attribution reconciliation job started")

	var addressUC *pool_usecases.GetAddressUseCase
	var registerUC *pool_usecases.RegisterMemberUseCase
	var memberUC *pool_usecases.GetMemberUseCase
	var challengeUC *pool_usecases.GetChallengeUseCase
	var eventUC *pool_usecases.GetEventUseCase
	var contributeUC *pool_usecases.ContributeUseCase
	var commitBalanceUC *pool_usecases.CommitBalanceUseCase
	var webhookUC *pool_usecases.HandleWebhookUseCase
	for _, err := range []error{
		c.Resolve(&addressUC),
		c.Resolve(&registerUC),
		c.Resolve(&memberUC),
		c.Resolve(&challengeUC),
		c.Resolve(&eventUC),
		c.Resolve(&contributeUC),
		c.Resolve(&commitBalanceUC),
		c.Resolve(&webhookUC),
	} {
		if err != nil {
			slog.ErrorContext(ctx, "failed to resolve use case", "error", err)
			panic(err)
		}
	}

	poolController := controllers.NewPoolController(
		addressUC, registerUC, memberUC, challengeUC, eventUC, contributeUC, commitBalanceUC, webhookUC,
	)

	router := routing.NewRouter(poolController, healthController)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.InfoContext(ctx, "starting operator api", "port", port)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-shutdownChan
		slog.InfoContext(ctx, "received shutdown signal", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "server shutdown error", "error", err)
		}
		cancel()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.ErrorContext(ctx, "server error", "error", err)
		os.Exit(1)
	}
}
