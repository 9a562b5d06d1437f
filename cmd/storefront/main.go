package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/storefront/internal/auth"
	authgrpc "github.com/dwikikusuma/storefront/internal/auth/grpc"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartgrpc "github.com/dwikikusuma/storefront/internal/cart/grpc"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	cartrecords "github.com/dwikikusuma/storefront/internal/cart/infra/recordhttp"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	cgrpc "github.com/dwikikusuma/storefront/internal/catalog/grpc"
	catalogrecords "github.com/dwikikusuma/storefront/internal/catalog/infra/recordhttp"

	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutgrpc "github.com/dwikikusuma/storefront/internal/checkout/grpc"
	checkoutadapter "github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"

	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Service: "storefront", Env: cfg.AppEnv, Level: cfg.LogLevel, Format: cfg.LogFormat, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	records := httpx.NewClient(cfg.RecordServiceURL, cfg.RemoteTimeout)

	// Catalog
	catalogSvc := catalogapp.NewService(catalogrecords.NewProductRepo(records))

	// Cart
	cartSvc := cartapp.NewService(cartrecords.NewCartRepo(records, cfg.ClearConcurrency), cartapp.Options{
		Logger:        log,
		RemoteTimeout: cfg.RemoteTimeout,
		MergeOnLogin:  cfg.MergeOnLogin,
		Retryable:     httpx.IsRetryableError,
	})

	// Auth drives the cart through the bridge.
	session := auth.NewSession()
	authClient := auth.NewClient(records, session)
	bridge := cartapp.NewBridge(cartSvc, session, log, cfg.RemoteTimeout)
	if err := bridge.Start(ctx); err != nil {
		log.Warn("initial cart load failed", slog.Any("err", err))
	}
	defer bridge.Stop()

	// Checkout (adapters)
	cartReader := checkoutadapter.NewCartServiceReader(cartSvc)
	catalogReader := checkoutadapter.NewCatalogServiceReader(catalogSvc)
	checkoutSvc := checkoutapp.NewService(cartReader, catalogReader, cfg.Currency, 10)

	addr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", slog.Any("err", err), slog.String("addr", addr))
		os.Exit(1)
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary(log)))
	cgrpc.RegisterCatalogServiceServer(grpcServer, cgrpc.NewServer(catalogSvc))
	cartgrpc.RegisterCartServiceServer(grpcServer, cartgrpc.NewServer(cartSvc, cartadapter.NewCatalogLookup(catalogSvc)))
	checkoutgrpc.RegisterCheckoutServiceServer(grpcServer, checkoutgrpc.NewServer(checkoutSvc))
	authgrpc.RegisterSessionServiceServer(grpcServer, authgrpc.NewServer(authClient, session))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("grpc starting", slog.String("addr", addr))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		if !shutdown.Drain(10*time.Second, grpcServer.GracefulStop, grpcServer.Stop) {
			log.Warn("graceful stop timeout, forcing stop")
		}

		flushCtx, flushCancel := context.WithTimeout(context.Background(), cfg.RemoteTimeout)
		defer flushCancel()
		if err := cartSvc.Flush(flushCtx); err != nil {
			log.Warn("pending cart sync not flushed", slog.Any("err", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("storefront stopped", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func logUnary(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc call",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("took", time.Since(start)),
		)
		return resp, err
	}
}
