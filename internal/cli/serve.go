package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/identity"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/pii"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the cart HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, newLogger(cmd.OutOrStdout()))
		},
	}
}

func runServe(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	database, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer database.Close()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	var products cart.Catalog = catalog.NewPostgresCatalog(pool)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		products = catalog.NewCachedCatalog(rdb, products, cfg.CatalogCacheTTL, logger)
	}

	rabbitConn, err := events.DialRabbit(cfg.RabbitURL)
	if err != nil {
		return err
	}
	defer rabbitConn.Close()

	publisher, err := events.NewPublisher(rabbitConn, events.NewSequenceRepository(database))
	if err != nil {
		return fmt.Errorf("create cart publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Printf("publisher close error: %v", err)
		}
	}()

	local, err := cart.OpenLocalStore(cfg.LocalCartPath, logger)
	if err != nil {
		return err
	}
	defer local.Close()

	remote := cart.WithChangeNotifications(cart.NewRepository(database), publisher, logger)
	engine := cart.NewEngine(local, remote, products, events.NewSubscriber(rabbitConn, logger), logger)
	defer engine.Close()
	engine.SetIdentity(ctx, identity.Anonymous())

	ring, err := buildKeyring(ctx, cfg, logger)
	if err != nil {
		return err
	}
	decomposer := checkout.NewDecomposer(checkout.NewLedger(database), pii.NewCodec(ring), logger, checkout.DecomposerOptions{
		MaxConcurrency:    cfg.CheckoutMaxConcurrency,
		CompensatePartial: cfg.CheckoutCompensatePartial,
	})
	payments := checkout.NewPaymentFlow(engine, decomposer, logger)

	var resolver httpapi.IdentityResolver = noIdentityProvider{}
	if cfg.FirebaseProjectID != "" {
		verifier, err := identity.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
		if err != nil {
			return err
		}
		resolver = verifier
	} else {
		logger.Printf("FIREBASE_PROJECT_ID not set; sign-in disabled")
	}

	router := httpapi.NewRouter(httpapi.NewHandler(engine, products, resolver, payments, logger), cfg.CORSAllowOrigins)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      http.TimeoutHandler(router, cfg.RequestTimeout, "request timed out"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("marketplace-cart listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
	return nil
}

type noIdentityProvider struct{}

func (noIdentityProvider) Resolve(context.Context, string) (identity.Identity, error) {
	return identity.Identity{}, fmt.Errorf("%w: no identity provider configured", identity.ErrInvalidToken)
}
