package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	adminhandler "mintgate/internal/admin/handler"
	"mintgate/internal/adminauth"
	"mintgate/internal/events"
	minterhandler "mintgate/internal/minter/handler"
	"mintgate/internal/minter/dispatcher"
	mintermetrics "mintgate/internal/minter/metrics"
	auctionstore "mintgate/internal/minter/store/auction"
	bindingstore "mintgate/internal/minter/store/binding"
	purchasestore "mintgate/internal/minter/store/purchase"
	quotastore "mintgate/internal/minter/store/quota"
	"mintgate/internal/ownership"
	"mintgate/internal/platform/config"
	"mintgate/internal/platform/httpserver"
	"mintgate/internal/platform/logger"
	platformredis "mintgate/internal/platform/redis"
	"mintgate/internal/randomizer"
	registrystore "mintgate/internal/registry/store"
	"mintgate/internal/settlement"
	splitstore "mintgate/internal/settlement/store"
	httptransport "mintgate/internal/transport/http"
	minterstore "mintgate/internal/minter/store"
)

// main wires stores, the dispatcher, and the HTTP surface. Business logic
// lives in internal packages; this file only chooses implementations based
// on what is configured.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var (
		projects  registrystore.ProjectStore
		bindings  minterstore.BindingStore
		purchases minterstore.PurchaseStore
		auctions  minterstore.AuctionStore
		splits    splitstore.SplitStore
	)

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		projects = registrystore.NewPostgres(db)
		bindings = bindingstore.NewPostgres(db)
		purchases = purchasestore.NewPostgres(db)
		auctions = auctionstore.NewPostgres(db)
		splits = splitstore.NewPostgres(db)
	} else {
		projects = registrystore.NewMemory()
		bindings = bindingstore.NewMemory()
		purchases = purchasestore.NewMemory()
		auctions = auctionstore.NewMemory()
		splits = splitstore.NewMemory()
	}

	var quotas minterstore.QuotaStore = quotastore.NewMemory()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		quotas = quotastore.NewRedis(redisClient.Client)
	}

	var publisher events.Publisher = events.NewMemorySink()
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		publisher = kafkaPublisher
	}

	dispOpts := []dispatcher.Option{
		dispatcher.WithRail(settlement.NewLedgerRail()),
		dispatcher.WithPublisher(publisher),
		dispatcher.WithSeedRequester(randomizer.NewLogRequester(log)),
		dispatcher.WithMetrics(mintermetrics.New()),
		dispatcher.WithLogger(log),
	}
	if cfg.OwnershipSnapshot != "" {
		resolver, err := ownership.LoadSnapshot(cfg.OwnershipSnapshot)
		if err != nil {
			log.Error("failed to load ownership snapshot", "error", err)
			os.Exit(1)
		}
		dispOpts = append(dispOpts, dispatcher.WithOwnershipChecker(resolver))
	} else {
		log.Warn("no ownership snapshot configured; holder-gate purchases will be rejected")
	}
	disp := dispatcher.New(projects, bindings, purchases, quotas, auctions, splits, dispOpts...)

	adminValidator := adminauth.New(cfg.AdminSigningKey)
	router := httptransport.NewRouter(log,
		minterhandler.New(disp, log),
		adminhandler.New(disp, adminValidator, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting mintgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if kafkaPublisher != nil {
			if err := kafkaPublisher.Close(shutdownCtx); err != nil {
				log.Error("kafka shutdown failed", "error", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
