package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"felicity/internal/admin"
	adminhandler "felicity/internal/admin/handler"
	"felicity/internal/event"
	eventhandler "felicity/internal/event/handler"
	eventstore "felicity/internal/event/store"
	"felicity/internal/forum"
	forumhandler "felicity/internal/forum/handler"
	forumstore "felicity/internal/forum/store"
	"felicity/internal/identity"
	"felicity/internal/platform/config"
	"felicity/internal/platform/httpserver"
	"felicity/internal/platform/logger"
	"felicity/internal/platform/metrics"
	platformmongo "felicity/internal/platform/mongo"
	platformredis "felicity/internal/platform/redis"
	"felicity/internal/profile"
	profilehandler "felicity/internal/profile/handler"
	profilestore "felicity/internal/profile/store"
	"felicity/internal/registration"
	registrationhandler "felicity/internal/registration/handler"
	registrationstore "felicity/internal/registration/store"
	"felicity/internal/team"
	teamhandler "felicity/internal/team/handler"
	teamstore "felicity/internal/team/store"
	httptransport "felicity/internal/transport/http"
	"felicity/pkg/platform/audit"
)

// main wires the dependency graph and owns the process lifecycle. Business
// logic lives in the internal feature packages.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	mongoClient, err := platformmongo.Connect(bootCtx, cfg.MongoURI)
	if err != nil {
		log.Error("mongo connect failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	db := mongoClient.Database(cfg.MongoDatabase)
	if err := platformmongo.EnsureIndexes(bootCtx, db); err != nil {
		log.Error("index setup failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	m := metrics.New()

	// Audit pipeline: Kafka when brokers are configured, in-memory otherwise.
	var sink audit.Sink
	if len(cfg.Audit.Brokers) > 0 {
		sink, err = audit.NewKafkaSink(bootCtx, cfg.Audit.Brokers, cfg.Audit.Topic)
		if err != nil {
			log.Error("kafka sink setup failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("no kafka brokers configured, audit events stay in memory")
		sink = audit.NewMemorySink()
	}
	defer sink.Close()

	auditor := audit.NewPublisher(cfg.Audit.Buffer)
	auditWorker := audit.NewWorker(auditor, sink, log)

	// Stores.
	profileStore := profilestore.NewMongoStore(db)
	teamStore := teamstore.NewMongoStore(db)
	eventStore := eventstore.NewMongoStore(db)
	regStore := registrationstore.NewMongoStore(db)
	subStore := registrationstore.NewMongoSubmissionStore(db)
	channelStore := forumstore.NewMongoChannelStore(db)
	postStore := forumstore.NewMongoPostStore(db)
	commentStore := forumstore.NewMongoCommentStore(db)

	var carts registration.CartStore
	if redisClient != nil {
		carts = registration.NewRedisCart(redisClient.Client, cfg.CartTTL)
	} else {
		log.Warn("no redis configured, carts are process-local")
		carts = registration.NewMemoryCart(cfg.CartTTL)
	}

	// Services. The registration service reads events through the store so
	// the event → forum → registration chain stays constructible.
	profileSvc := profile.NewService(profileStore)
	teamSvc := team.NewService(teamStore, profileStore)
	regSvc := registration.NewService(regStore, subStore, eventStore, teamSvc, profileStore, registration.NewStubGateway())
	forumSvc := forum.NewService(channelStore, postStore, commentStore, profileStore, regSvc)
	eventSvc := event.NewService(eventStore, forumSvc)
	adminSvc := admin.NewService(regSvc, teamSvc, eventSvc)

	// Identity: legacy cookie first, provider bearer token as fallback.
	legacyTokens := identity.NewLegacyTokenService(cfg.LegacySessionKey, cfg.LegacySessionTTL)
	var verifier identity.ProviderVerifier
	if cfg.ProviderIssuer != "" {
		verifier = identity.NewHTTPVerifier(cfg.ProviderIssuer)
	}
	resolver := identity.NewAuthenticator(legacyTokens, verifier, profileSvc)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  m,
		Resolver: resolver,
		Health: func(ctx context.Context) error {
			if err := mongoClient.Ping(ctx, nil); err != nil {
				return err
			}
			if redisClient != nil {
				return redisClient.Health(ctx)
			}
			return nil
		},
		Profiles:      profilehandler.New(profileSvc, log, auditor),
		Teams:         teamhandler.New(teamSvc, log, m, auditor),
		Events:        eventhandler.New(eventSvc, log),
		Registrations: registrationhandler.New(regSvc, carts, eventSvc, log, m, auditor),
		Admin:         adminhandler.New(adminSvc, log, m, auditor),
		Forum:         forumhandler.New(forumSvc, log, m),
	})

	srv := httpserver.New(cfg.Addr, router)

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := auditWorker.Run(runCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete", "audit_dropped", auditor.Dropped())
}
