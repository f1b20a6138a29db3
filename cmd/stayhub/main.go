package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	appoutbox "stayhub/internal/app/outbox"
	authsvc "stayhub/internal/app/services/auth"
	bookingsvc "stayhub/internal/app/services/booking"
	listingsvc "stayhub/internal/app/services/listing"
	domainauth "stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/broker/kafka"
	"stayhub/internal/infra/config"
	"stayhub/internal/infra/db/mongo"
	ginserver "stayhub/internal/infra/http/gin"
	"stayhub/internal/infra/obs"
	infraoutbox "stayhub/internal/infra/outbox"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
	"stayhub/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app := buildApplication(ctx, cfg, logger)
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	if cfg.SeedDemoData {
		if err := app.seedDemoData(ctx); err != nil {
			logger.Warn("demo data seeding failed", "error", err)
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	ready    func() error

	users    *authsvc.Service
	listings *listingsvc.Service
	bookings *bookingsvc.Service

	mongoClient *mongo.Client
	producer    *kafka.Producer
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) *application {
	app := &application{ready: func() error { return nil }}

	var (
		userRepo     domainuser.Repository
		listingRepo  domainlisting.Repository
		bookingRepo  domainbooking.Repository
		sessionStore domainauth.SessionStore
		outboxStore  outboxBackend
	)

	if cfg.MongoURI != "" {
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Warn("mongo unavailable, using in-memory storage", "error", err)
		} else if err := client.Ping(ctx); err != nil {
			logger.Warn("mongo unreachable, using in-memory storage", "error", err)
			_ = client.Close(ctx)
		} else {
			app.mongoClient = client
			app.ready = func() error {
				pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(pingCtx)
			}
			userRepo = mongo.NewUserRepository(client.DB)
			listingRepo = mongo.NewListingRepository(client.DB)
			bookingRepo = mongo.NewBookingRepository(client.DB)
			sessionStore = mongo.NewSessionStore(client.DB)
			outboxStore = mongo.NewOutboxStore(client.DB)
			logger.Info("storage backend ready", "backend", "mongo", "database", cfg.MongoDB)
		}
	}
	if userRepo == nil {
		userRepo = memory.NewUserRepository()
		listingRepo = memory.NewListingRepository()
		bookingRepo = memory.NewBookingRepository()
		sessionStore = memory.NewSessionStore()
		outboxStore = memory.NewOutbox()
		logger.Info("storage backend ready", "backend", "memory")
	}

	app.users = &authsvc.Service{
		Users:      userRepo,
		Sessions:   sessionStore,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	var uploader listingsvc.Uploader
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("photo storage unavailable", "error", err)
		} else {
			uploader = client
			logger.Info("photo storage ready", "bucket", cfg.S3Bucket)
		}
	}

	app.listings = &listingsvc.Service{
		Listings: listingRepo,
		Users:    userRepo,
		Photos:   uploader,
		Logger:   logger,
	}

	app.bookings = &bookingsvc.Service{
		Bookings: bookingRepo,
		Listings: listingRepo,
		Users:    userRepo,
		Outbox:   outboxStore,
		Encoder:  appoutbox.JSONEventEncoder{},
		Logger:   logger,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Warn("kafka unavailable, events stay in the outbox", "error", err)
		} else {
			app.producer = producer
			app.worker = &infraoutbox.Worker{
				Store:       outboxStore,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
			logger.Info("event publishing ready", "brokers", cfg.KafkaBrokers)
		}
	}

	authMW := ginserver.AuthMiddleware{Service: app.users, Logger: logger}
	app.handlers = ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: app.users, Logger: logger},
		Listing:        ginserver.ListingHandler{Service: app.listings, Logger: logger},
		Booking:        ginserver.BookingHandler{Service: app.bookings, Logger: logger},
		AuthMiddleware: authMW.Handle,
	}
	return app
}

// outboxBackend joins the write side used by the services with the
// claim/ack side used by the publishing worker; both storage backends
// implement the pair.
type outboxBackend interface {
	appoutbox.Outbox
	infraoutbox.Store
}

func (a *application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka close failed", "error", err)
		}
	}
	if a.mongoClient != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.mongoClient.Close(closeCtx); err != nil {
			logger.Warn("mongo close failed", "error", err)
		}
	}
}

// seedDemoData provisions one account per role and a starter listing so
// a fresh environment is explorable immediately. The admin account is
// created directly since registration never hands out that role.
func (a *application) seedDemoData(ctx context.Context) error {
	hash, err := security.BcryptHasher{}.Hash("admin-demo-pass")
	if err != nil {
		return err
	}
	admin, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        "admin@stayhub.local",
		Name:         "Demo Admin",
		PasswordHash: hash,
		Role:         domainuser.RoleAdmin,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return err
	}
	if err := a.users.Users.Save(ctx, admin); err != nil {
		return err
	}
	host, err := a.users.Register(ctx, authsvc.RegisterParams{
		Email:      "host@stayhub.local",
		Name:       "Demo Host",
		Password:   "host-demo-pass",
		WantToHost: true,
	})
	if err != nil {
		return err
	}
	if _, err := a.users.Register(ctx, authsvc.RegisterParams{
		Email:    "guest@stayhub.local",
		Name:     "Demo Guest",
		Password: "guest-demo-pass",
	}); err != nil {
		return err
	}
	if _, err := a.listings.Create(ctx, listingsvc.Caller{ID: host.User.ID, Role: host.User.Role}, listingsvc.CreateParams{
		Title:         "Canal-side loft",
		Description:   "Bright loft with a view over the old canal, five minutes from the center.",
		Address:       "14 Brouwersgracht",
		City:          "Amsterdam",
		Country:       "Netherlands",
		PricePerNight: 120,
		Guests:        4,
		Bedrooms:      2,
		Bathrooms:     1,
		Amenities:     []string{"wifi", "kitchen", "washer"},
	}); err != nil {
		return err
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
