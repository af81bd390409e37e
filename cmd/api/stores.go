package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"ecotrack/internal/adapter/api/handler"
	"ecotrack/internal/adapter/repository"
	"ecotrack/internal/adapter/repository/memory"
	domainrepo "ecotrack/internal/domain/repository"
	"ecotrack/internal/infrastructure/database"
	"ecotrack/internal/infrastructure/firebase"
	"ecotrack/internal/usecase"
	"ecotrack/pkg/config"
	"ecotrack/pkg/logger"
)

// stores bundles the repositories for the selected STORE_DRIVER together with
// the health checks and shutdown hooks of the clients behind them.
type stores struct {
	users    domainrepo.UserRepository
	reports  domainrepo.ReportRepository
	requests domainrepo.NgoRequestRepository
	admins   domainrepo.AdminConfigRepository
	otps     domainrepo.OTPRepository

	// verifier is only available when Firebase is configured.
	verifier usecase.IdentityVerifier

	checks  map[string]handler.HealthCheck
	closers []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{checks: map[string]handler.HealthCheck{}}

	switch cfg.StoreDriver {
	case "firestore":
		if err := s.openFirestore(ctx, cfg); err != nil {
			return nil, err
		}
	case "mongo":
		if err := s.openMongo(ctx, cfg); err != nil {
			return nil, err
		}
	case "memory":
		logger.Warn("Using in-memory store; data is lost on restart")
		s.users = memory.NewUserRepository()
		s.reports = memory.NewReportRepository()
		s.requests = memory.NewNgoRequestRepository()
		s.admins = memory.NewAdminConfigRepository()
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if err := s.openOTPStore(ctx, cfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func firebaseOptions(cfg *config.Config) []option.ClientOption {
	switch {
	case cfg.FirebaseCredentialsJSON != "":
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON))}
	case cfg.FirebaseCredentialsFile != "":
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseCredentialsFile)
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseCredentialsFile)}
	}
	logger.Info("Using application default credentials for Firebase")
	return nil
}

func (s *stores) openFirestore(ctx context.Context, cfg *config.Config) error {
	opts := firebaseOptions(cfg)

	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize Firebase: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize Firebase Auth: %w", err)
	}
	s.verifier = firebase.NewFirebaseAuthClient(authClient)

	client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Firestore client: %w", err)
	}
	s.closers = append(s.closers, func() { client.Close() })

	s.users = repository.NewFirestoreUserRepository(client)
	s.reports = repository.NewFirestoreReportRepository(client)
	s.requests = repository.NewFirestoreNgoRequestRepository(client)
	s.admins = repository.NewFirestoreAdminConfigRepository(client)
	s.checks["firestore"] = func(ctx context.Context) error {
		_, err := client.Collections(ctx).Next()
		if err == iterator.Done {
			return nil
		}
		return err
	}

	logger.Info("Connected to Firestore project %s", cfg.FirebaseProject)
	return nil
}

func (s *stores) openMongo(ctx context.Context, cfg *config.Config) error {
	client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, func() { disconnectMongo(client) })

	s.users = repository.NewMongoUserRepository(db)
	s.reports = repository.NewMongoReportRepository(db)
	s.requests = repository.NewMongoNgoRequestRepository(db)
	s.admins = repository.NewMongoAdminConfigRepository(db)
	s.checks["mongo"] = func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}
	return nil
}

func disconnectMongo(client *mongo.Client) {
	if err := client.Disconnect(context.Background()); err != nil {
		logger.Error("Failed to disconnect from MongoDB: %v", err)
	}
}

// openOTPStore prefers Redis so reset codes survive restarts and are shared
// between instances.
func (s *stores) openOTPStore(ctx context.Context, cfg *config.Config) error {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, keeping OTP codes in memory")
		s.otps = memory.NewOTPRepository()
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.closers = append(s.closers, func() { client.Close() })

	s.otps = repository.NewRedisOTPRepository(client)
	s.checks["redis"] = func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
	logger.Info("Connected to Redis at %s", opts.Addr)
	return nil
}
