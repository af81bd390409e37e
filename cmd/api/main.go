package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ecotrack/internal/adapter/api"
	"ecotrack/internal/adapter/api/handler"
	apimiddleware "ecotrack/internal/adapter/api/middleware"
	"ecotrack/internal/adapter/api/router"
	"ecotrack/internal/domain/service"
	"ecotrack/internal/infrastructure/mail"
	"ecotrack/internal/infrastructure/oauth"
	"ecotrack/internal/infrastructure/ratelimit"
	"ecotrack/internal/infrastructure/storage"
	"ecotrack/internal/infrastructure/token"
	"ecotrack/internal/infrastructure/websocket"
	"ecotrack/internal/usecase"
	"ecotrack/pkg/config"
	"ecotrack/pkg/logger"
	"ecotrack/pkg/response"
)

const localUploadDir = "uploads"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.Environment, cfg.LogLevel)

	if cfg.IsProduction() && cfg.JWTSecret == "your-secret-key" {
		logger.Fatal("JWT_SECRET must be set in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open stores: %v", err)
	}
	defer st.Close()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Validator = api.NewValidator()

	fileService, err := newFileService(ctx, cfg, e)
	if err != nil {
		logger.Fatal("Failed to initialize file storage: %v", err)
	}
	defer fileService.Close()

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	notifier := usecase.NewNotifier(st.users, newMailer(cfg), wsManager, cfg.FrontendURL, cfg.NotifierBuffer)
	notifier.Start(ctx)
	defer notifier.Close()

	limits := usecase.UploadLimits{MaxFiles: cfg.MaxPhotosPerReport, MaxSize: cfg.MaxUploadSize}
	tokens := token.NewManager(cfg.JWTSecret)

	authUseCase := usecase.NewAuthUseCase(st.users, st.admins, st.otps, token.NewBcryptHasher(), tokens, st.verifier, notifier,
		usecase.SessionConfig{
			TokenTTL:          cfg.JWTExpiry,
			FederatedTokenTTL: cfg.OAuthTokenExpiry,
			OTPTTL:            cfg.OTPTTL,
		})
	userUseCase := usecase.NewUserUseCase(st.users, fileService, limits)
	reportUseCase := usecase.NewReportUseCase(st.reports, st.users, fileService, limits)
	lifecycleUseCase := usecase.NewReportLifecycleUseCase(st.reports, fileService, notifier, limits)
	scanner := usecase.NewOverdueScannerUseCase(st.reports, lifecycleUseCase, notifier, cfg.OverdueScanInterval, cfg.OverdueScanBatch)
	ngoUseCase := usecase.NewNgoUseCase(st.requests, st.users, fileService, notifier, limits)
	adminUseCase := usecase.NewAdminUseCase(st.users, st.admins, scanner)

	handler.Setup(handler.Dependencies{
		Auth:      authUseCase,
		Users:     userUseCase,
		Reports:   reportUseCase,
		Lifecycle: lifecycleUseCase,
		Ngos:      ngoUseCase,
		Admin:     adminUseCase,
		Google:    oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		Cookies: handler.CookieConfig{
			Secure:      cfg.CookieSecure,
			FrontendURL: cfg.FrontendURL,
		},
	})
	handler.SetupHealthHandler(st.checks)

	scanner.StartOverdueJob(ctx)
	defer scanner.Stop()

	limiter := ratelimit.NewRateLimiter(ratelimit.Limit{Every: time.Second, Burst: 20}, map[string]ratelimit.Limit{
		router.ActionLogin:         {Every: 12 * time.Second, Burst: 5},
		router.ActionRegister:      {Every: time.Minute, Burst: 5},
		router.ActionSendOTP:       {Every: time.Minute, Burst: 3},
		router.ActionResetPassword: {Every: 12 * time.Second, Burst: 5},
		router.ActionRequestNGO:    {Every: 10 * time.Minute, Burst: 3},
	})
	limiter.StartCleanupRoutine(ctx, 10*time.Minute)

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(apimiddleware.Metrics())

	authMiddleware := apimiddleware.NewAuthMiddleware(tokens, st.users)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.CORSOrigins)
	router.Setup(e, authMiddleware, limiter, wsHandler)

	go func() {
		logger.Info("Starting server on port %s (store: %s)", cfg.ServerPort, cfg.StoreDriver)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error: %v", err)
	}
}

// newFileService uses Cloud Storage when a bucket is configured and falls back
// to serving uploads from local disk.
func newFileService(ctx context.Context, cfg *config.Config, e *echo.Echo) (service.FileUploadService, error) {
	if cfg.StorageBucket != "" {
		client, err := storage.NewCloudStorageClient(ctx, storage.Options{
			BucketName:      cfg.StorageBucket,
			RootFolder:      cfg.StorageFolder,
			CredentialsFile: cfg.FirebaseCredentialsFile,
			CredentialsJSON: cfg.FirebaseCredentialsJSON,
			MaxImageWidth:   cfg.ImageMaxWidth,
			CORSOrigins:     cfg.CORSOrigins,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	dir := filepath.Join(localUploadDir, cfg.StorageFolder)
	baseURL := strings.TrimRight(cfg.PublicURL, "/") + "/" + localUploadDir
	local, err := storage.NewLocalStorage(dir, baseURL, cfg.ImageMaxWidth)
	if err != nil {
		return nil, err
	}
	e.Static("/"+localUploadDir, dir)
	logger.Warn("STORAGE_BUCKET not set, storing uploads in %s", dir)
	return local, nil
}

func newMailer(cfg *config.Config) service.MailService {
	if cfg.SMTPUsername == "" {
		logger.Warn("EMAIL_USER not set, e-mails will only be logged")
		return mail.NewLogMailer()
	}

	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		logger.Fatal("Invalid SMTP_PORT %q: %v", cfg.SMTPPort, err)
	}
	return mail.NewSMTPMailer(cfg.SMTPHost, port, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
}
