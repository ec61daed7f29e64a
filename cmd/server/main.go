package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"railcast-service/internal/domain/repository"
	"railcast-service/internal/infrastructure/config"
	"railcast-service/internal/infrastructure/oauth"
	"railcast-service/internal/infrastructure/persistence"
	"railcast-service/internal/infrastructure/router"
	"railcast-service/internal/infrastructure/scheduler"
	"railcast-service/internal/interface/gmail"
	"railcast-service/internal/interface/handler"
	"railcast-service/internal/interface/notifier"
	"railcast-service/internal/interface/provider"
	gormRepo "railcast-service/internal/interface/repository"
	"railcast-service/internal/usecase"
	"railcast-service/pkg/logger"
	"railcast-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/api/option"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	defer log.Sync()
	log.Info("Starting Railcast Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("railcast", registry)

	// Set up PostgreSQL connection
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DBConnectMaxElapsed, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	stationRepository := gormRepo.NewGormStationRepository(gormDB)
	trainRepository := gormRepo.NewGormTrainRepository(gormDB)

	// The refresh run log lives in MongoDB when configured
	var runRepository repository.RefreshRunRepository
	var mongoClient *mongo.Client
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword, cfg.MongoDB)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client
		runRepository = gormRepo.NewMongoRefreshRunRepository(db)
	} else {
		log.Warn("MONGODB_DSN not set, refresh runs will not be persisted")
	}

	trainProvider := provider.NewIRCTCClient(cfg.ProviderURL(), cfg.RapidAPIHost, cfg.RapidAPIKey, cfg.ProviderTimeout, log)

	mailer, err := newNotifier(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create notifier", "error", err)
	}

	refresher := usecase.NewTrainRefresher(stationRepository, trainRepository, trainProvider, mailer, runRepository, m, log)
	importer := usecase.NewStationImporter(stationRepository, trainProvider, log)

	// Background worker for manual triggers
	dispatcher := usecase.NewDispatcher(refresher, importer, cfg.RefreshRegions, cfg.WorkerCount, cfg.QueueSize, m, log)
	dispatcher.Start(ctx)

	// Fixed-interval refresh
	sched, err := scheduler.NewScheduler(refresher, cfg.RefreshRegions, cfg.RefreshInterval, log)
	if err != nil {
		log.Fatal("Failed to create scheduler", "error", err)
	}
	sched.Start(ctx)

	trainHandler := handler.NewTrainHandler(
		stationRepository,
		trainRepository,
		runRepository,
		trainProvider,
		dispatcher,
		cfg.LiveStatusCacheTTL,
		cfg.RefreshRegions[0],
		log,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewHTTPRouter(log, registry, cfg.CORSAllowedOrigins, trainHandler),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines
	sched.Stop()
	dispatcher.Wait()

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("Railcast Service stopped")
}

func newNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierGmail:
		gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, log)
		return gmail.NewGmailNotifier(ctx, cfg.EmailSender, cfg.EmailReceiver, log,
			option.WithTokenSource(gmailOAuth.GetTokenSource(ctx)))
	case config.NotifierSMTP:
		return notifier.NewSMTPNotifier(cfg.SMTPServer, cfg.SMTPPort, cfg.EmailSender, cfg.EmailPassword, cfg.EmailReceiver, log), nil
	default:
		return notifier.NewLogNotifier(log), nil
	}
}
