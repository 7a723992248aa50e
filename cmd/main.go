package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/smartbill/smartbill/internal/handlers"
	"github.com/smartbill/smartbill/internal/jwt"
	"github.com/smartbill/smartbill/internal/logger"
	"github.com/smartbill/smartbill/internal/middlewares"
	"github.com/smartbill/smartbill/internal/predictor"
	"github.com/smartbill/smartbill/internal/repositories"
	"github.com/smartbill/smartbill/internal/services"
	"github.com/smartbill/smartbill/internal/session"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "modernc.org/sqlite"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title SmartBill API
// @version 1.0.0
// @description Backend for the SmartBill electricity prediction dashboard
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		sqlitePath,
		voltageModelPath, billModelPath, modelReloadSecond,
		redisAddr, redisDB, redisPassword, cacheExpSecond,
		kafkaAddr, kafkaTopic,
		jwtSecret, jwtExpSecond,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		sqlitePath,
		voltageModelPath, billModelPath, modelReloadSecond,
		redisAddr, redisDB, redisPassword, cacheExpSecond,
		kafkaAddr, kafkaTopic,
		jwtSecret, jwtExpSecond,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, database, model, Redis, Kafka, logging, and JWT
// configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	sqlitePath string,
	voltageModelPath, billModelPath string, modelReloadSecond int,
	redisAddr string, redisDB int, redisPassword string, cacheExpSecond int,
	kafkaAddr, kafkaTopic string,
	jwtSecretKey string, jwtExpSecond int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// SQLite config
	sqlitePath = getEnv("SQLITE_PATH", "users.db")

	// Model artifacts
	voltageModelPath = getEnv("VOLTAGE_MODEL_PATH", "models/voltage_model.json")
	billModelPath = getEnv("BILL_MODEL_PATH", "models/bill_model.json")
	if modelReloadSecond, err = strconv.Atoi(getEnv("MODEL_RELOAD_SECOND", "0")); err != nil {
		return
	}

	// Redis config; empty address disables the prediction cache
	redisAddr = getEnv("REDIS_ADDR", "")
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if cacheExpSecond, err = strconv.Atoi(getEnv("PREDICTION_CACHE_EXP_SECOND", "300")); err != nil {
		return
	}

	// Kafka config; empty address disables event publishing
	kafkaAddr = getEnv("KAFKA_ADDR", "")
	kafkaTopic = getEnv("KAFKA_TOPIC", "predictions")

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "3600")); err != nil {
		return
	}

	return
}

// run initializes the logger, database, optional Redis and Kafka clients,
// and the HTTP server. It sets up routes, applies middleware, and handles
// graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	sqlitePath string,
	voltageModelPath, billModelPath string, modelReloadSecond int,
	redisAddr string, redisDB int, redisPassword string, cacheExpSecond int,
	kafkaAddr, kafkaTopic string,
	jwtSecretKey string, jwtExpSecond int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Connect to SQLite
	logger.Log.Infof("Opening SQLite database: %s", sqlitePath)
	db, err := sqlx.ConnectContext(ctx, "sqlite", sqlitePath)
	if err != nil {
		logger.Log.Errorw("SQLite connection error", "error", err)
		return err
	}
	defer db.Close()

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)

	// Ensure the credentials table exists; safe to run on every start
	if err := userWriteRepo.EnsureSchema(ctx); err != nil {
		logger.Log.Errorw("failed to ensure schema", "error", err)
		return err
	}

	// Connect to Redis; the prediction cache is optional
	var cache services.PredictionOutputsCache
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Warnw("Redis unreachable, prediction cache disabled", "addr", redisAddr, "error", err)
		} else {
			defer rdb.Close()
			cache = repositories.NewPredictionCacheRepository(rdb, time.Duration(cacheExpSecond)*time.Second)
			logger.Log.Infof("Prediction cache enabled via Redis at %s", redisAddr)
		}
	}

	// Kafka writer; prediction events are optional
	var kafkaWriter services.KafkaWriter
	if kafkaAddr != "" {
		kw := &kafka.Writer{
			Addr:     kafka.TCP(kafkaAddr),
			Topic:    kafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer kw.Close()
		kafkaWriter = kw
		logger.Log.Infof("Publishing prediction events to Kafka at %s, topic %s", kafkaAddr, kafkaTopic)
	}

	// Initialize JWT service
	jwtSvc := jwt.New(jwtSecretKey, time.Duration(jwtExpSecond)*time.Second)

	// Initialize session store and model provider
	sessions := session.NewStore()
	provider := predictor.NewProvider(voltageModelPath, billModelPath, time.Duration(modelReloadSecond)*time.Second)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, jwtSvc, sessions)
	predictionService := services.NewPredictionService(provider, sessions, cache, kafkaWriter)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	logoutHandler := handlers.NewLogoutHandler(authService, jwtSvc)
	predictHandler := handlers.NewPredictHandler(predictionService, jwtSvc)
	historyHandler := handlers.NewHistoryHandler(sessions, jwtSvc)
	reportHandler := handlers.NewReportHandler(sessions, jwtSvc)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.Post("/register", registerHandler)
	r.Post("/login", loginHandler)

	// Protected routes with JWT middleware
	authMiddleware := middlewares.AuthMiddleware(jwtSvc)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/logout", logoutHandler)
		r.Post("/predict", predictHandler)
		r.Get("/predictions/history", historyHandler)
		r.Get("/report", reportHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
