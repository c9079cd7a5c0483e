package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentaldesk/pkg/logger"
	"rentaldesk/rental-service/internal/app/rental/config"
	"rentaldesk/rental-service/internal/app/rental/handler"
	"rentaldesk/rental-service/internal/app/rental/processor"
	"rentaldesk/rental-service/internal/app/rental/repository"
	"rentaldesk/rental-service/internal/app/rental/service"
	"rentaldesk/rental-service/internal/app/rental/util"
)

const serviceName = "rental-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)

	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().
		Str("database", cfg.MongoDB.Database).
		Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	productRepo, err := repository.NewProductRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize product repository")
	}
	bookingRepo, err := repository.NewBookingRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize booking repository")
	}
	activityRepo, err := repository.NewActivityRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize activity repository")
	}

	userRepo, closeUsers, err := newUserRepository(ctx, cfg.UserStore, db)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.UserStore.Driver).Msg("Failed to initialize user store")
	}
	defer closeUsers()

	readiness := handler.NewReadinessHandler().Require("mongodb", func(ctx context.Context) error {
		return mongoClient.Ping(ctx, nil)
	})

	// Redis необязателен: без него сводка считается на каждый запрос
	var reportCache util.ReportCache
	if cfg.Redis.Enabled {
		redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Address()).Msg("Redis unavailable, report cache disabled")
		} else {
			defer redisClient.Close()
			reportCache = redisClient
			readiness.Optional("redis", redisClient.Ping)
			logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")
		}
	}

	var publisher util.MessagePublisher = util.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("Initialized Kafka producer")
	} else {
		logger.Info().Msg("Kafka brokers not configured, domain events disabled")
	}
	defer publisher.Close()

	activityService := service.NewActivityService(activityRepo)
	reportService := service.NewReportService(productRepo, bookingRepo, reportCache, cfg.Redis.ReportTTL)
	productService := service.NewProductService(productRepo, activityService, publisher, reportService)
	bookingService := service.NewBookingService(bookingRepo, activityService, publisher, reportService)

	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenDuration)
	authService := service.NewAuthService(userRepo, jwtManager, activityService)

	scheduler := processor.NewCronScheduler(reportService)
	if err := scheduler.Start(ctx, cfg.Cron.ReportRefresh); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Cron.ReportRefresh).Msg("Failed to start cron scheduler")
	}

	router := handler.SetupRoutes(handler.Handlers{
		Products:   handler.NewProductHandler(productService),
		Bookings:   handler.NewBookingHandler(bookingService),
		Activities: handler.NewActivityHandler(activityService),
		Auth:       handler.NewAuthHandler(authService),
		Reports:    handler.NewReportHandler(reportService),
		Readiness:  readiness,
	}, handler.NewAuthMiddleware(jwtManager), handler.RouterOptions{
		ServiceName:  serviceName,
		BodyLimit:    cfg.Server.BodyLimit,
		AuthRequired: cfg.Auth.Required,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Bool("auth_required", cfg.Auth.Required).
			Msg("Starting Rental Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Rental Service...")

	scheduler.Stop()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Rental Service stopped gracefully")
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, clientOptions)
		if err == nil {
			err = pingOrRelease(ctx, client)
		}
		cancel()
		if err == nil {
			return client, nil
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}

// pingOrRelease проверяет соединение; при ошибке отключает клиента
func pingOrRelease(ctx context.Context, client *mongo.Client) error {
	err := client.Ping(ctx, nil)
	if err == nil {
		return nil
	}

	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if disconnectErr := client.Disconnect(disconnectCtx); disconnectErr != nil {
		logger.Debug().Err(disconnectErr).Msg("Failed to disconnect MongoDB client after ping failure")
	}
	return err
}

// newUserRepository выбирает хранилище пользователей по USER_STORE
func newUserRepository(ctx context.Context, cfg config.UserStoreConfig, db *mongo.Database) (repository.UserRepository, func(), error) {
	if cfg.Driver != config.UserStorePostgres {
		repo, err := repository.NewUserRepository(ctx, db)
		return repo, func() {}, err
	}

	pool, err := connectPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().
		Str("host", cfg.Postgres.Host).
		Str("database", cfg.Postgres.DBName).
		Msg("Connected to PostgreSQL user store")

	return repository.NewPgUserRepository(pool), pool.Close, nil
}

func connectPostgres(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to PostgreSQL, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
