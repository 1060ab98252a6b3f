package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/config"
	"github.com/shivanshukushwah/worknest-backend/internal/handlers"
	"github.com/shivanshukushwah/worknest-backend/internal/inspector"
	"github.com/shivanshukushwah/worknest-backend/internal/queue"
	"github.com/shivanshukushwah/worknest-backend/internal/repository"
	"github.com/shivanshukushwah/worknest-backend/internal/services"
	xhttp "github.com/shivanshukushwah/worknest-backend/pkg/http"
	"github.com/shivanshukushwah/worknest-backend/pkg/logger"
	"github.com/shivanshukushwah/worknest-backend/pkg/pg"
	"github.com/shivanshukushwah/worknest-backend/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	inspectionQ, err := queue.NewQueue(redisAdap, queue.QueueConfig{
		Name:              config.Get().InspectionQueueName,
		ConsumerGroup:     config.Get().QueueConsumerGroup,
		ConsumerName:      config.Get().QueueConsumerName,
		MaxRetries:        config.Get().QueueMaxRetries,
		VisibilityTimeout: config.Get().QueueVisibilityTimeout,
		PollInterval:      config.Get().QueuePollInterval,
		BatchSize:         config.Get().QueueBatchSize,
		MaxLen:            config.Get().QueueMaxLen,
		EnableDLQ:         config.Get().QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating inspection queue", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	jobRepo := repository.NewJobRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// services
	userService := services.NewUserService(userRepo)
	scoreService := services.NewScoreService(userRepo)
	walletService := services.NewWalletService(
		walletRepo,
		transactionRepo,
		userRepo,
		jobRepo,
		outboxRepo,
		config.Get().CommissionRate,
		config.Get().PlatformUserID,
	)
	jobService := services.NewJobService(
		jobRepo,
		userRepo,
		walletService,
		services.NewHeuristicEvaluator(),
		inspector.NewGithubInspector(config.Get().GithubToken),
		outboxRepo,
		inspectionQ,
		config.Get().EnableRemoteProfileInspection,
		config.Get().StrictOnTimeAward,
	)
	healthService := services.NewHealthService()

	// v1 handlers
	userHandler := handlers.NewUserHandler(userService, scoreService)
	walletHandler := handlers.NewWalletHandler(walletService)
	jobHandler := handlers.NewJobHandler(jobService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterUserRoutes(g, userHandler)
	handlers.RegisterWalletRoutes(g, walletHandler)
	handlers.RegisterJobRoutes(g, jobHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	// Create new server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
