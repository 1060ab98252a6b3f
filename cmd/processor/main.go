package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/config"
	gateway "github.com/shivanshukushwah/worknest-backend/internal/gateways"
	"github.com/shivanshukushwah/worknest-backend/internal/inspector"
	"github.com/shivanshukushwah/worknest-backend/internal/processor"
	"github.com/shivanshukushwah/worknest-backend/internal/repository"
	"github.com/shivanshukushwah/worknest-backend/pkg/logger"
	"github.com/shivanshukushwah/worknest-backend/pkg/pg"
	"github.com/shivanshukushwah/worknest-backend/pkg/prom"
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

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill, os.Interrupt, syscall.SIGTERM)
	cfg := &gateway.Config{
		Providers: []gateway.ProviderConfig{
			{Name: "primary", URL: config.Get().ProviderPrimaryUrl, Weight: 100},
			{Name: "secondary", URL: config.Get().ProviderSecondaryUrl, Weight: 80},
			{Name: "backup", URL: config.Get().ProviderBackupUrl, Weight: 60},
		},
		Timeout:                 time.Second * 5,
		MaxRetries:              3,
		RetryDelay:              time.Millisecond * 100,
		MaxConns:                1000,
		ReadBufferSize:          1024 * 4,
		WriteBufferSize:         1024 * 4,
		HealthCheckInterval:     30 * time.Second,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   60 * time.Second,
	}
	client, err := gateway.NewClient(cfg)
	if err != nil {
		logger.Error("failed to create gateway", "error", err)
		return
	}

	jobRepo := repository.NewJobRepository(db)

	// Initialize idempotency service
	idempotencyConfig := processor.DefaultIdempotencyConfig()
	idempotencyService := processor.NewIdempotencyService(redisAdap, idempotencyConfig)

	notificationSvc, err := processor.NewProcessorService(redisAdap, config.Get().QueueName)
	if err != nil {
		logger.Error("failed to create notification processor", "error", err)
		return
	}
	notificationSvc.RegisterProcessor(processor.NewNotificationProcessor(client, idempotencyService))

	inspectionSvc, err := processor.NewProcessorService(redisAdap, config.Get().InspectionQueueName)
	if err != nil {
		logger.Error("failed to create inspection processor", "error", err)
		return
	}
	githubInspector := inspector.NewGithubInspector(config.Get().GithubToken)
	inspectionSvc.RegisterProcessor(processor.NewInspectionProcessor(githubInspector, jobRepo, idempotencyService))

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	go func() {
		if err := notificationSvc.Start(); err != nil {
			logger.Error("failed to start notification processor", "error", err)
		}
	}()
	go func() {
		if err := inspectionSvc.Start(); err != nil {
			logger.Error("failed to start inspection processor", "error", err)
		}
	}()

	select {
	case <-c:
		notificationSvc.Stop()
		inspectionSvc.Stop()
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
