package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shivanshukushwah/worknest-backend/internal/config"
	"github.com/shivanshukushwah/worknest-backend/internal/outbox"
	"github.com/shivanshukushwah/worknest-backend/internal/queue"
	"github.com/shivanshukushwah/worknest-backend/internal/repository"
	"github.com/shivanshukushwah/worknest-backend/internal/scheduler"
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

	notificationQ, err := queue.NewQueue(redisAdap, queue.QueueConfig{
		Name:              config.Get().QueueName,
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
		logger.Error("failed creating notification queue", "error", err)
		return
	}

	jobRepo := repository.NewJobRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	shortlister := scheduler.NewShortlister(
		jobRepo,
		outboxRepo,
		config.Get().ShortlistInterval,
		config.Get().ShortlistBatch,
	)
	dispatcher := outbox.NewDispatcher(
		outboxRepo,
		notificationQ,
		config.Get().OutboxInterval,
		config.Get().OutboxBatch,
	)

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
		prom.ListenAndServer(":9101", "/metrics")
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shortlister.Start(ctx)
	dispatcher.Start(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill, os.Interrupt, syscall.SIGTERM)

	select {
	case <-c:
		shortlister.Stop()
		dispatcher.Stop()
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
