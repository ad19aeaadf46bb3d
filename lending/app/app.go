package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/config"
	"github.com/bookhive/lending-service/lending/internal/cache"
	"github.com/bookhive/lending-service/lending/internal/handler"
	"github.com/bookhive/lending-service/lending/internal/repository"
	"github.com/bookhive/lending-service/lending/internal/server"
	"github.com/bookhive/lending-service/lending/internal/service"
	"github.com/bookhive/lending-service/lending/migrations"
	"github.com/bookhive/lending-service/pkg/kafka"
	"github.com/bookhive/lending-service/pkg/logger"
	"github.com/bookhive/lending-service/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "lending")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	catalog, err := cache.New(log)
	if err != nil {
		log.Fatal("catalog cache", zap.Error(err))
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Fatal("kafka.NewProducer", zap.Error(err))
	}

	svc := service.NewService(repo, repo, catalog, service.NewPublisher(producer), log)
	authSvc := service.NewAuthService(repo, []byte(cfg.JWT.Secret), cfg.JWT.TokenTTL, log)
	statsSvc := service.NewStatsService(repo, log)

	consumerGroup, err := kafka.NewConsumerGroup(cfg.Kafka, kafka.LendingConsumerGroup)
	if err != nil {
		log.Fatal("kafka.NewConsumerGroup", zap.Error(err))
	}
	consumeCtx, consumeCancel := context.WithCancel(context.Background())
	go kafka.Consume(consumeCtx, consumerGroup, handler.NewConsumer(statsSvc.Record, log), kafka.LendingTopic, log)

	h := handler.New(svc, authSvc, statsSvc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter([]byte(cfg.JWT.Secret)))
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	consumeCancel()
	if err := consumerGroup.Close(); err != nil {
		log.Error("consumerGroup.Close", zap.Error(err))
	}
	if err := producer.Close(); err != nil {
		log.Error("producer.Close", zap.Error(err))
	}
	catalog.Close()
	db.Close()
	log.Info("Graceful shutdown finished")
}
