package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	app "github.com/rimrakhimov/inno-dex/internal/app/engine"
	"github.com/rimrakhimov/inno-dex/internal/usecase/asset"
	"github.com/rimrakhimov/inno-dex/internal/usecase/eventpublisher"
	"github.com/rimrakhimov/inno-dex/internal/usecase/instrument"
	"github.com/rimrakhimov/inno-dex/internal/usecase/orderreader"
	"github.com/rimrakhimov/inno-dex/internal/usecase/snapshot"
	"github.com/rimrakhimov/inno-dex/pkg/config"
	"github.com/rimrakhimov/inno-dex/pkg/errors"
	"github.com/rimrakhimov/inno-dex/pkg/logger"
	"github.com/rimrakhimov/inno-dex/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	log = l
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	baseSymbol, quoteSymbol, ok := strings.Cut(cfg.Pair, "/")
	if ok {
		baseSymbol = strings.TrimSpace(baseSymbol)
		quoteSymbol = strings.TrimSpace(quoteSymbol)
	}
	if !ok || baseSymbol == "" || quoteSymbol == "" {
		log.Error(errors.NewTracer("invalid trading pair"), logger.Field{
			Key:   "pair",
			Value: cfg.Pair,
		})
		return
	}

	redisConfig := redis.DefaultConfig()
	redisConfig.Addrs = []string{cfg.RedisConfig.Addrs}
	redisConfig.Password = cfg.RedisConfig.Password
	redisConfig.Username = cfg.RedisConfig.Username
	redisConfig.DB = cfg.RedisConfig.DB
	rclient := redis.NewClient(log, redisConfig)

	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	base := asset.NewLedger(baseSymbol)
	quote := asset.NewLedger(quoteSymbol)
	publisher := eventpublisher.NewPublisher(cfg.EventPublisherConfig, cfg.Pair, log)
	ins := instrument.NewInstrument(cfg.Pair, base, quote, publisher, log)
	oReader := orderreader.NewReader(cfg.KafkaConfig, log)
	snapshotStore := snapshot.NewStore(rclient, cfg.Pair, log)

	engine, err := app.NewEngine(ins, oReader, snapshotStore, log)
	if err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "init_engine",
		})
		return
	}

	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	log.Info("exchange engine started", logger.Field{
		Key:   "pair",
		Value: cfg.Pair,
	})

	sig := <-sigChan
	log.Info("received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if err := publisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_event_publisher",
		})
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_redis_client",
		})
	}

	log.Info("exchange engine shutdown complete")
}
