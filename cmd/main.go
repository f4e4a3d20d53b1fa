package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tomoRelay/internal/config"
	"tomoRelay/internal/controller"
	"tomoRelay/internal/dispatch"
	"tomoRelay/internal/relay"
	"tomoRelay/internal/sink"
	"tomoRelay/internal/transport"
)

func main() {
	cfg := config.MustNew()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		panic(err)
	}

	brokers := cfg.Brokers()
	sinks := dispatch.Sinks{
		Projection: sink.NewKafkaBroadcaster(brokers, cfg.ProjectionChannel, logger),
		White:      sink.NewKafkaBroadcaster(brokers, cfg.WhiteChannel, logger),
		Dark:       sink.NewKafkaBroadcaster(brokers, cfg.DarkChannel, logger),
		Theta:      sink.NewKafkaBroadcaster(brokers, cfg.ThetaChannel, logger),
		Meta:       sink.NewRedisMeta(client, cfg.MetaPrefix, logger),
	}
	if err := sinks.Start(); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := transport.Dial(ctx, cfg.ZMQAddr, logger)
	if err != nil {
		panic(err)
	}

	relayService := relay.New(source, dispatch.New(sinks, logger), cfg.PollInterval, logger)
	relayService.Start()

	go controller.NewServer(cfg.Host, cfg.Port, relayService, logger).Start()

	<-ctx.Done()
	logger.Info("interrupt received, shutting down")
	relayService.Stop()
	relayService.Wait()
	if err := sinks.Stop(); err != nil {
		logger.Error("sink shutdown", zap.Error(err))
	}
}
