package app

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/audit"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/cart"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/config"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/db"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/logger"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/service"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.LoadAndWatch(configPath, func(updated *config.AppConfig) {
		if err := logger.SetLevel(updated.Log.Level); err != nil {
			zap.L().Warn("failed to apply log level", zap.String("level", updated.Log.Level), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.Log.Level); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	gdb, err := db.Open(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	store, err := newCartStore(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize cart store -> %w", err)
	}

	publisher, closePublisher, err := newAuditPublisher(conf.Kafka)
	if err != nil {
		return fmt.Errorf("failed to initialize audit publisher -> %w", err)
	}
	defer closePublisher()

	s, err := api.NewServer(conf, gdb, store, publisher)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	go s.Hub.Run()
	defer s.Hub.Stop()

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func newCartStore(conf *config.AppConfig) (cart.Store, error) {
	if conf.Cart.Backend != "redis" {
		zap.L().Info("using in-memory cart store")
		return cart.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	zap.L().Info("using redis cart store", zap.String("addr", conf.Redis.Addr))

	return cart.NewRedisStore(client, conf.Cart.TTL), nil
}

func newAuditPublisher(conf *config.KafkaConfig) (service.AuditPublisher, func(), error) {
	if conf == nil || !conf.Enabled {
		return audit.Nop{}, func() {}, nil
	}

	publisher, err := audit.NewPublisher(conf.Brokers, audit.Topics{
		OrderLog: conf.OrderLogTopic,
		ShotLog:  conf.ShotLogTopic,
	}, conf.Mock)
	if err != nil {
		return nil, nil, err
	}

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			zap.L().Warn("failed to close audit publisher", zap.Error(err))
		}
	}, nil
}
