package main

import (
	"context"
	"fmt"

	"doctor-registry/internal/client"
	commonlogger "doctor-registry/internal/common/logger"
	commonmqtt "doctor-registry/internal/common/mqtt"
	commonredis "doctor-registry/internal/common/redis"
	"doctor-registry/internal/config"
	"doctor-registry/internal/domain"
	"doctor-registry/internal/notify"
	"doctor-registry/internal/store"
	"doctor-registry/internal/trash"

	"go.uber.org/zap"
)

// app 命令共享的依赖
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	api      *client.Client
	reader   store.DoctorReader
	cache    *store.DoctorCache
	notifier notify.Notifier
	actor    domain.Actor
	rdb      *commonredis.Client

	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	logger, err := commonlogger.NewLogger(cfg.Log.Level, cfg.Log.Format, "doctorctl")
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("failed to init logger: %w", err))
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		notifier: notify.Nop{},
	}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	a.api = client.New(client.Options{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		RetryCount: cfg.API.RetryCount,
	}, client.StaticToken(cfg.API.Token), logger)
	a.reader = a.api

	if cfg.API.Token != "" {
		actor, err := client.ActorFromToken(cfg.API.Token)
		if err != nil {
			logger.Warn("Could not read user from token", zap.Error(err))
		}
		a.actor = actor
	}

	var rdb *commonredis.Client
	if cfg.RedisEnabled || cfg.Notify.Mode == "redis" {
		rdb = commonredis.NewRedisClient(&cfg.Redis)
		if err := commonredis.Ping(ctx, rdb); err != nil {
			a.Close()
			return nil, withCode(exitIO, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err))
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		a.rdb = rdb
	}

	if cfg.RedisEnabled {
		a.cache = store.NewDoctorCache(store.NewRedisKV(rdb, cfg.Cache.Namespace), cfg.Cache.TTL, logger)
		a.reader = store.NewCachedReader(a.api, a.cache, logger)
	}

	switch cfg.Notify.Mode {
	case "", "none":
	case "redis":
		a.notifier = notify.NewRedisStreamNotifier(rdb, cfg.Notify.Stream)
	case "mqtt":
		mc, err := commonmqtt.NewClient(&cfg.MQTT)
		if err != nil {
			a.Close()
			return nil, withCode(exitIO, err)
		}
		a.closers = append(a.closers, mc.Disconnect)
		a.notifier = notify.NewMQTTNotifier(mc, cfg.MQTT.Topic, cfg.MQTT.QoS)
	default:
		a.Close()
		return nil, withCode(exitUsage, fmt.Errorf("unknown NOTIFY_MODE %q", cfg.Notify.Mode))
	}

	return a, nil
}

// changeListeners 保存成功后：失效缓存并发布变更事件
func (a *app) changeListeners(ctx context.Context) []func(id int64) {
	var listeners []func(id int64)
	if a.cache != nil {
		listeners = append(listeners, func(id int64) {
			if err := a.cache.Invalidate(ctx, id); err != nil {
				a.logger.Warn("Failed to invalidate doctor cache", zap.Int64("doctor_id", id), zap.Error(err))
			}
		})
	}
	listeners = append(listeners, notify.Listener(ctx, a.notifier, a.actor.Username, a.logger))
	return listeners
}

// changeFuncs 删除或恢复成功后：失效缓存并按事件类型发布
func (a *app) changeFuncs(ctx context.Context) []trash.ChangeFunc {
	var fns []trash.ChangeFunc
	if a.cache != nil {
		fns = append(fns, func(typ string, id int64) {
			if err := a.cache.Invalidate(ctx, id); err != nil {
				a.logger.Warn("Failed to invalidate doctor cache", zap.Int64("doctor_id", id), zap.Error(err))
			}
		})
	}
	return append(fns, notify.Publish(ctx, a.notifier, a.actor.Username, a.logger))
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
