package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirsrus/factorymon/controller/monitor"
	"github.com/kirsrus/factorymon/pkg/config"
	"github.com/kirsrus/factorymon/pkg/logger"
	"github.com/kirsrus/factorymon/service"
	feedSvcMod "github.com/kirsrus/factorymon/service/feed"
	ingestSvcMod "github.com/kirsrus/factorymon/service/ingest"
	webSvcMod "github.com/kirsrus/factorymon/service/web"
	"github.com/kirsrus/factorymon/store"
	cacheStoreMod "github.com/kirsrus/factorymon/store/cache"
	dbStoreMod "github.com/kirsrus/factorymon/store/db"
	memoryStoreMod "github.com/kirsrus/factorymon/store/memory"

	"github.com/juju/errors"
	"github.com/k0kubun/pp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	cfg *config.Config
	log *logrus.Logger
)

func init() {
	cfg = config.Get()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	log = logger.GetWithConfig(logger.Config{
		Path:    cfg.Log.Path,
		File:    cfg.Log.Filename,
		Level:   level,
		Console: cfg.Log.Console,
	})
	log.Debugf("конфигурация: %s", pp.Sprint(cfg.Http, cfg.Store, cfg.Feed))
}

func main() {
	err := run()
	if err != nil {
		fmt.Printf("ОШИБКА: в процессе работы произошла ошибка: %v\n", err)
		fmt.Printf("Для подробностей смотри лог: %s/%s\n", cfg.Log.Path, cfg.Log.Filename)
		log.Fatal(errors.ErrorStack(err))
	}
}

func run() error {
	// Отлавливаем сигнал завершения работы программы
	chanInterrupt := make(chan os.Signal, 1)
	signal.Notify(chanInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// region Хранилище показаний

	var (
		readingStore store.ReadingStore
		err          error
	)
	switch cfg.Store.Type {
	case store.TypeMemory:
		readingStore, err = memoryStoreMod.NewMemory(ctx, &memoryStoreMod.ConfigMemory{
			Log: log,
		})
	case store.TypeSqlite:
		readingStore, err = dbStoreMod.NewDb(ctx, &dbStoreMod.ConfigDb{
			Log: log,
			Dsn: cfg.Store.Dsn,
		})
	default:
		err = errors.NotValidf("тип хранилища %q", cfg.Store.Type)
	}
	if err != nil {
		return errors.Trace(err)
	}

	if cfg.Store.CacheExpiration != 0 {
		readingStore, err = cacheStoreMod.NewCache(ctx, readingStore, &cacheStoreMod.ConfigCache{
			Log:        log,
			Expiration: time.Duration(cfg.Store.CacheExpiration) * time.Second,
		})
		if err != nil {
			return errors.Trace(err)
		}
	}

	// endregion
	// region Поток показаний и приём через MQTT

	feedSvc, err := feedSvcMod.NewFeed(ctx, &feedSvcMod.ConfigFeed{
		Log:      log,
		Capacity: cfg.Feed.Capacity,
	})
	if err != nil {
		return errors.Trace(err)
	}

	var ingestSvc service.IngestSvc
	if cfg.Mqtt.Enabled {
		ingestSvc, err = ingestSvcMod.NewMqtt(ctx, &ingestSvcMod.ConfigMqtt{
			Log:              log,
			Broker:           cfg.Mqtt.Broker,
			Topic:            cfg.Mqtt.Topic,
			ClientID:         cfg.Mqtt.ClientID,
			Username:         cfg.Mqtt.Username,
			Password:         cfg.Mqtt.Password,
			QoS:              cfg.Mqtt.QoS,
			ReconnectTimeout: time.Duration(cfg.Mqtt.ReconnectTimeout) * time.Second,
		})
		if err != nil {
			return errors.Trace(err)
		}
		log.Infof("приём показаний через %s", ingestSvc)
	}

	// endregion
	// region Контроллер мониторинга и WEB

	monitorCtl, err := monitor.NewMonitor(ctx, &monitor.ConfigMonitor{
		Log:       log,
		Store:     readingStore,
		FeedSvc:   feedSvc,
		IngestSvc: ingestSvc,
	})
	if err != nil {
		return errors.Trace(err)
	}

	webSvc, err := webSvcMod.NewWeb(ctx, monitorCtl, &webSvcMod.ConfigWeb{
		Log:             log,
		FeedSvc:         feedSvc,
		WebHost:         cfg.Http.Host,
		WebPort:         cfg.Http.Port,
		ShutdownTimeout: time.Duration(cfg.Http.ShutdownTimeout) * time.Second,
		PingInterval:    time.Duration(cfg.Feed.PingInterval) * time.Second,
	})
	if err != nil {
		return errors.Trace(err)
	}

	webSvc.Root("/")
	webSvc.Parameters("/parameters")
	webSvc.Health("/health")
	webSvc.Feed("/parameters/feed")

	// endregion

	g := new(errgroup.Group)
	g.Go(func() error {
		defer cancel()
		return errors.Trace(webSvc.Serve(ctx))
	})
	g.Go(func() error {
		defer cancel()
		return errors.Trace(monitorCtl.Serve())
	})

	// Процесс завершения работы
	go func() {
		select {
		case <-chanInterrupt:
			log.Info("получена команда на завершение работы программы")
			cancel()
		case <-ctx.Done():
		}
	}()

	return errors.Trace(g.Wait())
}
