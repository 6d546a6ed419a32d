package feed

import (
	"context"
	"sync"

	"github.com/kirsrus/factorymon/model"
	"github.com/kirsrus/factorymon/pkg/logger"
	"github.com/kirsrus/factorymon/service"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

// Размер буфера канала подписчика по умолчанию
const subscriberCapacity = 10

// Feed пул подписчиков на новые показания. Инициируется через NewFeed
type Feed struct {
	ctx      context.Context
	log      *logrus.Entry
	capacity uint

	// Блокировка на запись удерживается только при закрытии канала подписчика,
	// чтобы Publish не писал в закрытый канал
	mu   sync.RWMutex
	pool *sync.Map
}

// ConfigFeed конфигурация Feed
type ConfigFeed struct {
	Log *logrus.Logger
	// Размер буфера канала каждого подписчика
	Capacity uint
}

// NewFeed конструктор Feed
func NewFeed(ctx context.Context, config *ConfigFeed) (service.FeedSvc, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}

	feed := Feed{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "feed",
			"scope":  "service",
		}),
		capacity: subscriberCapacity,
		pool:     new(sync.Map),
	}
	if config.Capacity != 0 {
		feed.capacity = config.Capacity
	}

	return &feed, nil
}

// Publish отправка показания всем подписчикам. Переполненный канал подписчика пропускается
func (m *Feed) Publish(reading model.Reading) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.pool.Range(func(key, value interface{}) bool {
		ch, ok := value.(chan model.Reading)
		if !ok {
			m.log.Errorf("в пуле подписчиков неожиданный тип данных: %T", value)
			return true
		}
		select {
		case ch <- reading.Clone():
		default:
			m.log.Warnf("канал подписчика %s переполнен, показание %s/%s пропущено", key, reading.MachineID, reading.ParameterName)
		}
		return true
	})
}

// Subscribe регистрирует нового подписчика. Подписка снимается при завершении ctx
// или общего контекста Feed
func (m *Feed) Subscribe(ctx context.Context) <-chan model.Reading {
	id := uuid.New().String()
	ch := make(chan model.Reading, m.capacity)
	m.pool.Store(id, ch)
	m.log.Debugf("новый подписчик %s", id)

	go func() {
		select {
		case <-ctx.Done():
		case <-m.ctx.Done():
		}
		m.mu.Lock()
		m.pool.Delete(id)
		close(ch)
		m.mu.Unlock()
		m.log.Debugf("подписчик %s отключён", id)
	}()

	return ch
}

// Subscribers количество активных подписчиков
func (m *Feed) Subscribers() int {
	total := 0
	m.pool.Range(func(_, _ interface{}) bool {
		total++
		return true
	})
	return total
}
