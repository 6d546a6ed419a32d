package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/kirsrus/factorymon/model"
	"github.com/kirsrus/factorymon/pkg/logger"
	"github.com/kirsrus/factorymon/store"

	"github.com/juju/errors"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	cacheDuration = 30 * time.Second
	cacheCleared  = time.Minute
)

// Cache кэширует выборки List поверх любого ReadingStore. Показания только
// добавляются и не меняются, поэтому количество показаний вместе с фильтром
// однозначно определяет результат выборки. Инициируется через NewCache
type Cache struct {
	ctx   context.Context
	log   *logrus.Entry
	next  store.ReadingStore
	cache *gocache.Cache
}

// ConfigCache конфигурация Cache
type ConfigCache struct {
	Log *logrus.Logger
	// Время жизни записи в кэше
	Expiration time.Duration
	// Интервал очистки устаревших записей
	CleanupInterval time.Duration
}

// NewCache конструктор Cache
func NewCache(ctx context.Context, next store.ReadingStore, config *ConfigCache) (*Cache, error) {
	if config == nil {
		return nil, errors.New("не указана конфигурация")
	}
	if next == nil {
		return nil, errors.New("не указано хранилище")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}
	expiration := cacheDuration
	if config.Expiration != 0 {
		expiration = config.Expiration
	}
	cleanup := cacheCleared
	if config.CleanupInterval != 0 {
		cleanup = config.CleanupInterval
	}

	return &Cache{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "cache",
			"scope":  "store",
		}),
		next:  next,
		cache: gocache.New(expiration, cleanup),
	}, nil
}

// Append передаёт показание в хранилище. Сброс кэша не нужен: после добавления
// меняется количество показаний, а значит и ключ
func (m *Cache) Append(reading model.Reading) (*model.Reading, error) {
	res, err := m.next.Append(reading)
	return res, errors.Trace(err)
}

// List возвращает выборку из кэша или из хранилища
func (m *Cache) List(filter model.Filter) ([]model.Reading, error) {
	total, err := m.next.Count()
	if err != nil {
		return nil, errors.Trace(err)
	}
	key := fmt.Sprintf("%d|%q|%q", total, filter.MachineID, filter.Status)

	if value, found := m.cache.Get(key); found {
		if rows, ok := value.([]model.Reading); ok {
			m.log.Debugf("выборка %s взята из кэша", key)
			return cloneAll(rows), nil
		}
		m.log.Errorf("в кэше по ключу %s неожиданный тип данных: %T", key, value)
	}

	rows, err := m.next.List(filter)
	if err != nil {
		return nil, errors.Trace(err)
	}
	m.cache.Set(key, cloneAll(rows), gocache.DefaultExpiration)
	return rows, nil
}

// Count количество показаний в хранилище
func (m *Cache) Count() (int, error) {
	total, err := m.next.Count()
	return total, errors.Trace(err)
}

// ItemCount количество выборок в кэше
func (m *Cache) ItemCount() int {
	return m.cache.ItemCount()
}

func cloneAll(rows []model.Reading) []model.Reading {
	res := make([]model.Reading, 0, len(rows))
	for _, v := range rows {
		res = append(res, v.Clone())
	}
	return res
}
