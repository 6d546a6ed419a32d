package memory

import (
	"context"
	"sync"

	"github.com/kirsrus/factorymon/model"
	"github.com/kirsrus/factorymon/pkg/logger"
	"github.com/kirsrus/factorymon/pkg/validator"
	"github.com/kirsrus/factorymon/store"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

// Начальная ёмкость хранилища
const initialCapacity = 1024

// Memory хранилище показаний в памяти процесса. Инициируется через NewMemory
type Memory struct {
	ctx       context.Context
	log       *logrus.Entry
	validator *validator.Validator

	mu       sync.RWMutex
	readings []model.Reading
}

// ConfigMemory конфигурация Memory
type ConfigMemory struct {
	Log *logrus.Logger
	// Начальная ёмкость (не ограничение)
	Capacity uint
}

// NewMemory конструктор Memory
func NewMemory(ctx context.Context, config *ConfigMemory) (store.ReadingStore, error) {
	if config == nil {
		return nil, errors.New("не указана конфигурация")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}
	capacity := uint(initialCapacity)
	if config.Capacity != 0 {
		capacity = config.Capacity
	}

	return &Memory{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "memory",
			"scope":  "store",
		}),
		validator: validator.Get(),
		readings:  make([]model.Reading, 0, capacity),
	}, nil
}

// Append сохраняет копию показания в конец последовательности
func (m *Memory) Append(reading model.Reading) (*model.Reading, error) {
	if err := m.validator.Validate(&reading); err != nil {
		return nil, errors.Annotate(err, "ошибка валидации")
	}
	stored := reading.Clone()

	m.mu.Lock()
	m.readings = append(m.readings, stored)
	total := len(m.readings)
	m.mu.Unlock()

	m.log.Debugf("сохранено показание %s/%s (%s), всего %d", stored.MachineID, stored.ParameterName, stored.Status, total)

	res := stored.Clone()
	return &res, nil
}

// List возвращает копии подходящих под фильтр показаний в порядке добавления
func (m *Memory) List(filter model.Filter) ([]model.Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]model.Reading, 0)
	for _, v := range m.readings {
		if filter.Match(v) {
			res = append(res, v.Clone())
		}
	}
	return res, nil
}

// Count количество сохранённых показаний
func (m *Memory) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.readings), nil
}
