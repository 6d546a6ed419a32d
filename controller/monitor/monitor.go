package monitor

import (
	"context"

	"github.com/kirsrus/factorymon/model"
	"github.com/kirsrus/factorymon/pkg/classifier"
	"github.com/kirsrus/factorymon/pkg/logger"
	"github.com/kirsrus/factorymon/pkg/validator"
	"github.com/kirsrus/factorymon/service"
	"github.com/kirsrus/factorymon/store"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Размер очереди показаний, принятых от источника
const ingestQueue = 10

// ConfigMonitor конфигурация Monitor
type ConfigMonitor struct {
	Log *logrus.Logger

	Store store.ReadingStore

	// Необязательные сервисы
	FeedSvc   service.FeedSvc
	IngestSvc service.IngestSvc
}

// Monitor контроллер приёма, классификации и выборки показаний. Инициируется через NewMonitor
type Monitor struct {
	ctx       context.Context
	log       *logrus.Entry
	validator *validator.Validator

	store store.ReadingStore

	feedSvc   service.FeedSvc
	ingestSvc service.IngestSvc
}

// NewMonitor конструктор Monitor
func NewMonitor(ctx context.Context, config *ConfigMonitor) (*Monitor, error) {
	if config == nil {
		return nil, errors.New("не передана конфигурация")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}
	if config.Store == nil {
		return nil, errors.New("не передано хранилище показаний")
	}

	monitor := Monitor{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "monitor",
			"scope":  "controller",
		}),
		validator: validator.Get(),
		store:     config.Store,
		feedSvc:   config.FeedSvc,
		ingestSvc: config.IngestSvc,
	}

	monitor.configToLog()

	return &monitor, nil
}

// Вывести значения конфигурациии в лог
func (m Monitor) configToLog() {
	m.log.Debugf("store: %T", m.store)
	m.log.Debugf("feed: %t", m.feedSvc != nil)
	m.log.Debugf("ingest: %t", m.ingestSvc != nil)
}

// Submit проверка, классификация и сохранение показания
func (m Monitor) Submit(input model.ReadingInput) (*model.Reading, error) {
	if err := m.validator.Validate(&input); err != nil {
		return nil, errors.NewNotValid(nil, "invalid reading: "+validator.Describe(err))
	}

	reading := classifier.ClassifyReading(input.ToReading())
	stored, err := m.store.Append(reading)
	if err != nil {
		return nil, errors.Trace(err)
	}
	m.log.Debugf("показание %s/%s=%v: %s", stored.MachineID, stored.ParameterName, stored.CurrentValue, stored.Status)

	if m.feedSvc != nil {
		m.feedSvc.Publish(*stored)
	}
	return stored, nil
}

// Query выборка показаний по фильтру
func (m Monitor) Query(filter model.Filter) ([]model.Reading, error) {
	rows, err := m.store.List(filter)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return rows, nil
}

// Health состояние сервиса с количеством сохранённых показаний
func (m Monitor) Health() (*model.Health, error) {
	total, err := m.store.Count()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &model.Health{
		Status:          model.HealthStatusHealthy,
		TotalParameters: total,
	}, nil
}

// Serve обработка показаний, поступающих от источника. Без источника просто ждёт
// завершения контекста
func (m Monitor) Serve() error {
	if m.ingestSvc == nil {
		<-m.ctx.Done()
		return nil
	}

	inputs := make(chan *model.ReadingInput, ingestQueue)
	g := new(errgroup.Group)

	// Приём показаний от источника
	g.Go(func() error {
		for {
			input, err := m.ingestSvc.EmmitReading()
			if err != nil {
				if errors.Cause(err) == context.Canceled {
					return nil
				}
				return errors.Trace(err)
			}
			// Ждём освобождения очереди, показание не теряется
			select {
			case <-m.ctx.Done():
				return nil
			case inputs <- input:
			}
		}
	})

	// Сохранение принятых показаний
	g.Go(func() error {
		for {
			select {
			case <-m.ctx.Done():
				return nil
			case input := <-inputs:
				m.ingestWorker(input)
			}
		}
	})

	return errors.Trace(g.Wait())
}

// Обработчик показания от источника. Ошибки только в лог
func (m Monitor) ingestWorker(input *model.ReadingInput) {
	if _, err := m.Submit(*input); err != nil {
		if errors.IsNotValid(err) {
			m.log.Warnf("показание отклонено: %v", err)
			return
		}
		m.log.Error(errors.ErrorStack(err))
	}
}
