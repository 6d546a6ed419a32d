package db

import (
	"context"

	"github.com/kirsrus/factorymon/model"
	"github.com/kirsrus/factorymon/pkg/logger"
	"github.com/kirsrus/factorymon/pkg/validator"
	"github.com/kirsrus/factorymon/store"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Db хранилище показаний в sqlite через gorm. Инициируется через NewDb
type Db struct {
	ctx       context.Context
	log       *logrus.Entry
	db        *gorm.DB
	validator *validator.Validator
}

// ConfigDb конфигурацияи класса NewDb
type ConfigDb struct {
	Log *logrus.Logger
	// Строка подключения sqlite, например file::memory:?cache=shared
	Dsn string
}

// NewDb конструктор класса Db
func NewDb(ctx context.Context, config *ConfigDb) (store.ReadingStore, error) {
	if config == nil {
		return nil, errors.New("не указана конфигурация")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}
	if config.Dsn == "" {
		return nil, errors.New("в конфигурации не указана строка подлкючения")
	}

	// Подключаемся к БД и запускаем миграции
	conn, err := gorm.Open(sqlite.Open(config.Dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, errors.Annotate(err, "ошибка подключения к БД")
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, errors.Trace(err)
	}
	// sqlite не допускает параллельной записи, запросы идут через одно соединение.
	// Оно же держит БД в памяти живой до завершения процесса
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err = conn.AutoMigrate(Reading{}); err != nil {
		return nil, errors.Annotate(err, "ошибка миграции БД")
	}

	db := Db{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "db",
			"scope":  "store",
		}),
		validator: validator.Get(),
		db:        conn,
	}
	return &db, nil
}

// Append добавляет показание в БД
func (m Db) Append(reading model.Reading) (*model.Reading, error) {
	if err := m.validator.Validate(&reading); err != nil {
		return nil, errors.Annotate(err, "ошибка валидации")
	}

	row := Reading{}
	row.FromReading(reading)
	if err := m.db.WithContext(m.ctx).Create(&row).Error; err != nil {
		return nil, errors.Annotate(err, "ошибка добавления в БД")
	}
	m.log.Debugf("сохранено показание #%d %s/%s (%s)", row.ID, row.MachineID, row.ParameterName, row.Status)

	res := row.ToReading()
	return &res, nil
}

// List выборка показаний по фильтру в порядке добавления
func (m Db) List(filter model.Filter) ([]model.Reading, error) {
	query := m.db.WithContext(m.ctx).Model(&Reading{})
	if filter.MachineID != "" {
		query = query.Where("machine_id = ?", filter.MachineID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var rows []Reading
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Annotate(err, "ошибка выборки показаний")
	}

	res := make([]model.Reading, 0, len(rows))
	for _, v := range rows {
		res = append(res, v.ToReading())
	}
	return res, nil
}

// Count количество показаний в БД
func (m Db) Count() (int, error) {
	var total int64
	if err := m.db.WithContext(m.ctx).Model(&Reading{}).Count(&total).Error; err != nil {
		return 0, errors.Annotate(err, "ошибка подсчёта показаний")
	}
	return int(total), nil
}
