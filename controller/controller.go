package controller

import (
	"github.com/kirsrus/factorymon/model"
)

// MonitorCtl контроллер приёма и выборки показаний станков
type MonitorCtl interface {
	// Проверяет, классифицирует и сохраняет показание. Ошибки проверки возвращаются как errors.NotValid
	Submit(model.ReadingInput) (*model.Reading, error)
	// Выборка сохранённых показаний по фильтру в порядке поступления
	Query(model.Filter) ([]model.Reading, error)
	// Состояние сервиса
	Health() (*model.Health, error)
}
