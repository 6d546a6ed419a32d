package db

import (
	"time"

	"github.com/kirsrus/factorymon/model"
)

type (
	// GormModelUnscoped модель эквивалент gorm.Model без сохранения удалений
	GormModelUnscoped struct {
		ID        int `gorm:"primaryKey"`
		CreatedAt time.Time
	}

	// Reading показание параметра станка. Порядок добавления определяется ID
	Reading struct {
		GormModelUnscoped
		MachineID     string `gorm:"index"`
		ParameterName string
		CurrentValue  float64
		Unit          string
		Timestamp     string
		Status        string `gorm:"index"`
		ThresholdMin  *float64
		ThresholdMax  *float64
	}
)

// TableName имя таблицы
func (Reading) TableName() string {
	return "readings"
}

// ToReading маппинг данных в структуру model.Reading
func (m Reading) ToReading() model.Reading {
	res := model.Reading{
		MachineID:     m.MachineID,
		ParameterName: m.ParameterName,
		CurrentValue:  m.CurrentValue,
		Unit:          m.Unit,
		Timestamp:     m.Timestamp,
		Status:        model.Status(m.Status),
		ThresholdMin:  m.ThresholdMin,
		ThresholdMax:  m.ThresholdMax,
	}
	return res.Clone()
}

// FromReading заполняет текущую структуру из структуры model.Reading
func (m *Reading) FromReading(reading model.Reading) {
	reading = reading.Clone()
	*m = Reading{
		MachineID:     reading.MachineID,
		ParameterName: reading.ParameterName,
		CurrentValue:  reading.CurrentValue,
		Unit:          reading.Unit,
		Timestamp:     reading.Timestamp,
		Status:        string(reading.Status),
		ThresholdMin:  reading.ThresholdMin,
		ThresholdMax:  reading.ThresholdMax,
	}
}
