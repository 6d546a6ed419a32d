package model

import (
	"encoding/json"

	"github.com/juju/errors"
)

// Status результат классификации показания относительно порогов
type Status string

const (
	StatusNormal         Status = "NORMAL"
	StatusBelowThreshold Status = "BELOW_THRESHOLD"
	StatusAboveThreshold Status = "ABOVE_THRESHOLD"
)

// Statuses все допустимые значения Status
var Statuses = []Status{StatusNormal, StatusBelowThreshold, StatusAboveThreshold}

// IsValid проверяет, что статус является одним из допустимых
func (s Status) IsValid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Reading показание параметра станка с вычисленным статусом. После сохранения не изменяется
type Reading struct {
	MachineID     string   `json:"machine_id"`
	ParameterName string   `json:"parameter_name"`
	CurrentValue  float64  `json:"current_value"`
	Unit          string   `json:"unit"`
	Timestamp     string   `json:"timestamp"`
	Status        Status   `json:"status" validate:"required,status"`
	ThresholdMin  *float64 `json:"threshold_min"`
	ThresholdMax  *float64 `json:"threshold_max"`
}

// Clone глубокая копия показания (пороги копируются по значению)
func (m Reading) Clone() Reading {
	res := m
	if m.ThresholdMin != nil {
		v := *m.ThresholdMin
		res.ThresholdMin = &v
	}
	if m.ThresholdMax != nil {
		v := *m.ThresholdMax
		res.ThresholdMax = &v
	}
	return res
}

// ReadingInput входящее показание до классификации. Указатели позволяют отличить
// отсутствующее поле от нулевого значения. Поле status клиента игнорируется
type ReadingInput struct {
	MachineID     *string  `json:"machine_id" validate:"required"`
	ParameterName *string  `json:"parameter_name" validate:"required"`
	CurrentValue  *float64 `json:"current_value" validate:"required"`
	Unit          *string  `json:"unit" validate:"required"`
	Timestamp     *string  `json:"timestamp" validate:"required"`
	ThresholdMin  *float64 `json:"threshold_min"`
	ThresholdMax  *float64 `json:"threshold_max"`
}

// ParseReadingInput разбирает JSON входящего показания. Ошибки разбора (включая
// значения неверного типа) возвращаются как errors.NotValid
func ParseReadingInput(data []byte) (*ReadingInput, error) {
	var input ReadingInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, errors.NewNotValid(err, "invalid reading body")
	}
	return &input, nil
}

// ToReading собирает показание без статуса. Вызывается только после валидации
func (m ReadingInput) ToReading() Reading {
	res := Reading{
		MachineID:     *m.MachineID,
		ParameterName: *m.ParameterName,
		CurrentValue:  *m.CurrentValue,
		Unit:          *m.Unit,
		Timestamp:     *m.Timestamp,
	}
	if m.ThresholdMin != nil {
		v := *m.ThresholdMin
		res.ThresholdMin = &v
	}
	if m.ThresholdMax != nil {
		v := *m.ThresholdMax
		res.ThresholdMax = &v
	}
	return res
}

// Filter условия выборки показаний. Пустое поле означает "любое значение",
// заданные поля объединяются по И
type Filter struct {
	MachineID string
	Status    Status
}

// Match проверяет, подходит ли показание под фильтр
func (m Filter) Match(reading Reading) bool {
	if m.MachineID != "" && reading.MachineID != m.MachineID {
		return false
	}
	if m.Status != "" && reading.Status != m.Status {
		return false
	}
	return true
}

// Health состояние сервиса
type Health struct {
	Status          string `json:"status"`
	TotalParameters int    `json:"total_parameters"`
}

// HealthStatusHealthy единственное значение Health.Status работающего сервиса
const HealthStatusHealthy = "healthy"
