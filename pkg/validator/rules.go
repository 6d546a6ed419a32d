package validator

import (
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/kirsrus/factorymon/model"
)

// Валидатор статуса показания
func validatorStatus(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case model.Status:
		return v.IsValid()
	case string:
		return model.Status(v).IsValid()
	}
	return false
}

// Валидатор корректного адреса MQTT-брокера
func validatorMqtt(fl validator.FieldLevel) bool {
	address, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	addr, err := url.Parse(address)
	if err != nil {
		return false
	}
	if addr.Scheme != "tcp" && addr.Scheme != "mqtt" {
		return false
	}
	return addr.Host != ""
}
