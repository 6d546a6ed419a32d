package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/leebenson/conform"
)

var (
	valid Validator
	once  sync.Once
)

// Validator валидатор. Инициализируется через NewValidator
type Validator struct {
	validator *validator.Validate
}

// NewValidator конструктор валидатора Validator
func NewValidator() *Validator {
	v := Validator{
		validator: validator.New(),
	}

	// В ошибках используем имена полей из JSON, их видит клиент
	v.validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Регистрируем внешние валидаторы
	if err := v.validator.RegisterValidation("status", validatorStatus); err != nil {
		panic(err)
	}
	if err := v.validator.RegisterValidation("mqtt", validatorMqtt); err != nil {
		panic(err)
	}

	return &v
}

// Validate валидация структуры. Подходит как echo.Validator
func (m *Validator) Validate(i interface{}) error {
	return m.validator.Struct(i)
}

// ValidateWithConform корректировка данных и валидация структуры
func (m *Validator) ValidateWithConform(i interface{}) error {
	if err := conform.Strings(i); err != nil {
		return err
	}
	return m.validator.Struct(i)
}

// Get единожды инициализирует и возвращает валидатор
func Get() *Validator {
	once.Do(func() {
		valid = *NewValidator()
	})
	return &valid
}

// Describe переводит ошибки валидации в читаемое сообщение вида
// "machine_id is required; unit is required". Прочие ошибки возвращаются как есть
func Describe(err error) string {
	if err == nil {
		return ""
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "status":
			parts = append(parts, fmt.Sprintf("%s has unknown status %q", fe.Field(), fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
