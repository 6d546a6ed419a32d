package model

import "time"

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Заголовки ErrorResponse.Error
const (
	ErrorValidation = "Validation Error"
	ErrorInternal   = "Internal Server Error"
)

// RootInfo ответ корневой точки API
type RootInfo struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}
