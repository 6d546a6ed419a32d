package service

import (
	"context"
	"net/http"

	"github.com/kirsrus/factorymon/model"
)

// WebSvc сервис HTTP API мониторинга
type WebSvc interface {
	// Хэндлер корневой страницы с приветствием
	Root(string)
	// Хэндлеры приёма (POST) и выборки (GET) показаний
	Parameters(string)
	// Хэндлер состояния сервиса
	Health(string)
	// Хэндлер потока новых показаний по WebSocket
	Feed(string)
	// Запуск HTTP-сервера. Блокирует выполнение до завершения ctx или ошибки сервера
	Serve(ctx context.Context) error
	// Обработчик всех зарегистрированных маршрутов
	Handler() http.Handler
}

// FeedSvc рассылка новых показаний подписчикам
type FeedSvc interface {
	// Передаёт показание всем подписчикам. Не блокирует
	Publish(model.Reading)
	// Подписка на новые показания. Канал закрывается после завершения ctx
	Subscribe(ctx context.Context) <-chan model.Reading
	// Количество активных подписчиков
	Subscribers() int
}

// IngestSvc приём показаний от внешнего источника. Держит постоянное подключение к нему.
type IngestSvc interface {
	// Ожидает очередное показание и возвращает его. В случае штатного завершения работы
	// возвращается ошибка context.Canceled
	EmmitReading() (*model.ReadingInput, error)
}
