package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/kirsrus/factorymon/controller"
	"github.com/kirsrus/factorymon/model"
	"github.com/kirsrus/factorymon/pkg/logger"
	"github.com/kirsrus/factorymon/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/sirupsen/logrus"
)

const (
	webPort         = 8080
	shutdownTimeout = 5 * time.Second
	pingInterval    = 10 * time.Second
	writeTimeout    = 5 * time.Second
	bodyLimit       = "1M"
)

// ConfigWeb конфигурация структуры Web
type ConfigWeb struct {
	Log *logrus.Logger

	// Необязательный сервис потока показаний. Без него /parameters/feed не регистрируется
	FeedSvc service.FeedSvc

	WebHost         string
	WebPort         uint
	ShutdownTimeout time.Duration
	PingInterval    time.Duration
}

// Web служба HTTP API. Инициализируется через NewWeb
type Web struct {
	ctx      context.Context
	log      *logrus.Entry
	e        *echo.Echo
	upgrader websocket.Upgrader

	monitor controller.MonitorCtl
	feedSvc service.FeedSvc

	webHost         string
	webPort         uint
	shutdownTimeout time.Duration
	pingInterval    time.Duration
}

// NewWeb конструктор структуры Web
func NewWeb(ctx context.Context, monitor controller.MonitorCtl, config *ConfigWeb) (service.WebSvc, error) {
	if config == nil {
		return nil, errors.New("не установлена конфигурация")
	}
	if monitor == nil {
		return nil, errors.New("не передан контроллер мониторинга")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}
	web := Web{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "web",
			"scope":  "service",
		}),
		e: echo.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},

		monitor: monitor,
		feedSvc: config.FeedSvc,

		webHost:         config.WebHost,
		webPort:         webPort,
		shutdownTimeout: shutdownTimeout,
		pingInterval:    pingInterval,
	}
	if config.WebPort != 0 {
		web.webPort = config.WebPort
	}
	if config.ShutdownTimeout != 0 {
		web.shutdownTimeout = config.ShutdownTimeout
	}
	if config.PingInterval != 0 {
		web.pingInterval = config.PingInterval
	}

	// Настройка WEB-сервера. Паники перехватываются Recover и уходят в HTTPErrorHandler
	web.e.HideBanner = true
	web.e.HidePort = true
	web.e.HTTPErrorHandler = web.httpErrorHandler
	web.e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.New().String()
		},
	}))
	web.e.Use(accessLog(web.log))
	web.e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisablePrintStack: true,
	}))
	web.e.Use(middleware.BodyLimit(bodyLimit))
	web.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	return &web, nil
}

// Handler обработчик всех зарегистрированных маршрутов
func (m Web) Handler() http.Handler {
	return m.e
}

// Serve запуск HTTP-сервера. При завершении ctx сервер корректно останавливается
func (m Web) Serve(ctx context.Context) error {
	address := net.JoinHostPort(m.webHost, strconv.Itoa(int(m.webPort)))
	done := make(chan error, 1)

	go func() {
		m.log.Infof("старт HTTP-сервера на %s", address)
		done <- m.e.Start(address)
	}()

	select {
	case err := <-done:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Annotate(err, "сервер неожиданно завершил работу")
	case <-ctx.Done():
		m.log.Info("остановка HTTP-сервера")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
		defer cancel()
		if err := m.e.Shutdown(shutdownCtx); err != nil {
			return errors.Annotate(err, "ошибка остановки HTTP-сервера")
		}
		return nil
	}
}

// Перевод ошибок в ответ: ошибки валидации в 422, прочие в 500
func (m Web) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		m.log.Warnf("ошибка после отправки ответа: %v", err)
		return
	}

	var (
		code int
		body model.ErrorResponse
	)
	if he, ok := errors.Cause(err).(*echo.HTTPError); ok {
		code = he.Code
		body = model.ErrorResponse{Error: http.StatusText(he.Code), Message: fmt.Sprint(he.Message)}
	} else if errors.IsNotValid(err) {
		code = http.StatusUnprocessableEntity
		body = model.ErrorResponse{Error: model.ErrorValidation, Message: err.Error()}
	} else {
		code = http.StatusInternalServerError
		body = model.ErrorResponse{Error: model.ErrorInternal, Message: err.Error()}
		m.log.Errorf("%s %s: %s", c.Request().Method, c.Request().URL.Path, errors.ErrorStack(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		m.log.Error(err)
	}
}
