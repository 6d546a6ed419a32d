package web

import (
	"context"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/kirsrus/factorymon/model"

	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/labstack/echo"
)

const welcomeMessage = "Welcome to Factory Monitoring API"

// Root приветствие и отметка времени
func (m Web) Root(path string) {
	m.e.GET(path, func(c echo.Context) error {
		return c.JSON(http.StatusOK, model.RootInfo{
			Message:   welcomeMessage,
			Timestamp: time.Now().UTC(),
			Status:    model.HealthStatusHealthy,
		})
	})
}

// Parameters приём нового показания (POST) и выборка показаний по фильтру (GET)
func (m Web) Parameters(path string) {
	m.e.POST(path, func(c echo.Context) error {
		body, err := ioutil.ReadAll(c.Request().Body)
		if err != nil {
			return errors.Annotate(err, "ошибка чтения тела запроса")
		}
		input, err := model.ParseReadingInput(body)
		if err != nil {
			return errors.Trace(err)
		}
		reading, err := m.monitor.Submit(*input)
		if err != nil {
			return errors.Trace(err)
		}
		return c.JSON(http.StatusOK, reading)
	})

	m.e.GET(path, func(c echo.Context) error {
		rows, err := m.monitor.Query(queryFilter(c))
		if err != nil {
			return errors.Trace(err)
		}
		if rows == nil {
			rows = make([]model.Reading, 0)
		}
		return c.JSON(http.StatusOK, rows)
	})
}

// Health состояние сервиса
func (m Web) Health(path string) {
	m.e.GET(path, func(c echo.Context) error {
		health, err := m.monitor.Health()
		if err != nil {
			return errors.Trace(err)
		}
		return c.JSON(http.StatusOK, health)
	})
}

// Feed поток новых показаний по WebSocket. Фильтры machine_id и status как у выборки
func (m Web) Feed(path string) {
	if m.feedSvc == nil {
		m.log.Warnf("сервис потока показаний не подключён, %s не регистрируется", path)
		return
	}

	m.e.GET(path, func(c echo.Context) error {
		filter := queryFilter(c)

		// Подписываемся до установки соединения, чтобы не терять показания
		ctx, cancel := context.WithCancel(m.ctx)
		defer cancel()
		readings := m.feedSvc.Subscribe(ctx)

		conn, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			// Ответ клиенту уже отправлен Upgrade
			m.log.Warnf("ошибка установки WebSocket: %v", err)
			return nil
		}
		defer func() { _ = conn.Close() }()
		m.log.Debugf("подключён клиент потока %s", c.RealIP())

		// Клиент ничего не пишет, читаем только для обработки close и pong
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(m.pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
				return nil
			case reading, ok := <-readings:
				if !ok {
					return nil
				}
				if !filter.Match(reading) {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(reading); err != nil {
					m.log.Debugf("клиент потока отключён: %v", err)
					return nil
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					m.log.Debugf("клиент потока не отвечает: %v", err)
					return nil
				}
			}
		}
	})
}

// Фильтр выборки из параметров запроса. Пустой параметр означает любое значение
func queryFilter(c echo.Context) model.Filter {
	return model.Filter{
		MachineID: c.QueryParam("machine_id"),
		Status:    model.Status(c.QueryParam("status")),
	}
}
