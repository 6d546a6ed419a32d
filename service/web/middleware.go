package web

import (
	"time"

	"github.com/labstack/echo"
	"github.com/sirupsen/logrus"
)

// Журнал запросов через logrus
func accessLog(log *logrus.Entry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Ошибку обрабатываем здесь, чтобы в журнал попал итоговый статус
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			log.WithFields(logrus.Fields{
				"method":     req.Method,
				"uri":        req.RequestURI,
				"status":     res.Status,
				"size":       res.Size,
				"duration":   time.Since(start).String(),
				"request_id": res.Header().Get(echo.HeaderXRequestID),
			}).Info("запрос обработан")
			return nil
		}
	}
}
