package metric

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qrave1/GiftRoulette/internal/application/constant"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewServer создает новый сервер метрик. /health проверяет доступность БД.
func NewServer(db Pinger) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/health", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			slog.Warn("health check: ping postgres", slog.Any(constant.Error, err))

			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}

		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}
