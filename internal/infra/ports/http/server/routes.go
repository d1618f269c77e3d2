package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/qrave1/GiftRoulette/internal/application/config"
	"github.com/qrave1/GiftRoulette/internal/infra/ports/http/handlers"
	"github.com/qrave1/GiftRoulette/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	roomHandler *handlers.RoomHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		api.GET("/reset-game", roomHandler.ResetGame, middleware.ResetTokenMiddleware(cfg.ResetToken))

		rooms := api.Group("/rooms/:id")
		{
			rooms.GET("", roomHandler.GetRoom)
			rooms.POST("", roomHandler.CreateRoom)
			rooms.PATCH("", roomHandler.UpdateRoom)

			rooms.GET("/participants", roomHandler.ListParticipants)
			rooms.POST("/players", roomHandler.AddPlayer)
			rooms.POST("/online", roomHandler.EnsureOnline)
			rooms.POST("/spin", roomHandler.Spin)
		}
	}

	return e
}
