package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/GiftRoulette/internal/infra/ports/http/dto"
)

// ResetTokenMiddleware пропускает запрос только с ?token=, совпадающим с общим секретом.
func ResetTokenMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.QueryParam("token")

			if !validToken(token, secret) {
				slog.Warn("reset rejected: invalid token", slog.String("remote_ip", c.RealIP()))

				return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized: Invalid token"})
			}

			return next(c)
		}
	}
}

func validToken(token, secret string) bool {
	// пустой секрет никогда не совпадает
	if secret == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
