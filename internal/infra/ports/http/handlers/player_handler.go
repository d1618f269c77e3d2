package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/GiftRoulette/internal/application/constant"
	"github.com/qrave1/GiftRoulette/internal/infra/ports/http/dto"
)

func (h *RoomHandler) ListParticipants(c echo.Context) error {
	roomID := c.Param("id")

	participants, err := h.roomUsecase.ListParticipants(c.Request().Context(), roomID)
	if err != nil {
		slog.Error("list participants", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))

		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to get participants"})
	}

	return c.JSON(http.StatusOK, dto.NewParticipantsResponse(participants))
}

func (h *RoomHandler) AddPlayer(c echo.Context) error {
	roomID := c.Param("id")

	var req dto.AddPlayerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
	}

	if req.TelegramID == 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "telegramId is required"})
	}

	player, err := h.roomUsecase.AddPlayer(c.Request().Context(), req.ToInput(roomID))
	if err != nil {
		slog.Error("add player", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))

		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to add player"})
	}

	return c.JSON(http.StatusOK, dto.NewPlayerResponseFromModel(player))
}

// EnsureOnline отмечает пользователя в комнате как зрителя
func (h *RoomHandler) EnsureOnline(c echo.Context) error {
	roomID := c.Param("id")

	var req dto.EnsureOnlineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
	}

	if req.TelegramID == 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "telegramId is required"})
	}

	if err := h.roomUsecase.EnsureOnline(c.Request().Context(), req.ToInput(roomID)); err != nil {
		slog.Error("ensure user online", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))

		return c.JSON(http.StatusInternalServerError, dto.ActionResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, dto.ActionResponse{Success: true})
}
