package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/GiftRoulette/internal/application/constant"
	"github.com/qrave1/GiftRoulette/internal/application/metric"
	"github.com/qrave1/GiftRoulette/internal/domain/output"
	"github.com/qrave1/GiftRoulette/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/GiftRoulette/internal/infra/ports/http/dto"
	"github.com/qrave1/GiftRoulette/internal/usecase"
)

type RoomHandler struct {
	roomUsecase   usecase.RoomUsecase
	defaultRoomID string
}

func NewRoomHandler(roomUsecase usecase.RoomUsecase, defaultRoomID string) *RoomHandler {
	return &RoomHandler{
		roomUsecase:   roomUsecase,
		defaultRoomID: defaultRoomID,
	}
}

// ResetGame сбрасывает комнату. Токен уже проверен middleware.ResetTokenMiddleware.
func (h *RoomHandler) ResetGame(c echo.Context) error {
	roomID := c.QueryParam("roomId")
	if roomID == "" {
		roomID = h.defaultRoomID
	}

	log := slog.With(slog.String(constant.RoomID, roomID))
	log.Info("Attempting to reset room")

	res, err := h.resetRoom(c.Request().Context(), roomID)
	if err != nil {
		log.Error("Unexpected error during room reset", slog.Any(constant.Error, err))
		metric.RecordRoomReset(metric.ResetError)

		return c.JSON(
			http.StatusInternalServerError,
			dto.ActionResponse{Message: "An unexpected error occurred: " + err.Error()},
		)
	}

	if !res.Success {
		log.Error("Failed to reset room", slog.String(constant.Error, res.Error))
		metric.RecordRoomReset(metric.ResetFailed)

		return c.JSON(
			http.StatusInternalServerError,
			dto.ActionResponse{Message: "Failed to reset room: " + res.Error},
		)
	}

	log.Info("Room reset successfully")
	metric.RecordRoomReset(metric.ResetSuccess)

	return c.JSON(
		http.StatusOK,
		dto.ActionResponse{Success: true, Message: fmt.Sprintf("Room %s reset successfully!", roomID)},
	)
}

// resetRoom превращает панику в usecase в обычную ошибку
func (h *RoomHandler) resetRoom(ctx context.Context, roomID string) (res output.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	return h.roomUsecase.ResetRoom(ctx, roomID)
}

func (h *RoomHandler) GetRoom(c echo.Context) error {
	roomID := c.Param("id")

	room, players, err := h.roomUsecase.GetRoomState(c.Request().Context(), roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "room not found"})
		}

		slog.Error("get room state", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))

		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to get room"})
	}

	return c.JSON(http.StatusOK, dto.NewRoomStateResponse(room, players))
}

// CreateRoom возвращает комнату, создавая её при первом обращении
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	roomID := c.Param("id")
	ctx := c.Request().Context()

	if _, err := h.roomUsecase.GetOrCreateRoom(ctx, roomID); err != nil {
		slog.Error("get or create room", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))

		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to create room"})
	}

	room, players, err := h.roomUsecase.GetRoomState(ctx, roomID)
	if err != nil {
		slog.Error("get room state", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))

		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to get room"})
	}

	return c.JSON(http.StatusOK, dto.NewRoomStateResponse(room, players))
}

func (h *RoomHandler) UpdateRoom(c echo.Context) error {
	roomID := c.Param("id")

	var req dto.UpdateRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
	}

	room, err := h.roomUsecase.UpdateRoomState(c.Request().Context(), roomID, req.ToInput())
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "room not found"})
		}

		slog.Error("update room state", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))

		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to update room"})
	}

	return c.JSON(http.StatusOK, room)
}

// Spin выбирает победителя среди участников и запускает вращение
func (h *RoomHandler) Spin(c echo.Context) error {
	roomID := c.Param("id")

	res, err := h.roomUsecase.DetermineWinnerAndSpin(c.Request().Context(), roomID)
	if err != nil {
		slog.Error("determine winner", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))

		return c.JSON(
			http.StatusInternalServerError,
			dto.SpinResponse{Message: "An unexpected error occurred: " + err.Error()},
		)
	}

	if !res.Success {
		return c.JSON(http.StatusConflict, dto.SpinResponse{Message: res.Error})
	}

	winner := res.WinnerTelegramID

	return c.JSON(http.StatusOK, dto.SpinResponse{Success: true, WinnerTelegramID: &winner})
}
