package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/qrave1/GiftRoulette/internal/application/constant"
	"github.com/qrave1/GiftRoulette/internal/domain/input"
	"github.com/qrave1/GiftRoulette/internal/domain/models"
	"github.com/qrave1/GiftRoulette/internal/domain/output"
	"github.com/qrave1/GiftRoulette/internal/infra/adapters/postgres/repository"
)

const (
	// цвет зрителя по умолчанию
	observerColor = "#4b5563"

	reasonNotEnoughParticipants = "Not enough participants"
)

var ErrInvalidStatus = errors.New("invalid room status")

type RoomUsecase interface {
	// ResetRoom возвращает Result для штатных ошибок домена и error для неожиданных сбоев
	ResetRoom(ctx context.Context, roomID string) (output.Result, error)
	DetermineWinnerAndSpin(ctx context.Context, roomID string) (output.SpinResult, error)

	GetOrCreateRoom(ctx context.Context, roomID string) (*models.Room, error)
	GetRoomState(ctx context.Context, roomID string) (*models.Room, []*models.Player, error)
	UpdateRoomState(ctx context.Context, roomID string, update *input.UpdateRoomInput) (*models.Room, error)

	ListParticipants(ctx context.Context, roomID string) ([]*models.Player, error)
	AddPlayer(ctx context.Context, in *input.AddPlayerInput) (*models.Player, error)
	EnsureOnline(ctx context.Context, in *input.EnsureOnlineInput) error
}

type roomUsecase struct {
	roomRepo repository.RoomRepository
	// rnd источник случайности для выбора победителя, [0, 1)
	rnd func() float64
}

func NewRoomUsecase(roomRepo repository.RoomRepository) RoomUsecase {
	return &roomUsecase{
		roomRepo: roomRepo,
		rnd:      rand.Float64,
	}
}

func (uc *roomUsecase) ResetRoom(ctx context.Context, roomID string) (output.Result, error) {
	err := uc.roomRepo.Reset(ctx, roomID)
	if err == nil {
		return output.OK(), nil
	}

	return uc.domainFailure(ctx, "reset room", roomID, err)
}

func (uc *roomUsecase) DetermineWinnerAndSpin(ctx context.Context, roomID string) (output.SpinResult, error) {
	participants, err := uc.roomRepo.ListParticipants(ctx, roomID)
	if err != nil {
		res, err := uc.domainFailure(ctx, "list participants", roomID, err)
		return output.SpinResult{Result: res}, err
	}

	if len(participants) < models.MinParticipants {
		return output.SpinResult{Result: output.Failed(reasonNotEnoughParticipants)}, nil
	}

	winner := models.PickWinner(participants, uc.rnd())

	if err = uc.roomRepo.SetWinner(ctx, roomID, winner.TelegramID); err != nil {
		res, err := uc.domainFailure(ctx, "set winner", roomID, err)
		return output.SpinResult{Result: res}, err
	}

	slog.Info(
		"Winner determined",
		slog.String(constant.RoomID, roomID),
		slog.Int64("winner_telegram_id", winner.TelegramID),
		slog.Int("participants", len(participants)),
	)

	return output.SpinResult{Result: output.OK(), WinnerTelegramID: winner.TelegramID}, nil
}

// domainFailure раскладывает ошибку репозитория: отсутствие комнаты и ошибки запросов -
// штатный отказ, отмена контекста и сбои транзакции - неожиданная ошибка.
func (uc *roomUsecase) domainFailure(ctx context.Context, op, roomID string, err error) (output.Result, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return output.Result{}, fmt.Errorf("%s: %w", op, ctxErr)
	}

	var queryErr *repository.QueryError

	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		return output.Failed(fmt.Sprintf("room %s not found", roomID)), nil
	case errors.As(err, &queryErr):
		slog.Error(op+" query", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))

		return output.Failed(queryErr.Error()), nil
	default:
		return output.Result{}, fmt.Errorf("%s: %w", op, err)
	}
}

func (uc *roomUsecase) GetOrCreateRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := uc.roomRepo.GetOrCreate(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get or create room: %w", err)
	}

	return room, nil
}

func (uc *roomUsecase) GetRoomState(ctx context.Context, roomID string) (*models.Room, []*models.Player, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("get room by id: %w", err)
	}

	players, err := uc.roomRepo.ListPlayers(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("list players: %w", err)
	}

	return room, players, nil
}

func (uc *roomUsecase) UpdateRoomState(
	ctx context.Context,
	roomID string,
	update *input.UpdateRoomInput,
) (*models.Room, error) {
	if update.Status != nil && !update.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *update.Status)
	}

	room, err := uc.roomRepo.UpdateState(ctx, roomID, update)
	if err != nil {
		return nil, fmt.Errorf("update room state: %w", err)
	}

	return room, nil
}

func (uc *roomUsecase) ListParticipants(ctx context.Context, roomID string) ([]*models.Player, error) {
	return uc.roomRepo.ListParticipants(ctx, roomID)
}

func (uc *roomUsecase) AddPlayer(ctx context.Context, in *input.AddPlayerInput) (*models.Player, error) {
	if _, err := uc.roomRepo.GetOrCreate(ctx, in.RoomID); err != nil {
		return nil, fmt.Errorf("get or create room: %w", err)
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	color := in.Color
	if color == "" {
		color = observerColor
	}

	player, err := uc.roomRepo.UpsertPlayer(ctx, &models.Player{
		ID:            id,
		RoomID:        in.RoomID,
		TelegramID:    in.TelegramID,
		Username:      nullString(in.Username),
		DisplayName:   nullString(in.DisplayName),
		Avatar:        nullString(in.Avatar),
		Gifts:         in.Gifts,
		TonValue:      in.TonValue,
		Color:         color,
		Percentage:    in.Percentage,
		IsParticipant: in.IsParticipant,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert player: %w", err)
	}

	// игрок уже сохранён; неудачный пересчёт комнаты не отменяет добавление
	if _, err = uc.roomRepo.RecalculateRoom(ctx, in.RoomID); err != nil {
		slog.Error(
			"recalculate room after add player",
			slog.String(constant.RoomID, in.RoomID),
			slog.Any(constant.Error, err),
		)
	}

	return player, nil
}

func (uc *roomUsecase) EnsureOnline(ctx context.Context, in *input.EnsureOnlineInput) error {
	if _, err := uc.roomRepo.GetOrCreate(ctx, in.RoomID); err != nil {
		return fmt.Errorf("get or create room: %w", err)
	}

	err := uc.roomRepo.TouchOnline(ctx, &models.Player{
		ID:          fmt.Sprintf("online_%d_%s", in.TelegramID, uuid.NewString()),
		RoomID:      in.RoomID,
		TelegramID:  in.TelegramID,
		Username:    nullString(in.Username),
		DisplayName: nullString(in.DisplayName),
		Avatar:      nullString(in.Avatar),
		Color:       observerColor,
	})
	if err != nil {
		return fmt.Errorf("touch online: %w", err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
