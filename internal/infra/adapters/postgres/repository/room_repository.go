package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/qrave1/GiftRoulette/internal/domain/input"
	"github.com/qrave1/GiftRoulette/internal/domain/models"
)

var ErrRoomNotFound = errors.New("room not found")

// QueryError ошибка конкретного SQL запроса (не инфраструктуры транзакции)
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*models.Room, error)
	// GetOrCreate создаёт комнату в начальном состоянии, если её ещё нет
	GetOrCreate(ctx context.Context, id string) (*models.Room, error)
	UpdateState(ctx context.Context, id string, update *input.UpdateRoomInput) (*models.Room, error)
	// SetWinner переводит комнату во вращение с выбранным победителем
	SetWinner(ctx context.Context, id string, winnerTelegramID int64) error

	ListPlayers(ctx context.Context, roomID string) ([]*models.Player, error)
	ListParticipants(ctx context.Context, roomID string) ([]*models.Player, error)
	UpsertPlayer(ctx context.Context, player *models.Player) (*models.Player, error)
	TouchOnline(ctx context.Context, player *models.Player) error

	// RecalculateRoom пересчитывает банк, подарки и статус по текущим участникам
	RecalculateRoom(ctx context.Context, roomID string) (*models.Room, error)

	// Reset удаляет всех игроков комнаты и возвращает её в начальное состояние одной транзакцией
	Reset(ctx context.Context, roomID string) error
}

type roomRepo struct {
	db *sqlx.DB
}

func NewRoomRepo(db *sqlx.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room

	err := r.db.GetContext(ctx, &room, "SELECT * FROM rooms WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}

		return nil, err
	}

	return &room, nil
}

func (r *roomRepo) GetOrCreate(ctx context.Context, id string) (*models.Room, error) {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO rooms (id, status, countdown, total_gifts, total_ton)
		VALUES ($1, $2, $3, 0, 0)
		ON CONFLICT (id) DO NOTHING`,
		id,
		string(models.RoomStatusWaiting),
		models.DefaultCountdown,
	)
	if err != nil {
		return nil, &QueryError{Op: "create room", Err: err}
	}

	return r.GetByID(ctx, id)
}

func (r *roomRepo) UpdateState(ctx context.Context, id string, update *input.UpdateRoomInput) (*models.Room, error) {
	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}

	var room models.Room

	err := r.db.GetContext(
		ctx,
		&room,
		`UPDATE rooms
		SET status             = COALESCE($2, status),
		    countdown          = COALESCE($3, countdown),
		    winner_telegram_id = CASE WHEN $4 THEN $5 ELSE winner_telegram_id END,
		    total_gifts        = COALESCE($6, total_gifts),
		    total_ton          = COALESCE($7, total_ton),
		    updated_at         = now()
		WHERE id = $1
		RETURNING *`,
		id,
		status,
		update.Countdown,
		update.SetWinner,
		update.WinnerTelegramID,
		update.TotalGifts,
		update.TotalTon,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}

		return nil, &QueryError{Op: "update room state", Err: err}
	}

	return &room, nil
}

func (r *roomRepo) SetWinner(ctx context.Context, id string, winnerTelegramID int64) error {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE rooms
		SET status = $1, winner_telegram_id = $2, countdown = 0, updated_at = now()
		WHERE id = $3`,
		string(models.RoomStatusSpinning),
		winnerTelegramID,
		id,
	)
	if err != nil {
		return &QueryError{Op: "set winner", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &QueryError{Op: "set winner", Err: err}
	}

	if affected == 0 {
		return ErrRoomNotFound
	}

	return nil
}

func (r *roomRepo) ListPlayers(ctx context.Context, roomID string) ([]*models.Player, error) {
	players := make([]*models.Player, 0)

	query := `
		SELECT p.*
		FROM players p
		WHERE p.room_id = $1
		ORDER BY p.created_at ASC
	`

	err := r.db.SelectContext(ctx, &players, query, roomID)
	if err != nil {
		return nil, err
	}

	return players, nil
}

func (r *roomRepo) ListParticipants(ctx context.Context, roomID string) ([]*models.Player, error) {
	players := make([]*models.Player, 0)

	query := `
		SELECT p.*
		FROM players p
		WHERE p.room_id = $1 AND p.is_participant = true
		ORDER BY p.created_at ASC
	`

	err := r.db.SelectContext(ctx, &players, query, roomID)
	if err != nil {
		return nil, &QueryError{Op: "list participants", Err: err}
	}

	return players, nil
}

func (r *roomRepo) UpsertPlayer(ctx context.Context, player *models.Player) (*models.Player, error) {
	var saved models.Player

	err := r.db.GetContext(
		ctx,
		&saved,
		`INSERT INTO players (id, room_id, telegram_id, username, display_name, avatar,
		                     gifts, ton_value, color, percentage, is_participant)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (room_id, telegram_id) DO UPDATE
		SET username       = EXCLUDED.username,
		    display_name   = EXCLUDED.display_name,
		    avatar         = EXCLUDED.avatar,
		    gifts          = EXCLUDED.gifts,
		    ton_value      = EXCLUDED.ton_value,
		    color          = EXCLUDED.color,
		    percentage     = EXCLUDED.percentage,
		    is_participant = EXCLUDED.is_participant,
		    last_active_at = now()
		RETURNING *`,
		player.ID,
		player.RoomID,
		player.TelegramID,
		player.Username,
		player.DisplayName,
		player.Avatar,
		player.Gifts,
		player.TonValue,
		player.Color,
		player.Percentage,
		player.IsParticipant,
	)
	if err != nil {
		return nil, &QueryError{Op: "upsert player", Err: err}
	}

	return &saved, nil
}

func (r *roomRepo) TouchOnline(ctx context.Context, player *models.Player) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO players (id, room_id, telegram_id, username, display_name, avatar,
		                     gifts, ton_value, color, percentage, is_participant)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7, 0, false)
		ON CONFLICT (room_id, telegram_id) DO UPDATE
		SET username       = EXCLUDED.username,
		    display_name   = EXCLUDED.display_name,
		    avatar         = EXCLUDED.avatar,
		    last_active_at = now()`,
		player.ID,
		player.RoomID,
		player.TelegramID,
		player.Username,
		player.DisplayName,
		player.Avatar,
		player.Color,
	)
	if err != nil {
		return &QueryError{Op: "touch online player", Err: err}
	}

	return nil
}

type participantTotals struct {
	Participants int     `db:"participants"`
	TotalGifts   int     `db:"total_gifts"`
	TotalTon     float64 `db:"total_ton"`
}

func (r *roomRepo) RecalculateRoom(ctx context.Context, roomID string) (*models.Room, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current struct {
		Status    models.RoomStatus `db:"status"`
		Countdown int               `db:"countdown"`
	}

	err = tx.GetContext(ctx, &current, "SELECT status, countdown FROM rooms WHERE id = $1 FOR UPDATE", roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}

		return nil, &QueryError{Op: "lock room", Err: err}
	}

	var totals participantTotals

	err = tx.GetContext(
		ctx,
		&totals,
		`SELECT count(*) AS participants,
		        COALESCE(sum(gifts), 0) AS total_gifts,
		        COALESCE(sum(ton_value), 0) AS total_ton
		FROM players
		WHERE room_id = $1 AND is_participant = true`,
		roomID,
	)
	if err != nil {
		return nil, &QueryError{Op: "sum participants", Err: err}
	}

	status, countdown := models.NextState(current.Status, current.Countdown, totals.Participants)

	var room models.Room

	err = tx.GetContext(
		ctx,
		&room,
		`UPDATE rooms
		SET status = $1, countdown = $2, total_gifts = $3, total_ton = $4, updated_at = now()
		WHERE id = $5
		RETURNING *`,
		string(status),
		countdown,
		totals.TotalGifts,
		totals.TotalTon,
		roomID,
	)
	if err != nil {
		return nil, &QueryError{Op: "update room totals", Err: err}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &room, nil
}

func (r *roomRepo) Reset(ctx context.Context, roomID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, "DELETE FROM players WHERE room_id = $1", roomID); err != nil {
		return &QueryError{Op: "delete players", Err: err}
	}

	res, err := tx.ExecContext(
		ctx,
		`UPDATE rooms
		SET status = $1, countdown = $2, winner_telegram_id = NULL, total_gifts = 0, total_ton = 0, updated_at = now()
		WHERE id = $3`,
		string(models.RoomStatusWaiting),
		models.DefaultCountdown,
		roomID,
	)
	if err != nil {
		return &QueryError{Op: "reset room state", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &QueryError{Op: "reset room state", Err: err}
	}

	if affected == 0 {
		return ErrRoomNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
