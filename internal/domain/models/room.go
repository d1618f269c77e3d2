package models

import "time"

type RoomStatus string

const (
	RoomStatusWaiting      RoomStatus = "waiting"
	RoomStatusSinglePlayer RoomStatus = "single_player"
	RoomStatusCountdown    RoomStatus = "countdown"
	RoomStatusSpinning     RoomStatus = "spinning"
	RoomStatusFinished     RoomStatus = "finished"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomStatusWaiting, RoomStatusSinglePlayer, RoomStatusCountdown, RoomStatusSpinning, RoomStatusFinished:
		return true
	default:
		return false
	}
}

// DefaultCountdown секунд до вращения после сбора участников
const DefaultCountdown = 20

// MinParticipants для запуска отсчёта и розыгрыша
const MinParticipants = 2

type Room struct {
	ID               string     `json:"id" db:"id"`
	Status           RoomStatus `json:"status" db:"status"`
	Countdown        int        `json:"countdown" db:"countdown"`
	WinnerTelegramID *int64     `json:"winner_telegram_id" db:"winner_telegram_id"`
	TotalGifts       int        `json:"total_gifts" db:"total_gifts"`
	TotalTon         float64    `json:"total_ton" db:"total_ton"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// NextState статус и отсчёт комнаты после изменения числа участников.
// Уже идущий отсчёт, вращение или завершённая игра при >= 2 участниках не трогаются.
func NextState(current RoomStatus, countdown, participants int) (RoomStatus, int) {
	switch {
	case participants >= MinParticipants:
		if current == RoomStatusWaiting || current == RoomStatusSinglePlayer {
			return RoomStatusCountdown, DefaultCountdown
		}

		return current, countdown
	case participants == 1:
		return RoomStatusSinglePlayer, DefaultCountdown
	default:
		return RoomStatusWaiting, DefaultCountdown
	}
}
