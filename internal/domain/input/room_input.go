package input

import "github.com/qrave1/GiftRoulette/internal/domain/models"

type AddPlayerInput struct {
	ID            string
	RoomID        string
	TelegramID    int64
	Username      string
	DisplayName   string
	Avatar        string
	Gifts         int
	TonValue      float64
	Color         string
	Percentage    float64
	IsParticipant bool
}

// EnsureOnlineInput профиль зрителя; ставки существующего игрока не меняются
type EnsureOnlineInput struct {
	RoomID      string
	TelegramID  int64
	Username    string
	DisplayName string
	Avatar      string
}

// UpdateRoomInput частичное обновление; nil поля не трогаются.
// WinnerTelegramID применяется только при SetWinner (nil сбрасывает победителя).
type UpdateRoomInput struct {
	Status           *models.RoomStatus
	Countdown        *int
	SetWinner        bool
	WinnerTelegramID *int64
	TotalGifts       *int
	TotalTon         *float64
}
