package dto

import (
	"time"

	"github.com/qrave1/GiftRoulette/internal/domain/input"
	"github.com/qrave1/GiftRoulette/internal/domain/models"
)

type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PlayerResponse struct {
	ID            string  `json:"id"`
	TelegramID    int64   `json:"telegramId"`
	Username      *string `json:"username"`
	DisplayName   string  `json:"displayName"`
	Avatar        *string `json:"avatar"`
	Gifts         int     `json:"gifts"`
	TonValue      float64 `json:"tonValue"`
	Color         string  `json:"color"`
	Percentage    float64 `json:"percentage"`
	IsParticipant bool    `json:"isParticipant"`
	LastActiveAt  string  `json:"lastActiveAt,omitempty"`
}

func NewPlayerResponseFromModel(p *models.Player) PlayerResponse {
	resp := PlayerResponse{
		ID:            p.ID,
		TelegramID:    p.TelegramID,
		DisplayName:   p.ResolvedDisplayName(),
		Gifts:         p.Gifts,
		TonValue:      p.TonValue,
		Color:         p.Color,
		Percentage:    p.Percentage,
		IsParticipant: p.IsParticipant,
	}

	if p.Username.Valid {
		resp.Username = &p.Username.String
	}

	if p.Avatar.Valid {
		resp.Avatar = &p.Avatar.String
	}

	if !p.LastActiveAt.IsZero() {
		resp.LastActiveAt = p.LastActiveAt.UTC().Format(time.RFC3339)
	}

	return resp
}

type RoomStateResponse struct {
	Room    *models.Room     `json:"room"`
	Players []PlayerResponse `json:"players"`
}

func NewRoomStateResponse(room *models.Room, players []*models.Player) RoomStateResponse {
	resp := RoomStateResponse{
		Room:    room,
		Players: make([]PlayerResponse, 0, len(players)),
	}

	for _, p := range players {
		resp.Players = append(resp.Players, NewPlayerResponseFromModel(p))
	}

	return resp
}

type ParticipantsResponse struct {
	Participants []PlayerResponse `json:"participants"`
}

func NewParticipantsResponse(players []*models.Player) ParticipantsResponse {
	resp := ParticipantsResponse{Participants: make([]PlayerResponse, 0, len(players))}

	for _, p := range players {
		resp.Participants = append(resp.Participants, NewPlayerResponseFromModel(p))
	}

	return resp
}

type SpinResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	WinnerTelegramID *int64 `json:"winnerTelegramId,omitempty"`
}

type AddPlayerRequest struct {
	ID            string  `json:"id"`
	TelegramID    int64   `json:"telegramId"`
	Username      string  `json:"username"`
	DisplayName   string  `json:"displayName"`
	Avatar        string  `json:"avatar"`
	Gifts         int     `json:"gifts"`
	TonValue      float64 `json:"tonValue"`
	Color         string  `json:"color"`
	Percentage    float64 `json:"percentage"`
	IsParticipant bool    `json:"isParticipant"`
}

func (r *AddPlayerRequest) ToInput(roomID string) *input.AddPlayerInput {
	return &input.AddPlayerInput{
		ID:            r.ID,
		RoomID:        roomID,
		TelegramID:    r.TelegramID,
		Username:      r.Username,
		DisplayName:   r.DisplayName,
		Avatar:        r.Avatar,
		Gifts:         r.Gifts,
		TonValue:      r.TonValue,
		Color:         r.Color,
		Percentage:    r.Percentage,
		IsParticipant: r.IsParticipant,
	}
}

type EnsureOnlineRequest struct {
	TelegramID  int64  `json:"telegramId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

func (r *EnsureOnlineRequest) ToInput(roomID string) *input.EnsureOnlineInput {
	return &input.EnsureOnlineInput{
		RoomID:      roomID,
		TelegramID:  r.TelegramID,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		Avatar:      r.Avatar,
	}
}

type UpdateRoomRequest struct {
	Status           *models.RoomStatus `json:"status"`
	Countdown        *int               `json:"countdown"`
	WinnerTelegramID *int64             `json:"winner_telegram_id"`
	ClearWinner      bool               `json:"clear_winner"`
	TotalGifts       *int               `json:"total_gifts"`
	TotalTon         *float64           `json:"total_ton"`
}

func (r *UpdateRoomRequest) ToInput() *input.UpdateRoomInput {
	return &input.UpdateRoomInput{
		Status:           r.Status,
		Countdown:        r.Countdown,
		SetWinner:        r.WinnerTelegramID != nil || r.ClearWinner,
		WinnerTelegramID: r.WinnerTelegramID,
		TotalGifts:       r.TotalGifts,
		TotalTon:         r.TotalTon,
	}
}
