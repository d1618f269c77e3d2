package models

import (
	"database/sql"
	"fmt"
	"time"
)

type Player struct {
	ID            string         `db:"id"`
	RoomID        string         `db:"room_id"`
	TelegramID    int64          `db:"telegram_id"`
	Username      sql.NullString `db:"username"`
	DisplayName   sql.NullString `db:"display_name"`
	Avatar        sql.NullString `db:"avatar"`
	Gifts         int            `db:"gifts"`
	TonValue      float64        `db:"ton_value"`
	Color         string         `db:"color"`
	Percentage    float64        `db:"percentage"`
	IsParticipant bool           `db:"is_participant"`
	CreatedAt     time.Time      `db:"created_at"`
	LastActiveAt  time.Time      `db:"last_active_at"`
}

// ResolvedDisplayName имя для отображения: display_name, затем @username, затем telegram id.
func (p *Player) ResolvedDisplayName() string {
	switch {
	case p.DisplayName.Valid && p.DisplayName.String != "":
		return p.DisplayName.String
	case p.Username.Valid && p.Username.String != "":
		return "@" + p.Username.String
	case p.TelegramID != 0:
		return fmt.Sprintf("User %d", p.TelegramID)
	default:
		return "Unknown User"
	}
}
