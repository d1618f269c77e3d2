package constant

// Ключи slog атрибутов
const (
	Error  = "error"
	RoomID = "room_id"
)
