package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/GiftRoulette/internal/application/metric"
	"github.com/qrave1/GiftRoulette/internal/domain/input"
	"github.com/qrave1/GiftRoulette/internal/domain/models"
	"github.com/qrave1/GiftRoulette/internal/domain/output"
	"github.com/qrave1/GiftRoulette/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/GiftRoulette/internal/usecase"
)

type fakeRoomUsecase struct {
	calls []string

	result output.Result
	err    error
	panic  any

	room     *models.Room
	players  []*models.Player
	stateErr error

	spin    output.SpinResult
	spinErr error

	created   []string
	createErr error

	participants []*models.Player

	added    *input.AddPlayerInput
	online   *input.EnsureOnlineInput
	updated  *input.UpdateRoomInput
	errOther error
}

func (f *fakeRoomUsecase) ResetRoom(_ context.Context, roomID string) (output.Result, error) {
	f.calls = append(f.calls, roomID)
	if f.panic != nil {
		panic(f.panic)
	}

	return f.result, f.err
}

func (f *fakeRoomUsecase) GetRoomState(_ context.Context, _ string) (*models.Room, []*models.Player, error) {
	return f.room, f.players, f.stateErr
}

func (f *fakeRoomUsecase) DetermineWinnerAndSpin(_ context.Context, _ string) (output.SpinResult, error) {
	return f.spin, f.spinErr
}

func (f *fakeRoomUsecase) GetOrCreateRoom(_ context.Context, roomID string) (*models.Room, error) {
	f.created = append(f.created, roomID)
	return &models.Room{ID: roomID}, f.createErr
}

func (f *fakeRoomUsecase) UpdateRoomState(
	_ context.Context,
	roomID string,
	update *input.UpdateRoomInput,
) (*models.Room, error) {
	f.updated = update
	if f.errOther != nil {
		return nil, f.errOther
	}

	return &models.Room{ID: roomID}, nil
}

func (f *fakeRoomUsecase) ListParticipants(_ context.Context, _ string) ([]*models.Player, error) {
	return f.participants, f.errOther
}

func (f *fakeRoomUsecase) AddPlayer(_ context.Context, in *input.AddPlayerInput) (*models.Player, error) {
	f.added = in
	if f.errOther != nil {
		return nil, f.errOther
	}

	return &models.Player{ID: "p1", RoomID: in.RoomID, TelegramID: in.TelegramID}, nil
}

func (f *fakeRoomUsecase) EnsureOnline(_ context.Context, in *input.EnsureOnlineInput) error {
	f.online = in
	return f.errOther
}

// resetCount текущее значение room_resets_total{outcome} из дефолтного реестра
func resetCount(t *testing.T, outcome string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != "room_resets_total" {
			continue
		}

		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}

	return 0
}

func serveReset(t *testing.T, uc *fakeRoomUsecase, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	h := NewRoomHandler(uc, "default-room-id")
	require.NoError(t, h.ResetGame(e.NewContext(req, rec)))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec, body
}

func TestRoomHandler_ResetGame_Success(t *testing.T) {
	uc := &fakeRoomUsecase{result: output.OK()}

	rec, body := serveReset(t, uc, "/api/reset-game?roomId=room42")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"room42"}, uc.calls)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Room room42 reset successfully!", body["message"])
}

func TestRoomHandler_ResetGame_DefaultRoom(t *testing.T) {
	uc := &fakeRoomUsecase{result: output.OK()}

	rec, body := serveReset(t, uc, "/api/reset-game?roomId=")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"default-room-id"}, uc.calls)
	assert.Equal(t, "Room default-room-id reset successfully!", body["message"])
}

func TestRoomHandler_ResetGame_DomainFailure(t *testing.T) {
	uc := &fakeRoomUsecase{result: output.Failed("X")}

	rec, body := serveReset(t, uc, "/api/reset-game?roomId=room42")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to reset room: X", body["message"])
}

func TestRoomHandler_ResetGame_UnexpectedError(t *testing.T) {
	uc := &fakeRoomUsecase{err: errors.New("Y")}

	rec, body := serveReset(t, uc, "/api/reset-game?roomId=room42")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "An unexpected error occurred: Y", body["message"])
}

func TestRoomHandler_ResetGame_Panic(t *testing.T) {
	uc := &fakeRoomUsecase{panic: "Y"}

	rec, body := serveReset(t, uc, "/api/reset-game")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An unexpected error occurred: Y", body["message"])
	assert.Len(t, uc.calls, 1)
}

func TestRoomHandler_GetRoom(t *testing.T) {
	tests := []struct {
		name     string
		uc       *fakeRoomUsecase
		wantCode int
	}{
		{
			name: "found",
			uc: &fakeRoomUsecase{
				room:    &models.Room{ID: "room42", Status: models.RoomStatusWaiting},
				players: []*models.Player{{ID: "p1", TelegramID: 7}},
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "not found",
			uc:       &fakeRoomUsecase{stateErr: repository.ErrRoomNotFound},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "storage failure",
			uc:       &fakeRoomUsecase{stateErr: errors.New("boom")},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/rooms/room42", nil), rec)
			c.SetParamNames("id")
			c.SetParamValues("room42")

			require.NoError(t, NewRoomHandler(tt.uc, "default-room-id").GetRoom(c))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRoomHandler_GetRoom_PlayerShape(t *testing.T) {
	uc := &fakeRoomUsecase{
		room:    &models.Room{ID: "room42", Status: models.RoomStatusWaiting},
		players: []*models.Player{{ID: "p1", TelegramID: 7, Color: "#4b5563"}},
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/rooms/room42", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("room42")

	require.NoError(t, NewRoomHandler(uc, "default-room-id").GetRoom(c))

	var body struct {
		Players []map[string]any `json:"players"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Players, 1)

	assert.Equal(t, "User 7", body.Players[0]["displayName"])
	assert.Nil(t, body.Players[0]["username"])
	assert.Equal(t, false, body.Players[0]["isParticipant"])
}

func TestRoomHandler_ResetGame_CountsOutcome(t *testing.T) {
	tests := []struct {
		name    string
		uc      *fakeRoomUsecase
		outcome string
	}{
		{name: "success", uc: &fakeRoomUsecase{result: output.OK()}, outcome: metric.ResetSuccess},
		{name: "domain failure", uc: &fakeRoomUsecase{result: output.Failed("X")}, outcome: metric.ResetFailed},
		{name: "unexpected error", uc: &fakeRoomUsecase{err: errors.New("Y")}, outcome: metric.ResetError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := map[string]float64{}
			for _, o := range []string{metric.ResetSuccess, metric.ResetFailed, metric.ResetError} {
				before[o] = resetCount(t, o)
			}

			serveReset(t, tt.uc, "/api/reset-game?roomId=room42")

			for o, was := range before {
				want := was
				if o == tt.outcome {
					want++
				}

				assert.Equal(t, want, resetCount(t, o), "outcome %s", o)
			}
		})
	}
}

func newRoomContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("room42")

	return c, rec
}

func TestRoomHandler_CreateRoom(t *testing.T) {
	uc := &fakeRoomUsecase{room: &models.Room{ID: "room42", Status: models.RoomStatusWaiting}}
	c, rec := newRoomContext(http.MethodPost, "/api/rooms/room42", "")

	require.NoError(t, NewRoomHandler(uc, "default-room-id").CreateRoom(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"room42"}, uc.created)
	assert.Contains(t, rec.Body.String(), `"status":"waiting"`)
}

func TestRoomHandler_CreateRoom_Fails(t *testing.T) {
	uc := &fakeRoomUsecase{createErr: errors.New("boom")}
	c, rec := newRoomContext(http.MethodPost, "/api/rooms/room42", "")

	require.NoError(t, NewRoomHandler(uc, "default-room-id").CreateRoom(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRoomHandler_Spin(t *testing.T) {
	tests := []struct {
		name     string
		uc       *fakeRoomUsecase
		wantCode int
		wantBody string
	}{
		{
			name: "winner picked",
			uc: &fakeRoomUsecase{spin: output.SpinResult{
				Result:           output.OK(),
				WinnerTelegramID: 200,
			}},
			wantCode: http.StatusOK,
			wantBody: `{"success":true,"winnerTelegramId":200}`,
		},
		{
			name:     "not enough participants",
			uc:       &fakeRoomUsecase{spin: output.SpinResult{Result: output.Failed("Not enough participants")}},
			wantCode: http.StatusConflict,
			wantBody: `{"success":false,"message":"Not enough participants"}`,
		},
		{
			name:     "unexpected error",
			uc:       &fakeRoomUsecase{spinErr: errors.New("Y")},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"success":false,"message":"An unexpected error occurred: Y"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRoomContext(http.MethodPost, "/api/rooms/room42/spin", "")

			require.NoError(t, NewRoomHandler(tt.uc, "default-room-id").Spin(c))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestRoomHandler_ListParticipants(t *testing.T) {
	uc := &fakeRoomUsecase{participants: []*models.Player{{ID: "p1", TelegramID: 1, IsParticipant: true}}}
	c, rec := newRoomContext(http.MethodGet, "/api/rooms/room42/participants", "")

	require.NoError(t, NewRoomHandler(uc, "default-room-id").ListParticipants(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Participants []map[string]any `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Participants, 1)
	assert.Equal(t, true, body.Participants[0]["isParticipant"])
}

func TestRoomHandler_AddPlayer(t *testing.T) {
	uc := &fakeRoomUsecase{}
	c, rec := newRoomContext(
		http.MethodPost,
		"/api/rooms/room42/players",
		`{"telegramId":7,"username":"alice","tonValue":2.5,"isParticipant":true}`,
	)

	require.NoError(t, NewRoomHandler(uc, "default-room-id").AddPlayer(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.added)
	assert.Equal(t, "room42", uc.added.RoomID)
	assert.Equal(t, int64(7), uc.added.TelegramID)
	assert.Equal(t, 2.5, uc.added.TonValue)
	assert.True(t, uc.added.IsParticipant)
}

func TestRoomHandler_AddPlayer_MissingTelegramID(t *testing.T) {
	uc := &fakeRoomUsecase{}
	c, rec := newRoomContext(http.MethodPost, "/api/rooms/room42/players", `{"username":"alice"}`)

	require.NoError(t, NewRoomHandler(uc, "default-room-id").AddPlayer(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.added)
}

func TestRoomHandler_EnsureOnline(t *testing.T) {
	uc := &fakeRoomUsecase{}
	c, rec := newRoomContext(http.MethodPost, "/api/rooms/room42/online", `{"telegramId":7,"displayName":"Alice"}`)

	require.NoError(t, NewRoomHandler(uc, "default-room-id").EnsureOnline(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	require.NotNil(t, uc.online)
	assert.Equal(t, "Alice", uc.online.DisplayName)
}

func TestRoomHandler_UpdateRoom(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{name: "ok", body: `{"status":"finished","countdown":0}`, wantCode: http.StatusOK},
		{name: "invalid status", body: `{"status":"paused"}`, err: usecase.ErrInvalidStatus, wantCode: http.StatusBadRequest},
		{name: "room not found", body: `{"countdown":5}`, err: repository.ErrRoomNotFound, wantCode: http.StatusNotFound},
		{name: "storage failure", body: `{"countdown":5}`, err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeRoomUsecase{errOther: tt.err}
			c, rec := newRoomContext(http.MethodPatch, "/api/rooms/room42", tt.body)

			require.NoError(t, NewRoomHandler(uc, "default-room-id").UpdateRoom(c))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRoomHandler_UpdateRoom_ClearWinner(t *testing.T) {
	uc := &fakeRoomUsecase{}
	c, _ := newRoomContext(http.MethodPatch, "/api/rooms/room42", `{"clear_winner":true}`)

	require.NoError(t, NewRoomHandler(uc, "default-room-id").UpdateRoom(c))

	require.NotNil(t, uc.updated)
	assert.True(t, uc.updated.SetWinner)
	assert.Nil(t, uc.updated.WinnerTelegramID)
	assert.Nil(t, uc.updated.Status)
}
