package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/catalog"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/economy"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/game"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/input"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/targeting"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	session *game.Session
	exit    *input.ChanSource
}

func newTestServer(t *testing.T, balance int) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Residential()
	require.NoError(t, err)
	s, err := game.NewSession(context.Background(), game.Options{
		Colors:          []model.Color{model.Blue, model.Red},
		StartingBalance: balance,
		ShopBalance:     1000,
		Catalog:         cat,
		Rand:            rand.New(rand.NewSource(11)),
		Roller:          targeting.Fixed(3),
		Clock:           game.NewFakeClock(time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	exit := input.NewChanSource()
	h, err := NewHandler(Options{Session: s, Exit: exit, PublicURL: "http://table.local/"})
	require.NoError(t, err)
	return testServer{handler: h, session: s, exit: exit}
}

func (ts testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{economy.ErrInsufficientFunds, http.StatusPaymentRequired},
		{fmt.Errorf("wrapped: %w", economy.ErrNotOwned), http.StatusNotFound},
		{economy.ErrIneligibleSquare, http.StatusUnprocessableEntity},
		{game.ErrNotYourTurn, http.StatusConflict},
		{model.ErrUnknownColor, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestHealthAndPages(t *testing.T) {
	ts := newTestServer(t, 500)

	w := ts.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]any](t, w)
	assert.Equal(t, ts.session.ID(), health["session"])

	w = ts.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), ts.session.ID())
	assert.Contains(t, w.Body.String(), "<td>blue</td>")

	w = ts.do(t, http.MethodGet, "/api/routes", "")
	require.Equal(t, http.StatusOK, w.Code)
	routes := decode[[]RouteDoc](t, w)
	assert.Contains(t, routes, RouteDoc{Method: "POST", Pattern: "/api/players/:color/end-turn", Summary: "End the turn"})

	w = ts.do(t, http.MethodGet, "/api/session/qr?size=128", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestBoardAndCatalog(t *testing.T) {
	ts := newTestServer(t, 500)

	w := ts.do(t, http.MethodGet, "/api/board/35", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"position":3,"square":{"type":"equipments","color":"blue"}}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]string](t, w), 32)

	w = ts.do(t, http.MethodGet, "/api/cards/equipment/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	card := decode[catalog.Card](t, w)
	assert.Equal(t, "HR-200", card.Equipment.Model)

	w = ts.do(t, http.MethodGet, "/api/cards/users/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodGet, "/api/cards/gadgets/1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/cards?kind=equipment&color=red&max_buy_cost=100", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]catalog.Card](t, w), 2)

	w = ts.do(t, http.MethodGet, "/api/image?instance=users/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTurnOverHTTP(t *testing.T) {
	ts := newTestServer(t, 500)

	w := ts.do(t, http.MethodPost, "/api/players/red/move", `{"steps":3}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, game.ErrNotYourTurn.Error(), decode[map[string]string](t, w)["reason"])

	w = ts.do(t, http.MethodPost, "/api/players/purple/move", `{"steps":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/players/blue/move", `{"steps":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/players/blue/draw", "")
	require.Equal(t, http.StatusOK, w.Code)
	drawn := decode[struct {
		Empty bool          `json:"empty"`
		Drawn economy.Drawn `json:"drawn"`
	}](t, w)
	require.False(t, drawn.Empty)
	instance := drawn.Drawn.Ref.Instance
	assert.Equal(t, model.Users, drawn.Drawn.Ref.Type)

	w = ts.do(t, http.MethodPost, "/api/players/blue/end-turn", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/api/players/blue/buy", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/players/blue/buy", fmt.Sprintf(`{"instance":%q}`, instance))
	require.Equal(t, http.StatusOK, w.Code)
	receipt := decode[economy.Receipt](t, w)
	assert.Equal(t, 500-drawn.Drawn.Card.BuyCost, receipt.PlayerBalance)

	w = ts.do(t, http.MethodGet, "/api/players/blue/can-sell/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["allowed"])
	w = ts.do(t, http.MethodGet, "/api/players/blue/can-sell/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["allowed"])

	w = ts.do(t, http.MethodPost, "/api/players/blue/sell", fmt.Sprintf(`{"instance":%q,"type":"events"}`, instance))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodGet, "/api/locate?instance="+instance, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"in_inventory"`)

	w = ts.do(t, http.MethodPost, "/api/players/blue/end-turn", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"next":"red"}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[game.Snapshot](t, w)
	assert.Equal(t, model.Red, snap.Current)
	assert.Nil(t, snap.Pending)

	w = ts.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["purchases"])
}

func TestInsufficientFundsOverHTTP(t *testing.T) {
	ts := newTestServer(t, 10)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/players/blue/move", `{"steps":3}`).Code)
	w := ts.do(t, http.MethodPost, "/api/players/blue/draw", "")
	require.Equal(t, http.StatusOK, w.Code)
	instance := decode[struct {
		Drawn economy.Drawn `json:"drawn"`
	}](t, w).Drawn.Ref.Instance

	w = ts.do(t, http.MethodPost, "/api/players/blue/buy", fmt.Sprintf(`{"instance":%q}`, instance))
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = ts.do(t, http.MethodPost, "/api/players/blue/abandon", fmt.Sprintf(`{"instance":%q}`, instance))
	require.Equal(t, http.StatusOK, w.Code)
	p, err := ts.session.Player(model.Blue)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Balance)
}

func TestExitEndpoint(t *testing.T) {
	ts := newTestServer(t, 500)

	errc := make(chan error, 1)
	go func() { errc <- ts.session.Run(context.Background(), ts.exit) }()

	require.Eventually(t, func() bool {
		w := ts.do(t, http.MethodPost, "/api/session/exit", "")
		return w.Code == http.StatusAccepted && decode[map[string]bool](t, w)["delivered"]
	}, time.Second, 10*time.Millisecond)

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}

	w := ts.do(t, http.MethodPost, "/api/players/blue/roll", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
