package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/orbital-trader/internal/catalog"
	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/game"
	"github.com/talgya/orbital-trader/internal/persistence"
	"github.com/talgya/orbital-trader/internal/session"
)

func newTestServer(t *testing.T, adminKey string, limiter *RateLimiter) *Server {
	t.Helper()
	sess, err := session.Open(context.Background(), catalog.MustDefault(), persistence.NewMemoryStore(), "", "Vex")
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return NewServer(sess, adminKey, nil, limiter)
}

func do(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestGetState(t *testing.T) {
	h := newTestServer(t, "", nil).Handler()
	rec := do(t, h, http.MethodGet, "/api/v1/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	st := decodeBody[game.State](t, rec)
	if st.Day != 1 || st.Player.Name != "Vex" || st.Player.Credits != 8000 {
		t.Fatalf("state day=%d name=%s credits=%d", st.Day, st.Player.Name, st.Player.Credits)
	}
}

func TestBuyThenSell(t *testing.T) {
	h := newTestServer(t, "", nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/buy", `{"commodity":"water_ice","quantity":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("buy status = %d: %s", rec.Code, rec.Body)
	}
	bought := decodeBody[commandResponse](t, rec)
	if bought.Result.Value <= 0 || bought.State.Player.Credits != 8000-bought.Result.Value {
		t.Fatalf("buy cost=%d credits=%d", bought.Result.Value, bought.State.Player.Credits)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/sell", `{"commodity":"water_ice","quantity":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sell status = %d: %s", rec.Code, rec.Body)
	}
	sold := decodeBody[commandResponse](t, rec)
	if sold.State.Player.Credits != bought.State.Player.Credits+sold.Result.Value {
		t.Fatalf("credits after sale = %d", sold.State.Player.Credits)
	}
}

func TestCommandErrors(t *testing.T) {
	h := newTestServer(t, "", nil).Handler()
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   apperrors.Code
	}{
		{"not held", "/api/v1/sell", `{"commodity":"water_ice","quantity":1}`, http.StatusConflict, apperrors.CodeNotHeld},
		{"unknown commodity", "/api/v1/buy", `{"commodity":"unobtainium","quantity":1}`, http.StatusNotFound, apperrors.CodeUnknownCommodity},
		{"bad quantity", "/api/v1/buy", `{"commodity":"water_ice","quantity":0}`, http.StatusBadRequest, apperrors.CodeInvalidQuantity},
		{"bad json", "/api/v1/buy", `{"commodity":`, http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"no pending trip", "/api/v1/travel/resume", ``, http.StatusConflict, apperrors.CodeNoPendingTravel},
		{"unknown location", "/api/v1/travel", `{"destination":"loc_nowhere"}`, http.StatusNotFound, apperrors.CodeUnknownLocation},
		{"no debt", "/api/v1/debt/pay", ``, http.StatusConflict, apperrors.CodeNoDebt},
		{"no such loan", "/api/v1/loan", `{"amount":3}`, http.StatusBadRequest, apperrors.CodeInvalidChoice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			body := decodeBody[errorBody](t, rec)
			if body.Error.Code != tt.code || body.Error.Message == "" {
				t.Fatalf("error = %+v, want code %s", body.Error, tt.code)
			}
		})
	}
}

func TestTakeLoanUsesOfferTerms(t *testing.T) {
	h := newTestServer(t, "", nil).Handler()
	rec := do(t, h, http.MethodPost, "/api/v1/loan", `{"amount":10000,"fee":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	res := decodeBody[commandResponse](t, rec)
	if res.State.Player.Debt != 10000 || res.State.Player.Credits != 8000+10000-600 {
		t.Fatalf("debt=%d credits=%d", res.State.Player.Debt, res.State.Player.Credits)
	}
	rec = do(t, h, http.MethodPost, "/api/v1/loan", `{"amount":10000}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second loan status = %d", rec.Code)
	}
}

func TestForcedEncounterParksTrip(t *testing.T) {
	s := newTestServer(t, "", nil)
	s.ForceEvents = true
	h := s.Handler()

	routes := decodeBody[[]game.Route](t, do(t, h, http.MethodGet, "/api/v1/routes", ""))
	var dest string
	for _, r := range routes {
		if r.Reachable {
			dest = r.LocationID
			break
		}
	}
	if dest == "" {
		t.Fatal("no reachable route from the start")
	}

	rec := do(t, h, http.MethodPost, "/api/v1/travel", `{"destination":"`+dest+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("travel status = %d: %s", rec.Code, rec.Body)
	}
	res := decodeBody[commandResponse](t, rec)
	if res.Result.Encounter == nil || res.State.Pending == nil {
		t.Fatalf("expected a parked trip, got %+v", res.Result)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/travel", `{"destination":"`+dest+`"}`)
	if body := decodeBody[errorBody](t, rec); body.Error.Code != apperrors.CodeTravelPending {
		t.Fatalf("second travel error = %+v", body.Error)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/travel/cancel", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d: %s", rec.Code, rec.Body)
	}
	if st := decodeBody[commandResponse](t, rec).State; st.Pending != nil || st.CurrentLocationID != "loc_mars" {
		t.Fatalf("after cancel pending=%v location=%s", st.Pending, st.CurrentLocationID)
	}
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		header string
		status int
	}{
		{"disabled", "", "Bearer x", http.StatusForbidden},
		{"missing token", "secret", "", http.StatusUnauthorized},
		{"wrong token", "secret", "Bearer nope", http.StatusUnauthorized},
		{"valid", "secret", "Bearer secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, tt.key, nil).Handler()
			rec := do(t, h, http.MethodPost, "/api/v1/admin/save", "", "Authorization", tt.header)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestAdminSaveAndNewGame(t *testing.T) {
	h := newTestServer(t, "secret", nil).Handler()
	auth := []string{"Authorization", "Bearer secret"}

	saved := decodeBody[map[string]string](t, do(t, h, http.MethodPost, "/api/v1/admin/save", "", auth...))
	if saved["slot"] == "" {
		t.Fatal("save returned no slot")
	}
	slots := decodeBody[[]persistence.Slot](t, do(t, h, http.MethodGet, "/api/v1/admin/slots", "", auth...))
	if len(slots) != 1 || slots[0].ID != saved["slot"] {
		t.Fatalf("slots = %+v", slots)
	}

	st := decodeBody[game.State](t, do(t, h, http.MethodPost, "/api/v1/admin/new-game", `{"player_name":"Rho"}`, auth...))
	if st.Player.Name != "Rho" {
		t.Fatalf("new game player = %s", st.Player.Name)
	}

	rec := do(t, h, http.MethodPost, "/api/v1/admin/force-event", `{"encounter_id":"no_such_event"}`, auth...)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("force unknown event status = %d", rec.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	h := newTestServer(t, "secret", nil).Handler()
	auth := []string{"Authorization", "Bearer secret"}
	for range 3 {
		if rec := do(t, h, http.MethodPost, "/api/v1/buy", `{"commodity":"water_ice","quantity":1}`); rec.Code != http.StatusOK {
			t.Fatalf("buy status = %d: %s", rec.Code, rec.Body)
		}
	}
	if rec := do(t, h, http.MethodPost, "/api/v1/admin/save", "", auth...); rec.Code != http.StatusOK {
		t.Fatalf("save status = %d", rec.Code)
	}

	tests := []struct {
		name   string
		path   string
		status int
		count  int
	}{
		{"finance default limit", "/api/v1/finance/history", http.StatusOK, 3},
		{"finance limited", "/api/v1/finance/history?limit=2", http.StatusOK, 2},
		{"finance bad limit", "/api/v1/finance/history?limit=abc", http.StatusBadRequest, 0},
		{"finance zero limit", "/api/v1/finance/history?limit=0", http.StatusBadRequest, 0},
		{"notices", "/api/v1/notices?limit=5", http.StatusOK, -1},
		{"notices bad limit", "/api/v1/notices?limit=-3", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if tt.status != http.StatusOK {
				return
			}
			items := decodeBody[[]json.RawMessage](t, rec)
			if items == nil {
				t.Fatal("history rendered as null")
			}
			if tt.count >= 0 && len(items) != tt.count {
				t.Fatalf("got %d items, want %d", len(items), tt.count)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, "", NewRateLimiter(0.001, 2)).Handler()
	for i := range 2 {
		if rec := do(t, h, http.MethodGet, "/api/v1/date", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, h, http.MethodGet, "/api/v1/date", "")
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("status = %d retry-after=%q", rec.Code, rec.Header().Get("Retry-After"))
	}
	other := do(t, h, http.MethodGet, "/api/v1/date", "", "X-Forwarded-For", "10.0.0.9")
	if other.Code != http.StatusOK {
		t.Fatalf("other client status = %d", other.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, "", nil)
	s.Origins = []string{"https://trader.example"}
	h := s.Handler()

	rec := do(t, h, http.MethodOptions, "/api/v1/buy", "", "Origin", "https://trader.example")
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://trader.example" {
		t.Fatalf("status=%d allow=%q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}
	rec = do(t, h, http.MethodOptions, "/api/v1/buy", "", "Origin", "https://evil.example")
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin was allowed")
	}
}

func TestWebsocketStreamsSnapshots(t *testing.T) {
	s := newTestServer(t, "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub.Run(ctx)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first struct {
		Type    string     `json:"type"`
		Payload game.State `json:"payload"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if first.Type != "state" || first.Payload.Day != 1 {
		t.Fatalf("initial message = %s day %d", first.Type, first.Payload.Day)
	}

	resp, err := http.Post(srv.URL+"/api/v1/buy", "application/json", strings.NewReader(`{"commodity":"water_ice","quantity":2}`))
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	resp.Body.Close()

	var next struct {
		Type    string     `json:"type"`
		Payload game.State `json:"payload"`
	}
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if next.Payload.Player.Credits >= 8000 {
		t.Fatalf("update credits = %d, want a purchase reflected", next.Payload.Player.Credits)
	}
}
