// Package api serves the game over HTTP.
// GET endpoints are views of the live game. POST endpoints are player
// commands, serialised through the session. /api/v1/admin requires a bearer
// token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/game"
	"github.com/talgya/orbital-trader/internal/ledger"
	"github.com/talgya/orbital-trader/internal/session"
)

// Server serves one game session over HTTP.
type Server struct {
	Session  *session.Session
	Hub      *Hub
	Limiter  *RateLimiter
	AdminKey string // Bearer token for /admin endpoints. Empty = admin disabled.
	Origins  []string

	// ForceEvents makes every trip roll an encounter.
	ForceEvents bool
}

// NewServer wires a session to a hub. The session's snapshots are
// published to websocket clients.
func NewServer(sess *session.Session, adminKey string, origins []string, limiter *RateLimiter) *Server {
	s := &Server{Session: sess, AdminKey: adminKey, Origins: origins, Limiter: limiter}
	s.Hub = NewHub(s.originAllowed)
	sess.OnChange = func(st *game.State) { s.Hub.Publish("state", st) }
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	routes := v1.NewRoute().Subrouter()
	if s.Limiter != nil {
		routes.Use(s.Limiter.Middleware)
	}

	routes.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	routes.HandleFunc("/date", s.handleDate).Methods(http.MethodGet)
	routes.HandleFunc("/market", s.handleMarket).Methods(http.MethodGet)
	routes.HandleFunc("/finance", s.handleFinance).Methods(http.MethodGet)
	routes.HandleFunc("/finance/history", s.handleFinanceHistory).Methods(http.MethodGet)
	routes.HandleFunc("/notices", s.handleNotices).Methods(http.MethodGet)
	routes.HandleFunc("/routes", s.handleRoutes).Methods(http.MethodGet)
	routes.HandleFunc("/shipyard", s.handleShipyard).Methods(http.MethodGet)
	routes.HandleFunc("/intel", s.handleIntel).Methods(http.MethodGet)
	routes.HandleFunc("/tutorial", s.handleTutorial).Methods(http.MethodGet)

	routes.HandleFunc("/travel", s.handleTravel).Methods(http.MethodPost)
	routes.HandleFunc("/travel/resume", s.command(func(g *game.Game) (game.Result, error) { return g.ResumeTravel() })).Methods(http.MethodPost)
	routes.HandleFunc("/travel/cancel", s.command(func(g *game.Game) (game.Result, error) { return g.CancelTravel() })).Methods(http.MethodPost)
	routes.HandleFunc("/events/resolve", s.handleResolveEvent).Methods(http.MethodPost)
	routes.HandleFunc("/age-events/choose", s.handleChooseAgeEvent).Methods(http.MethodPost)
	routes.HandleFunc("/buy", s.handleTrade(true)).Methods(http.MethodPost)
	routes.HandleFunc("/sell", s.handleTrade(false)).Methods(http.MethodPost)
	routes.HandleFunc("/ships/buy", s.handleShip((*game.Game).BuyShip)).Methods(http.MethodPost)
	routes.HandleFunc("/ships/sell", s.handleShip((*game.Game).SellShip)).Methods(http.MethodPost)
	routes.HandleFunc("/ships/select", s.handleShip((*game.Game).SelectActiveShip)).Methods(http.MethodPost)
	routes.HandleFunc("/loan", s.handleLoan).Methods(http.MethodPost)
	routes.HandleFunc("/debt/pay", s.command(func(g *game.Game) (game.Result, error) { return g.PayDebt() })).Methods(http.MethodPost)
	routes.HandleFunc("/intel/purchase", s.command(func(g *game.Game) (game.Result, error) {
		return g.PurchaseIntel()
	})).Methods(http.MethodPost)
	routes.HandleFunc("/refuel", s.command(func(g *game.Game) (game.Result, error) { return g.RefuelTick() })).Methods(http.MethodPost)
	routes.HandleFunc("/repair", s.command(func(g *game.Game) (game.Result, error) { return g.RepairTick() })).Methods(http.MethodPost)
	routes.HandleFunc("/tutorial/screen", s.handleScreen).Methods(http.MethodPost)
	routes.HandleFunc("/tutorial/next", s.command(func(g *game.Game) (game.Result, error) { return g.TutorialNext(), nil })).Methods(http.MethodPost)
	routes.HandleFunc("/tutorial/skip", s.command(func(g *game.Game) (game.Result, error) { return g.SkipTutorial(), nil })).Methods(http.MethodPost)

	admin := routes.PathPrefix("/admin").Subrouter()
	admin.Use(s.adminOnly)
	admin.HandleFunc("/save", s.handleSave).Methods(http.MethodPost)
	admin.HandleFunc("/slots", s.handleSlots).Methods(http.MethodGet)
	admin.HandleFunc("/new-game", s.handleNewGame).Methods(http.MethodPost)
	admin.HandleFunc("/force-event", s.handleForceEvent).Methods(http.MethodPost)

	return s.corsMiddleware(r)
}

// Start serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go s.Hub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "", "force_events", s.ForceEvents)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if strings.HasPrefix(origin, "http://localhost:") {
		return true
	}
	for _, o := range s.Origins {
		if o == origin {
			return true
		}
	}
	return false
}

// corsMiddleware adds CORS headers for allowed frontend origins. Localhost
// dev servers are always allowed.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.originAllowed(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no TRADER_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// commandResponse is returned by every successful POST.
type commandResponse struct {
	Result game.Result `json:"result"`
	State  *game.State `json:"state"`
}

// run executes a command and writes either its result or its error.
func (s *Server) run(w http.ResponseWriter, cmd func(*game.Game) (game.Result, error)) {
	res, st, err := s.Session.Do(cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, commandResponse{Result: res, State: st})
}

func (s *Server) command(cmd func(*game.Game) (game.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.run(w, cmd)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.Session.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleDate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, session.View(s.Session, func(g *game.Game) map[string]any {
		d := g.Date()
		return map[string]any{"day": g.State.Day, "date": d, "label": d.String()}
	}))
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, session.View(s.Session, (*game.Game).Market))
}

func (s *Server) handleFinance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, session.View(s.Session, (*game.Game).Finance))
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// historyLimit reads ?limit=, defaulting when absent and capping large values.
func historyLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperrors.Newf(apperrors.CodeInvalidRequest, "limit must be a positive integer, got %q", raw)
	}
	return min(n, maxHistoryLimit), nil
}

func (s *Server) handleFinanceHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := historyLimit(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.Session.FinanceHistory(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	limit, err := historyLimit(r)
	if err != nil {
		writeError(w, err)
		return
	}
	notices, err := s.Session.Notices(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, notices)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, session.View(s.Session, (*game.Game).Routes))
}

func (s *Server) handleShipyard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, session.View(s.Session, (*game.Game).ShipyardOffers))
}

func (s *Server) handleIntel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, session.View(s.Session, (*game.Game).IntelOffer))
}

func (s *Server) handleTutorial(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, session.View(s.Session, func(g *game.Game) map[string]any {
		step, ok := g.CurrentTutorial()
		return map[string]any{"active": ok, "step": step}
	}))
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Destination string `json:"destination"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.run(w, func(g *game.Game) (game.Result, error) {
		if s.ForceEvents && g.State.Pending == nil {
			if err := g.ForceEncounter(""); err != nil {
				return game.Result{}, err
			}
		}
		return g.Travel(req.Destination)
	})
}

func (s *Server) handleResolveEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EncounterID string `json:"encounter_id"`
		Choice      int    `json:"choice"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.run(w, func(g *game.Game) (game.Result, error) {
		return g.ResolveEventChoice(req.EncounterID, req.Choice)
	})
}

func (s *Server) handleChooseAgeEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID string `json:"event_id"`
		Choice  int    `json:"choice"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.run(w, func(g *game.Game) (game.Result, error) {
		return g.ChooseAgeEvent(req.EventID, req.Choice)
	})
}

func (s *Server) handleTrade(buy bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Commodity string `json:"commodity"`
			Quantity  int    `json:"quantity"`
		}
		if !decode(w, r, &req) {
			return
		}
		s.run(w, func(g *game.Game) (game.Result, error) {
			if buy {
				return g.BuyItem(req.Commodity, req.Quantity)
			}
			return g.SellItem(req.Commodity, req.Quantity)
		})
	}
}

func (s *Server) handleShip(cmd func(*game.Game, string) (game.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Ship string `json:"ship"`
		}
		if !decode(w, r, &req) {
			return
		}
		s.run(w, func(g *game.Game) (game.Result, error) { return cmd(g, req.Ship) })
	}
}

// handleLoan takes the current offer matching the requested amount. Fee and
// interest always come from the offer.
func (s *Server) handleLoan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.run(w, func(g *game.Game) (game.Result, error) {
		for _, offer := range ledger.LoanOffers(g.State.Player.Credits) {
			if offer.Amount == req.Amount {
				return g.TakeLoan(offer)
			}
		}
		if g.State.Player.Debt > 0 {
			return g.TakeLoan(ledger.StandardLoan)
		}
		return game.Result{}, apperrors.Newf(apperrors.CodeInvalidChoice, "No loan of %s is on offer.", ledger.FormatCredits(req.Amount))
	})
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Screen string `json:"screen"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.run(w, func(g *game.Game) (game.Result, error) { return g.Screen(req.Screen), nil })
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id, err := s.Session.Save(r.Context())
	if err != nil {
		slog.Error("manual save failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"slot": id})
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.Session.Slots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, slots)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"player_name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.PlayerName) == "" {
		req.PlayerName = "Captain"
	}
	st := s.Session.Reset(req.PlayerName)
	slog.Info("new game started by admin", "player", req.PlayerName)
	writeJSON(w, st)
}

func (s *Server) handleForceEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EncounterID string `json:"encounter_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := session.View(s.Session, func(g *game.Game) error { return g.ForceEncounter(req.EncounterID) })
	if err != nil {
		writeError(w, err)
		return
	}
	slog.Info("encounter forced", "encounter", req.EncounterID)
	writeJSON(w, map[string]string{"forced": req.EncounterID})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	st, err := s.Session.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	s.Hub.Serve(w, r, &Message{Type: "state", Payload: st})
}

// decode reads a JSON body. An empty body decodes to the zero request.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid json", err))
		return false
	}
	return true
}

type errorBody struct {
	Error struct {
		Code     apperrors.Code    `json:"code"`
		Message  string            `json:"message"`
		Metadata map[string]string `json:"metadata,omitempty"`
	} `json:"error"`
}

// writeError renders {"error":{"code","message"}} with the status for the
// error's code. Uncoded errors are internal and their text is not exposed.
func writeError(w http.ResponseWriter, err error) {
	var body errorBody
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		body.Error.Code = coded.Code
		body.Error.Message = coded.Message
		body.Error.Metadata = coded.Metadata
	} else {
		slog.Error("request failed", "error", err)
		body.Error.Code = apperrors.CodeUnknown
		body.Error.Message = "internal error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Error.Code.HTTPStatus())
	json.NewEncoder(w).Encode(body)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
