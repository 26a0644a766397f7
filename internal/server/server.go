// Package server exposes the pool's state as a read-only HTTP API with a
// live websocket event stream. All mutations stay in the CLI; the daemon
// only reads.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3pool/internal/events"
	"github.com/Mohsinsiddi/w3pool/internal/pool"
)

const defaultEventLimit = 50

// AssetInfo describes one asset the pool tracks, with its balance in base
// units.
type AssetInfo struct {
	Asset    string `json:"asset"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Balance  string `json:"balance"`
	Approved bool   `json:"approved"`
}

// BalanceSource produces the pool's per-asset holdings. The CLI wires one
// per backend: the devnet source walks the ledger, the chain source walks
// the approval registry.
type BalanceSource func(ctx context.Context) ([]AssetInfo, error)

// Deps are the collaborators behind the read-only API.
type Deps struct {
	Pool    *pool.Pool
	Journal *events.Log
	Broker  *events.Broker
	Assets  BalanceSource
	Backend string // reported in /api/v1/status
	Logger  *zap.Logger
}

// Server serves the pool API.
type Server struct {
	pool    *pool.Pool
	journal *events.Log
	broker  *events.Broker
	assets  BalanceSource
	backend string
	log     *zap.Logger
	started time.Time

	upgrader websocket.Upgrader
	router   *mux.Router
	http     *http.Server
}

// New builds the server and its route table.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		pool:    deps.Pool,
		journal: deps.Journal,
		broker:  deps.Broker,
		assets:  deps.Assets,
		backend: deps.Backend,
		log:     deps.Logger,
		started: time.Now(),
		upgrader: websocket.Upgrader{
			// The daemon binds locally; browsers on any origin may read.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}

	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/api/v1/status", s.handleStatus).Methods("GET")
	r.HandleFunc("/api/v1/balances", s.handleBalances).Methods("GET")
	r.HandleFunc("/api/v1/approvals", s.handleApprovals).Methods("GET")
	r.HandleFunc("/api/v1/events", s.handleEvents).Methods("GET")
	r.HandleFunc("/ws/events", s.handleEventStream)
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.router = r
	s.http = &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	return s
}

// Handler exposes the route table for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.log.Info("pool API listening", zap.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down, draining in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestsTotal.WithLabelValues(r.URL.Path).Inc()
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

type statusResponse struct {
	Service   string `json:"service"`
	Backend   string `json:"backend"`
	Owner     string `json:"owner"`
	Account   string `json:"account"`
	Wrapped   string `json:"wrapped"`
	Approved  int    `json:"approved_assets"`
	Events    int    `json:"events"`
	UptimeSec int64  `json:"uptime_seconds"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	approved := 0
	for _, ok := range s.pool.Approvals() {
		if ok {
			approved++
		}
	}

	count := 0
	if all, err := s.journal.All(); err == nil {
		count = len(all)
	}

	writeJSON(w, statusResponse{
		Service:   "w3pool",
		Backend:   s.backend,
		Owner:     s.pool.Owner().Hex(),
		Account:   s.pool.Account().Hex(),
		Wrapped:   s.pool.WrappedAsset().Hex(),
		Approved:  approved,
		Events:    count,
		UptimeSec: int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		http.Error(w, "balance source not configured", http.StatusServiceUnavailable)
		return
	}
	infos, err := s.assets(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if infos == nil {
		infos = []AssetInfo{}
	}
	writeJSON(w, infos)
}

type approvalEntry struct {
	Asset    string `json:"asset"`
	Approved bool   `json:"approved"`
}

func (s *Server) handleApprovals(w http.ResponseWriter, r *http.Request) {
	reg := s.pool.Approvals()
	out := make([]approvalEntry, 0, len(reg))
	for asset, ok := range reg {
		out = append(out, approvalEntry{Asset: asset.Hex(), Approved: ok})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	writeJSON(w, out)
}

// handleEvents returns the journal tail. limit=0 returns the whole journal.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	evs, err := s.journal.Tail(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if evs == nil {
		evs = []pool.Event{}
	}
	writeJSON(w, evs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "healthy",
		"service": "w3pool",
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
