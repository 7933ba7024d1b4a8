package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tobinmarsh/kidwallet/internal/config"
	"github.com/tobinmarsh/kidwallet/internal/events"
	"github.com/tobinmarsh/kidwallet/internal/handler"
	"github.com/tobinmarsh/kidwallet/internal/metrics"
	"github.com/tobinmarsh/kidwallet/internal/middleware"
	"github.com/tobinmarsh/kidwallet/internal/store"
	"github.com/tobinmarsh/kidwallet/internal/wallet"
	ws "github.com/tobinmarsh/kidwallet/internal/websocket"
)

type Server struct {
	db          *sql.DB
	cfg         config.Config
	hub         *ws.Hub
	bus         *events.Bus
	engine      *wallet.Engine
	childH      *handler.ChildHandler
	walletH     *handler.WalletHandler
	awardH      *handler.AwardHandler
	offerH      *handler.OfferHandler
	rewardH     *handler.RewardHandler
	rateLimiter *middleware.RateLimiter
	registry    *prometheus.Registry
	logger      *slog.Logger
	stopBridge  func()
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	bus := events.NewBus()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	met := metrics.New(registry)

	childStore := store.NewChildStore(db)
	ledgerStore := store.NewLedgerStore(db)
	offerStore := store.NewOfferStore(db)
	rewardStore := store.NewRewardStore(db)
	rollupStore := store.NewRollupStore(db)

	engine := wallet.NewEngine(childStore, ledgerStore, offerStore, rewardStore, rollupStore,
		bus, met, logger.With("component", "wallet"))

	// Bridge points events onto the WebSocket hub so open wallet views hear
	// about awards from any code path, not just their own requests.
	ch, cancel := bus.Subscribe()
	go func() {
		for ev := range ch {
			hub.Broadcast(ws.PointsChangedMessage(ev.ChildID))
		}
	}()

	return &Server{
		db:          db,
		cfg:         cfg,
		hub:         hub,
		bus:         bus,
		engine:      engine,
		childH:      handler.NewChildHandler(childStore, engine, logger.With("component", "child")),
		walletH:     handler.NewWalletHandler(engine, childStore, logger.With("component", "wallet_http")),
		awardH:      handler.NewAwardHandler(engine, logger.With("component", "award")),
		offerH:      handler.NewOfferHandler(offerStore, rewardStore, childStore, engine, logger.With("component", "offer")),
		rewardH:     handler.NewRewardHandler(rewardStore, logger.With("component", "reward")),
		rateLimiter: middleware.NewRateLimiter(),
		registry:    registry,
		logger:      logger,
		stopBridge:  cancel,
	}
}

// Bus returns the points event bus, for callers that award points outside
// the HTTP surface.
func (s *Server) Bus() *events.Bus {
	return s.bus
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Close stops the bus-to-hub bridge goroutine.
func (s *Server) Close() {
	s.stopBridge()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	// Children API routes
	mux.HandleFunc("GET /api/children", s.childH.List)
	mux.HandleFunc("POST /api/children", s.childH.Create)
	mux.HandleFunc("GET /api/children/{id}", s.childH.Get)
	mux.HandleFunc("PUT /api/children/{id}", s.childH.Update)
	mux.HandleFunc("GET /api/children/{id}/identity", s.childH.Resolve)

	// PIN routes
	mux.HandleFunc("POST /api/children/{id}/pin", s.childH.SetPIN)
	mux.HandleFunc("DELETE /api/children/{id}/pin", s.childH.ClearPIN)
	mux.HandleFunc("POST /api/children/{id}/pin/verify", s.childH.VerifyPIN)

	// Wallet routes
	mux.HandleFunc("GET /api/children/{id}/wallet", s.walletH.Get)
	mux.HandleFunc("GET /api/children/{id}/wallet/reserved", s.walletH.GetReserved)
	mux.HandleFunc("GET /api/children/{id}/wallet/breakdown", s.walletH.GetBreakdown)
	mux.HandleFunc("GET /api/families/{family_id}/wallets", s.walletH.FamilyWallets)

	// Awards — the only hot write path, rate limited per client IP
	mux.HandleFunc("POST /api/points/award", s.rateLimitedHandler(s.awardH.Create))

	// Offer routes
	mux.HandleFunc("POST /api/offers", s.offerH.Accept)
	mux.HandleFunc("GET /api/children/{id}/offers", s.offerH.ListByChild)
	mux.HandleFunc("POST /api/offers/{id}/redeem", s.offerH.Redeem)
	mux.HandleFunc("POST /api/offers/{id}/cancel", s.offerH.Cancel)

	// Reward catalog routes
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("PUT /api/rewards/{id}", s.rewardH.Update)
	mux.HandleFunc("DELETE /api/rewards/{id}", s.rewardH.Delete)

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, s.cfg.AwardRateLimit, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
