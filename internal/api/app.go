package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/npezzotti/smartshop/internal/config"
	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/logging"
	"github.com/npezzotti/smartshop/internal/ocr"
	"github.com/npezzotti/smartshop/internal/realtime"
	"github.com/npezzotti/smartshop/internal/stats"
	"github.com/npezzotti/smartshop/internal/uploads"
	"github.com/rs/zerolog"
)

// PosterReader extracts product offers from a poster image on disk.
type PosterReader interface {
	Process(ctx context.Context, imagePath string) (ocr.Result, error)
}

type App struct {
	log            zerolog.Logger
	db             database.Repository
	srv            *http.Server
	rt             *realtime.Service
	stats          stats.StatsProvider
	files          uploads.Store
	posters        PosterReader
	signingKey     []byte
	allowedOrigins []string
}

func NewApp(
	mux *http.ServeMux,
	logger zerolog.Logger,
	rt *realtime.Service,
	db database.Repository,
	su stats.StatsProvider,
	files uploads.Store,
	posters PosterReader,
	cfg *config.Config,
) *App {
	s := &App{
		log:            logger,
		db:             db,
		rt:             rt,
		stats:          su,
		files:          files,
		posters:        posters,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	if su != nil {
		su.RegisterMetric(stats.OrdersCreated)
		su.RegisterMetric(stats.PostersProcessed)
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("GET /ws", s.serveWs)

	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/me", s.authMiddleware(s.me))
	mux.HandleFunc("GET /api/auth/logout", s.logout)

	mux.HandleFunc("GET /api/stores", s.listStores)
	mux.HandleFunc("GET /api/stores/{id}", s.getStore)
	mux.HandleFunc("POST /api/stores", s.authMiddleware(s.createStore))
	mux.HandleFunc("PUT /api/stores/{id}", s.authMiddleware(s.updateStore))
	mux.HandleFunc("DELETE /api/stores/{id}", s.authMiddleware(s.deleteStore))
	mux.HandleFunc("POST /api/stores/{id}/poster", s.authMiddleware(s.uploadPoster))

	mux.HandleFunc("GET /api/products", s.listProducts)
	mux.HandleFunc("GET /api/products/{id}", s.getProduct)
	mux.HandleFunc("POST /api/products", s.authMiddleware(s.createProduct))
	mux.HandleFunc("PUT /api/products/{id}", s.authMiddleware(s.updateProduct))
	mux.HandleFunc("DELETE /api/products/{id}", s.authMiddleware(s.deleteProduct))

	mux.HandleFunc("GET /api/orders", s.authMiddleware(s.listOrders))
	mux.HandleFunc("GET /api/orders/{id}", s.authMiddleware(s.getOrder))
	mux.HandleFunc("POST /api/orders", s.authMiddleware(s.createOrder))
	mux.HandleFunc("PUT /api/orders/{id}/status", s.authMiddleware(s.updateOrderStatus))

	mux.HandleFunc("GET /api/chat/history/{userId}", s.authMiddleware(s.getChatHistory))
	mux.HandleFunc("POST /api/chat/history/{userId}/read", s.authMiddleware(s.markChatRead))

	mux.HandleFunc("GET /api/notifications", s.authMiddleware(s.listNotifications))
	mux.HandleFunc("POST /api/notifications/{id}/read", s.authMiddleware(s.markNotificationRead))

	mux.HandleFunc("GET /api/deals/timer", s.getDealTimer)
	mux.HandleFunc("POST /api/deals/timer", s.adminOnly(s.setDealTimer))

	mux.HandleFunc("GET /api/admin/stats", s.adminOnly(s.adminStats))

	mux.HandleFunc("POST /api/uploads", s.authMiddleware(s.uploadFile))
	if local, ok := files.(*uploads.LocalStore); ok && strings.HasPrefix(local.BaseURL(), "/") {
		mux.Handle("GET "+local.BaseURL()+"/", http.StripPrefix(local.BaseURL(), local.Handler()))
	}

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = logging.Middleware(logger)(h)
	h = s.errorHandler(h)

	s.srv = &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	return s
}

func (s *App) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("starting server")
	return s.srv.ListenAndServe()
}

func (s *App) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (s *App) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("json encode")
	}
}

// writeError logs server side failures before answering with errResp.
func (s *App) writeError(w http.ResponseWriter, r *http.Request, errResp *ApiError) {
	if errResp.StatusCode >= http.StatusInternalServerError {
		logger := zerolog.Ctx(r.Context())
		if logger.GetLevel() == zerolog.Disabled {
			logger = &s.log
		}
		logger.Error().Err(errResp.Err).Int("status", errResp.StatusCode).Msg(errResp.Message)
	}
	s.writeJson(w, errResp.StatusCode, errResp)
}

func (s *App) incr(name string) {
	if s.stats != nil {
		s.stats.Incr(name)
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (s *App) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("health check failed")
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
