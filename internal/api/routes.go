package api

import (
	"log"
	"net/http"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/handler"
	"github.com/MassBabyGeek/TradeMind-backend/internal/logger"
	"github.com/MassBabyGeek/TradeMind-backend/internal/middleware"
	"github.com/MassBabyGeek/TradeMind-backend/internal/utils"
	"github.com/fatih/color"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Deps regroupe ce dont le routeur a besoin
type Deps struct {
	Handler        *handler.Handler
	Auth           *middleware.Authenticator
	TradeLimiter   *middleware.UserRateLimiter
	CronSecretHash string
	CORSOrigins    []string
}

func SetupRouter(deps Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LoggerMiddleware)

	h := deps.Handler

	// Root - API documentation
	r.HandleFunc("/", handler.RootHandler).Methods(http.MethodGet)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	// Badges (public)
	r.HandleFunc("/gamification/badges", h.ListBadges).Methods(http.MethodGet)

	authenticatedRoutes := r.PathPrefix("/gamification").Subrouter()
	authenticatedRoutes.Use(deps.Auth.Middleware)

	// Gamification
	authenticatedRoutes.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/badges/check", h.CheckBadges).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/sharpe", h.GetSharpe).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/display-name", h.SetDisplayName).Methods(http.MethodPut)

	// Trades, limités par utilisateur
	trades := http.Handler(http.HandlerFunc(h.RecordTrade))
	if deps.TradeLimiter != nil {
		trades = deps.TradeLimiter.Middleware(trades)
	}
	authenticatedRoutes.Handle("/trades", trades).Methods(http.MethodPost)

	// Leaderboard
	authenticatedRoutes.HandleFunc("/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/leaderboard/nearby", h.GetNearbyUsers).Methods(http.MethodGet)

	// Cron
	cronRoutes := r.PathPrefix("/cron").Subrouter()
	cronRoutes.Use(middleware.CronAuth(deps.CronSecretHash))
	cronRoutes.HandleFunc("/weekly", h.RunWeekly).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		color.Yellow("[404] %s %s (route non trouvée)", r.Method, r.URL.Path)
		utils.Error(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return withCORS(withRecovery(r), deps.CORSOrigins)
}

func withRecovery(next http.Handler) http.Handler {
	return gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(log.New(logger.Writer(), "", 0)),
		gorillahandlers.PrintRecoveryStack(true),
	)(next)
}

func withCORS(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(origins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
		gorillahandlers.ExposedHeaders([]string{"X-Request-ID"}),
		gorillahandlers.MaxAge(int((12 * time.Hour).Seconds())),
	)(next)
}
