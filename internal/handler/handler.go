package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/gamification"
	"github.com/MassBabyGeek/TradeMind-backend/internal/logger"
	"github.com/MassBabyGeek/TradeMind-backend/internal/middleware"
	"github.com/MassBabyGeek/TradeMind-backend/internal/utils"
)

// DependencyCheck vérifie une dépendance (Postgres, Redis)
type DependencyCheck func(ctx context.Context) error

// Handler regroupe les routes de gamification autour du moteur
type Handler struct {
	engine *gamification.Engine
	checks map[string]DependencyCheck
	now    func() time.Time
}

func New(engine *gamification.Engine, checks map[string]DependencyCheck) *Handler {
	if checks == nil {
		checks = map[string]DependencyCheck{}
	}
	return &Handler{engine: engine, checks: checks, now: time.Now}
}

// HealthCheck pings every registered dependency.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.Warning("health check %s failed: %v", name, err)
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		utils.JSON(w, http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Data:    status,
			Error:   "dependency unavailable",
		})
		return
	}
	utils.JSON(w, http.StatusOK, utils.APIResponse{Success: true, Data: status, Message: "ok"})
}

// writeEngineError traduit les erreurs du moteur en statut HTTP
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gamification.ErrInvalidInput):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gamification.ErrNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled):
		// client parti, rien à écrire d'utile
		utils.Error(w, http.StatusServiceUnavailable, "request canceled")
	default:
		utils.Error(w, http.StatusServiceUnavailable, err.Error())
	}
}

func requestUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.GetUserIDFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return "", false
	}
	return userID, true
}
