package handler

import (
	"net/http"

	"github.com/MassBabyGeek/TradeMind-backend/internal/gamification"
	"github.com/MassBabyGeek/TradeMind-backend/internal/utils"
)

// GetLeaderboard récupère le classement de la semaine en cours
// Query params: limit (défaut 10, max 100)
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	limit := utils.QueryInt(r, "limit", gamification.DefaultLeaderboardLimit)
	board, err := h.engine.GetLeaderboard(r.Context(), userID, limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	utils.Success(w, board)
}

// GetNearbyUsers récupère les utilisateurs proches dans le classement
// Query params: range (défaut 5, max 25)
func (h *Handler) GetNearbyUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	rng := utils.QueryInt(r, "range", gamification.DefaultNearbyRange)
	nearby, err := h.engine.GetNearby(r.Context(), userID, rng)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	utils.Success(w, nearby)
}
