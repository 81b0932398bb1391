package handler

import (
	"errors"
	"net/http"

	"github.com/MassBabyGeek/TradeMind-backend/internal/gamification"
	"github.com/MassBabyGeek/TradeMind-backend/internal/logger"
	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
	"github.com/MassBabyGeek/TradeMind-backend/internal/utils"
	"github.com/shopspring/decimal"
)

// GetStats renvoie le record de gamification de l'utilisateur connecté
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	rec, err := h.engine.GetStats(r.Context(), userID)
	if err != nil {
		if errors.Is(err, gamification.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "no gamification record yet")
			return
		}
		writeEngineError(w, err)
		return
	}
	utils.Success(w, rec)
}

type tradeRequest struct {
	PnL      *decimal.Decimal `json:"pnl"`
	IsWin    *bool            `json:"isWin"`
	Symbol   string           `json:"symbol"`
	Strategy string           `json:"strategy"`
}

// RecordTrade agrège un trade clôturé puis vérifie les badges.
// Un échec de la vérification des badges n'annule pas le trade.
func (h *Handler) RecordTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	var req tradeRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PnL == nil {
		utils.Error(w, http.StatusBadRequest, "pnl is required")
		return
	}

	outcome := model.TradeOutcome{
		PnL:      *req.PnL,
		IsWin:    req.PnL.IsPositive(),
		Symbol:   req.Symbol,
		Strategy: req.Strategy,
	}
	if req.IsWin != nil {
		outcome.IsWin = *req.IsWin
	}

	rec, err := h.engine.UpsertOnTrade(r.Context(), userID, outcome)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	result := model.TradeResult{Stats: rec, NewBadges: []model.BadgeAward{}}
	awards, err := h.engine.CheckAndAward(r.Context(), userID)
	if err != nil {
		logger.Warning("badge check after trade failed for user %s: %v", userID, err)
	} else {
		result.NewBadges = awards
	}
	utils.Success(w, result)
}

// ListBadges liste toutes les définitions de badges
func (h *Handler) ListBadges(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, h.engine.Badges())
}

// CheckBadges attribue les badges dont les seuils sont atteints
func (h *Handler) CheckBadges(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	awards, err := h.engine.CheckAndAward(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	utils.Success(w, awards)
}

func (h *Handler) GetSharpe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	est, err := h.engine.EstimateSharpe(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	utils.Success(w, est)
}

type displayNameRequest struct {
	DisplayName string `json:"displayName"`
}

func (h *Handler) SetDisplayName(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	var req displayNameRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := h.engine.SetDisplayName(r.Context(), userID, req.DisplayName)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	utils.Success(w, rec)
}
