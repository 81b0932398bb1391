package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/utils"
)

// weeklyJobTimeout borne un passage complet du job hebdomadaire
const weeklyJobTimeout = 10 * time.Minute

// RunWeekly déclenche l'évaluation hebdomadaire (appelé par le cron externe).
// Le job continue si le client se déconnecte.
func (h *Handler) RunWeekly(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), weeklyJobTimeout)
	defer cancel()

	summary, err := h.engine.RunWeekly(ctx, h.now())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	utils.Success(w, summary)
}
