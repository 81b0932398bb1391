package handler

import (
	"net/http"

	"github.com/MassBabyGeek/TradeMind-backend/internal/utils"
)

// RootHandler affiche toutes les routes disponibles de l'API
func RootHandler(w http.ResponseWriter, r *http.Request) {
	routes := map[string]interface{}{
		"name":    "TradeMind API",
		"version": "1.0.0",
		"status":  "running",
		"routes": map[string]interface{}{
			"gamification": []map[string]string{
				{"method": "GET", "path": "/gamification/stats", "description": "Statistiques de gamification de l'utilisateur connecté"},
				{"method": "POST", "path": "/gamification/trades", "description": "Enregistrer un trade clôturé (body: pnl, isWin, symbol, strategy)"},
				{"method": "GET", "path": "/gamification/badges", "description": "Liste des badges disponibles"},
				{"method": "POST", "path": "/gamification/badges/check", "description": "Vérifier et attribuer les badges"},
				{"method": "GET", "path": "/gamification/sharpe", "description": "Estimation du ratio de Sharpe sur 30 jours"},
				{"method": "PUT", "path": "/gamification/display-name", "description": "Modifier le nom affiché dans le classement"},
			},
			"leaderboard": []map[string]string{
				{"method": "GET", "path": "/gamification/leaderboard", "description": "Classement de la semaine (params: limit)"},
				{"method": "GET", "path": "/gamification/leaderboard/nearby", "description": "Utilisateurs proches dans le classement (params: range)"},
			},
			"cron": []map[string]string{
				{"method": "POST", "path": "/cron/weekly", "description": "Évaluation hebdomadaire (header X-Cron-Secret)"},
			},
			"health": []map[string]string{
				{"method": "GET", "path": "/health", "description": "Health check de l'API"},
			},
		},
		"documentation": map[string]string{
			"description": "API REST pour TradeMind - Gamification du paper trading",
		},
	}

	utils.Success(w, routes)
}
