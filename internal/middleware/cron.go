package middleware

import (
	"net/http"

	"github.com/MassBabyGeek/TradeMind-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const cronSecretHeader = "X-Cron-Secret"

// CronAuth protects scheduler-triggered routes with a shared secret whose
// bcrypt hash is configured in CRON_SECRET_HASH. An empty hash disables the routes.
func CronAuth(secretHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secretHash == "" {
				utils.Error(w, http.StatusForbidden, "cron endpoint disabled")
				return
			}
			secret := r.Header.Get(cronSecretHeader)
			if secret == "" || bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(secret)) != nil {
				utils.Error(w, http.StatusUnauthorized, "invalid cron secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
