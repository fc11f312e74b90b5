// Package health reports database reachability and basic table counts.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/httpx"
)

// Counts are the row counts reported alongside the database status.
type Counts struct {
	Users         int64 `db:"users_count" json:"usersCount"`
	Videos        int64 `db:"videos_count" json:"videosCount"`
	Subscriptions int64 `db:"subscriptions_count" json:"subscriptionsCount"`
}

type Report struct {
	Status   string  `json:"status"`
	DBStatus string  `json:"dbStatus"`
	Stats    *Counts `json:"stats,omitempty"`
}

type Handler struct {
	db      *sqlx.DB
	timeout time.Duration
	logger  *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{db: db, timeout: 3 * time.Second, logger: logger}
}

// Check pings the database and collects the counts. A failed ping is a 503.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Errorw("healthcheck ping failed", "err", err)
		httpx.WriteJSON(w, http.StatusServiceUnavailable,
			Report{Status: "DOWN", DBStatus: "Disconnected"}, "healthcheck failed")
		return
	}
	const q = `SELECT
		(SELECT COUNT(*) FROM users) AS users_count,
		(SELECT COUNT(*) FROM videos) AS videos_count,
		(SELECT COUNT(*) FROM subscriptions) AS subscriptions_count`
	var c Counts
	if err := h.db.GetContext(ctx, &c, q); err != nil {
		h.logger.Errorw("healthcheck counts failed", "err", err)
		httpx.WriteJSON(w, http.StatusServiceUnavailable,
			Report{Status: "DOWN", DBStatus: "Connected"}, "healthcheck failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, Report{Status: "OK", DBStatus: "Connected", Stats: &c}, "healthcheck passed")
}
