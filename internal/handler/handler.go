package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/spendtrack/expense-forecast/internal/models"
	"github.com/spendtrack/expense-forecast/internal/service"
)

// Pinger reports database reachability for the health endpoint. *sql.DB
// satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	svc *service.Service
	db  Pinger
}

func NewHandler(svc *service.Service, db Pinger) *Handler {
	return &Handler{svc: svc, db: db}
}

// Forecast handles GET /analytics/forecast?email=&mode=&value=.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "months"
	}

	value := 1
	if raw := r.URL.Query().Get("value"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "value must be an integer", http.StatusBadRequest)
			return
		}
		value = v
	}

	result := h.svc.ForecastExpense(r.Context(), email, mode, value)
	_, numeric := parseEstimate(result)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.ForecastResponse{Forecast: result, Numeric: numeric})
}

// Health handles GET /health. It pings the database so the check reflects
// whether forecasts can actually be served.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := h.db.PingContext(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "degraded"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func parseEstimate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
