package handlers

import (
	"context"
	"net/http"
	"time"
)

// проверка готовности хранилища
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	check ReadinessCheck
}

func NewHealthHandler(check ReadinessCheck) *HealthHandler {
	return &HealthHandler{check: check}
}

// обработчик эндпоинта проверки healthy сервиса
// принимает: HTTP запрос и writer для ответа на запросы проверки health
// возвращает: JSON ответ со статусом и названием сервиса
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.check(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "unhealthy",
				"service": "review-response-metrics",
				"error":   err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "review-response-metrics",
	})
}
