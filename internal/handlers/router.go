package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// собирает маршруты сервиса
// принимает: обработчики отчетов и health
// возвращает: http.Handler с подключенными middleware
func NewRouter(stats *StatsHandler, health *HealthHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", health.Health)

	r.Route("/stats", func(r chi.Router) {
		r.Get("/weekly", stats.GetWeekly)
		r.Get("/daily", stats.GetDaily)
	})
	r.Post("/sync", stats.PostSync)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "NOT_FOUND", "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}
