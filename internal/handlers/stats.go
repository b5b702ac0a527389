package handlers

import (
	"context"
	"net/http"
	"strconv"

	"review-response-metrics/internal/models"
	"review-response-metrics/internal/service"
)

type StatsService interface {
	WeeklyReport(ctx context.Context, days int) (*models.WeeklyReport, error)
	DailyReport(ctx context.Context, date string) (*models.DailyReport, error)
}

type SyncService interface {
	Sync(ctx context.Context, days int) (*models.SyncResult, error)
}

// структура обрабатывает HTTP запросы для получения отчетов и синхронизации
type StatsHandler struct {
	statsService StatsService
	syncService  SyncService
	defaultDays  int
}

// создает и возвращает новый экземпляр StatsHandler
// принимает: сервис отчетов, сервис синхронизации (nil если GitHub не настроен) и период по умолчанию
// возвращает: указатель на созданный StatsHandler
func NewStatsHandler(statsService StatsService, syncService SyncService, defaultDays int) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		syncService:  syncService,
		defaultDays:  defaultDays,
	}
}

// возвращает недельную статистику ревьюверов
// принимает: HTTP GET запрос с необязательным параметром days
// возвращает: JSON с отчетом или ошибку
func (h *StatsHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	days, ok := h.parseDays(w, r)
	if !ok {
		return
	}

	report, err := h.statsService.WeeklyReport(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// возвращает ответы ревьюверов за день
// принимает: HTTP GET запрос с необязательным параметром date (YYYY-MM-DD, по умолчанию вчера)
// возвращает: JSON с отчетом или ошибку
func (h *StatsHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	report, err := h.statsService.DailyReport(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// загружает свежий снимок из GitHub в базу данных
func (h *StatsHandler) PostSync(w http.ResponseWriter, r *http.Request) {
	if h.syncService == nil {
		writeError(w, "NOT_CONFIGURED", "GitHub token is not configured", http.StatusServiceUnavailable)
		return
	}

	days, ok := h.parseDays(w, r)
	if !ok {
		return
	}

	result, err := h.syncService.Sync(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *StatsHandler) parseDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return h.defaultDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, service.CodeInvalidRequest, "days must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return days, true
}
