package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"review-response-metrics/internal/models"
	"review-response-metrics/internal/service"
)

// вспомогательная функция для отправки JSON ответа
// принимает: ResponseWriter, HTTP статус код и данные для сериализации
// возвращает: ничего, просто записывает ответ в ResponseWriter
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// вспомогательная функция для отправки ошибок
// принимает: ResponseWriter, код ошибки, сообщение и HTTP статус код
// возвращает: ничего, просто записывает ошибку в ResponseWriter через writeJSON
func writeError(w http.ResponseWriter, errorCode, message string, status int) {
	errorResponse := models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    errorCode,
			Message: message,
		},
	}
	writeJSON(w, status, errorResponse)
}

// отображает ошибку сервиса в HTTP ответ; прочие ошибки считаются внутренними
func writeServiceError(w http.ResponseWriter, err error) {
	serviceErr, ok := service.AsServiceError(err)
	if !ok {
		slog.Error("request failed", "error", err)
		writeError(w, service.CodeInternal, "internal error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch serviceErr.Code {
	case service.CodeInvalidRequest:
		status = http.StatusBadRequest
	case service.CodeNotFound:
		status = http.StatusNotFound
	case service.CodeIncompleteData:
		status = http.StatusServiceUnavailable
	}
	writeError(w, serviceErr.Code, serviceErr.Message, status)
}
