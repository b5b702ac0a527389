package service

import (
	"errors"
	"fmt"
)

// коды ошибок сервиса, которые обработчики отображают в HTTP статусы
const (
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeIncompleteData = "INCOMPLETE_DATA"
	CodeInternal       = "INTERNAL_ERROR"
)

// представляет структуру для стандартизированных ошибок логики
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

// возвращает строковое представление ошибки сервиса в формате "КОД: сообщение"
// принимает: не принимает параметров, работает с получателем ServiceError
// возвращает: строку с отформатированным сообщением об ошибке
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// создает новый экземпляр стандартизированной ошибки логики
// принимает: код ошибки и текстовое сообщение для инициализации
// возвращает: указатель на созданный объект ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// оборачивает исходную ошибку в ошибку сервиса, сохраняя цепочку для errors.Is
func wrapServiceError(code string, err error) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: err.Error(),
		Err:     err,
	}
}

// достает ServiceError из цепочки ошибок
func AsServiceError(err error) (*ServiceError, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return nil, false
}
