package domain

import "errors"

// Виды ошибок, видимые клиенту. Код ошибки стабилен и отдается в ответе API
var (
	ErrBadUserInput    = errors.New("BAD_USER_INPUT")
	ErrUnauthenticated = errors.New("UNAUTHENTICATED")
	ErrForbidden       = errors.New("FORBIDDEN")
	ErrNotFound        = errors.New("NOT_FOUND")
	ErrAlreadyExists   = errors.New("ALREADY_EXISTS")
	ErrInternal        = errors.New("INTERNAL_ERROR")
	ErrRateLimited     = errors.New("RATE_LIMITED")
)

// Error пользовательская ошибка с видом и человекочитаемым сообщением
// errors.Is(err, ErrForbidden) срабатывает через Unwrap
type Error struct {
	kind    error
	message string
}

// NewError создает ошибку указанного вида
func NewError(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Kind возвращает вид ошибки
func (e *Error) Kind() error {
	return e.kind
}

var kinds = []error{
	ErrBadUserInput,
	ErrUnauthenticated,
	ErrForbidden,
	ErrNotFound,
	ErrAlreadyExists,
	ErrRateLimited,
	ErrInternal,
}

// Code возвращает стабильный код ошибки. Неизвестные ошибки считаются внутренними
func Code(err error) string {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ErrInternal.Error()
}

// PublicMessage возвращает сообщение, которое можно показать клиенту
// Для внутренних ошибок детали не раскрываются
func PublicMessage(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.kind != ErrInternal {
		return domainErr.message
	}
	return "internal error"
}
