package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/availability"
)

// CodeRefundFailed код ошибки возврата денег, отличный от ошибки отмены
const CodeRefundFailed = "REFUND_FAILED"

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Conflicts []ConflictResponse `json:"conflicts,omitempty"`
}

// ConflictResponse пересекающееся бронирование без персональных данных
type ConflictResponse struct {
	BookingID int64  `json:"bookingId"`
	CarID     int64  `json:"carId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError отправляет ответ с ошибкой
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// RespondBadRequest 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, domain.ErrBadUserInput.Error(), message)
}

// RespondUnauthorized 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error(), message)
}

// RespondForbidden 403
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, domain.ErrForbidden.Error(), message)
}

// RespondNotFound 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, domain.ErrNotFound.Error(), message)
}

// RespondTooManyRequests 429
func RespondTooManyRequests(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusTooManyRequests, domain.ErrRateLimited.Error(), message)
}

// RespondInternalError 500. Детали ошибки наружу не отдаются
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, domain.ErrInternal.Error(), "internal server error")
}

// RespondDomainError отправляет ответ по виду доменной ошибки
// Неизвестные ошибки превращаются в 500 без подробностей
func RespondDomainError(w http.ResponseWriter, err error) {
	code := domain.Code(err)
	resp := ErrorResponse{Code: code, Message: domain.PublicMessage(err)}

	var conflict *availability.ConflictError
	if errors.As(err, &conflict) {
		resp.Conflicts = conflictResponses(conflict.Conflicts)
	}

	RespondJSON(w, StatusForKind(code), resp)
}

// StatusForKind HTTP статус для кода доменной ошибки
func StatusForKind(code string) int {
	switch code {
	case domain.ErrBadUserInput.Error():
		return http.StatusBadRequest
	case domain.ErrUnauthenticated.Error():
		return http.StatusUnauthorized
	case domain.ErrForbidden.Error():
		return http.StatusForbidden
	case domain.ErrNotFound.Error():
		return http.StatusNotFound
	case domain.ErrAlreadyExists.Error():
		return http.StatusConflict
	case domain.ErrRateLimited.Error():
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func conflictResponses(bookings []*domain.Booking) []ConflictResponse {
	out := make([]ConflictResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ConflictResponse{
			BookingID: b.ID,
			CarID:     b.CarID,
			StartDate: b.StartDate.Format(time.RFC3339),
			EndDate:   b.EndDate.Format(time.RFC3339),
			Status:    string(b.Status),
		})
	}
	return out
}

// IsInternal returns true when the error must be logged as a server failure
func IsInternal(err error) bool {
	return domain.Code(err) == domain.ErrInternal.Error()
}
