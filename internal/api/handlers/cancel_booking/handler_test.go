package cancel_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/middleware"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
)

type fakeService struct {
	cancelFn func(ctx context.Context, req *models.CancelBookingRequest) (*models.CancelResult, error)
}

func (f *fakeService) Cancel(ctx context.Context, req *models.CancelBookingRequest) (*models.CancelResult, error) {
	return f.cancelFn(ctx, req)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(t *testing.T, svc BookingService, actor *domain.Actor, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}/cancel", NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/bookings/42/cancel", strings.NewReader(body))
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var owner = domain.Actor{UserID: 7, Role: domain.RoleUser}

func TestHandle_Cancelled(t *testing.T) {
	var got *models.CancelBookingRequest
	svc := &fakeService{cancelFn: func(_ context.Context, req *models.CancelBookingRequest) (*models.CancelResult, error) {
		got = req
		return &models.CancelResult{
			Booking: models.BookingResponse{ID: 42, Status: string(domain.StatusCancelled)},
			Refund:  models.RefundDone,
		}, nil
	}}

	rec := serve(t, svc, &owner, `{"cancellationReason":"plans changed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), got.BookingID)
	assert.Equal(t, owner, got.Actor)
	assert.Equal(t, "plans changed", got.CancellationReason)

	var body models.CancelResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, models.RefundDone, body.Refund)
}

func TestHandle_EmptyBodyAllowed(t *testing.T) {
	svc := &fakeService{cancelFn: func(_ context.Context, req *models.CancelBookingRequest) (*models.CancelResult, error) {
		assert.Empty(t, req.CancellationReason)
		return &models.CancelResult{Refund: models.RefundNone}, nil
	}}

	rec := serve(t, svc, &owner, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"window passed", bookings.ErrCancellationWindowPassed, http.StatusForbidden, "FORBIDDEN"},
		{"not found", bookings.ErrBookingNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"terminal", bookings.ErrCannotCancel, http.StatusBadRequest, "BAD_USER_INPUT"},
		{"refund failed", bookings.ErrRefundFailed, http.StatusBadGateway, handlers.CodeRefundFailed},
		{"internal", bookings.ErrInternal, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{cancelFn: func(context.Context, *models.CancelBookingRequest) (*models.CancelResult, error) {
				return nil, tt.err
			}}

			rec := serve(t, svc, &owner, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestHandle_RequiresActor(t *testing.T) {
	svc := &fakeService{cancelFn: func(context.Context, *models.CancelBookingRequest) (*models.CancelResult, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	rec := serve(t, svc, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
