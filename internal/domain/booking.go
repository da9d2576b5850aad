package domain

import (
	"strings"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusDraft     BookingStatus = "DRAFT"
	StatusPending   BookingStatus = "PENDING"
	StatusVerified  BookingStatus = "VERIFIED"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusOngoing   BookingStatus = "ONGOING"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusRejected  BookingStatus = "REJECTED"
	StatusExpired   BookingStatus = "EXPIRED"
)

// BookingKind тип бронирования
type BookingKind string

const (
	KindRental      BookingKind = "RENTAL"
	KindReplacement BookingKind = "REPLACEMENT" // подменный автомобиль, создается только сотрудником
)

// ActiveStatuses статусы, удерживающие автомобиль на интервал бронирования
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusVerified,
	StatusConfirmed,
	StatusOngoing,
}

// DeletableStatuses статусы, из которых бронирование можно удалить физически
var DeletableStatuses = []BookingStatus{
	StatusDraft,
	StatusCancelled,
}

// GuestContact контакты клиента без учетной записи (walk-in)
type GuestContact struct {
	Name  string
	Phone string
	Email *string
}

// Subject на кого оформлено бронирование: ровно одно из полей заполнено
type Subject struct {
	UserID *int64
	Guest  *GuestContact
}

// UserSubject subject for a registered user
func UserSubject(userID int64) Subject {
	return Subject{UserID: &userID}
}

// GuestSubject subject for a walk-in guest
func GuestSubject(guest GuestContact) Subject {
	return Subject{Guest: &guest}
}

// Validate checks that exactly one variant is populated
func (s Subject) Validate() error {
	switch {
	case s.UserID != nil && s.Guest != nil:
		return NewError(ErrBadUserInput, "booking must reference either a user or a guest, not both")
	case s.UserID == nil && s.Guest == nil:
		return NewError(ErrBadUserInput, "booking must reference a user or a guest")
	case s.UserID != nil && *s.UserID <= 0:
		return NewError(ErrBadUserInput, "user id must be positive")
	case s.Guest != nil && (strings.TrimSpace(s.Guest.Name) == "" || strings.TrimSpace(s.Guest.Phone) == ""):
		return NewError(ErrBadUserInput, "guest name and phone are required")
	}
	return nil
}

// IsGuest returns true for walk-in guest bookings
func (s Subject) IsGuest() bool {
	return s.Guest != nil
}

// Booking represents a car rental booking
type Booking struct {
	ID      int64
	Subject Subject
	CarID   int64
	Kind    BookingKind

	// Интервал аренды [StartDate, EndDate)
	StartDate  time.Time
	EndDate    time.Time
	PickupTime *types.TimeString
	ReturnTime *types.TimeString

	BasePrice     float64
	TaxAmount     float64
	TotalPrice    float64
	DepositAmount float64
	DamageFee     float64
	ExtraKmFee    float64
	StartOdometer *int64
	EndOdometer   *int64

	Status         BookingStatus
	CreatedByStaff bool
	IsWalkIn       bool

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking holds the car for its window
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// IsTerminal returns true if no further transitions are possible
func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}

// IsOwnedBy returns true if the booking belongs to the user
func (b *Booking) IsOwnedBy(userID int64) bool {
	return b.Subject.UserID != nil && *b.Subject.UserID == userID
}

// CanBeDeleted returns true if the booking may be removed permanently
func (b *Booking) CanBeDeleted() bool {
	return b.Status == StatusDraft || b.Status == StatusCancelled
}

// PickupAt момент выдачи автомобиля: дата начала, уточненная временем выдачи, если оно указано
func (b *Booking) PickupAt() time.Time {
	if b.PickupTime == nil || b.PickupTime.IsZero() {
		return b.StartDate
	}
	at, err := b.PickupTime.OnDate(b.StartDate)
	if err != nil {
		return b.StartDate
	}
	return at
}

// Window returns the booking's rental interval
func (b *Booking) Window() Window {
	return Window{Start: b.StartDate, End: b.EndDate}
}

// IsActive returns true for statuses that block the car
func (s BookingStatus) IsActive() bool {
	for _, st := range ActiveStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// IsTerminal returns true for statuses without outgoing transitions
func (s BookingStatus) IsTerminal() bool {
	return len(transitions[s]) == 0 && s.IsValid()
}

// BookingFilter фильтр для выборки бронирований
type BookingFilter struct {
	UserID   *int64
	CarID    *int64
	Statuses []BookingStatus
	From     *time.Time // окно пересекается с [From, To)
	To       *time.Time
	Limit    uint64
	Offset   uint64
}
