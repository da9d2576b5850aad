package domain

import "time"

// Window полуоткрытый интервал [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов
// Бронирование, заканчивающееся ровно в момент начала другого, не пересекается с ним
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Duration длительность интервала
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Expand расширяет интервал на buffer в обе стороны
func (w Window) Expand(buffer time.Duration) Window {
	return Window{Start: w.Start.Add(-buffer), End: w.End.Add(buffer)}
}

// ValidateWindow проверяет интервал аренды: start < end, минимальная длительность
// и минимальный запас времени до начала
func ValidateWindow(w Window, now time.Time, minLeadTime time.Duration) error {
	if err := ValidateDuration(w); err != nil {
		return err
	}
	if w.Start.Before(now.Add(minLeadTime)) {
		return NewError(ErrBadUserInput, "pickup is too soon, choose a later start time")
	}
	return nil
}

// ValidateDuration проверяет интервал без привязки к текущему времени
func ValidateDuration(w Window) error {
	if w.Start.IsZero() || w.End.IsZero() {
		return NewError(ErrBadUserInput, "start and end dates are required")
	}
	if !w.Start.Before(w.End) {
		return NewError(ErrBadUserInput, "start date must be before end date")
	}
	if w.Duration() < MinBookingDuration {
		return NewError(ErrBadUserInput, "booking must be at least 2 hours long")
	}
	return nil
}
