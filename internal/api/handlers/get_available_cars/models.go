package get_available_cars

import (
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

// CarResponse HTTP response model
type CarResponse struct {
	ID          int64   `json:"id"`
	PlateNumber string  `json:"plateNumber"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	PricePerDay float64 `json:"pricePerDay"`
	Status      string  `json:"status"`
}

// AvailableCarsResponse HTTP response model
type AvailableCarsResponse struct {
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
	Cars      []CarResponse `json:"cars"`
}

// ParseWindow разбирает query параметры start и end (RFC3339 или YYYY-MM-DD)
func ParseWindow(start, end string) (domain.Window, error) {
	s, err := parseDate(start)
	if err != nil {
		return domain.Window{}, err
	}
	e, err := parseDate(end)
	if err != nil {
		return domain.Window{}, err
	}
	return domain.Window{Start: s, End: e}, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(domain.DateFormat, raw)
}

// FromDomain конвертирует список автомобилей в HTTP response
func FromDomain(window domain.Window, cars []*domain.Car) *AvailableCarsResponse {
	resp := &AvailableCarsResponse{
		StartDate: window.Start.Format(time.RFC3339),
		EndDate:   window.End.Format(time.RFC3339),
		Cars:      make([]CarResponse, 0, len(cars)),
	}
	for _, c := range cars {
		resp.Cars = append(resp.Cars, CarResponse{
			ID:          c.ID,
			PlateNumber: c.PlateNumber,
			Brand:       c.Brand,
			Model:       c.Model,
			PricePerDay: c.PricePerDay,
			Status:      string(c.Status),
		})
	}
	return resp
}
