package domain

import "math"

// Quote расчет стоимости аренды
type Quote struct {
	Days          int
	BasePrice     float64
	TaxAmount     float64
	TotalPrice    float64
	DepositAmount float64
}

// QuoteRental рассчитывает стоимость: каждые начатые сутки оплачиваются полностью
// Подменные автомобили выдаются бесплатно
func QuoteRental(w Window, pricePerDay, taxRate, deposit float64, kind BookingKind) Quote {
	days := int(math.Ceil(w.Duration().Hours() / 24))
	if days < 1 {
		days = 1
	}
	if kind == KindReplacement {
		return Quote{Days: days}
	}

	base := roundMoney(float64(days) * pricePerDay)
	tax := roundMoney(base * taxRate)
	return Quote{
		Days:          days,
		BasePrice:     base,
		TaxAmount:     tax,
		TotalPrice:    roundMoney(base + tax),
		DepositAmount: deposit,
	}
}

// Apply записывает расчет в бронирование
func (q Quote) Apply(b *Booking) {
	b.BasePrice = q.BasePrice
	b.TaxAmount = q.TaxAmount
	b.TotalPrice = q.TotalPrice
	b.DepositAmount = q.DepositAmount
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
