package create_booking

import (
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/types"
)

// Settings параметры создания бронирования
type Settings struct {
	TaxRate       float64
	DepositAmount float64
	MinLeadTime   time.Duration
}

// Request модель запроса на создание бронирования
type Request struct {
	Actor      domain.Actor         // кто создает бронирование
	CarID      int64                // ID автомобиля
	StartDate  time.Time            // начало аренды
	EndDate    time.Time            // конец аренды (не включительно)
	PickupTime *types.TimeString    // время выдачи "10:00" (опционально)
	ReturnTime *types.TimeString    // время возврата (опционально)
	Kind       domain.BookingKind   // RENTAL по умолчанию
	Guest      *domain.GuestContact // контакты клиента walk-in, только для сотрудника
	ForUserID  *int64               // клиент, за которого оформляет сотрудник
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking // созданный черновик
	Days    int             // оплачиваемые сутки
}
