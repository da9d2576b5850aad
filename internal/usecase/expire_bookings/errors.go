package expire_bookings

import "errors"

// ErrSweepFailed возвращается, когда хотя бы один проход завершился ошибкой
// Остальные проходы при этом выполняются
var ErrSweepFailed = errors.New("expire_bookings: sweep failed")
