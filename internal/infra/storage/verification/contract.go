package verification

import "github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/dbmetrics"

// DBExecutor интерфейс для выполнения запросов
type DBExecutor = dbmetrics.DBExecutor
