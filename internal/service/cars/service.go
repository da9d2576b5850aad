package cars

import (
	"context"
	"errors"
	"fmt"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	carRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/car"
)

// Service операции сотрудников над автопарком
type Service struct {
	carRepo CarRepository
	logger  Logger
}

// NewService создает новый экземпляр сервиса автомобилей
func NewService(carRepo CarRepository, logger Logger) *Service {
	return &Service{
		carRepo: carRepo,
		logger:  logger,
	}
}

// FinishMaintenance возвращает автомобиль в прокат после обслуживания: MAINTENANCE -> AVAILABLE
func (s *Service) FinishMaintenance(ctx context.Context, actor domain.Actor, carID int64) (*domain.Car, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("FinishMaintenance: user=%d is not an admin", actor.UserID)
		return nil, ErrAccessDenied
	}

	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, carRepo.ErrCarNotFound) {
			s.logger.Warn("FinishMaintenance: car id=%d not found", carID)
			return nil, ErrCarNotFound
		}
		s.logger.Error("FinishMaintenance: failed to get car id=%d: %v", carID, err)
		return nil, fmt.Errorf("%w: FinishMaintenance - repository error: %v", ErrInternal, err)
	}

	if car.Status != domain.CarMaintenance {
		s.logger.Warn("FinishMaintenance: car id=%d has status=%s", carID, car.Status)
		return nil, ErrNotInMaintenance
	}

	err = s.carRepo.UpdateStatus(ctx, carID, []domain.CarStatus{domain.CarMaintenance}, domain.CarAvailable)
	if err != nil {
		if errors.Is(err, carRepo.ErrStatusMismatch) {
			s.logger.Warn("FinishMaintenance: car id=%d status changed concurrently", carID)
			return nil, ErrNotInMaintenance
		}
		s.logger.Error("FinishMaintenance: failed to update car id=%d: %v", carID, err)
		return nil, fmt.Errorf("%w: FinishMaintenance - repository error: %v", ErrInternal, err)
	}

	car.Status = domain.CarAvailable
	s.logger.Info("FinishMaintenance: car id=%d is available again", carID)
	return car, nil
}
