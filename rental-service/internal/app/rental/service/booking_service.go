package service

import (
	"context"
	"errors"
	"strings"

	"rentaldesk/pkg/logger"
	"rentaldesk/pkg/metrics"
	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/repository"
	"rentaldesk/rental-service/internal/app/rental/util"
)

// BookingService управляет бронированиями
type BookingService struct {
	bookingRepo repository.BookingRepository
	activities  ActivityRecorder
	publisher   util.MessagePublisher
	reports     SummaryInvalidator
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	activities ActivityRecorder,
	publisher util.MessagePublisher,
	reports SummaryInvalidator,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		activities:  activities,
		publisher:   publisher,
		reports:     reports,
	}
}

// validateBookingRequest проверяет поля по порядку и возвращает первую ошибку
func validateBookingRequest(req *entity.CreateBookingRequest) error {
	switch {
	case strings.TrimSpace(req.BookingID) == "":
		return newError(ErrValidation, "Booking ID is required", nil)
	case !req.CustomerComplete():
		return newError(ErrValidation, "Customer information is incomplete", nil)
	case !req.ProductComplete():
		return newError(ErrValidation, "Product information is incomplete", nil)
	case req.Date.IsZero():
		return newError(ErrValidation, "Booking date is required", nil)
	case req.TotalAmount == 0:
		return newError(ErrValidation, "Total amount is required", nil)
	}
	return nil
}

func (s *BookingService) CreateBooking(ctx context.Context, req *entity.CreateBookingRequest) (*entity.Booking, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}

	booking := req.ToBooking()
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, s.storeFailure(err, "creating booking")
	}

	metrics.BookingsCreated.Inc()
	metrics.BookingsAmount.Add(booking.TotalAmount)
	s.afterChange(ctx, entity.EventBookingCreated, booking, "Created booking "+booking.BookingID)

	return booking, nil
}

// GetAllBookings возвращает все бронирования, новые первыми
func (s *BookingService) GetAllBookings(ctx context.Context) ([]entity.Booking, error) {
	bookings, err := s.bookingRepo.List(ctx)
	if err != nil {
		return nil, s.storeFailure(err, "fetching bookings")
	}
	return bookings, nil
}

// GetBookingByID ищет только по _id; некорректный id - то же, что отсутствующий
func (s *BookingService) GetBookingByID(ctx context.Context, id string) (*entity.Booking, error) {
	if !repository.IsValidNativeID(id) {
		return nil, newError(ErrNotFound, MsgBookingNotFound, nil)
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupFailure(err, "fetching booking")
	}
	return booking, nil
}

// UpdateBooking применяет patch одной операцией и возвращает обновлённую запись
func (s *BookingService) UpdateBooking(ctx context.Context, id string, patch *entity.BookingPatch) (*entity.Booking, error) {
	if !repository.IsValidNativeID(id) {
		return nil, newError(ErrNotFound, MsgBookingNotFound, nil)
	}

	booking, err := s.bookingRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.lookupFailure(err, "updating booking")
	}

	s.afterChange(ctx, entity.EventBookingUpdated, booking, "Updated booking "+booking.BookingID)

	return booking, nil
}

// DeleteBooking удаляет бронирование и возвращает удалённую запись
func (s *BookingService) DeleteBooking(ctx context.Context, id string) (*entity.Booking, error) {
	if !repository.IsValidNativeID(id) {
		return nil, newError(ErrNotFound, MsgBookingNotFound, nil)
	}

	booking, err := s.bookingRepo.Delete(ctx, id)
	if err != nil {
		return nil, s.lookupFailure(err, "deleting booking")
	}

	s.afterChange(ctx, entity.EventBookingDeleted, booking, "Deleted booking "+booking.BookingID)

	return booking, nil
}

func (s *BookingService) lookupFailure(err error, action string) error {
	if errors.Is(err, repository.ErrNotFound) || repository.FaultOf(err) == repository.FaultInvalidID {
		return newError(ErrNotFound, MsgBookingNotFound, err)
	}
	return s.storeFailure(err, action)
}

func (s *BookingService) storeFailure(err error, action string) error {
	domainErr := fromStore(err, action)
	if errors.Is(domainErr, ErrPersistence) {
		logger.Error().Err(err).Str("action", action).Msg("Booking store operation failed")
	}
	return domainErr
}

func (s *BookingService) afterChange(ctx context.Context, eventType string, booking *entity.Booking, action string) {
	if s.activities != nil {
		s.activities.Record(ctx, action)
	}
	publishEvent(ctx, s.publisher, eventType, booking.ID.Hex(), booking)
	if s.reports != nil {
		s.reports.InvalidateSummary(ctx)
	}
}
