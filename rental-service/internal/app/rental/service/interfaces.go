package service

import (
	"context"

	"rentaldesk/rental-service/internal/app/rental/entity"
)

type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	GetAllProducts(ctx context.Context) ([]entity.Product, error)
	GetProductByID(ctx context.Context, id string) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id string, patch *entity.ProductPatch) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id string) (*entity.Product, error)
}

type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, req *entity.CreateBookingRequest) (*entity.Booking, error)
	GetAllBookings(ctx context.Context) ([]entity.Booking, error)
	GetBookingByID(ctx context.Context, id string) (*entity.Booking, error)
	UpdateBooking(ctx context.Context, id string, patch *entity.BookingPatch) (*entity.Booking, error)
	DeleteBooking(ctx context.Context, id string) (*entity.Booking, error)
}

type ActivityServiceInterface interface {
	CreateActivity(ctx context.Context, req *entity.CreateActivityRequest) (*entity.Activity, error)
	GetActivities(ctx context.Context, limit int) ([]entity.ActivityView, error)
}

type AuthServiceInterface interface {
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error)
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error)
}

type ReportServiceInterface interface {
	GetSummary(ctx context.Context) (*entity.ReportSummary, error)
	GetMonthlyRevenue(ctx context.Context, year int) ([]entity.MonthlyRevenue, error)
	SummaryPDF(ctx context.Context, year int) ([]byte, error)
}

// ActivityRecorder пишет в журнал после успешных изменений; ошибки не возвращает
type ActivityRecorder interface {
	Record(ctx context.Context, action string)
}

// SummaryInvalidator сбрасывает закешированную сводку после изменений данных
type SummaryInvalidator interface {
	InvalidateSummary(ctx context.Context)
}
