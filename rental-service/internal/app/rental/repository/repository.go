package repository

import (
	"context"
	"errors"

	"rentaldesk/rental-service/internal/app/rental/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// ProductRepository - хранилище товаров
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	List(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByProductID(ctx context.Context, productID int) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	NextProductID(ctx context.Context) (int, error)
	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

// BookingRepository - хранилище бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	List(ctx context.Context) ([]entity.Booking, error)
	GetByID(ctx context.Context, id string) (*entity.Booking, error)
	Update(ctx context.Context, id string, patch *entity.BookingPatch) (*entity.Booking, error)
	Delete(ctx context.Context, id string) (*entity.Booking, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
	MonthlyRevenue(ctx context.Context, year int) ([]entity.MonthlyRevenue, error)
}

// ActivityRepository - журнал действий
type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	ListRecent(ctx context.Context, limit int) ([]entity.Activity, error)
}

// UserRepository - пользователи (MongoDB или PostgreSQL)
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
