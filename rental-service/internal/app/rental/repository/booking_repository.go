package repository

import (
	"context"
	"time"

	"rentaldesk/rental-service/internal/app/rental/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingRepository struct {
	bookings *Collection[entity.Booking]
}

// NewBookingRepository создает репозиторий бронирований.
// bookingId намеренно не уникален.
func NewBookingRepository(ctx context.Context, db *mongo.Database) (BookingRepository, error) {
	bookings := NewCollection[entity.Booking](db, "bookings")

	err := bookings.EnsureIndexes(ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("date_idx"),
		},
	)
	if err != nil {
		return nil, err
	}

	return &bookingRepository{bookings: bookings}, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	id, err := r.bookings.Insert(ctx, booking)
	if err != nil {
		return err
	}
	booking.ID = id
	return nil
}

func (r *bookingRepository) List(ctx context.Context) ([]entity.Booking, error) {
	return r.bookings.FindMany(ctx, bson.M{}, FindOptions{
		Sort: bson.D{{Key: "createdAt", Value: -1}},
	})
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	booking, err := r.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

// Update применяет patch через $set и возвращает обновлённый документ.
// Поля вне BookingPatch (_id, __v, createdAt) не могут быть изменены.
func (r *bookingRepository) Update(ctx context.Context, id string, patch *entity.BookingPatch) (*entity.Booking, error) {
	set := patch.SetFields()
	set["updatedAt"] = time.Now().UTC()

	booking, err := r.bookings.UpdateByID(ctx, id, bson.M{"$set": set}, UpdateOptions{
		Schema:        patch,
		ReturnUpdated: true,
	})
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id string) (*entity.Booking, error) {
	booking, err := r.bookings.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

func (r *bookingRepository) Count(ctx context.Context) (int64, error) {
	return r.bookings.Count(ctx, bson.M{})
}

func (r *bookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	var rows []groupCount
	if err := r.bookings.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	return rowsToMap(rows), nil
}

// TotalRevenue - сумма totalAmount по всем неотменённым бронированиям
func (r *bookingRepository) TotalRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: entity.BookingStatusCancelled}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
	}

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := r.bookings.Aggregate(ctx, pipeline, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// MonthlyRevenue группирует неотменённые бронирования года по месяцу даты аренды.
// Месяцы без бронирований в результат не попадают.
func (r *bookingRepository) MonthlyRevenue(ctx context.Context, year int) ([]entity.MonthlyRevenue, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "date", Value: bson.D{{Key: "$gte", Value: start}, {Key: "$lt", Value: end}}},
			{Key: "status", Value: bson.D{{Key: "$ne", Value: entity.BookingStatusCancelled}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$month", Value: "$date"}}},
			{Key: "bookings", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	rows := make([]entity.MonthlyRevenue, 0)
	if err := r.bookings.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
