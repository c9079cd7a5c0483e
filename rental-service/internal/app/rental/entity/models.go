package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProductStatusAvailable   = "available"
	ProductStatusRented      = "rented"
	ProductStatusMaintenance = "maintenance"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Product - товар, который сдаётся в аренду
type Product struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ProductID   int                `json:"productId" bson:"productId,omitempty" validate:"gte=0"` // Вторичный числовой идентификатор
	Name        string             `json:"name" bson:"name" validate:"required,max=200"`
	Description string             `json:"description" bson:"description" validate:"required"`
	Category    string             `json:"category" bson:"category" validate:"required"`
	Price       float64            `json:"price" bson:"price" validate:"gte=0"`
	Images      []string           `json:"images" bson:"images"` // data URI (base64) или URL
	Quantity    int                `json:"quantity" bson:"quantity" validate:"gte=0"`
	Status      string             `json:"status" bson:"status" validate:"omitempty,oneof=available rented maintenance"`
	Version     int                `json:"__v" bson:"__v"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductPatch - поля товара, которые разрешено менять.
// _id, productId, __v и createdAt сюда не входят.
type ProductPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Price       *float64  `json:"price"`
	Images      *[]string `json:"images"`
	Quantity    *int      `json:"quantity"`
	Status      *string   `json:"status"`
}

// ApplyTo переносит заданные поля patch на загруженный товар
func (p *ProductPatch) ApplyTo(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Images != nil {
		product.Images = *p.Images
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
	if p.Status != nil {
		product.Status = *p.Status
	}
}

type Customer struct {
	Name  string `json:"name" bson:"name" validate:"required"`
	Phone string `json:"phone" bson:"phone" validate:"required"`
	Email string `json:"email" bson:"email" validate:"required,email"`
}

// BookedProduct - ссылка на товар внутри бронирования.
// ID хранится строкой: ObjectID или productId в десятичной записи.
type BookedProduct struct {
	ID   string `json:"id" bson:"id" validate:"required"`
	Name string `json:"name" bson:"name" validate:"required"`
}

// Booking - бронирование товара клиентом
type Booking struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	BookingID   string             `json:"bookingId" bson:"bookingId" validate:"required"`
	Customer    Customer           `json:"customer" bson:"customer"`
	Product     BookedProduct      `json:"product" bson:"product"`
	Date        time.Time          `json:"date" bson:"date"`
	ReturnDate  *time.Time         `json:"returnDate,omitempty" bson:"returnDate,omitempty"`
	TotalAmount float64            `json:"totalAmount" bson:"totalAmount" validate:"gt=0"`
	Status      string             `json:"status" bson:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	Notes       string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Version     int                `json:"__v" bson:"__v"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// BookingPatch перечисляет ровно те поля бронирования, которые можно менять.
// Значения проверяются правилами схемы до записи.
type BookingPatch struct {
	BookingID   *string        `json:"bookingId" validate:"omitempty,min=1"`
	Customer    *Customer      `json:"customer"`
	Product     *BookedProduct `json:"product"`
	Date        *Date          `json:"date"`
	ReturnDate  *Date          `json:"returnDate"`
	TotalAmount *float64       `json:"totalAmount" validate:"omitempty,gt=0"`
	Status      *string        `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	Notes       *string        `json:"notes"`
}

// SetFields возвращает содержимое $set для заданных полей patch
func (p *BookingPatch) SetFields() bson.M {
	set := bson.M{}
	if p.BookingID != nil {
		set["bookingId"] = *p.BookingID
	}
	if p.Customer != nil {
		set["customer"] = *p.Customer
	}
	if p.Product != nil {
		set["product"] = *p.Product
	}
	// date обязательна: пустое значение не стирает её
	if p.Date != nil && !p.Date.IsZero() {
		set["date"] = p.Date.Time
	}
	// пустая returnDate снимает дату возврата
	if p.ReturnDate != nil {
		set["returnDate"] = timePtr(p.ReturnDate)
	}
	if p.TotalAmount != nil {
		set["totalAmount"] = *p.TotalAmount
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	return set
}

// Activity - запись журнала действий. После создания не меняется.
type Activity struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Action    string             `json:"action" bson:"action" validate:"required"`
	User      string             `json:"user" bson:"user" validate:"required"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// User - сотрудник, работающий с системой
type User struct {
	ID           string    `json:"id" bson:"_id" db:"id"`
	Username     string    `json:"username" bson:"username" db:"username" validate:"required"`
	PasswordHash string    `json:"-" bson:"password" db:"password_hash"`
	Role         string    `json:"role" bson:"role" db:"role" validate:"oneof=admin staff"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
}

// DomainEvent - событие изменения товара или бронирования для Kafka
type DomainEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"` // PRODUCT_CREATED, BOOKING_UPDATED, ...
	EntityID  string      `json:"entity_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

const (
	EventProductCreated = "PRODUCT_CREATED"
	EventProductUpdated = "PRODUCT_UPDATED"
	EventProductDeleted = "PRODUCT_DELETED"
	EventBookingCreated = "BOOKING_CREATED"
	EventBookingUpdated = "BOOKING_UPDATED"
	EventBookingDeleted = "BOOKING_DELETED"
)
