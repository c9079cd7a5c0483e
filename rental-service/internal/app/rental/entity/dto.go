package entity

import (
	"strings"
	"time"
)

// CreateProductRequest - запрос на создание товара.
// ProductID = 0 означает "назначить автоматически".
type CreateProductRequest struct {
	ProductID   int      `json:"productId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Quantity    int      `json:"quantity"`
	Status      string   `json:"status"`
}

// MissingFields возвращает обязательные поля, которые не заполнены
func (r *CreateProductRequest) MissingFields() []string {
	var missing []string
	if blank(r.Name) {
		missing = append(missing, "name")
	}
	if blank(r.Description) {
		missing = append(missing, "description")
	}
	if blank(r.Category) {
		missing = append(missing, "category")
	}
	return missing
}

func (r *CreateProductRequest) ToProduct() *Product {
	status := r.Status
	if status == "" {
		status = ProductStatusAvailable
	}
	images := r.Images
	if images == nil {
		images = []string{}
	}
	return &Product{
		ProductID:   r.ProductID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Images:      images,
		Quantity:    r.Quantity,
		Status:      status,
	}
}

// CreateBookingRequest - запрос на создание бронирования
type CreateBookingRequest struct {
	BookingID   string        `json:"bookingId"`
	Customer    Customer      `json:"customer"`
	Product     BookedProduct `json:"product"`
	Date        Date          `json:"date"`
	ReturnDate  *Date         `json:"returnDate"`
	TotalAmount float64       `json:"totalAmount"`
	Status      string        `json:"status"`
	Notes       string        `json:"notes"`
}

func (r *CreateBookingRequest) CustomerComplete() bool {
	return !blank(r.Customer.Name) && !blank(r.Customer.Phone) && !blank(r.Customer.Email)
}

func (r *CreateBookingRequest) ProductComplete() bool {
	return !blank(r.Product.ID) && !blank(r.Product.Name)
}

func (r *CreateBookingRequest) ToBooking() *Booking {
	status := r.Status
	if status == "" {
		status = BookingStatusPending
	}
	return &Booking{
		BookingID:   r.BookingID,
		Customer:    r.Customer,
		Product:     r.Product,
		Date:        r.Date.Time,
		ReturnDate:  timePtr(r.ReturnDate),
		TotalAmount: r.TotalAmount,
		Status:      status,
		Notes:       r.Notes,
	}
}

// CreateActivityRequest - ручная запись в журнал.
// Пустой User заменяется текущим пользователем из контекста.
type CreateActivityRequest struct {
	Action    string     `json:"action" validate:"required"`
	User      string     `json:"user"`
	Timestamp *time.Time `json:"timestamp"`
}

// ActivityView - запись журнала в виде для списка
type ActivityView struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	User   string `json:"user"`
	Time   string `json:"time"` // "5 minutes ago"
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest - запрос на регистрацию. Роль не принимается:
// самостоятельная регистрация всегда создаёт staff.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// PublicUser - пользователь без хеша пароля
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthResponse - ответ с токеном
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// ReportSummary - сводный отчёт
type ReportSummary struct {
	TotalProducts      int64            `json:"totalProducts"`
	TotalBookings      int64            `json:"totalBookings"`
	TotalRevenue       float64          `json:"totalRevenue"`
	BookingsByStatus   map[string]int64 `json:"bookingsByStatus"`
	ProductsByCategory map[string]int64 `json:"productsByCategory"`
	GeneratedAt        time.Time        `json:"generatedAt"`
}

// MonthlyRevenue - выручка за месяц (1-12)
type MonthlyRevenue struct {
	Month    int     `json:"month" bson:"_id"`
	Bookings int64   `json:"bookings" bson:"bookings"`
	Revenue  float64 `json:"revenue" bson:"revenue"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthResponse - ответ /health
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReadinessResponse - ответ /health/ready
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
