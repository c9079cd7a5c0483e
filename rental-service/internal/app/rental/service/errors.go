package service

import (
	"errors"
	"strings"

	"rentaldesk/rental-service/internal/app/rental/repository"
)

var (
	// Виды ошибок бизнес-логики; handler выбирает HTTP статус через errors.Is
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrInvalidID          = errors.New("invalid id")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrPersistence        = errors.New("persistence error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

const (
	MsgPayloadTooLarge    = "Image data is too large. Please use a smaller image."
	MsgProductNotFound    = "Product not found"
	MsgBookingNotFound    = "Booking not found"
	MsgInvalidProductID   = "Invalid product ID format"
	MsgInvalidCredentials = "Invalid username or password"
	MsgUserExists         = "User already exists"
)

// Error - доменная ошибка: Kind для классификации, Message для клиента,
// Err - исходная причина (только для логов)
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// fromStore переводит ошибку хранилища в доменную по виду сбоя
func fromStore(err error, action string) error {
	var se *repository.StoreError
	if errors.As(err, &se) {
		switch se.Kind {
		case repository.FaultValidation:
			return newError(ErrValidation, "Validation error: "+strings.Join(se.Details, ", "), err)
		case repository.FaultDuplicateKey:
			return newError(ErrValidation, "Validation error: a record with the same unique value already exists", err)
		case repository.FaultDocumentTooLarge:
			return newError(ErrPayloadTooLarge, MsgPayloadTooLarge, err)
		case repository.FaultInvalidID:
			return newError(ErrInvalidID, "Invalid ID format", err)
		}
	}
	return newError(ErrPersistence, "Error "+action, err)
}
