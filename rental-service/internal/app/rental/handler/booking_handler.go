package handler

import (
	"net/http"

	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService service.BookingServiceInterface
}

func NewBookingHandler(bookingService service.BookingServiceInterface) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req entity.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) GetAllBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetAllBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBookingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var patch entity.BookingPatch
	if !bindJSON(c, &patch) {
		return
	}

	booking, err := h.bookingService.UpdateBooking(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	booking, err := h.bookingService.DeleteBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking deleted successfully",
		"booking": booking,
	})
}
