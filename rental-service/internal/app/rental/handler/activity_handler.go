package handler

import (
	"net/http"
	"strconv"

	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ActivityHandler struct {
	activityService service.ActivityServiceInterface
	validator       *validator.Validate
}

func NewActivityHandler(activityService service.ActivityServiceInterface) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		validator:       validator.New(),
	}
}

// GetActivities отдаёт последние записи журнала; limit по умолчанию решает сервис
func (h *ActivityHandler) GetActivities(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	activities, err := h.activityService.GetActivities(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}

func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req entity.CreateActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondMessage(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	activity, err := h.activityService.CreateActivity(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, activity)
}
