package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casasmart/internal/models"
	"casasmart/internal/services"
)

type BookingHandler struct {
	Service *services.BookingService
}

func NewBookingHandler(service *services.BookingService) *BookingHandler {
	return &BookingHandler{Service: service}
}

// @Summary      Заявка на консультацию
// @Description  Публичная форма записи; ограничена по номеру телефона
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Param        body  body      services.BookingRequest  true  "Контакты"
// @Success      201   {object}  models.Booking
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /bookings [post]
func (h *BookingHandler) Submit(c *gin.Context) {
	var req services.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.Service.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	list, err := h.Service.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.Service.UpdateStatus(c.Request.Context(), id, models.BookingStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
