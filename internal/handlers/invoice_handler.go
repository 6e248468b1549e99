package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casasmart/internal/pdf"
	"casasmart/internal/services"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
	Gen     pdf.Generator
}

func NewInvoiceHandler(service *services.InvoiceService, gen pdf.Generator) *InvoiceHandler {
	return &InvoiceHandler{Service: service, Gen: gen}
}

func (h *InvoiceHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	list, err := h.Service.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	inv, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

type paymentRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// @Summary      Зарегистрировать оплату
// @Description  Статус пересчитывается: unpaid, partial или paid
// @Tags         Invoices
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "ID счёта"
// @Param        body  body      paymentRequest  true  "сумма в SAR"
// @Success      200   {object}  models.Invoice
// @Failure      400   {object}  map[string]string
// @Security     BearerAuth
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.Service.RecordPayment(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

type adjustRequest struct {
	Amount     int64 `json:"amount" binding:"required"`
	AmountPaid int64 `json:"amount_paid"`
}

func (h *InvoiceHandler) Adjust(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.Service.Adjust(c.Request.Context(), id, req.Amount, req.AmountPaid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) PDF(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	inv, p, err := h.Service.Document(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	writeInvoicePDF(c, h.Gen, inv, p)
}
