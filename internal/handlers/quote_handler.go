package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"casasmart/internal/models"
	"casasmart/internal/pdf"
	"casasmart/internal/services"
)

type QuoteHandler struct {
	Service *services.QuoteService
	Gen     pdf.Generator
}

func NewQuoteHandler(service *services.QuoteService, gen pdf.Generator) *QuoteHandler {
	return &QuoteHandler{Service: service, Gen: gen}
}

// @Summary      Создать котировку
// @Description  Цены оборудования считаются от себестоимости, строка настройки ПО добавляется автоматически
// @Tags         Quotes
// @Accept       json
// @Produce      json
// @Param        body  body      services.QuoteInput  true  "Клиент и позиции"
// @Success      201   {object}  models.Quote
// @Failure      400   {object}  map[string]string
// @Security     BearerAuth
// @Router       /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var in services.QuoteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *QuoteHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var in services.QuoteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := h.Service.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	q, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// @Summary      Список котировок
// @Description  По умолчанию только активные (не принятые и не истёкшие)
// @Tags         Quotes
// @Produce      json
// @Param        status           query  string  false  "draft|sent|accepted|rejected"
// @Param        archived         query  bool    false  "только принятые"
// @Param        include_expired  query  bool    false  "показывать истёкшие"
// @Success      200  {array}   models.Quote
// @Security     BearerAuth
// @Router       /quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	list, err := h.Service.List(c.Request.Context(), services.ListOptions{
		Status:         c.Query("status"),
		Archived:       queryBool(c, "archived"),
		IncludeExpired: queryBool(c, "include_expired"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuoteHandler) Send(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	q, err := h.Service.Send(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// @Summary      Принять котировку
// @Description  Создаёт проект в стадии preparation; повторное принятие даёт 409
// @Tags         Quotes
// @Produce      json
// @Param        id   path      string  true  "ID котировки"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]string
// @Security     BearerAuth
// @Router       /quotes/{id}/accept [post]
func (h *QuoteHandler) Accept(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	q, p, err := h.Service.Accept(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": q, "project": p})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *QuoteHandler) Reject(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := h.Service.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuoteHandler) Revoke(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	q, err := h.Service.Revoke(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuoteHandler) PDF(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	q, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	writeQuotePDF(c, h.Gen, q)
}

// общий код для админки и портала
func writeQuotePDF(c *gin.Context, gen pdf.Generator, q *models.Quote) {
	var buf bytes.Buffer
	issued := time.Now()
	if err := gen.WriteQuote(&buf, q, issued); err != nil {
		respondError(c, fmt.Errorf("render quote %s: %w", q.ID, err))
		return
	}
	sendPDF(c, pdf.QuoteFilename(q, issued), buf.Bytes())
}

func writeInvoicePDF(c *gin.Context, gen pdf.Generator, inv *models.Invoice, p *models.Project) {
	var buf bytes.Buffer
	if err := gen.WriteInvoice(&buf, inv, p); err != nil {
		respondError(c, fmt.Errorf("render invoice %s: %w", inv.ID, err))
		return
	}
	sendPDF(c, pdf.InvoiceFilename(inv), buf.Bytes())
}

func sendPDF(c *gin.Context, name string, data []byte) {
	disposition := "attachment"
	if queryBool(c, "inline") {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, name))
	c.Data(http.StatusOK, "application/pdf", data)
}
