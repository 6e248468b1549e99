package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casasmart/internal/models"
	"casasmart/internal/services"
)

type ProjectHandler struct {
	Service  *services.ProjectService
	Invoices *services.InvoiceService
}

func NewProjectHandler(service *services.ProjectService, invoices *services.InvoiceService) *ProjectHandler {
	return &ProjectHandler{Service: service, Invoices: invoices}
}

// @Summary      Список проектов
// @Tags         Projects
// @Produce      json
// @Param        status  query  string  false  "стадии через запятую, например qc,handover"
// @Success      200  {array}   models.Project
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	list, err := h.Service.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type advanceRequest struct {
	Confirm bool `json:"confirm"`
}

// @Summary      Следующая стадия
// @Description  handover -> completed требует confirm=true
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        id    path      string          true   "ID проекта"
// @Param        body  body      advanceRequest  false  "подтверждение"
// @Success      200   {object}  models.Project
// @Failure      409   {object}  map[string]string
// @Failure      428   {object}  map[string]string
// @Security     BearerAuth
// @Router       /projects/{id}/advance [post]
func (h *ProjectHandler) Advance(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req advanceRequest
	// тело необязательно
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	p, err := h.Service.Advance(c.Request.Context(), id, req.Confirm || queryBool(c, "confirm"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Retreat(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.Service.Retreat(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Terminate(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.Service.Terminate(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type technicianRequest struct {
	Name string `json:"technician_name"`
}

func (h *ProjectHandler) ReassignTechnician(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req technicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.Service.ReassignTechnician(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) SetCredentials(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.Service.SetCredentials(c.Request.Context(), id, creds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Выставить счёт
// @Description  down_payment/installation/handover = 40/40/20% от суммы котировки; custom берёт custom_amount
// @Tags         Invoices
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "ID проекта"
// @Param        body  body      services.IssueRequest  true  "тип счёта"
// @Success      201   {object}  models.Invoice
// @Failure      400   {object}  map[string]string
// @Security     BearerAuth
// @Router       /projects/{id}/invoices [post]
func (h *ProjectHandler) IssueInvoice(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req services.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.Invoices.Issue(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *ProjectHandler) ListInvoices(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	list, err := h.Invoices.ListByProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
