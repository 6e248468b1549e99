package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casasmart/internal/pdf"
	"casasmart/internal/services"
)

// PortalHandler serves the customer dashboard; every call is scoped by the phone in the token.
type PortalHandler struct {
	Service *services.PortalService
	Gen     pdf.Generator
}

func NewPortalHandler(service *services.PortalService, gen pdf.Generator) *PortalHandler {
	return &PortalHandler{Service: service, Gen: gen}
}

// @Summary      Кабинет клиента
// @Tags         Portal
// @Produce      json
// @Success      200  {object}  services.Dashboard
// @Security     BearerAuth
// @Router       /portal/dashboard [get]
func (h *PortalHandler) Dashboard(c *gin.Context) {
	d, err := h.Service.Dashboard(c.Request.Context(), callerPhone(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *PortalHandler) ListProposals(c *gin.Context) {
	list, err := h.Service.ListProposals(c.Request.Context(), callerPhone(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PortalHandler) GetProposal(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	q, err := h.Service.GetProposal(c.Request.Context(), callerPhone(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// @Summary      Клиент принимает предложение
// @Tags         Portal
// @Produce      json
// @Param        id   path      string  true  "ID котировки"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Security     BearerAuth
// @Router       /portal/proposals/{id}/accept [post]
func (h *PortalHandler) AcceptProposal(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	q, p, err := h.Service.AcceptProposal(c.Request.Context(), callerPhone(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": q, "project": p})
}

func (h *PortalHandler) RejectProposal(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := h.Service.RejectProposal(c.Request.Context(), callerPhone(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *PortalHandler) ProposalPDF(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	q, err := h.Service.GetProposal(c.Request.Context(), callerPhone(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	writeQuotePDF(c, h.Gen, q)
}

func (h *PortalHandler) Vault(c *gin.Context) {
	list, err := h.Service.Vault(c.Request.Context(), callerPhone(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PortalHandler) Financials(c *gin.Context) {
	f, err := h.Service.Financials(c.Request.Context(), callerPhone(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *PortalHandler) InvoicePDF(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	inv, p, err := h.Service.InvoiceDocument(c.Request.Context(), callerPhone(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	writeInvoicePDF(c, h.Gen, inv, p)
}
