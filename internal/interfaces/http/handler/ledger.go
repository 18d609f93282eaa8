package handler

import (
	ledgerapp "github.com/dms/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles ledger entry API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.Service
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.Service) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// CreateEntry posts a manual ledger entry against a booking
func (h *LedgerHandler) CreateEntry(c *gin.Context) {
	var req ledgerapp.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.ledgerService.CreateEntry(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetEntry returns a single ledger entry
func (h *LedgerHandler) GetEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	resp, err := h.ledgerService.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListEntries returns a paginated ledger entry list
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	var filter ledgerapp.ListEntriesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.ledgerService.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Entries, resp.Total, resp.Page, resp.PageSize)
}

// UpdateEntry patches a pending ledger entry
func (h *LedgerHandler) UpdateEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	var req ledgerapp.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.ledgerService.UpdateEntry(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ApproveEntry approves a pending ledger entry
func (h *LedgerHandler) ApproveEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	var req ledgerapp.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.ledgerService.Approve(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RejectEntry rejects a pending ledger entry and releases its amount
func (h *LedgerHandler) RejectEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	var req ledgerapp.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.ledgerService.Reject(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetBookingLedger returns the full ledger history and derived totals
// for a booking
func (h *LedgerHandler) GetBookingLedger(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	resp, err := h.ledgerService.GetBookingLedger(c.Request.Context(), bookingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers ledger entry routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/ledger-entries")
	{
		entries.GET("", h.ListEntries)
		entries.GET("/:id", h.GetEntry)
		entries.POST("", h.CreateEntry)
		entries.PATCH("/:id", h.UpdateEntry)
		entries.POST("/:id/approve", h.ApproveEntry)
		entries.POST("/:id/reject", h.RejectEntry)
	}

	rg.GET("/bookings/:id/ledger-entries", h.GetBookingLedger)
}
