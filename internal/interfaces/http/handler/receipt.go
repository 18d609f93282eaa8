package handler

import (
	"github.com/dms/backend/internal/application/allocation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReceiptHandler handles on-account receipt and allocation API endpoints
type ReceiptHandler struct {
	BaseHandler
	allocationService *allocation.Service
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(allocationService *allocation.Service) *ReceiptHandler {
	return &ReceiptHandler{allocationService: allocationService}
}

// CreateReceipt records a new on-account receipt
func (h *ReceiptHandler) CreateReceipt(c *gin.Context) {
	var req allocation.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.allocationService.CreateReceipt(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetReceipt returns a single receipt with its allocations
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID format")
		return
	}

	resp, err := h.allocationService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListReceipts returns a paginated receipt list
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	var filter allocation.ListReceiptsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.allocationService.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Receipts, resp.Total, resp.Page, resp.PageSize)
}

// Allocate applies an all-or-nothing allocation batch to a receipt.
// Clients may pass an Idempotency-Key header to guard against retries.
func (h *ReceiptHandler) Allocate(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID format")
		return
	}

	var req allocation.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	resp, err := h.allocationService.Allocate(c.Request.Context(), receiptID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Deallocate reverses a single allocation on a receipt
func (h *ReceiptHandler) Deallocate(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID format")
		return
	}

	allocationID, err := uuid.Parse(c.Param("allocationId"))
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID format")
		return
	}

	var req allocation.DeallocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.allocationService.Deallocate(c.Request.Context(), receiptID, allocationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers receipt routes
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receipts := rg.Group("/receipts")
	{
		receipts.GET("", h.ListReceipts)
		receipts.GET("/:id", h.GetReceipt)
		receipts.POST("", h.CreateReceipt)
		receipts.POST("/:id/allocations", h.Allocate)
		receipts.DELETE("/:id/allocations/:allocationId", h.Deallocate)
	}
}
