package handler

import (
	disbursementapp "github.com/dms/backend/internal/application/disbursement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DisbursementHandler handles finance disbursement and manager deviation
// API endpoints
type DisbursementHandler struct {
	BaseHandler
	disbursementService *disbursementapp.Service
}

// NewDisbursementHandler creates a new DisbursementHandler
func NewDisbursementHandler(disbursementService *disbursementapp.Service) *DisbursementHandler {
	return &DisbursementHandler{disbursementService: disbursementService}
}

// CreateDisbursement records a sanctioned disbursement
func (h *DisbursementHandler) CreateDisbursement(c *gin.Context) {
	var req disbursementapp.CreateDisbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.disbursementService.CreateDisbursement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetDisbursement returns a single disbursement
func (h *DisbursementHandler) GetDisbursement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid disbursement ID format")
		return
	}

	resp, err := h.disbursementService.GetDisbursement(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListDisbursements returns a paginated disbursement list
func (h *DisbursementHandler) ListDisbursements(c *gin.Context) {
	var filter disbursementapp.ListDisbursementsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.disbursementService.ListDisbursements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Disbursements, resp.Total, resp.Page, resp.PageSize)
}

// UpdateReceived records the cumulative amount received from the provider
func (h *DisbursementHandler) UpdateReceived(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid disbursement ID format")
		return
	}

	var req disbursementapp.UpdateReceivedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.disbursementService.UpdateReceived(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// CancelDisbursement withdraws a disbursement before funds arrive
func (h *DisbursementHandler) CancelDisbursement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid disbursement ID format")
		return
	}

	var req disbursementapp.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.disbursementService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// AddDeviation records a manager deviation against a booking
func (h *DisbursementHandler) AddDeviation(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	var req disbursementapp.AddDeviationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.BookingID = bookingID

	resp, err := h.disbursementService.AddManagerDeviation(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetAuthority returns a manager's deviation allowance
func (h *DisbursementHandler) GetAuthority(c *gin.Context) {
	managerID, err := uuid.Parse(c.Param("managerId"))
	if err != nil {
		h.BadRequest(c, "Invalid manager ID format")
		return
	}

	resp, err := h.disbursementService.GetAuthority(c.Request.Context(), managerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListBookingDeviations returns the deviations applied to a booking
func (h *DisbursementHandler) ListBookingDeviations(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	resp, err := h.disbursementService.ListDeviationsByBooking(c.Request.Context(), bookingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetFinanceSummary returns the computed finance position of a booking
func (h *DisbursementHandler) GetFinanceSummary(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	resp, err := h.disbursementService.GetFinanceSummary(c.Request.Context(), bookingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers disbursement and deviation routes
func (h *DisbursementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	disbursements := rg.Group("/disbursements")
	{
		disbursements.GET("", h.ListDisbursements)
		disbursements.GET("/:id", h.GetDisbursement)
		disbursements.POST("", h.CreateDisbursement)
		disbursements.POST("/:id/received", h.UpdateReceived)
		disbursements.POST("/:id/cancel", h.CancelDisbursement)
	}

	rg.GET("/deviations/authority/:managerId", h.GetAuthority)

	rg.POST("/bookings/:id/deviations", h.AddDeviation)
	rg.GET("/bookings/:id/deviations", h.ListBookingDeviations)
	rg.GET("/bookings/:id/finance-summary", h.GetFinanceSummary)
}
