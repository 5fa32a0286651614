package handler

import (
	"context"
	"time"

	appshift "github.com/erp/pos/internal/application/shift"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShiftService is the shift lifecycle as used over HTTP
type ShiftService interface {
	Open(ctx context.Context, in appshift.OpenShiftInput) (*appshift.ShiftResponse, error)
	Close(ctx context.Context, in appshift.CloseShiftInput) (*appshift.ShiftResponse, error)
	ForceClose(ctx context.Context, in appshift.ForceCloseShiftInput) (*appshift.ShiftResponse, error)
	Handover(ctx context.Context, in appshift.HandoverShiftInput) (*appshift.ShiftResponse, error)
	UpdateActivity(ctx context.Context, tenantID, shiftID uuid.UUID) error
	GetWarnings(ctx context.Context, tenantID, branchID, userID uuid.UUID) (*appshift.WarningResponse, error)
	GetCurrentShift(ctx context.Context, tenantID, branchID, userID uuid.UUID) (*appshift.ShiftResponse, error)
	GetShift(ctx context.Context, tenantID, shiftID uuid.UUID) (*appshift.ShiftResponse, error)
	ListShifts(ctx context.Context, tenantID uuid.UUID, f appshift.ShiftListFilter) (*shared.Paginated[appshift.ShiftResponse], error)
	GetAuditTrail(ctx context.Context, tenantID, shiftID uuid.UUID) ([]appshift.AuditLogResponse, error)
	Delete(ctx context.Context, tenantID, shiftID uuid.UUID) error
}

// ShiftHandler handles shift-related API endpoints
type ShiftHandler struct {
	BaseHandler
	service ShiftService
}

// NewShiftHandler creates a new ShiftHandler
func NewShiftHandler(service ShiftService) *ShiftHandler {
	return &ShiftHandler{service: service}
}

// OpenShiftRequest opens a shift for the authenticated user
type OpenShiftRequest struct {
	OpeningBalance float64 `json:"opening_balance"`
}

// CloseShiftRequest closes the caller's open shift
type CloseShiftRequest struct {
	ClosingBalance float64 `json:"closing_balance"`
	Notes          string  `json:"notes" binding:"max=1000"`
}

// ForceCloseShiftRequest closes any shift of the tenant
type ForceCloseShiftRequest struct {
	Reason        string   `json:"reason" binding:"required,max=500"`
	ActualBalance *float64 `json:"actual_balance"`
}

// HandoverShiftRequest hands the caller's shift to another user
type HandoverShiftRequest struct {
	ToUserID       string  `json:"to_user_id" binding:"required,uuid"`
	CurrentBalance float64 `json:"current_balance"`
	Notes          string  `json:"notes" binding:"max=1000"`
}

// ListShiftsQuery filters the shift list
type ListShiftsQuery struct {
	BranchID string     `form:"branch_id" binding:"omitempty,uuid"`
	UserID   string     `form:"user_id" binding:"omitempty,uuid"`
	IsClosed *bool      `form:"is_closed"`
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string     `form:"order_by" binding:"omitempty,oneof=opened_at closed_at last_activity_at created_at"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Open godoc
// @Summary      Open a shift
// @Tags         shifts
// @Param        request body OpenShiftRequest true "Opening float"
// @Success      201 {object} dto.Response
// @Failure      409 {object} dto.Response "SHIFT_ALREADY_OPEN"
// @Router       /shifts/open [post]
func (h *ShiftHandler) Open(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.Open(c.Request.Context(), appshift.OpenShiftInput{
		TenantID:       id.TenantID,
		BranchID:       id.BranchID,
		UserID:         id.UserID,
		OpeningBalance: toDecimal(req.OpeningBalance),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Close godoc
// @Summary      Close the caller's open shift
// @Tags         shifts
// @Param        request body CloseShiftRequest true "Counted cash"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response "SHIFT_NOT_FOUND"
// @Router       /shifts/close [post]
func (h *ShiftHandler) Close(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.Close(c.Request.Context(), appshift.CloseShiftInput{
		TenantID:       id.TenantID,
		BranchID:       id.BranchID,
		UserID:         id.UserID,
		ClosingBalance: toDecimal(req.ClosingBalance),
		Notes:          req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ForceClose godoc
// @Summary      Force-close a shift (admin or manager)
// @Tags         shifts
// @Param        id path string true "Shift ID"
// @Param        request body ForceCloseShiftRequest true "Reason and optional counted cash"
// @Success      200 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Router       /shifts/{id}/force-close [post]
func (h *ShiftHandler) ForceClose(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	shiftID, ok := h.shiftID(c)
	if !ok {
		return
	}
	var req ForceCloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID := id.UserID
	resp, err := h.service.ForceClose(c.Request.Context(), appshift.ForceCloseShiftInput{
		TenantID:      id.TenantID,
		ShiftID:       shiftID,
		Reason:        req.Reason,
		ActorID:       &actorID,
		ActorName:     id.Username,
		ActualBalance: toDecimalPtr(req.ActualBalance),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Handover godoc
// @Summary      Hand a shift over to another user
// @Tags         shifts
// @Param        id path string true "Shift ID"
// @Param        request body HandoverShiftRequest true "Target user and counted cash"
// @Success      200 {object} dto.Response
// @Router       /shifts/{id}/handover [post]
func (h *ShiftHandler) Handover(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	shiftID, ok := h.shiftID(c)
	if !ok {
		return
	}
	var req HandoverShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.Handover(c.Request.Context(), appshift.HandoverShiftInput{
		TenantID:       id.TenantID,
		ShiftID:        shiftID,
		FromUserID:     id.UserID,
		ToUserID:       uuid.MustParse(req.ToUserID),
		CurrentBalance: toDecimal(req.CurrentBalance),
		Notes:          req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetCurrent godoc
// @Summary      Current open shift of the caller, or null
// @Tags         shifts
// @Success      200 {object} dto.Response
// @Router       /shifts/current [get]
func (h *ShiftHandler) GetCurrent(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	resp, err := h.service.GetCurrentShift(c.Request.Context(), id.TenantID, id.BranchID, id.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetWarnings godoc
// @Summary      Warning level of the caller's open shift
// @Tags         shifts
// @Success      200 {object} dto.Response
// @Router       /shifts/warnings [get]
func (h *ShiftHandler) GetWarnings(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	resp, err := h.service.GetWarnings(c.Request.Context(), id.TenantID, id.BranchID, id.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateActivity godoc
// @Summary      Record activity on a shift
// @Tags         shifts
// @Param        id path string true "Shift ID"
// @Success      204
// @Router       /shifts/{id}/activity [post]
func (h *ShiftHandler) UpdateActivity(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	shiftID, ok := h.shiftID(c)
	if !ok {
		return
	}
	if err := h.service.UpdateActivity(c.Request.Context(), id.TenantID, shiftID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get godoc
// @Summary      Get a shift by ID
// @Tags         shifts
// @Param        id path string true "Shift ID"
// @Success      200 {object} dto.Response
// @Router       /shifts/{id} [get]
func (h *ShiftHandler) Get(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	shiftID, ok := h.shiftID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetShift(c.Request.Context(), id.TenantID, shiftID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List shifts of the tenant
// @Tags         shifts
// @Success      200 {object} dto.Response
// @Router       /shifts [get]
func (h *ShiftHandler) List(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var q ListShiftsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.service.ListShifts(c.Request.Context(), id.TenantID, appshift.ShiftListFilter{
		BranchID: parseUUIDPtr(q.BranchID),
		UserID:   parseUUIDPtr(q.UserID),
		IsClosed: q.IsClosed,
		From:     q.From,
		To:       q.To,
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// GetAuditLogs godoc
// @Summary      Monitor annotations of a shift
// @Tags         shifts
// @Param        id path string true "Shift ID"
// @Success      200 {object} dto.Response
// @Router       /shifts/{id}/audit-logs [get]
func (h *ShiftHandler) GetAuditLogs(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	shiftID, ok := h.shiftID(c)
	if !ok {
		return
	}
	logs, err := h.service.GetAuditTrail(c.Request.Context(), id.TenantID, shiftID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}

// Delete godoc
// @Summary      Shifts cannot be deleted
// @Tags         shifts
// @Param        id path string true "Shift ID"
// @Failure      405 {object} dto.Response "SHIFT_DELETE_NOT_ALLOWED"
// @Router       /shifts/{id} [delete]
func (h *ShiftHandler) Delete(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	shiftID, ok := h.shiftID(c)
	if !ok {
		return
	}
	h.HandleError(c, h.service.Delete(c.Request.Context(), id.TenantID, shiftID))
}

func (h *ShiftHandler) shiftID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid shift ID")
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}
