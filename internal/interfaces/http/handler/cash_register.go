package handler

import (
	"context"
	"time"

	appcash "github.com/erp/pos/internal/application/cashregister"
	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CashRegisterService is the branch ledger as used over HTTP
type CashRegisterService interface {
	RecordTransaction(ctx context.Context, in appcash.RecordTransactionInput) (*appcash.TransactionResponse, error)
	RecordSettlement(ctx context.Context, in appcash.RecordTransactionInput) (*appcash.TransactionResponse, error)
	GetCurrentBalance(ctx context.Context, tenantID, branchID uuid.UUID) (*appcash.BalanceResponse, error)
	GetTransaction(ctx context.Context, tenantID, id uuid.UUID) (*appcash.TransactionResponse, error)
	ListTransactions(ctx context.Context, tenantID, branchID uuid.UUID, f appcash.TransactionListFilter) (*shared.Paginated[appcash.TransactionResponse], error)
	VerifyChain(ctx context.Context, tenantID, branchID uuid.UUID) (*appcash.ChainReportResponse, error)
}

// CashRegisterHandler handles the branch cash ledger endpoints
type CashRegisterHandler struct {
	BaseHandler
	service CashRegisterService
}

// NewCashRegisterHandler creates a new CashRegisterHandler
func NewCashRegisterHandler(service CashRegisterService) *CashRegisterHandler {
	return &CashRegisterHandler{service: service}
}

// RecordTransactionRequest is a manual cash movement. Amount is signed
// only for ADJUSTMENT.
type RecordTransactionRequest struct {
	Type          string  `json:"type" binding:"required,oneof=DEPOSIT WITHDRAWAL TRANSFER ADJUSTMENT"`
	Amount        float64 `json:"amount" binding:"required"`
	Description   string  `json:"description" binding:"max=500"`
	ReferenceType string  `json:"reference_type" binding:"omitempty,oneof=SHIFT ORDER PAYMENT MANUAL"`
	ReferenceID   string  `json:"reference_id" binding:"omitempty,uuid"`
	ShiftID       string  `json:"shift_id" binding:"omitempty,uuid"`
}

// RecordSettlementRequest posts the cash part of a sale or refund
type RecordSettlementRequest struct {
	Type          string  `json:"type" binding:"required,oneof=SALE REFUND"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	ShiftID       string  `json:"shift_id" binding:"required,uuid"`
	ReferenceType string  `json:"reference_type" binding:"omitempty,oneof=ORDER PAYMENT"`
	ReferenceID   string  `json:"reference_id" binding:"omitempty,uuid"`
	Description   string  `json:"description" binding:"max=500"`
}

// ListTransactionsQuery filters the ledger
type ListTransactionsQuery struct {
	ShiftID  string     `form:"shift_id" binding:"omitempty,uuid"`
	Type     string     `form:"type" binding:"omitempty,oneof=OPENING SALE REFUND DEPOSIT WITHDRAWAL TRANSFER SHIFT_CLOSE ADJUSTMENT"`
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RecordTransaction godoc
// @Summary      Record a manual cash movement
// @Tags         cash-register
// @Param        request body RecordTransactionRequest true "Movement"
// @Success      201 {object} dto.Response
// @Failure      422 {object} dto.Response "INSUFFICIENT_CASH_BALANCE"
// @Router       /cash-register/transactions [post]
func (h *CashRegisterHandler) RecordTransaction(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	userID := id.UserID
	resp, err := h.service.RecordTransaction(c.Request.Context(), appcash.RecordTransactionInput{
		TenantID:      id.TenantID,
		BranchID:      id.BranchID,
		UserID:        &userID,
		Type:          cashregister.TransactionType(req.Type),
		Amount:        toDecimal(req.Amount),
		Description:   req.Description,
		ReferenceKind: req.ReferenceType,
		ReferenceID:   parseUUIDPtr(req.ReferenceID),
		ShiftID:       parseUUIDPtr(req.ShiftID),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecordSettlement godoc
// @Summary      Post a cash sale or refund against an open shift
// @Tags         cash-register
// @Param        request body RecordSettlementRequest true "Settlement"
// @Success      201 {object} dto.Response
// @Router       /cash-register/settlements [post]
func (h *CashRegisterHandler) RecordSettlement(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req RecordSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	userID := id.UserID
	resp, err := h.service.RecordSettlement(c.Request.Context(), appcash.RecordTransactionInput{
		TenantID:      id.TenantID,
		BranchID:      id.BranchID,
		UserID:        &userID,
		Type:          cashregister.TransactionType(req.Type),
		Amount:        toDecimal(req.Amount),
		Description:   req.Description,
		ReferenceKind: req.ReferenceType,
		ReferenceID:   parseUUIDPtr(req.ReferenceID),
		ShiftID:       parseUUIDPtr(req.ShiftID),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetBalance godoc
// @Summary      Current register balance of the caller's branch
// @Tags         cash-register
// @Success      200 {object} dto.Response
// @Router       /cash-register/balance [get]
func (h *CashRegisterHandler) GetBalance(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	resp, err := h.service.GetCurrentBalance(c.Request.Context(), id.TenantID, id.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListTransactions godoc
// @Summary      List ledger rows of the caller's branch
// @Tags         cash-register
// @Success      200 {object} dto.Response
// @Router       /cash-register/transactions [get]
func (h *CashRegisterHandler) ListTransactions(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var q ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.service.ListTransactions(c.Request.Context(), id.TenantID, id.BranchID, appcash.TransactionListFilter{
		ShiftID:  parseUUIDPtr(q.ShiftID),
		Type:     q.Type,
		From:     q.From,
		To:       q.To,
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderDir: q.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// GetTransaction godoc
// @Summary      Get one ledger row
// @Tags         cash-register
// @Param        id path string true "Transaction ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /cash-register/transactions/{id} [get]
func (h *CashRegisterHandler) GetTransaction(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}
	resp, err := h.service.GetTransaction(c.Request.Context(), id.TenantID, uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// VerifyChain godoc
// @Summary      Verify the balance chain of the caller's branch
// @Tags         cash-register
// @Success      200 {object} dto.Response
// @Router       /cash-register/verify [get]
func (h *CashRegisterHandler) VerifyChain(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	resp, err := h.service.VerifyChain(c.Request.Context(), id.TenantID, id.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
