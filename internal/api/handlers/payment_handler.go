package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/api/dto"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/payment"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/errors"
)

// ListMyPayments handles GET /api/v1/payments
func (h *Handlers) ListMyPayments(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	payments, err := h.Payments.ListByUser(c.Request.Context(), id.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

// ListCompanyPayments handles GET /api/v1/payments/company, admin only.
func (h *Handlers) ListCompanyPayments(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	if !id.IsAdmin {
		h.respondError(c, errors.Forbidden("company payment history requires an admin account", nil))
		return
	}

	payments, err := h.Payments.ListByCompany(c.Request.Context(), id.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

// CompanyPaymentSummary handles GET /api/v1/payments/company/summary, admin only.
func (h *Handlers) CompanyPaymentSummary(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	if !id.IsAdmin {
		h.respondError(c, errors.Forbidden("company payment summary requires an admin account", nil))
		return
	}

	summary, err := h.Payments.Summary(c.Request.Context(), id.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetPayment handles GET /api/v1/payments/:id
func (h *Handlers) GetPayment(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.Payments.Get(c.Request.Context(), paymentID)
	if err != nil {
		if stderrors.Is(err, payment.ErrPaymentNotFound) {
			h.respondError(c, errors.NotFound("payment not found", err))
			return
		}
		h.respondError(c, err)
		return
	}
	// payer or a company admin only
	if p.UserID != id.UserID && !(id.IsAdmin && p.CompanyID == id.CompanyID) {
		h.respondError(c, errors.NotFound("payment not found", payment.ErrPaymentNotFound))
		return
	}
	c.JSON(http.StatusOK, p)
}

// RefundPayment handles POST /api/v1/payments/:id/refund, admin only.
func (h *Handlers) RefundPayment(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	if !id.IsAdmin {
		h.respondError(c, errors.Forbidden("refunds require an admin account", nil))
		return
	}
	paymentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid request payload", "details": err.Error()})
		return
	}

	// admins only act within their own company
	existing, err := h.Payments.Get(c.Request.Context(), paymentID)
	if err != nil {
		if stderrors.Is(err, payment.ErrPaymentNotFound) {
			h.respondError(c, errors.NotFound("payment not found", err))
			return
		}
		h.respondError(c, err)
		return
	}
	if existing.CompanyID != id.CompanyID {
		h.respondError(c, errors.NotFound("payment not found", payment.ErrPaymentNotFound))
		return
	}

	p, err := h.Payments.Refund(c.Request.Context(), paymentID, req.Amount, req.Reason, id.UserID)
	if err != nil {
		switch {
		case stderrors.Is(err, payment.ErrPaymentNotFound):
			h.respondError(c, errors.NotFound("payment not found", err))
		case stderrors.Is(err, payment.ErrNotRefundable):
			h.respondError(c, errors.InvalidState("only completed payments can be refunded", err))
		default:
			h.respondError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, p)
}
