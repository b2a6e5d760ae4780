package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	ucPayment "github.com/BruksfildServices01/barber-settlement/internal/usecase/payment"
)

// ======================================================
// HANDLER
// ======================================================

type PaymentHandler struct {
	approve *ucPayment.ApprovePayment
	reject  *ucPayment.RejectPayment
	voucher *ucPayment.SubmitVoucher
	gateway *ucPayment.GatewayStatus
}

func NewPaymentHandler(
	approve *ucPayment.ApprovePayment,
	reject *ucPayment.RejectPayment,
	voucher *ucPayment.SubmitVoucher,
	gateway *ucPayment.GatewayStatus,
) *PaymentHandler {
	return &PaymentHandler{
		approve: approve,
		reject:  reject,
		voucher: voucher,
		gateway: gateway,
	}
}

// ======================================================
// VERIFICAÇÃO
// ======================================================

func (h *PaymentHandler) Approve(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.approve.Execute(c.Request.Context(), id, actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *PaymentHandler) Reject(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req ReasonRequest
	_ = c.ShouldBindJSON(&req)

	res, err := h.reject.Execute(c.Request.Context(), id, req.Reason, actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointment":       res.Appointment,
		"security_flags":    res.Client.Security,
		"fraud_indicative":  res.FraudIndicative,
		"newly_blacklisted": res.NewlyBlacklisted,
	})
}

// ======================================================
// COMPROVANTE
// ======================================================

type VoucherRequest struct {
	VoucherNumber string `json:"voucher_number" form:"voucher_number"`
	VoucherURL    string `json:"voucher_url" form:"voucher_url"`
	PaymentMethod string `json:"payment_method" form:"payment_method"`
}

// SubmitVoucher accepts JSON or a multipart form with an optional "image".
func (h *PaymentHandler) SubmitVoucher(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req VoucherRequest
	if err := c.ShouldBind(&req); err != nil {
		if tooLarge(err) {
			httperr.Respond(c, httperr.ErrBusiness("image_too_large"))
			return
		}
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	in := ucPayment.VoucherInput{
		Number:        req.VoucherNumber,
		URL:           req.VoucherURL,
		PaymentMethod: req.PaymentMethod,
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		f, ok := formImage(c, "image")
		if !ok {
			return
		}
		if f != nil {
			defer f.Close()
			in.Image = f
		}
	}

	ap, err := h.voucher.Execute(c.Request.Context(), id, actor, in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

// ======================================================
// GATEWAY
// ======================================================

func (h *PaymentHandler) Gateway(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	report, err := h.gateway.Execute(c.Request.Context(), id, actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
