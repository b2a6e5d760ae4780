package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/middleware"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

type BarbershopHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewBarbershopHandler(db *gorm.DB, audit *audit.Dispatcher) *BarbershopHandler {
	return &BarbershopHandler{db: db, audit: audit}
}

type UpdateBarbershopConfigRequest struct {
	MinAdvanceMinutes     *int             `json:"min_advance_minutes"`
	Timezone              *string          `json:"timezone"`
	PaymentRequired       *bool            `json:"payment_required"`
	CommissionRate        *decimal.Decimal `json:"commission_rate"`
	FalseVoucherThreshold *int             `json:"false_voucher_threshold"`
}

func (h *BarbershopHandler) GetMeBarbershop(c *gin.Context) {
	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_get_barbershop", "Erro ao buscar dados da barbearia.")
		return
	}

	c.JSON(http.StatusOK, shop)
}

// UpdateMeBarbershop changes branch settings. Admin only (enforced by route).
func (h *BarbershopHandler) UpdateMeBarbershop(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var shop models.Barbershop
	if err := h.db.First(&shop, actor.BarbershopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_get_barbershop", "Erro ao buscar dados da barbearia.")
		return
	}

	var req UpdateBarbershopConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Antecedência mínima deve ser zero ou positiva (em minutos).")
			return
		}
		shop.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Fuso horário inválido.")
			return
		}
		shop.Timezone = *req.Timezone
	}

	if req.PaymentRequired != nil {
		shop.PaymentRequired = *req.PaymentRequired
	}

	if req.CommissionRate != nil {
		if err := commission.ValidateRate(*req.CommissionRate); err != nil {
			httperr.Respond(c, err)
			return
		}
		rate := *req.CommissionRate
		shop.CommissionRate = &rate
	}

	if req.FalseVoucherThreshold != nil {
		if *req.FalseVoucherThreshold < 1 {
			httperr.BadRequest(c, "invalid_false_voucher_threshold", "O limite de comprovantes falsos deve ser ao menos 1.")
			return
		}
		threshold := *req.FalseVoucherThreshold
		shop.FalseVoucherThreshold = &threshold
	}

	if err := h.db.Save(&shop).Error; err != nil {
		httperr.Internal(c, "failed_to_update_barbershop", "Erro ao salvar as configurações da barbearia.")
		return
	}

	h.audit.Dispatch(audit.ActorEvent(actor, "barbershop_settings_updated", "barbershop", shop.ID, req))

	c.JSON(http.StatusOK, shop)
}
