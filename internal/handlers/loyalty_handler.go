package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/loyalty"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	ucLoyalty "github.com/BruksfildServices01/barber-settlement/internal/usecase/loyalty"
)

type LoyaltyHandler struct {
	account *ucLoyalty.GetAccount
	accrue  *ucLoyalty.Accrue
	redeem  *ucLoyalty.Redeem
	bonus   *ucLoyalty.GrantBonus
}

func NewLoyaltyHandler(
	account *ucLoyalty.GetAccount,
	accrue *ucLoyalty.Accrue,
	redeem *ucLoyalty.Redeem,
	bonus *ucLoyalty.GrantBonus,
) *LoyaltyHandler {
	return &LoyaltyHandler{
		account: account,
		accrue:  accrue,
		redeem:  redeem,
		bonus:   bonus,
	}
}

// --------- Requests ---------

type RedeemRequest struct {
	Points int64 `json:"points" binding:"required"`
}

type BonusRequest struct {
	Kind       string `json:"kind" binding:"required"`
	ReferredID uint   `json:"referred_id"`
}

// --------- Handlers ---------

func (h *LoyaltyHandler) Account(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	clientID, ok := idParam(c, "id")
	if !ok {
		return
	}

	view, err := h.account.Execute(c.Request.Context(), clientID, actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Accrue credits a completed appointment to its client.
func (h *LoyaltyHandler) Accrue(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	appointmentID, ok := idParam(c, "id")
	if !ok {
		return
	}

	res, err := h.accrue.Execute(c.Request.Context(), appointmentID, actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	clientID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Informe a quantidade de pontos.")
		return
	}

	acc, err := h.redeem.Execute(c.Request.Context(), clientID, req.Points, actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (h *LoyaltyHandler) Bonus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	clientID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req BonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Informe o tipo de bônus.")
		return
	}

	kind, err := loyalty.ParseBonus(req.Kind)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	acc, err := h.bonus.Execute(c.Request.Context(), clientID, ucLoyalty.BonusInput{
		Kind:       kind,
		ReferredID: req.ReferredID,
	}, actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}
