package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/httpresp"
	"github.com/BruksfildServices01/barber-settlement/internal/middleware"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	ucPayment "github.com/BruksfildServices01/barber-settlement/internal/usecase/payment"
)

type ClientHandler struct {
	db         *gorm.DB
	clearFlags *ucPayment.ClearSecurityFlags
}

func NewClientHandler(db *gorm.DB, clearFlags *ucPayment.ClearSecurityFlags) *ClientHandler {
	return &ClientHandler{db: db, clearFlags: clearFlags}
}

// ======================================================
// LIST CLIENTS
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))
	blacklisted := strings.TrimSpace(c.Query("blacklisted")) // "true", "false" ou vazio

	q := h.db.Where("barbershop_id = ?", barbershopID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	if blacklisted == "true" {
		q = q.Where("security_blacklisted = ?", true)
	} else if blacklisted == "false" {
		q = q.Where("security_blacklisted = ?", false)
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Find(&clients).Error; err != nil {

		httperr.Internal(c, "failed_to_list_clients", "Erro ao listar clientes.")
		return
	}

	httpresp.List(c, clients)
}

// ======================================================
// CLEAR SECURITY FLAGS (ADMIN)
// ======================================================
func (h *ClientHandler) ClearSecurityFlags(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	clientID, ok := idParam(c, "id")
	if !ok {
		return
	}

	client, err := h.clearFlags.Execute(c.Request.Context(), clientID, actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}
