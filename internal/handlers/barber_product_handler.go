package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/httpresp"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

// BarberProductHandler manages the service catalogue bookings are priced
// from. Prices are stored as exact decimals.
type BarberProductHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewBarberProductHandler(db *gorm.DB, audit *audit.Dispatcher) *BarberProductHandler {
	return &BarberProductHandler{db: db, audit: audit}
}

// --------- Requests ---------

type CreateBarberProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	DurationMin int             `json:"duration_min" binding:"required,min=1"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

type UpdateBarberProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	DurationMin *int             `json:"duration_min,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

func validPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.Equal(p.Round(2))
}

// --------- Handlers ---------

func (h *BarberProductHandler) List(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	activeStr := strings.TrimSpace(c.Query("active")) // "true", "false" ou vazio

	q := h.db.Where("barbershop_id = ?", actor.BarbershopID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	switch activeStr {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	var products []models.BarberProduct
	if err := q.Order("id ASC").Find(&products).Error; err != nil {
		httperr.Internal(c, "failed_to_list_products", "Erro ao listar serviços.")
		return
	}

	httpresp.List(c, products)
}

func (h *BarberProductHandler) Create(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req CreateBarberProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}
	if !validPrice(req.Price) {
		httperr.BadRequest(c, "invalid_price", "Preço inválido.")
		return
	}

	product := models.BarberProduct{
		BarbershopID: actor.BarbershopID,
		Name:         strings.TrimSpace(req.Name),
		DurationMin:  req.DurationMin,
		Price:        req.Price,
		Active:       true,
		Category:     strings.ToLower(req.Category),
	}

	if err := h.db.Create(&product).Error; err != nil {
		httperr.Internal(c, "failed_to_create_product", "Erro ao criar o serviço.")
		return
	}

	h.audit.Dispatch(audit.ActorEvent(actor, "product_created", "product", product.ID, gin.H{
		"name":  product.Name,
		"price": product.Price,
	}))

	httpresp.Created(c, product)
}

func (h *BarberProductHandler) Update(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var product models.BarberProduct
	if err := h.db.
		Where("id = ? AND barbershop_id = ?", id, actor.BarbershopID).
		First(&product).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "product_not_found", "Serviço não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_get_product", "Erro ao buscar o serviço.")
		return
	}

	var req UpdateBarberProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.DurationMin != nil {
		if *req.DurationMin < 1 {
			httperr.BadRequest(c, "invalid_duration", "Duração inválida.")
			return
		}
		product.DurationMin = *req.DurationMin
	}
	if req.Price != nil {
		if !validPrice(*req.Price) {
			httperr.BadRequest(c, "invalid_price", "Preço inválido.")
			return
		}
		product.Price = *req.Price
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := h.db.Save(&product).Error; err != nil {
		httperr.Internal(c, "failed_to_update_product", "Erro ao salvar o serviço.")
		return
	}

	h.audit.Dispatch(audit.ActorEvent(actor, "product_updated", "product", product.ID, req))

	c.JSON(http.StatusOK, product)
}
