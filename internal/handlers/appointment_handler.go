package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/httpresp"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	ucAppointment "github.com/BruksfildServices01/barber-settlement/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create     *ucAppointment.CreateBooking
	list       *ucAppointment.ListByStatus
	approve    *ucAppointment.ApproveAppointment
	reject     *ucAppointment.RejectAppointment
	review     *ucAppointment.SendToReview
	attendance *ucAppointment.MarkAttendance
	noShow     *ucAppointment.MarkNoShow
	complete   *ucAppointment.CompleteAppointment
	photo      *ucAppointment.AttachPhoto
}

func NewAppointmentHandler(
	create *ucAppointment.CreateBooking,
	list *ucAppointment.ListByStatus,
	approve *ucAppointment.ApproveAppointment,
	reject *ucAppointment.RejectAppointment,
	review *ucAppointment.SendToReview,
	attendance *ucAppointment.MarkAttendance,
	noShow *ucAppointment.MarkNoShow,
	complete *ucAppointment.CompleteAppointment,
	photo *ucAppointment.AttachPhoto,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:     create,
		list:       list,
		approve:    approve,
		reject:     reject,
		review:     review,
		attendance: attendance,
		noShow:     noShow,
		complete:   complete,
		photo:      photo,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	BarbershopID  uint   `json:"barbershop_id"`
	BarberID      uint   `json:"barber_id"`
	ClientName    string `json:"client_name" binding:"required"`
	ClientPhone   string `json:"client_phone" binding:"required"`
	ClientEmail   string `json:"client_email"`
	ProductIDs    []uint `json:"product_ids" binding:"required,min=1"`
	Date          string `json:"date" binding:"required"`
	Time          string `json:"time" binding:"required"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type CompleteAppointmentRequest struct {
	Notes          string `json:"notes"`
	BeforePhotoURL string `json:"before_photo_url"`
	AfterPhotoURL  string `json:"after_photo_url"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	// Sem barbearia explícita vale a do usuário logado
	if req.BarbershopID == 0 {
		req.BarbershopID = actor.BarbershopID
	}
	// Barbeiro agenda para si mesmo por padrão
	if req.BarberID == 0 && actor.Role == role.Barber {
		req.BarberID = actor.ID
	}

	ap, err := h.create.Execute(c.Request.Context(), actor, ucAppointment.CreateBookingInput{
		BarbershopID:  req.BarbershopID,
		BarberID:      req.BarberID,
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		ProductIDs:    req.ProductIDs,
		Date:          req.Date,
		Time:          req.Time,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// LIST BY STATUS
// ======================================================

func (h *AppointmentHandler) ListByStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	status, err := domain.ParseStatus(c.Query("status"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	barbershopID := actor.BarbershopID
	shopQuery, ok := optionalUintQuery(c, "barbershop_id")
	if !ok {
		return
	}
	if shopQuery != nil {
		barbershopID = *shopQuery
	}

	list, err := h.list.Execute(c.Request.Context(), actor, barbershopID, status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, list)
}

// ======================================================
// STATE MACHINE
// ======================================================

func (h *AppointmentHandler) Approve(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req NotesRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.approve.Execute(c.Request.Context(), id, actor, req.Notes)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Reject(c *gin.Context) {
	h.withReason(c, h.reject.Execute)
}

func (h *AppointmentHandler) Review(c *gin.Context) {
	h.withReason(c, h.review.Execute)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	h.withReason(c, h.noShow.Execute)
}

func (h *AppointmentHandler) Attendance(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.attendance.Execute(c.Request.Context(), id, actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CompleteAppointmentRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.complete.Execute(c.Request.Context(), id, actor, ucAppointment.CompleteInput{
		Notes:          req.Notes,
		BeforePhotoURL: req.BeforePhotoURL,
		AfterPhotoURL:  req.AfterPhotoURL,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) withReason(
	c *gin.Context,
	run func(ctx context.Context, id uint, actor role.Actor, reason string) (*models.Appointment, error),
) {
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

	ap, err := run(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}

// ======================================================
// PHOTOS
// ======================================================

func (h *AppointmentHandler) UploadPhoto(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	kind, err := ucAppointment.ParsePhotoKind(c.Query("kind"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	f, ok := formImage(c, "image")
	if !ok {
		return
	}
	if f == nil {
		httperr.BadRequest(c, "image_required", "Envie a imagem no campo 'image'.")
		return
	}
	defer f.Close()

	ap, err := h.photo.Execute(c.Request.Context(), id, actor, kind, f)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}
