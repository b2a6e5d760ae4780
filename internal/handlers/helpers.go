package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/middleware"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

// --------------------------------------------------
// Contexto da requisição
// --------------------------------------------------

func actorOrAbort(c *gin.Context) (role.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		httperr.Unauthorized(c, "user_not_in_context", "Sessão inválida.")
		return role.Actor{}, false
	}
	return actor, true
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return 0, false
	}
	return uint(id), true
}

// optionalUintQuery returns nil when the query parameter is absent.
func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Parâmetro inválido.")
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// --------------------------------------------------
// Datas no fuso da barbearia
// --------------------------------------------------

func parseDateIn(tz, dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, timezone.Location(tz))
}

func tooLarge(err error) bool {
	var tooBig *http.MaxBytesError
	return errors.As(err, &tooBig)
}

// formImage opens the optional multipart file field. A body cut by
// MaxBodySize is answered as image_too_large; ok is false once a response
// was written. A missing field gives a nil file and ok true.
func formImage(c *gin.Context, field string) (multipart.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		if tooLarge(err) {
			httperr.Respond(c, httperr.ErrBusiness("image_too_large"))
			return nil, false
		}
		return nil, true
	}
	f, err := header.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Imagem inválida.")
		return nil, false
	}
	return f, true
}
