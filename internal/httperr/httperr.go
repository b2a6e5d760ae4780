package httperr

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// ======================================================
// KIND → RESPONSE
// ======================================================

var kindMessages = map[string]struct {
	status  int
	message string
}{
	CodeForbidden:          {http.StatusForbidden, "Permissões insuficientes para esta operação."},
	CodeInvalidTransition:  {http.StatusConflict, "Não é possível alterar o status deste agendamento."},
	CodeReasonRequired:     {http.StatusBadRequest, "Informe o motivo da rejeição."},
	CodeInsufficientPoints: {http.StatusUnprocessableEntity, "Pontos insuficientes para o resgate."},
	"client_blacklisted":   {http.StatusForbidden, "Cliente bloqueado. Procure a recepção."},
	"time_conflict":        {http.StatusConflict, "Conflito de horário."},
	"image_too_large":      {http.StatusRequestEntityTooLarge, "Imagem grande demais."},
}

// Respond writes the response matching the kind of err. Store failures and
// unknown errors are logged and answered with 500.
func Respond(c *gin.Context, err error) {
	code := BusinessCode(err)
	if code == "" {
		log.Printf("request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		Internal(c, "internal_error", "Erro interno. Tente novamente.")
		return
	}

	if km, ok := kindMessages[code]; ok {
		Write(c, km.status, code, km.message)
		return
	}

	if strings.HasSuffix(code, "_not_found") {
		NotFound(c, code, "Registro não encontrado.")
		return
	}

	BadRequest(c, code, "Operação inválida.")
}
