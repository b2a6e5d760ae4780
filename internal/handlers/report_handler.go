package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/infra/export"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
	ucReport "github.com/BruksfildServices01/barber-settlement/internal/usecase/report"
)

type ReportHandler struct {
	commissions *ucReport.CommissionReport
	clock       timezone.Clock
}

func NewReportHandler(commissions *ucReport.CommissionReport, clock timezone.Clock) *ReportHandler {
	return &ReportHandler{commissions: commissions, clock: clock}
}

// Commissions answers the JSON report. Without from/to it covers the
// current month.
func (h *ReportHandler) Commissions(c *gin.Context) {
	report, ok := h.build(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) CommissionsPDF(c *gin.Context) {
	report, ok := h.build(c)
	if !ok {
		return
	}

	title := "todas as unidades"
	if id := c.Query("barbershop_id"); id != "" {
		title = "unidade " + id
	}

	body, err := export.CommissionPDF(report, title)
	if err != nil {
		httperr.Internal(c, "pdf_failed", "Erro ao gerar o PDF.")
		return
	}

	filename := fmt.Sprintf("comissoes-%s.pdf", report.Period.Start.Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", body)
}

func (h *ReportHandler) build(c *gin.Context) (*commission.Report, bool) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return nil, false
	}

	barbershopID, ok := optionalUintQuery(c, "barbershop_id")
	if !ok {
		return nil, false
	}

	period, ok := h.period(c)
	if !ok {
		return nil, false
	}

	report, err := h.commissions.Execute(c.Request.Context(), actor, ucReport.Input{
		BarbershopID: barbershopID,
		Period:       period,
	})
	if err != nil {
		httperr.Respond(c, err)
		return nil, false
	}
	if report == nil {
		httperr.Forbidden(c, httperr.CodeForbidden, "Permissões insuficientes para esta operação.")
		return nil, false
	}
	return report, true
}

// period reads from/to as inclusive dates in the default timezone.
func (h *ReportHandler) period(c *gin.Context) (commission.Period, bool) {
	fromStr := c.Query("from")
	toStr := c.Query("to")

	if fromStr == "" && toStr == "" {
		return ucReport.MonthOf(h.clock.In(timezone.DefaultTimezone)), true
	}

	from, err := parseDateIn(timezone.DefaultTimezone, fromStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_period", "Período inválido.")
		return commission.Period{}, false
	}
	to, err := parseDateIn(timezone.DefaultTimezone, toStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_period", "Período inválido.")
		return commission.Period{}, false
	}

	return commission.Period{Start: from, End: to.AddDate(0, 0, 1)}, true
}
