package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/payment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/infra/repository"
	"github.com/BruksfildServices01/barber-settlement/internal/middleware"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-settlement/internal/usecase/appointment"
	ucPayment "github.com/BruksfildServices01/barber-settlement/internal/usecase/payment"
	ucReport "github.com/BruksfildServices01/barber-settlement/internal/usecase/report"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type testServer struct {
	repo *repository.MemoryRepository
	shop *models.Barbershop
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	repo := repository.NewMemoryRepository()
	repo.SetClock(func() time.Time { return fixedNow })
	shop := repo.AddBarbershop(models.Barbershop{Name: "Centro", Timezone: "UTC", PaymentRequired: true})
	return testServer{repo: repo, shop: shop}
}

func (s testServer) appointment(status domain.Status) *models.Appointment {
	client := s.repo.AddClient(models.Client{BarbershopID: s.shop.ID, Name: "Lucas", Phone: "11999990000"})
	return s.repo.AddAppointment(models.Appointment{
		BarbershopID:  s.shop.ID,
		BarberID:      7,
		ClientID:      client.ID,
		Status:        string(status),
		TotalPrice:    decimal.NewFromInt(80),
		PaymentMethod: "pix",
	})
}

// router mounts the handlers behind a stub that authenticates every request
// as actor. A nil actor leaves the request anonymous.
func (s testServer) router(actor *role.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	clock := timezone.Clock(func() time.Time { return fixedNow })

	appointments := NewAppointmentHandler(
		ucAppointment.NewCreateBooking(s.repo, nil, clock),
		ucAppointment.NewListByStatus(s.repo),
		ucAppointment.NewApproveAppointment(s.repo, nil, clock),
		ucAppointment.NewRejectAppointment(s.repo, nil, clock),
		ucAppointment.NewSendToReview(s.repo, nil, clock),
		ucAppointment.NewMarkAttendance(s.repo, nil, clock),
		ucAppointment.NewMarkNoShow(s.repo, nil, clock),
		ucAppointment.NewCompleteAppointment(s.repo, nil, clock),
		ucAppointment.NewAttachPhoto(s.repo, nil, nil),
	)
	payments := NewPaymentHandler(
		ucPayment.NewApprovePayment(s.repo, nil, clock),
		ucPayment.NewRejectPayment(s.repo, nil, clock, payment.DefaultFalseVoucherThreshold),
		ucPayment.NewSubmitVoucher(s.repo, nil, nil),
		ucPayment.NewGatewayStatus(s.repo, nil),
	)
	reports := NewReportHandler(ucReport.NewCommissionReport(s.repo, nil, commission.DefaultRate), clock)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.ContextActor, *actor)
			c.Set(middleware.ContextUserID, actor.ID)
			c.Set(middleware.ContextBarbershopID, actor.BarbershopID)
		}
		c.Next()
	})

	r.GET("/me/appointments", appointments.ListByStatus)
	r.PATCH("/me/appointments/:id/approve", appointments.Approve)
	r.PATCH("/me/appointments/:id/no-show", appointments.NoShow)
	r.POST("/me/appointments/:id/photos", appointments.UploadPhoto)
	r.PATCH("/me/payments/:id/reject", payments.Reject)
	r.GET("/me/payments/:id/gateway", payments.Gateway)
	r.GET("/me/reports/commissions", reports.Commissions)
	r.GET("/me/reports/commissions.pdf", reports.CommissionsPDF)

	return r
}

func (s testServer) actor(r role.Role) *role.Actor {
	return &role.Actor{ID: 3, BarbershopID: s.shop.ID, Name: "Marta", Role: r}
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"error_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", w.Body.String(), err)
	}
	return body.Code
}

func TestApproveMapsForbidden(t *testing.T) {
	s := newTestServer(t)
	ap := s.appointment(domain.StatusPending)

	w := do(s.router(s.actor(role.Reception)), http.MethodPatch, "/me/appointments/"+itoa(ap.ID)+"/approve", "")
	if w.Code != http.StatusForbidden || errorCode(t, w) != "forbidden" {
		t.Fatalf("expected 403 forbidden, got %d %s", w.Code, w.Body.String())
	}

	w = do(s.router(s.actor(role.BranchAdmin)), http.MethodPatch, "/me/appointments/"+itoa(ap.ID)+"/approve", `{"notes":"ok"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}

	var got models.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if got.Status != string(domain.StatusConfirmed) {
		t.Errorf("expected confirmed, got %s", got.Status)
	}
}

func TestTerminalAppointmentIsConflict(t *testing.T) {
	s := newTestServer(t)
	ap := s.appointment(domain.StatusCompleted)

	w := do(s.router(s.actor(role.BranchAdmin)), http.MethodPatch, "/me/appointments/"+itoa(ap.ID)+"/no-show", `{"reason":"faltou"}`)
	if w.Code != http.StatusConflict || errorCode(t, w) != "invalid_transition" {
		t.Errorf("expected 409 invalid_transition, got %d %s", w.Code, w.Body.String())
	}
}

func TestUnknownAppointmentIsNotFound(t *testing.T) {
	s := newTestServer(t)

	w := do(s.router(s.actor(role.BranchAdmin)), http.MethodPatch, "/me/appointments/999/approve", "")
	if w.Code != http.StatusNotFound || errorCode(t, w) != "appointment_not_found" {
		t.Errorf("expected 404 appointment_not_found, got %d %s", w.Code, w.Body.String())
	}
}

func TestInvalidIDAndMissingActor(t *testing.T) {
	s := newTestServer(t)

	w := do(s.router(s.actor(role.BranchAdmin)), http.MethodPatch, "/me/appointments/abc/approve", "")
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "invalid_id" {
		t.Errorf("expected 400 invalid_id, got %d %s", w.Code, w.Body.String())
	}

	w = do(s.router(nil), http.MethodPatch, "/me/appointments/1/approve", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without actor, got %d", w.Code)
	}
}

func TestRejectPaymentHTTP(t *testing.T) {
	s := newTestServer(t)
	ap := s.appointment(domain.StatusPendingPayment)
	r := s.router(s.actor(role.BranchAdmin))

	w := do(r, http.MethodPatch, "/me/payments/"+itoa(ap.ID)+"/reject", `{"reason":"  "}`)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "reason_required" {
		t.Fatalf("expected 400 reason_required, got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPatch, "/me/payments/"+itoa(ap.ID)+"/reject", `{"reason":"Comprovante editado"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}

	var body struct {
		Appointment     models.Appointment   `json:"appointment"`
		Flags           models.SecurityFlags `json:"security_flags"`
		FraudIndicative bool                 `json:"fraud_indicative"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Appointment.Status != string(domain.StatusCancelled) || !body.FraudIndicative {
		t.Errorf("unexpected result %+v", body)
	}
	if body.Flags.FalseVouchersCount != 1 || body.Flags.RejectedPaymentsCount != 1 {
		t.Errorf("unexpected flags %+v", body.Flags)
	}
}

func TestListByStatusRejectsUnknownStatus(t *testing.T) {
	s := newTestServer(t)

	w := do(s.router(s.actor(role.Reception)), http.MethodGet, "/me/appointments?status=paused", "")
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "invalid_status" {
		t.Errorf("expected 400 invalid_status, got %d %s", w.Code, w.Body.String())
	}

	s.appointment(domain.StatusPendingPayment)
	w = do(s.router(s.actor(role.Reception)), http.MethodGet, "/me/appointments?status=pending_payment", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}

	var body struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Total != 1 {
		t.Errorf("expected one pending payment, got %d", body.Total)
	}
}

func TestPhotoUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	ap := s.appointment(domain.StatusInProgress)

	w := do(s.router(s.actor(role.Barber)), http.MethodPost, "/me/appointments/"+itoa(ap.ID)+"/photos?kind=sideways", "")
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "invalid_photo_kind" {
		t.Errorf("expected 400 invalid_photo_kind, got %d %s", w.Code, w.Body.String())
	}

	w = do(s.router(s.actor(role.Barber)), http.MethodPost, "/me/appointments/"+itoa(ap.ID)+"/photos?kind=before", "")
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "image_required" {
		t.Errorf("expected 400 image_required, got %d %s", w.Code, w.Body.String())
	}
}

func TestGatewayNotApplicable(t *testing.T) {
	s := newTestServer(t)
	ap := s.appointment(domain.StatusPendingPayment)

	w := do(s.router(s.actor(role.BranchAdmin)), http.MethodGet, "/me/payments/"+itoa(ap.ID)+"/gateway", "")
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "gateway_not_applicable" {
		t.Errorf("expected 400 gateway_not_applicable, got %d %s", w.Code, w.Body.String())
	}
}

func TestCommissionReportAccess(t *testing.T) {
	s := newTestServer(t)
	barber := s.repo.AddUser(models.User{BarbershopID: s.shop.ID, Name: "Ana", Role: "barber", Active: true})
	done := time.Date(2025, 3, 5, 15, 0, 0, 0, time.UTC)
	s.repo.AddAppointment(models.Appointment{
		BarbershopID: s.shop.ID,
		BarberID:     barber.ID,
		Status:       string(domain.StatusCompleted),
		TotalPrice:   decimal.NewFromInt(100),
		CompletedAt:  &done,
	})

	w := do(s.router(s.actor(role.BranchAdmin)), http.MethodGet, "/me/reports/commissions", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for branch admin, got %d", w.Code)
	}

	super := s.actor(role.SuperAdmin)
	w = do(s.router(super), http.MethodGet, "/me/reports/commissions?from=2025-03-01&to=2025-03-31", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}

	var report commission.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if !report.Current.Earnings.Equal(decimal.NewFromInt(100)) || !report.Current.Commissions.Equal(decimal.NewFromInt(70)) {
		t.Errorf("unexpected totals %+v", report.Current)
	}

	w = do(s.router(super), http.MethodGet, "/me/reports/commissions?from=2025-03-01&to=bad", "")
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "invalid_period" {
		t.Errorf("expected 400 invalid_period, got %d %s", w.Code, w.Body.String())
	}

	w = do(s.router(super), http.MethodGet, "/me/reports/commissions.pdf", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("expected pdf, got %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF-") {
		t.Error("body is not a PDF")
	}
}
