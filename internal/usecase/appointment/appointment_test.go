package appointment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/infra/repository"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() timezone.Clock {
	return func() time.Time { return fixedNow }
}

type fixture struct {
	repo   *repository.MemoryRepository
	shop   *models.Barbershop
	barber *models.User
	client *models.Client
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := repository.NewMemoryRepository()
	repo.SetClock(fixedClock())

	shop := repo.AddBarbershop(models.Barbershop{Name: "Centro", Timezone: "UTC"})
	barber := repo.AddUser(models.User{BarbershopID: shop.ID, Name: "Ana", Role: "barber", Active: true})
	client := repo.AddClient(models.Client{BarbershopID: shop.ID, Name: "Lucas", Phone: "11999990000"})

	return fixture{repo: repo, shop: shop, barber: barber, client: client}
}

func (f fixture) appointment(status domain.Status) *models.Appointment {
	return f.repo.AddAppointment(models.Appointment{
		BarbershopID:  f.shop.ID,
		BarberID:      f.barber.ID,
		ClientID:      f.client.ID,
		Status:        string(status),
		TotalPrice:    decimal.NewFromInt(80),
		PaymentMethod: "cash",
		StartTime:     fixedNow.Add(time.Hour),
		EndTime:       fixedNow.Add(90 * time.Minute),
	})
}

func (f fixture) actor(r role.Role) role.Actor {
	id := uint(900)
	if r == role.Barber {
		id = f.barber.ID
	}
	return role.Actor{ID: id, BarbershopID: f.shop.ID, Name: "staff-" + string(r), Role: r}
}

func TestApproveAppointment(t *testing.T) {
	f := newFixture(t)
	ap := f.appointment(domain.StatusPending)
	uc := NewApproveAppointment(f.repo, nil, fixedClock())

	if _, err := uc.Execute(context.Background(), ap.ID, f.actor(role.Reception), ""); !httperr.IsBusiness(err, httperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	got, err := uc.Execute(context.Background(), ap.ID, f.actor(role.BranchAdmin), "ok")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got.Status != string(domain.StatusConfirmed) || got.ApprovedBy != "staff-branch_admin" {
		t.Errorf("unexpected appointment %+v", got)
	}

	stored, _ := f.repo.GetAppointment(context.Background(), ap.ID)
	if stored.Status != string(domain.StatusConfirmed) || !stored.ApprovedAt.Equal(fixedNow) {
		t.Errorf("expected stored confirmation at %v, got %s at %v", fixedNow, stored.Status, stored.ApprovedAt)
	}
}

func TestApproveDoesNotTouchPendingPayment(t *testing.T) {
	f := newFixture(t)
	ap := f.appointment(domain.StatusPendingPayment)

	_, err := NewApproveAppointment(f.repo, nil, fixedClock()).
		Execute(context.Background(), ap.ID, f.actor(role.BranchAdmin), "")
	if !httperr.IsBusiness(err, httperr.CodeInvalidTransition) {
		t.Fatalf("expected invalid_transition, got %v", err)
	}
}

func TestOtherBranchIsNotFound(t *testing.T) {
	f := newFixture(t)
	ap := f.appointment(domain.StatusPending)

	outsider := role.Actor{ID: 1, BarbershopID: f.shop.ID + 100, Role: role.BranchAdmin}
	_, err := NewApproveAppointment(f.repo, nil, fixedClock()).
		Execute(context.Background(), ap.ID, outsider, "")
	if !httperr.IsBusiness(err, "appointment_not_found") {
		t.Fatalf("expected appointment_not_found, got %v", err)
	}

	super := role.Actor{ID: 1, Role: role.SuperAdmin}
	if _, err := NewApproveAppointment(f.repo, nil, fixedClock()).Execute(context.Background(), ap.ID, super, ""); err != nil {
		t.Fatalf("super admin sees every branch, got %v", err)
	}
}

func TestMarkNoShowOnlyFromPending(t *testing.T) {
	f := newFixture(t)
	uc := NewMarkNoShow(f.repo, nil, fixedClock())

	prepaid := f.appointment(domain.StatusPendingPayment)
	if _, err := uc.Execute(context.Background(), prepaid.ID, f.actor(role.Reception), "não veio"); !httperr.IsBusiness(err, httperr.CodeInvalidTransition) {
		t.Fatalf("expected invalid_transition for prepaid booking, got %v", err)
	}

	ap := f.appointment(domain.StatusPending)
	got, err := uc.Execute(context.Background(), ap.ID, f.actor(role.Barber), "não veio")
	if err != nil {
		t.Fatalf("no-show failed: %v", err)
	}
	if got.Status != string(domain.StatusCancelled) || !got.NoShow {
		t.Errorf("expected cancelled no-show, got %s no_show=%v", got.Status, got.NoShow)
	}
}

func TestBarberOnlyActsOnOwnAppointments(t *testing.T) {
	f := newFixture(t)
	other := f.repo.AddUser(models.User{BarbershopID: f.shop.ID, Name: "Bruno", Role: "barber", Active: true})
	ap := f.repo.AddAppointment(models.Appointment{
		BarbershopID: f.shop.ID,
		BarberID:     other.ID,
		ClientID:     f.client.ID,
		Status:       string(domain.StatusConfirmed),
	})

	_, err := NewMarkAttendance(f.repo, nil, fixedClock()).
		Execute(context.Background(), ap.ID, f.actor(role.Barber))
	if !httperr.IsBusiness(err, "appointment_not_found") {
		t.Fatalf("expected appointment_not_found, got %v", err)
	}
}

func TestMarkAttendanceRecordsTransaction(t *testing.T) {
	f := newFixture(t)
	ap := f.appointment(domain.StatusConfirmed)

	got, err := NewMarkAttendance(f.repo, nil, fixedClock()).
		Execute(context.Background(), ap.ID, f.actor(role.Barber))
	if err != nil {
		t.Fatalf("attendance failed: %v", err)
	}
	if got.Status != string(domain.StatusInProgress) || !got.AttendanceMarked || !got.AttendanceTime.Equal(fixedNow) {
		t.Errorf("unexpected attendance fields %+v", got)
	}

	txs := f.repo.Transactions()
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if !txs[0].Amount.Equal(decimal.NewFromInt(80)) || txs[0].AppointmentID != ap.ID || txs[0].Kind != models.TransactionKindService {
		t.Errorf("unexpected transaction %+v", txs[0])
	}
}

func TestMarkAttendanceIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ap := f.appointment(domain.StatusConfirmed)
	f.repo.FailOn("RecordTransaction", errors.New("connection reset"))

	_, err := NewMarkAttendance(f.repo, nil, fixedClock()).
		Execute(context.Background(), ap.ID, f.actor(role.Reception))
	if !httperr.IsStore(err) {
		t.Fatalf("expected StoreError, got %v", err)
	}

	stored, _ := f.repo.GetAppointment(context.Background(), ap.ID)
	if stored.Status != string(domain.StatusConfirmed) || stored.AttendanceMarked {
		t.Errorf("expected untouched appointment, got %s attendance=%v", stored.Status, stored.AttendanceMarked)
	}
}

func TestCompleteAppointment(t *testing.T) {
	f := newFixture(t)
	ap := f.appointment(domain.StatusInProgress)

	got, err := NewCompleteAppointment(f.repo, nil, fixedClock()).
		Execute(context.Background(), ap.ID, f.actor(role.Barber), CompleteInput{AfterPhotoURL: "https://cdn/after.webp"})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got.Status != string(domain.StatusCompleted) || got.AfterPhotoURL != "https://cdn/after.webp" {
		t.Errorf("unexpected completion %+v", got)
	}

	_, err = NewCompleteAppointment(f.repo, nil, fixedClock()).
		Execute(context.Background(), ap.ID, f.actor(role.Barber), CompleteInput{})
	if !httperr.IsBusiness(err, httperr.CodeInvalidTransition) {
		t.Errorf("expected invalid_transition on terminal appointment, got %v", err)
	}
}

func TestSendToReviewThenReject(t *testing.T) {
	f := newFixture(t)
	ap := f.appointment(domain.StatusPending)

	if _, err := NewSendToReview(f.repo, nil, fixedClock()).Execute(context.Background(), ap.ID, f.actor(role.Reception), "horário duplicado"); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	got, err := NewRejectAppointment(f.repo, nil, fixedClock()).
		Execute(context.Background(), ap.ID, f.actor(role.SuperAdmin), "sem disponibilidade")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if got.Status != string(domain.StatusRejected) || got.ReviewReason != "sem disponibilidade" {
		t.Errorf("unexpected rejection %+v", got)
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	cut := f.repo.AddProduct(models.BarberProduct{BarbershopID: f.shop.ID, Name: "Corte", Price: decimal.RequireFromString("45.50"), DurationMin: 30, Active: true})
	beard := f.repo.AddProduct(models.BarberProduct{BarbershopID: f.shop.ID, Name: "Barba", Price: decimal.RequireFromString("30"), DurationMin: 20, Active: true})

	uc := NewCreateBooking(f.repo, nil, fixedClock())
	in := CreateBookingInput{
		BarbershopID: f.shop.ID,
		BarberID:     f.barber.ID,
		ClientName:   "Lucas",
		ClientPhone:  "11999990000",
		ProductIDs:   []uint{beard.ID, cut.ID},
		Date:         "2025-03-11",
		Time:         "10:00",
	}

	ap, err := uc.Execute(context.Background(), f.actor(role.Reception), in)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if ap.Status != string(domain.StatusPending) {
		t.Errorf("expected pending, got %s", ap.Status)
	}
	if !ap.TotalPrice.Equal(decimal.RequireFromString("75.50")) || ap.DurationMin != 50 {
		t.Errorf("expected 75.50 over 50min, got %s over %d", ap.TotalPrice, ap.DurationMin)
	}
	if ap.Services[0].Name != "Barba" || ap.Services[1].Position != 1 {
		t.Errorf("services out of order: %+v", ap.Services)
	}
	if ap.ClientID != f.client.ID {
		t.Errorf("expected existing client %d, got %d", f.client.ID, ap.ClientID)
	}

	if _, err := uc.Execute(context.Background(), f.actor(role.Reception), in); !httperr.IsBusiness(err, "time_conflict") {
		t.Errorf("expected time_conflict, got %v", err)
	}
}

func TestCreateBookingPrepaidAndBlacklisted(t *testing.T) {
	f := newFixture(t)
	prepaid := f.repo.AddBarbershop(models.Barbershop{Name: "Sul", Timezone: "UTC", PaymentRequired: true})
	cut := f.repo.AddProduct(models.BarberProduct{BarbershopID: prepaid.ID, Name: "Corte", Price: decimal.NewFromInt(40), DurationMin: 30, Active: true})
	blocked := f.repo.AddClient(models.Client{BarbershopID: prepaid.ID, Name: "Rafa", Phone: "555", Security: models.SecurityFlags{Blacklisted: true}})

	admin := role.Actor{ID: 1, BarbershopID: prepaid.ID, Role: role.BranchAdmin}
	uc := NewCreateBooking(f.repo, nil, fixedClock())

	ap, err := uc.Execute(context.Background(), admin, CreateBookingInput{
		BarbershopID: prepaid.ID, BarberID: 50, ClientName: "Novo", ClientPhone: "777",
		ProductIDs: []uint{cut.ID}, Date: "2025-03-11", Time: "09:00",
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if ap.Status != string(domain.StatusPendingPayment) {
		t.Errorf("expected pending_payment, got %s", ap.Status)
	}

	_, err = uc.Execute(context.Background(), admin, CreateBookingInput{
		BarbershopID: prepaid.ID, BarberID: 50, ClientName: blocked.Name, ClientPhone: blocked.Phone,
		ProductIDs: []uint{cut.ID}, Date: "2025-03-12", Time: "09:00",
	})
	if !httperr.IsBusiness(err, "client_blacklisted") {
		t.Errorf("expected client_blacklisted, got %v", err)
	}
}

func TestCreateBookingTooSoon(t *testing.T) {
	f := newFixture(t)
	cut := f.repo.AddProduct(models.BarberProduct{BarbershopID: f.shop.ID, Name: "Corte", Price: decimal.NewFromInt(40), DurationMin: 30, Active: true})

	_, err := NewCreateBooking(f.repo, nil, fixedClock()).Execute(context.Background(), f.actor(role.Reception), CreateBookingInput{
		BarbershopID: f.shop.ID, BarberID: f.barber.ID, ClientPhone: "1",
		ProductIDs: []uint{cut.ID}, Date: "2025-03-10", Time: "13:00",
	})
	if !httperr.IsBusiness(err, "too_soon") {
		t.Errorf("expected too_soon, got %v", err)
	}
}

func TestListByStatusScopesBarber(t *testing.T) {
	f := newFixture(t)
	f.appointment(domain.StatusPendingPayment)
	f.repo.AddAppointment(models.Appointment{BarbershopID: f.shop.ID, BarberID: 999, Status: string(domain.StatusPendingPayment)})

	uc := NewListByStatus(f.repo)

	all, err := uc.Execute(context.Background(), f.actor(role.Reception), 0, domain.StatusPendingPayment)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 for reception, got %d (%v)", len(all), err)
	}

	own, _ := uc.Execute(context.Background(), f.actor(role.Barber), 0, domain.StatusPendingPayment)
	if len(own) != 1 || own[0].BarberID != f.barber.ID {
		t.Errorf("expected only the barber's appointment, got %+v", own)
	}

	if _, err := uc.Execute(context.Background(), role.Actor{Role: role.Client}, 0, domain.StatusPending); !httperr.IsBusiness(err, httperr.CodeForbidden) {
		t.Errorf("expected forbidden for clients, got %v", err)
	}
}

type fakeImages struct {
	prefix string
}

func (s *fakeImages) SaveImage(_ context.Context, prefix string, r io.Reader) (string, error) {
	s.prefix = prefix
	_, _ = io.ReadAll(r)
	return "https://cdn/" + prefix + ".webp", nil
}

func TestAttachPhoto(t *testing.T) {
	f := newFixture(t)
	ap := f.appointment(domain.StatusInProgress)
	images := &fakeImages{}

	got, err := NewAttachPhoto(f.repo, images, nil).
		Execute(context.Background(), ap.ID, f.actor(role.Barber), PhotoBefore, bytes.NewReader([]byte("img")))
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if got.BeforePhotoURL == "" || got.Status != string(domain.StatusInProgress) {
		t.Errorf("unexpected appointment %+v", got)
	}

	pending := f.appointment(domain.StatusPending)
	_, err = NewAttachPhoto(f.repo, images, nil).
		Execute(context.Background(), pending.ID, f.actor(role.Barber), PhotoAfter, bytes.NewReader(nil))
	if !httperr.IsBusiness(err, httperr.CodeInvalidTransition) {
		t.Errorf("expected invalid_transition, got %v", err)
	}
}

func TestApproveAfterConcurrentRejectIsInvalid(t *testing.T) {
	f := newFixture(t)
	ap := f.appointment(domain.StatusPending)

	f.repo.BeforeNextTx(func() {
		if _, err := NewRejectAppointment(f.repo, nil, fixedClock()).
			Execute(context.Background(), ap.ID, f.actor(role.BranchAdmin), "agenda cheia"); err != nil {
			t.Errorf("concurrent reject failed: %v", err)
		}
	})

	_, err := NewApproveAppointment(f.repo, nil, fixedClock()).
		Execute(context.Background(), ap.ID, f.actor(role.BranchAdmin), "")
	if !httperr.IsBusiness(err, httperr.CodeInvalidTransition) {
		t.Fatalf("expected invalid_transition, got %v", err)
	}

	stored, _ := f.repo.GetAppointment(context.Background(), ap.ID)
	if stored.Status != string(domain.StatusRejected) {
		t.Errorf("expected rejected to stand, got %s", stored.Status)
	}
}

func TestMarkAttendanceRacingRecordsOneTransaction(t *testing.T) {
	f := newFixture(t)
	ap := f.appointment(domain.StatusConfirmed)
	uc := NewMarkAttendance(f.repo, nil, fixedClock())

	f.repo.BeforeNextTx(func() {
		if _, err := uc.Execute(context.Background(), ap.ID, f.actor(role.Reception)); err != nil {
			t.Errorf("first attendance failed: %v", err)
		}
	})

	if _, err := uc.Execute(context.Background(), ap.ID, f.actor(role.Reception)); !httperr.IsBusiness(err, httperr.CodeInvalidTransition) {
		t.Fatalf("expected invalid_transition, got %v", err)
	}
	if n := len(f.repo.Transactions()); n != 1 {
		t.Errorf("expected one transaction, got %d", n)
	}
}
