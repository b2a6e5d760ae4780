package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

// MemoryRepository keeps the whole store in maps. It is used by the tests
// of the use cases and handlers. Values are copied in and out, so callers
// never share memory with the store.
//
// WithinTx snapshots the state and restores it when fn fails. Transactions
// are serialized against each other, which is what the Lock* reads rely on:
// a row read through them inside fn cannot change until fn returns.
type MemoryRepository struct {
	mu   sync.Mutex
	txMu sync.Mutex

	state    memoryState
	fail     map[string]error
	now      func() time.Time
	beforeTx func()
}

type memoryState struct {
	seq          uint
	shops        map[uint]models.Barbershop
	users        map[uint]models.User
	products     map[uint]models.BarberProduct
	clients      map[uint]models.Client
	appointments map[uint]*models.Appointment
	transactions []models.Transaction
	grants       []models.LoyaltyGrant
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		state: memoryState{
			shops:        map[uint]models.Barbershop{},
			users:        map[uint]models.User{},
			products:     map[uint]models.BarberProduct{},
			clients:      map[uint]models.Client{},
			appointments: map[uint]*models.Appointment{},
		},
		fail: map[string]error{},
		now:  time.Now,
	}
}

func (s memoryState) clone() memoryState {
	cp := s
	cp.shops = make(map[uint]models.Barbershop, len(s.shops))
	for k, v := range s.shops {
		cp.shops[k] = v
	}
	cp.users = make(map[uint]models.User, len(s.users))
	for k, v := range s.users {
		cp.users[k] = v
	}
	cp.products = make(map[uint]models.BarberProduct, len(s.products))
	for k, v := range s.products {
		cp.products[k] = v
	}
	cp.clients = make(map[uint]models.Client, len(s.clients))
	for k, v := range s.clients {
		cp.clients[k] = v
	}
	cp.appointments = make(map[uint]*models.Appointment, len(s.appointments))
	for k, v := range s.appointments {
		cp.appointments[k] = v.Clone()
	}
	cp.transactions = append([]models.Transaction(nil), s.transactions...)
	cp.grants = append([]models.LoyaltyGrant(nil), s.grants...)
	return cp
}

func (r *MemoryRepository) nextID() uint {
	r.state.seq++
	return r.state.seq
}

// FailOn makes every later call of method return a StoreError wrapping err.
// A nil err removes the failure.
func (r *MemoryRepository) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, method)
		return
	}
	r.fail[method] = err
}

func (r *MemoryRepository) failure(method string) error {
	if err, ok := r.fail[method]; ok {
		return httperr.Store(method, err)
	}
	return nil
}

// BeforeNextTx runs fn once, right before the next WithinTx starts. Tests
// use it to commit a competing operation between a caller's first reads and
// its transaction.
func (r *MemoryRepository) BeforeNextTx(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeTx = fn
}

// SetClock fixes the timestamps the store stamps on created rows.
func (r *MemoryRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// ===============================
// Seeding
// ===============================

func (r *MemoryRepository) AddBarbershop(shop models.Barbershop) *models.Barbershop {
	r.mu.Lock()
	defer r.mu.Unlock()
	if shop.ID == 0 {
		shop.ID = r.nextID()
	}
	r.state.shops[shop.ID] = shop
	return &shop
}

func (r *MemoryRepository) AddUser(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID()
	}
	r.state.users[u.ID] = u
	return &u
}

func (r *MemoryRepository) AddProduct(p models.BarberProduct) *models.BarberProduct {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID()
	}
	r.state.products[p.ID] = p
	return &p
}

func (r *MemoryRepository) AddClient(c models.Client) *models.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == 0 {
		c.ID = r.nextID()
	}
	r.state.clients[c.ID] = c
	return &c
}

func (r *MemoryRepository) AddAppointment(ap models.Appointment) *models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ap.ID == 0 {
		ap.ID = r.nextID()
	}
	r.state.appointments[ap.ID] = ap.Clone()
	return ap.Clone()
}

func (r *MemoryRepository) Transactions() []models.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Transaction(nil), r.state.transactions...)
}

// ===============================
// Transaction
// ===============================

func (r *MemoryRepository) WithinTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	r.mu.Lock()
	before := r.beforeTx
	r.beforeTx = nil
	r.mu.Unlock()
	if before != nil {
		before()
	}

	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := r.state.clone()
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.state = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

// ===============================
// Barbershop / catalogue
// ===============================

func (r *MemoryRepository) GetBarbershopByID(_ context.Context, id uint) (*models.Barbershop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("GetBarbershopByID"); err != nil {
		return nil, err
	}
	shop, ok := r.state.shops[id]
	if !ok {
		return nil, httperr.ErrBusiness("barbershop_not_found")
	}
	return &shop, nil
}

func (r *MemoryRepository) GetProducts(_ context.Context, barbershopID uint, productIDs []uint) ([]models.BarberProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("GetProducts"); err != nil {
		return nil, err
	}
	out := make([]models.BarberProduct, 0, len(productIDs))
	for _, id := range productIDs {
		p, ok := r.state.products[id]
		if !ok || p.BarbershopID != barbershopID || !p.Active {
			return nil, httperr.ErrBusiness("product_not_found")
		}
		out = append(out, p)
	}
	return out, nil
}

// ===============================
// Client
// ===============================

func (r *MemoryRepository) GetOrCreateClient(_ context.Context, barbershopID uint, name, phone, email string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("GetOrCreateClient"); err != nil {
		return nil, err
	}
	for _, c := range r.state.clients {
		if c.BarbershopID == barbershopID && c.Phone == phone {
			return &c, nil
		}
	}
	c := models.Client{
		ID:           r.nextID(),
		BarbershopID: barbershopID,
		Name:         name,
		Phone:        phone,
		Email:        email,
		CreatedAt:    r.now(),
	}
	r.state.clients[c.ID] = c
	return &c, nil
}

func (r *MemoryRepository) GetClient(_ context.Context, id uint) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("GetClient"); err != nil {
		return nil, err
	}
	c, ok := r.state.clients[id]
	if !ok {
		return nil, httperr.ErrBusiness("client_not_found")
	}
	return &c, nil
}

func (r *MemoryRepository) LockClient(ctx context.Context, id uint) (*models.Client, error) {
	return r.GetClient(ctx, id)
}

func (r *MemoryRepository) UpdateClientSecurityFlags(_ context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("UpdateClientSecurityFlags"); err != nil {
		return err
	}
	c, ok := r.state.clients[client.ID]
	if !ok {
		return httperr.ErrBusiness("client_not_found")
	}
	c.Security = client.Security
	r.state.clients[c.ID] = c
	return nil
}

func (r *MemoryRepository) UpdateClientLoyalty(_ context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("UpdateClientLoyalty"); err != nil {
		return err
	}
	c, ok := r.state.clients[client.ID]
	if !ok {
		return httperr.ErrBusiness("client_not_found")
	}
	c.Loyalty = client.Loyalty
	r.state.clients[c.ID] = c
	return nil
}

// ===============================
// Appointment
// ===============================

func (r *MemoryRepository) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("CreateAppointment"); err != nil {
		return err
	}
	ap.ID = r.nextID()
	ap.CreatedAt = r.now()
	ap.UpdatedAt = ap.CreatedAt
	for i := range ap.Services {
		ap.Services[i].ID = r.nextID()
		ap.Services[i].AppointmentID = ap.ID
	}
	r.state.appointments[ap.ID] = ap.Clone()
	return nil
}

func (r *MemoryRepository) AssertNoTimeConflict(_ context.Context, barberID uint, start, end time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("AssertNoTimeConflict"); err != nil {
		return err
	}
	for _, ap := range r.state.appointments {
		if ap.BarberID != barberID || !isActive(domain.Status(ap.Status)) {
			continue
		}
		if ap.StartTime.Before(end) && ap.EndTime.After(start) {
			return httperr.ErrBusiness("time_conflict")
		}
	}
	return nil
}

func isActive(s domain.Status) bool {
	for _, a := range domain.ActiveStatuses {
		if a == s {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("GetAppointment"); err != nil {
		return nil, err
	}
	ap, ok := r.state.appointments[id]
	if !ok {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	return ap.Clone(), nil
}

func (r *MemoryRepository) LockAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	return r.GetAppointment(ctx, id)
}

func (r *MemoryRepository) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("UpdateAppointment"); err != nil {
		return err
	}
	cur, ok := r.state.appointments[ap.ID]
	if !ok {
		return httperr.ErrBusiness("appointment_not_found")
	}
	next := ap.Clone()
	next.Services = cur.Services
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = r.now()
	r.state.appointments[ap.ID] = next
	return nil
}

func (r *MemoryRepository) ListAppointmentsByStatus(_ context.Context, barbershopID uint, status domain.Status) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("ListAppointmentsByStatus"); err != nil {
		return nil, err
	}
	var out []models.Appointment
	for _, ap := range r.state.appointments {
		if ap.BarbershopID == barbershopID && ap.Status == string(status) {
			out = append(out, *ap.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ===============================
// Settlement
// ===============================

func (r *MemoryRepository) RecordTransaction(_ context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("RecordTransaction"); err != nil {
		return err
	}
	tx.ID = r.nextID()
	tx.CreatedAt = r.now()
	r.state.transactions = append(r.state.transactions, *tx)
	return nil
}

func (r *MemoryRepository) ListStaffEarnings(_ context.Context, barbershopID *uint, from, to time.Time) ([]commission.StaffEarnings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("ListStaffEarnings"); err != nil {
		return nil, err
	}

	var out []commission.StaffEarnings
	for _, u := range r.state.users {
		if u.Role != string(role.Barber) {
			continue
		}
		if barbershopID != nil && u.BarbershopID != *barbershopID {
			continue
		}
		se := commission.StaffEarnings{
			BarberID:      u.ID,
			Name:          u.Name,
			Active:        u.Active,
			TotalEarnings: decimal.Zero,
		}
		for _, ap := range r.state.appointments {
			if ap.BarberID != u.ID || ap.Status != string(domain.StatusCompleted) || ap.CompletedAt == nil {
				continue
			}
			if ap.CompletedAt.Before(from) || !ap.CompletedAt.Before(to) {
				continue
			}
			se.TotalEarnings = se.TotalEarnings.Add(ap.TotalPrice)
			se.TotalServices++
		}
		out = append(out, se)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BarberID < out[j].BarberID })
	return out, nil
}

// ===============================
// Loyalty
// ===============================

func (r *MemoryRepository) CreateLoyaltyGrant(_ context.Context, grant *models.LoyaltyGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("CreateLoyaltyGrant"); err != nil {
		return err
	}
	grant.ID = r.nextID()
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = r.now()
	}
	r.state.grants = append(r.state.grants, *grant)
	return nil
}

func (r *MemoryRepository) HasLoyaltyGrant(_ context.Context, q domain.GrantQuery) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("HasLoyaltyGrant"); err != nil {
		return false, err
	}
	for _, g := range r.state.grants {
		if g.ClientID != q.ClientID || g.Kind != q.Kind {
			continue
		}
		if q.Since != nil && g.CreatedAt.Before(*q.Since) {
			continue
		}
		if q.ReferredID != nil && (g.ReferredID == nil || *g.ReferredID != *q.ReferredID) {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (r *MemoryRepository) ListLoyaltyGrants(_ context.Context, clientID uint) ([]models.LoyaltyGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("ListLoyaltyGrants"); err != nil {
		return nil, err
	}
	var out []models.LoyaltyGrant
	for i := len(r.state.grants) - 1; i >= 0; i-- {
		if r.state.grants[i].ClientID == clientID {
			out = append(out, r.state.grants[i])
		}
	}
	return out, nil
}

var _ domain.Repository = (*MemoryRepository)(nil)
