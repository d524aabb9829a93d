package tests

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"travel/internal/domain"
	"travel/internal/gateway"
	"travel/internal/redis"
	"travel/internal/repository"
	"travel/internal/service"
)

// ──────────────────────────────────────────────
// IN-MEMORY STORE
// ──────────────────────────────────────────────

// MockStore holds every entity of the in-memory repositories. The
// repositories below are views over one store so a MockTransactor can roll
// all of them back together.
type MockStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	listings map[string]domain.Listing
	bookings map[string]domain.Booking
	payments map[string]domain.Payment
}

// NewMockStore creates an empty store.
func NewMockStore() *MockStore {
	return &MockStore{
		users:    make(map[string]domain.User),
		listings: make(map[string]domain.Listing),
		bookings: make(map[string]domain.Booking),
		payments: make(map[string]domain.Payment),
	}
}

type storeSnapshot struct {
	users    map[string]domain.User
	listings map[string]domain.Listing
	bookings map[string]domain.Booking
	payments map[string]domain.Payment
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *MockStore) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return storeSnapshot{
		users:    cloneMap(s.users),
		listings: cloneMap(s.listings),
		bookings: cloneMap(s.bookings),
		payments: cloneMap(s.payments),
	}
}

func (s *MockStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.listings = snap.listings
	s.bookings = snap.bookings
	s.payments = snap.payments
}

// AddUser adds a user to the store.
func (s *MockStore) AddUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
}

// AddListing adds a listing to the store.
func (s *MockStore) AddListing(l *domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = *l
}

// AddBooking adds a booking to the store.
func (s *MockStore) AddBooking(b *domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = *b
}

// AddPayment adds a payment to the store.
func (s *MockStore) AddPayment(p *domain.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = *p
}

// GetBooking returns a copy of a booking for assertions.
func (s *MockStore) GetBooking(id string) *domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil
	}
	return &b
}

// GetPayment returns a copy of a payment for assertions.
func (s *MockStore) GetPayment(id string) *domain.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil
	}
	return &p
}

// PaymentsForBooking returns copies of a booking's payments for assertions.
func (s *MockStore) PaymentsForBooking(bookingID string) []*domain.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			copy := p
			result = append(result, &copy)
		}
	}
	return result
}

// CountBookings returns the number of bookings.
func (s *MockStore) CountBookings() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookings)
}

// CountPayments returns the number of payments.
func (s *MockStore) CountPayments() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments)
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	store *MockStore

	CreateCallCount int32
	CreateError     error
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, u := range m.store.users {
		if u.Email == user.Email {
			return repository.ErrConflict
		}
	}
	m.store.users[user.ID] = *user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	u, ok := m.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	for _, u := range m.store.users {
		if u.Email == email {
			copy := u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.store.users))
	for _, u := range m.store.users {
		copy := u
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK LISTING REPOSITORY
// ──────────────────────────────────────────────

// MockListingRepository is a mock implementation of ListingRepository.
type MockListingRepository struct {
	store *MockStore

	GetByIDCallCount int32
	UpdateCallCount  int32
}

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.listings[listing.ID] = *listing
	return nil
}

func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	l, ok := m.store.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (m *MockListingRepository) GetAll(ctx context.Context) ([]*domain.Listing, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	result := make([]*domain.Listing, 0, len(m.store.listings))
	for _, l := range m.store.listings {
		copy := l
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.listings[listing.ID]; !ok {
		return repository.ErrNotFound
	}
	m.store.listings[listing.ID] = *listing
	return nil
}

func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.listings[id]; !ok {
		return repository.ErrNotFound
	}
	for _, b := range m.store.bookings {
		if b.ListingID == id {
			return repository.ErrConflict
		}
	}
	delete(m.store.listings, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	store *MockStore

	CreateCallCount       int32
	UpdateStatusCallCount int32

	CreateError       error
	UpdateStatusError error
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.bookings[booking.ID] = *booking
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	b, ok := m.store.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

// GetByIDForUpdate relies on MockTransactor serialising transactions.
func (m *MockBookingRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	return m.GetByID(ctx, id)
}

func (m *MockBookingRepository) GetAll(ctx context.Context) ([]*domain.Booking, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	result := make([]*domain.Booking, 0, len(m.store.bookings))
	for _, b := range m.store.bookings {
		copy := b
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.bookings[booking.ID]; !ok {
		return repository.ErrNotFound
	}
	m.store.bookings[booking.ID] = *booking
	return nil
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	b, ok := m.store.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	m.store.bookings[id] = b
	return nil
}

func (m *MockBookingRepository) Delete(ctx context.Context, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.store.bookings, id)
	for pid, p := range m.store.payments {
		if p.BookingID == id {
			delete(m.store.payments, pid)
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	store *MockStore

	CreateCallCount       int32
	UpdateCallCount       int32
	UpdateStatusCallCount int32

	CreateError       error
	UpdateError       error
	UpdateStatusError error
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if payment.Status == domain.PaymentStatusPending {
		for _, p := range m.store.payments {
			if p.BookingID == payment.BookingID && p.Status == domain.PaymentStatusPending {
				return repository.ErrConflict
			}
		}
	}
	m.store.payments[payment.ID] = *payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	p, ok := m.store.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// GetByIDForUpdate relies on MockTransactor serialising transactions.
func (m *MockPaymentRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error) {
	return m.GetByID(ctx, id)
}

func (m *MockPaymentRepository) GetPendingByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	for _, p := range m.store.payments {
		if p.BookingID == bookingID && p.Status == domain.PaymentStatusPending {
			copy := p
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*domain.Payment, error) {
	result := m.store.PaymentsForBooking(bookingID)
	if result == nil {
		result = []*domain.Payment{}
	}
	return result, nil
}

func (m *MockPaymentRepository) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	result := make([]*domain.Payment, 0, len(m.store.payments))
	for _, p := range m.store.payments {
		copy := p
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.payments[payment.ID]; !ok {
		return repository.ErrNotFound
	}
	m.store.payments[payment.ID] = *payment
	return nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	p, ok := m.store.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	m.store.payments[id] = p
	return nil
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.payments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.store.payments, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor runs transactions one at a time against the store and
// restores the store when fn fails.
type MockTransactor struct {
	mu    sync.Mutex
	store *MockStore
	repos repository.Repositories

	CallCount     int32
	RollbackCount int32
}

func (t *MockTransactor) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	atomic.AddInt32(&t.CallCount, 1)
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.store.snapshot()
	if err := fn(t.repos); err != nil {
		atomic.AddInt32(&t.RollbackCount, 1)
		t.store.restore(snap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a scriptable payment gateway.
type MockGateway struct {
	mu sync.Mutex

	TransactionID string
	CheckoutURL   string
	InitializeErr error
	VerifyErr     error

	// BlockInitialize, when set, is waited on before Initialize returns.
	BlockInitialize chan struct{}

	InitializeCallCount int32
	VerifyCallCount     int32

	LastInput   gateway.InitiateInput
	LastBaseURL string
}

// NewMockGateway creates a gateway that accepts every request.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		TransactionID: "tx_123",
		CheckoutURL:   "https://checkout.example/tx_123",
	}
}

func (g *MockGateway) Initialize(ctx context.Context, in gateway.InitiateInput, baseURL string) (*gateway.InitializeResult, error) {
	atomic.AddInt32(&g.InitializeCallCount, 1)
	if g.BlockInitialize != nil {
		<-g.BlockInitialize
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.LastInput = in
	g.LastBaseURL = baseURL
	if g.InitializeErr != nil {
		return nil, g.InitializeErr
	}
	return &gateway.InitializeResult{TransactionID: g.TransactionID, CheckoutURL: g.CheckoutURL}, nil
}

func (g *MockGateway) Verify(ctx context.Context, payment *domain.Payment) (*gateway.VerifyResult, error) {
	atomic.AddInt32(&g.VerifyCallCount, 1)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.VerifyErr != nil {
		return nil, g.VerifyErr
	}
	return &gateway.VerifyResult{Status: "success"}, nil
}

// NewBusinessError builds the error a gateway returns for a rejected request.
func NewBusinessError(body string) *gateway.BusinessError {
	return &gateway.BusinessError{
		StatusCode: 400,
		Status:     "failed",
		Details:    json.RawMessage(body),
	}
}

// ──────────────────────────────────────────────
// MOCK DISPATCHER
// ──────────────────────────────────────────────

// MockDispatcher records enqueued confirmation emails.
type MockDispatcher struct {
	mu       sync.Mutex
	messages []service.BookingConfirmation

	EnqueueError error
}

func (d *MockDispatcher) Enqueue(ctx context.Context, msg service.BookingConfirmation) (service.JobHandle, error) {
	if d.EnqueueError != nil {
		return service.JobHandle{}, d.EnqueueError
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
	return service.JobHandle{ID: "job-" + msg.BookingID}, nil
}

// Messages returns the enqueued messages.
func (d *MockDispatcher) Messages() []service.BookingConfirmation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]service.BookingConfirmation(nil), d.messages...)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory LockStoreInterface.
type MockLockStore struct {
	mu   sync.Mutex
	held map[string]bool

	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

func (l *MockLockStore) AcquirePaymentLock(ctx context.Context, paymentID string, ttl time.Duration) (bool, error) {
	if l.AcquireError != nil {
		return false, l.AcquireError
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[paymentID] {
		return false, nil
	}
	l.held[paymentID] = true
	return true, nil
}

func (l *MockLockStore) ReleasePaymentLock(ctx context.Context, paymentID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, paymentID)
	return nil
}

// Held reports whether a payment lock is currently held.
func (l *MockLockStore) Held(paymentID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[paymentID]
}

// ──────────────────────────────────────────────
// MOCK LISTING CACHE
// ──────────────────────────────────────────────

// MockListingCache is an in-memory ListingCache.
type MockListingCache struct {
	mu      sync.Mutex
	entries map[string]redis.CachedListing

	GetCallCount        int32
	InvalidateCallCount int32
}

// NewMockListingCache creates a new mock listing cache.
func NewMockListingCache() *MockListingCache {
	return &MockListingCache{entries: make(map[string]redis.CachedListing)}
}

func (c *MockListingCache) GetListing(ctx context.Context, listingID string) (*redis.CachedListing, error) {
	atomic.AddInt32(&c.GetCallCount, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[listingID]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (c *MockListingCache) SetListing(ctx context.Context, listing *redis.CachedListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[listing.ID] = *listing
	return nil
}

func (c *MockListingCache) InvalidateListing(ctx context.Context, listingID string) error {
	atomic.AddInt32(&c.InvalidateCallCount, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, listingID)
	return nil
}

// Has reports whether a listing is cached.
func (c *MockListingCache) Has(listingID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[listingID]
	return ok
}

// ──────────────────────────────────────────────
// FIXTURE
// ──────────────────────────────────────────────

// Fixture bundles the mocks wired into one set of services.
type Fixture struct {
	Store      *MockStore
	Users      *MockUserRepository
	Listings   *MockListingRepository
	Bookings   *MockBookingRepository
	Payments   *MockPaymentRepository
	Tx         *MockTransactor
	Gateway    *MockGateway
	Dispatcher *MockDispatcher
	Locks      *MockLockStore
	Cache      *MockListingCache
}

// NewFixture creates a fixture with empty repositories and a gateway that
// accepts every request.
func NewFixture() *Fixture {
	store := NewMockStore()
	f := &Fixture{
		Store:      store,
		Users:      &MockUserRepository{store: store},
		Listings:   &MockListingRepository{store: store},
		Bookings:   &MockBookingRepository{store: store},
		Payments:   &MockPaymentRepository{store: store},
		Gateway:    NewMockGateway(),
		Dispatcher: &MockDispatcher{},
		Locks:      NewMockLockStore(),
		Cache:      NewMockListingCache(),
	}
	f.Tx = &MockTransactor{
		store: store,
		repos: repository.Repositories{
			Users:    f.Users,
			Listings: f.Listings,
			Bookings: f.Bookings,
			Payments: f.Payments,
		},
	}
	return f
}

// Ensure mocks implement interfaces.
var (
	_ repository.UserRepository      = (*MockUserRepository)(nil)
	_ repository.ListingRepository   = (*MockListingRepository)(nil)
	_ repository.BookingRepository   = (*MockBookingRepository)(nil)
	_ repository.PaymentRepository   = (*MockPaymentRepository)(nil)
	_ repository.Transactor          = (*MockTransactor)(nil)
	_ service.GatewayClient          = (*MockGateway)(nil)
	_ service.NotificationDispatcher = (*MockDispatcher)(nil)
	_ redis.LockStoreInterface       = (*MockLockStore)(nil)
	_ redis.ListingCache             = (*MockListingCache)(nil)
)
