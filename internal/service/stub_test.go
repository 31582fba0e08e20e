package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/waveforge/waveforge/internal/domain"
	"github.com/waveforge/waveforge/internal/domain/catalog"
	"github.com/waveforge/waveforge/internal/domain/offer"
	"github.com/waveforge/waveforge/internal/domain/order"
	"github.com/waveforge/waveforge/internal/domain/tenant"
	"github.com/waveforge/waveforge/internal/domain/user"
	"github.com/waveforge/waveforge/internal/port/docgen"
	"github.com/waveforge/waveforge/internal/port/notifier"
	"github.com/waveforge/waveforge/internal/port/payment"
)

var errBoom = errors.New("boom")

// stubStore is a map-backed store.Store with error injection for the
// lookup paths the resolver exercises.
type stubStore struct {
	mu sync.Mutex

	tenants map[string]*tenant.Tenant
	domains map[string]*tenant.Domain
	orders  map[string]*order.Order
	items   map[string][]order.Item
	beats   map[string]*catalog.Beat
	tiers   map[string]*catalog.LicenseTier
	kits    map[string]*catalog.SoundKit
	users   map[string]*user.User
	offers  []*offer.Offer

	slugErr   error // returned by GetTenantBySlug when set
	domainErr error // returned by GetActiveDomain when set
	ownerErr  error // returned by GetTenantByOwner when set

	createOrderCalls  int
	completeCalls     int
	downloadCounts    map[string]int
	upsertedDomains   []string
	activatedStatuses map[string]tenant.DomainStatus
}

func newStubStore() *stubStore {
	return &stubStore{
		tenants:           map[string]*tenant.Tenant{},
		domains:           map[string]*tenant.Domain{},
		orders:            map[string]*order.Order{},
		items:             map[string][]order.Item{},
		beats:             map[string]*catalog.Beat{},
		tiers:             map[string]*catalog.LicenseTier{},
		kits:              map[string]*catalog.SoundKit{},
		users:             map[string]*user.User{},
		downloadCounts:    map[string]int{},
		activatedStatuses: map[string]tenant.DomainStatus{},
	}
}

func (s *stubStore) CreateTenant(_ context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &tenant.Tenant{
		ID: uuid.NewString(), Name: req.Name, Slug: req.Slug, Plan: req.Plan,
		Status: tenant.StatusActive, OwnerUserID: req.OwnerUserID,
	}
	s.tenants[t.ID] = t
	return t, nil
}

func (s *stubStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tenants[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) GetTenantBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slugErr != nil {
		return nil, s.slugErr
	}
	for _, t := range s.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) GetTenantByOwner(_ context.Context, ownerID string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerErr != nil {
		return nil, s.ownerErr
	}
	for _, t := range s.tenants {
		if t.OwnerUserID == ownerID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) ListTenants(_ context.Context) ([]tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tenant.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (s *stubStore) UpdateTenant(_ context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	s.tenants[t.ID] = &cp
	return nil
}

func (s *stubStore) SetTenantStatus(_ context.Context, id string, status tenant.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	return nil
}

func (s *stubStore) UpsertTenantDomain(_ context.Context, tenantID, dom string) (*tenant.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertedDomains = append(s.upsertedDomains, dom)
	d := &tenant.Domain{TenantID: tenantID, Domain: dom, Status: tenant.DomainPending}
	s.domains[dom] = d
	return d, nil
}

func (s *stubStore) GetActiveDomain(_ context.Context, dom string) (*tenant.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.domainErr != nil {
		return nil, s.domainErr
	}
	if d, ok := s.domains[dom]; ok && d.Status == tenant.DomainActive {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) SetDomainStatus(_ context.Context, dom string, status tenant.DomainStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activatedStatuses[dom] = status
	d, ok := s.domains[dom]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	return nil
}

func (s *stubStore) CreateOrder(_ context.Context, o *order.Order, items []order.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createOrderCalls++
	cp := *o
	s.orders[o.ID] = &cp
	s.items[o.ID] = items
	return nil
}

func (s *stubStore) GetOrder(_ context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) GetOrderItems(_ context.Context, orderID string) ([]order.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[orderID], nil
}

func (s *stubStore) GetCompletedOrderForEmail(_ context.Context, id, email string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.CustomerEmail != email || o.Status != order.StatusCompleted {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubStore) CompleteOrder(_ context.Context, id, txID string, expires time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completeCalls++
	o, ok := s.orders[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.Status != order.StatusPending {
		return false, nil
	}
	o.Status = order.StatusCompleted
	o.PaymentTransactionID = txID
	o.DownloadExpiresAt = expires
	return true, nil
}

func (s *stubStore) FailOrder(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.Status != order.StatusPending {
		return false, nil
	}
	o.Status = order.StatusFailed
	return true, nil
}

func (s *stubStore) IncrementDownloadCount(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadCounts[itemID]++
	return nil
}

func (s *stubStore) GetBeat(_ context.Context, id string) (*catalog.Beat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.beats[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) GetLicenseTier(_ context.Context, id string) (*catalog.LicenseTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lt, ok := s.tiers[id]; ok {
		return lt, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) GetSoundKit(_ context.Context, id string) (*catalog.SoundKit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.kits[id]; ok {
		return k, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) CreateOffer(_ context.Context, o *offer.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers = append(s.offers, o)
	return nil
}

func (s *stubStore) CreateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *stubStore) GetUser(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) GetUserByToken(_ context.Context, token string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.APIToken == token {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

// stubStripe records calls and returns programmable results.
type stubStripe struct {
	mu           sync.Mutex
	createdParam payment.StripeSessionParams
	createCalls  int

	session    payment.StripeSession
	sessionErr error

	event    *payment.WebhookEvent
	eventErr error
}

func (f *stubStripe) CreateCheckoutSession(_ context.Context, p payment.StripeSessionParams) (*payment.StripeSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.createdParam = p
	return &payment.StripeSession{
		ID: "cs_1", URL: "https://stripe.test/cs_1",
		MetadataOrderID: p.OrderID, PaymentStatus: "unpaid",
	}, nil
}

func (f *stubStripe) GetCheckoutSession(_ context.Context, _ string) (*payment.StripeSession, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	cp := f.session
	return &cp, nil
}

func (f *stubStripe) VerifyWebhook(_ []byte, _ string) (*payment.WebhookEvent, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	cp := *f.event
	return &cp, nil
}

// stubPayPal records calls and returns programmable results.
type stubPayPal struct {
	mu           sync.Mutex
	createdParam payment.PayPalOrderParams

	capture    payment.PayPalCapture
	captureErr error
}

func (f *stubPayPal) CreateOrder(_ context.Context, p payment.PayPalOrderParams) (*payment.PayPalOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdParam = p
	return &payment.PayPalOrder{ID: "PP-1", ApprovalURL: "https://paypal.test/PP-1"}, nil
}

func (f *stubPayPal) CaptureOrder(_ context.Context, _ string) (*payment.PayPalCapture, error) {
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	cp := f.capture
	return &cp, nil
}

// stubFulfiller counts invocations.
type stubFulfiller struct {
	mu     sync.Mutex
	orders []string
}

func (s *stubFulfiller) Fulfill(_ context.Context, o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o.ID)
}

func (s *stubFulfiller) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// stubDocgen fails for item ids listed in failFor.
type stubDocgen struct {
	mu      sync.Mutex
	reqs    []docgen.Request
	failFor map[string]bool
}

func (s *stubDocgen) Generate(_ context.Context, req docgen.Request) (*docgen.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	if s.failFor[req.ItemID] {
		return nil, errBoom
	}
	return &docgen.Artifact{ItemID: req.ItemID, FileKey: "licenses/" + req.ItemID + ".pdf"}, nil
}

// stubNotifier records sent messages.
type stubNotifier struct {
	mu            sync.Mutex
	confirmations []notifier.OrderConfirmation
	notices       []notifier.OfferNotice
	confirmErr    error
}

func (s *stubNotifier) SendOrderConfirmation(_ context.Context, c notifier.OrderConfirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmations = append(s.confirmations, c)
	return s.confirmErr
}

func (s *stubNotifier) SendOfferNotice(_ context.Context, n notifier.OfferNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
	return nil
}

// stubPublisher records published subjects.
type stubPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (s *stubPublisher) Publish(_ context.Context, subject string, _ []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects = append(s.subjects, subject)
	return nil
}

// stubSigner produces deterministic URLs.
type stubSigner struct{ err error }

func (s stubSigner) SignedURL(fileKey string, _ time.Time) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://files.test/" + fileKey, nil
}
