package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Amitsjoysm/payment-service/internal/domain"
	publisher "github.com/Amitsjoysm/payment-service/internal/infrastructure/kafka"
)

// memTransactionRepo backs the usecase tests with the same conditional
// write semantics the SQL repository has.
type memTransactionRepo struct {
	mu        sync.Mutex
	txns      map[string]*domain.Transaction
	createErr error
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{txns: map[string]*domain.Transaction{}}
}

func (r *memTransactionRepo) put(txn *domain.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	clone := *txn
	r.txns[txn.ID] = &clone
}

func (r *memTransactionRepo) Create(ctx context.Context, txn *domain.Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(txn)
	return nil
}

func (r *memTransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	clone := *txn
	return &clone, nil
}

func (r *memTransactionRepo) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.txns {
		if txn.GatewayOrderID == gatewayOrderID {
			clone := *txn
			return &clone, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *memTransactionRepo) GetByUserID(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Transaction
	for _, txn := range r.txns {
		if txn.UserID == userID {
			clone := *txn
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTransactionRepo) IncrementAttempts(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	txn.VerificationAttempts++
	return nil
}

func (r *memTransactionRepo) Complete(ctx context.Context, id, gatewayPaymentID, gatewaySignature, idempotencyKey string, completedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok || txn.Status != domain.StatusPending {
		return false, nil
	}
	txn.Status = domain.StatusCompleted
	txn.IsVerified = true
	txn.GatewayPaymentID = gatewayPaymentID
	if gatewaySignature != "" {
		txn.GatewaySignature = gatewaySignature
	}
	if idempotencyKey != "" {
		txn.IdempotencyKey = idempotencyKey
	}
	txn.CompletedAt = &completedAt
	return true, nil
}

func (r *memTransactionRepo) MarkFailed(ctx context.Context, id string) (bool, error) {
	return r.transition(id, domain.StatusFailed)
}

func (r *memTransactionRepo) MarkExpired(ctx context.Context, id string) (bool, error) {
	return r.transition(id, domain.StatusExpired)
}

func (r *memTransactionRepo) transition(id string, to domain.TransactionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok || txn.Status != domain.StatusPending {
		return false, nil
	}
	txn.Status = to
	return true, nil
}

func (r *memTransactionRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, txn := range r.txns {
		if txn.Status == domain.StatusPending && txn.ExpiresAt.Before(now) {
			txn.Status = domain.StatusExpired
			count++
		}
	}
	return count, nil
}

func (r *memTransactionRepo) ClaimSettlement(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok || txn.Status != domain.StatusCompleted || txn.CreditsSettled {
		return false, nil
	}
	txn.CreditsSettled = true
	return true, nil
}

func (r *memTransactionRepo) ReleaseSettlement(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn, ok := r.txns[id]; ok {
		txn.CreditsSettled = false
	}
	return nil
}

func (r *memTransactionRepo) FindUnsettled(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Transaction
	for _, txn := range r.txns {
		if txn.Status == domain.StatusCompleted && !txn.CreditsSettled {
			clone := *txn
			out = append(out, &clone)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeGateway struct {
	mu          sync.Mutex
	order       *domain.GatewayOrder
	createErr   error
	payment     *domain.GatewayPayment
	fetchErr    error
	signatureOK bool
	webhookOK   bool
	createCalls int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, in *domain.CreateGatewayOrderInput) (*domain.GatewayOrder, error) {
	g.mu.Lock()
	g.createCalls++
	g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.order, nil
}

func (g *fakeGateway) FetchPayment(ctx context.Context, gatewayPaymentID string) (*domain.GatewayPayment, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return g.payment, nil
}

func (g *fakeGateway) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return g.signatureOK
}

func (g *fakeGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	return g.webhookOK
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

type memAuditTrail struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func (a *memAuditTrail) Record(ctx context.Context, entry *domain.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *memAuditTrail) ListByTransaction(ctx context.Context, transactionID string, limit int) ([]*domain.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*domain.AuditEntry
	for _, entry := range a.entries {
		if entry.TransactionID == transactionID {
			out = append(out, entry)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *memAuditTrail) has(eventType domain.AuditEventType) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, entry := range a.entries {
		if entry.EventType == eventType {
			return true
		}
	}
	return false
}

type fakeSettler struct {
	mu       sync.Mutex
	grantErr error
	grants   []int64
}

func (s *fakeSettler) GrantCredits(ctx context.Context, userID string, credits int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grantErr != nil {
		return s.grantErr
	}
	s.grants = append(s.grants, credits)
	return nil
}

func (s *fakeSettler) grantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.grants)
}

type fakeRateLimiter struct {
	allowed bool
	err     error
}

func (l *fakeRateLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	return l.allowed, l.err
}

type memPublisher struct {
	mu     sync.Mutex
	events []publisher.PaymentEvent
}

func (p *memPublisher) PublishPayment(event publisher.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *memPublisher) eventCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func (p *memPublisher) lastEvent() publisher.PaymentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}
