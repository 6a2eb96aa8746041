package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
)

// In-memory repositories backing a NoOpTransactionScope. They cover
// the interface surface the services exercise without a database.
// Aggregates are copied on save and on read so a failed attempt's
// in-place mutations never leak into repository state, mirroring a
// rolled-back transaction.

func copyInvoice(inv *ledger.Invoice) *ledger.Invoice {
	cp := *inv
	return &cp
}

func copyPayment(p *ledger.Payment) *ledger.Payment {
	cp := *p
	cp.Applications = append([]ledger.PaymentApplication(nil), p.Applications...)
	return &cp
}

func copyCredit(c *ledger.Credit) *ledger.Credit {
	cp := *c
	cp.Applications = append([]ledger.CreditApplication(nil), c.Applications...)
	return &cp
}

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*ledger.Invoice
	// conflicts makes the next n SaveWithLock calls fail with a
	// version conflict
	conflicts int
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[uuid.UUID]*ledger.Invoice)}
}

func (r *memInvoiceRepo) Save(_ context.Context, invoice *ledger.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := copyInvoice(invoice)
	stored.ClearDomainEvents()
	r.invoices[invoice.ID] = stored
	return nil
}

func (r *memInvoiceRepo) SaveWithLock(_ context.Context, invoice *ledger.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts > 0 {
		r.conflicts--
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Invoice was modified concurrently")
	}
	stored := copyInvoice(invoice)
	stored.ClearDomainEvents()
	r.invoices[invoice.ID] = stored
	return nil
}

func (r *memInvoiceRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, nil
	}
	return copyInvoice(inv), nil
}

func (r *memInvoiceRepo) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Invoice, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *memInvoiceRepo) FindOpenByCustomer(_ context.Context, tenantID, customerID uuid.UUID) ([]*ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var open []*ledger.Invoice
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.CustomerID == customerID && inv.Status.IsOpen() {
			open = append(open, copyInvoice(inv))
		}
	}
	sort.Slice(open, func(i, j int) bool {
		a, b := open[i], open[j]
		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		if !a.IssueDate.Equal(b.IssueDate) {
			return a.IssueDate.Before(b.IssueDate)
		}
		return a.InvoiceNumber < b.InvoiceNumber
	})
	return open, nil
}

func (r *memInvoiceRepo) FindOpenByCustomerForUpdate(ctx context.Context, tenantID, customerID uuid.UUID) ([]*ledger.Invoice, error) {
	return r.FindOpenByCustomer(ctx, tenantID, customerID)
}

func (r *memInvoiceRepo) FindByCustomer(_ context.Context, tenantID, customerID uuid.UUID, _ shared.Filter) ([]*ledger.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*ledger.Invoice
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.CustomerID == customerID {
			all = append(all, copyInvoice(inv))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].InvoiceNumber < all[j].InvoiceNumber })
	return all, int64(len(all)), nil
}

func (r *memInvoiceRepo) FindDueBefore(_ context.Context, cutoff time.Time, limit int) ([]*ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*ledger.Invoice
	for _, inv := range r.invoices {
		if inv.IsPastDue(cutoff) && inv.Status != ledger.InvoiceStatusOverdue {
			due = append(due, copyInvoice(inv))
		}
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (r *memInvoiceRepo) SumInvoicedByCustomer(_ context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.CustomerID == customerID && inv.Status != ledger.InvoiceStatusCancelled {
			total = total.Add(inv.TotalAmount)
		}
	}
	return total, nil
}

func (r *memInvoiceRepo) ExistsByNumber(_ context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.InvoiceNumber == invoiceNumber {
			return true, nil
		}
	}
	return false, nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*ledger.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]*ledger.Payment)}
}

func (r *memPaymentRepo) Save(_ context.Context, payment *ledger.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := copyPayment(payment)
	stored.ClearDomainEvents()
	r.payments[payment.ID] = stored
	return nil
}

func (r *memPaymentRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return copyPayment(p), nil
}

func (r *memPaymentRepo) FindByCustomer(_ context.Context, tenantID, customerID uuid.UUID, _ shared.Filter) ([]*ledger.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*ledger.Payment
	for _, p := range r.payments {
		if p.TenantID == tenantID && p.CustomerID == customerID {
			all = append(all, copyPayment(p))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PaymentNumber < all[j].PaymentNumber })
	return all, int64(len(all)), nil
}

func (r *memPaymentRepo) SumAllocatedByCustomer(_ context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, p := range r.payments {
		if p.TenantID == tenantID && p.CustomerID == customerID {
			total = total.Add(p.AllocatedAmount)
		}
	}
	return total, nil
}

func (r *memPaymentRepo) FindApplicationsByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]ledger.PaymentApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var applications []ledger.PaymentApplication
	for _, p := range r.payments {
		if p.TenantID != tenantID {
			continue
		}
		for _, app := range p.Applications {
			if app.InvoiceID == invoiceID {
				applications = append(applications, app)
			}
		}
	}
	sort.Slice(applications, func(i, j int) bool {
		return applications[i].AppliedAt.Before(applications[j].AppliedAt)
	})
	return applications, nil
}

type memCreditRepo struct {
	mu      sync.Mutex
	credits map[uuid.UUID]*ledger.Credit
}

func newMemCreditRepo() *memCreditRepo {
	return &memCreditRepo{credits: make(map[uuid.UUID]*ledger.Credit)}
}

func (r *memCreditRepo) Save(_ context.Context, credit *ledger.Credit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := copyCredit(credit)
	stored.ClearDomainEvents()
	r.credits[credit.ID] = stored
	return nil
}

func (r *memCreditRepo) SaveWithLock(ctx context.Context, credit *ledger.Credit) error {
	return r.Save(ctx, credit)
}

func (r *memCreditRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Credit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credits[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	return copyCredit(c), nil
}

func (r *memCreditRepo) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Credit, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *memCreditRepo) FindByCustomer(_ context.Context, tenantID, customerID uuid.UUID, _ shared.Filter) ([]*ledger.Credit, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*ledger.Credit
	for _, c := range r.credits {
		if c.TenantID == tenantID && c.CustomerID == customerID {
			all = append(all, copyCredit(c))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreditNumber < all[j].CreditNumber })
	return all, int64(len(all)), nil
}

func (r *memCreditRepo) FindActiveByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*ledger.Credit, error) {
	all, _, err := r.FindByCustomer(ctx, tenantID, customerID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	var active []*ledger.Credit
	for _, c := range all {
		if c.IsActive() {
			active = append(active, c)
		}
	}
	return active, nil
}

func (r *memCreditRepo) FindApplicationsByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]ledger.CreditApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var applications []ledger.CreditApplication
	for _, c := range r.credits {
		if c.TenantID != tenantID {
			continue
		}
		for _, app := range c.Applications {
			if app.InvoiceID == invoiceID {
				applications = append(applications, app)
			}
		}
	}
	sort.Slice(applications, func(i, j int) bool {
		return applications[i].AppliedAt.Before(applications[j].AppliedAt)
	})
	return applications, nil
}

type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*ledger.LedgerAccount // keyed by customer ID
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[uuid.UUID]*ledger.LedgerAccount)}
}

func (r *memAccountRepo) Save(_ context.Context, account *ledger.LedgerAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.CustomerID] = account
	return nil
}

func (r *memAccountRepo) FindByCustomer(_ context.Context, tenantID, customerID uuid.UUID) (*ledger.LedgerAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[customerID]
	if !ok || a.TenantID != tenantID {
		return nil, nil
	}
	return a, nil
}

type memOutboxRepo struct {
	mu      sync.Mutex
	entries []*shared.OutboxEntry
}

func newMemOutboxRepo() *memOutboxRepo {
	return &memOutboxRepo{}
}

func (r *memOutboxRepo) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *memOutboxRepo) FindPending(_ context.Context, limit int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending {
			pending = append(pending, e)
		}
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (r *memOutboxRepo) FindRetryable(_ context.Context, _ time.Time, _ int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *memOutboxRepo) MarkProcessing(_ context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var marked []*shared.OutboxEntry
	for _, e := range r.entries {
		for _, id := range ids {
			if e.ID == id {
				if err := e.MarkProcessing(); err == nil {
					marked = append(marked, e)
				}
			}
		}
	}
	return marked, nil
}

func (r *memOutboxRepo) Update(_ context.Context, _ *shared.OutboxEntry) error {
	return nil
}

func (r *memOutboxRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *memOutboxRepo) CountByStatus(_ context.Context) (map[shared.OutboxStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (r *memOutboxRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.entries))
	for i, e := range r.entries {
		types[i] = e.EventType
	}
	return types
}

type fakeSummaryCache struct {
	mu            sync.Mutex
	summaries     map[string]*CustomerLedgerSummary
	invalidations int
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{summaries: make(map[string]*CustomerLedgerSummary)}
}

func cacheKey(tenantID, customerID uuid.UUID) string {
	return tenantID.String() + ":" + customerID.String()
}

func (c *fakeSummaryCache) Get(_ context.Context, tenantID, customerID uuid.UUID) (*CustomerLedgerSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaries[cacheKey(tenantID, customerID)], nil
}

func (c *fakeSummaryCache) Set(_ context.Context, tenantID, customerID uuid.UUID, summary *CustomerLedgerSummary, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries[cacheKey(tenantID, customerID)] = summary
	return nil
}

func (c *fakeSummaryCache) Invalidate(_ context.Context, tenantID, customerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.summaries, cacheKey(tenantID, customerID))
	c.invalidations++
	return nil
}

// seqNumberGenerator hands out predictable document numbers
type seqNumberGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *seqNumberGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%03d", prefix, g.next)
}

// testEnv bundles the fakes behind a NoOpTransactionScope
type testEnv struct {
	scope    *NoOpTransactionScope
	invoices *memInvoiceRepo
	payments *memPaymentRepo
	credits  *memCreditRepo
	accounts *memAccountRepo
	outbox   *memOutboxRepo
	cache    *fakeSummaryCache
	numbers  *seqNumberGenerator
}

func newTestEnv() *testEnv {
	invoices := newMemInvoiceRepo()
	payments := newMemPaymentRepo()
	credits := newMemCreditRepo()
	accounts := newMemAccountRepo()
	outbox := newMemOutboxRepo()
	return &testEnv{
		scope:    NewNoOpTransactionScope(invoices, payments, credits, accounts, outbox),
		invoices: invoices,
		payments: payments,
		credits:  credits,
		accounts: accounts,
		outbox:   outbox,
		cache:    newFakeSummaryCache(),
		numbers:  &seqNumberGenerator{},
	}
}

var _ ledger.InvoiceRepository = (*memInvoiceRepo)(nil)
var _ ledger.PaymentRepository = (*memPaymentRepo)(nil)
var _ ledger.CreditRepository = (*memCreditRepo)(nil)
var _ ledger.LedgerAccountRepository = (*memAccountRepo)(nil)
var _ shared.OutboxRepository = (*memOutboxRepo)(nil)
var _ SummaryCache = (*fakeSummaryCache)(nil)
