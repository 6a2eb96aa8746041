package ledger

import (
	"context"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or
// roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
	// ExecuteReadOnly runs the given function within a read-only
	// repeatable-read transaction, giving ledger reads a consistent
	// snapshot without taking row locks.
	ExecuteReadOnly(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all ledger repositories
// within a transaction. All repositories returned share the same
// underlying database transaction.
//
// Aggregate boundary notes:
//   - InvoiceRepo: Invoice aggregate root; balance movement goes through it.
//   - PaymentRepo: Payment aggregate root including its applications,
//     which are child entities persisted with the root.
//   - CreditRepo: Credit aggregate root including its applications.
//   - AccountRepo: per-customer ledger account rows (opening balances).
//   - OutboxRepo: audit events written in the same transaction as the
//     state they describe.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() ledger.InvoiceRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() ledger.PaymentRepository
	// CreditRepo returns the credit repository scoped to the current transaction
	CreditRepo() ledger.CreditRepository
	// AccountRepo returns the ledger account repository scoped to the current transaction
	AccountRepo() ledger.LedgerAccountRepository
	// OutboxRepo returns the outbox repository scoped to the current transaction
	OutboxRepo() shared.OutboxRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	invoiceRepo ledger.InvoiceRepository
	paymentRepo ledger.PaymentRepository
	creditRepo  ledger.CreditRepository
	accountRepo ledger.LedgerAccountRepository
	outboxRepo  shared.OutboxRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	invoiceRepo ledger.InvoiceRepository,
	paymentRepo ledger.PaymentRepository,
	creditRepo ledger.CreditRepository,
	accountRepo ledger.LedgerAccountRepository,
	outboxRepo shared.OutboxRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		creditRepo:  creditRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ExecuteReadOnly runs the function without a real transaction
func (s *NoOpTransactionScope) ExecuteReadOnly(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() ledger.InvoiceRepository {
	return s.invoiceRepo
}

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() ledger.PaymentRepository {
	return s.paymentRepo
}

// CreditRepo returns the credit repository
func (s *NoOpTransactionScope) CreditRepo() ledger.CreditRepository {
	return s.creditRepo
}

// AccountRepo returns the ledger account repository
func (s *NoOpTransactionScope) AccountRepo() ledger.LedgerAccountRepository {
	return s.accountRepo
}

// OutboxRepo returns the outbox repository
func (s *NoOpTransactionScope) OutboxRepo() shared.OutboxRepository {
	return s.outboxRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
