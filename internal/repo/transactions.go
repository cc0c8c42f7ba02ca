package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"langsense-bot/internal/store"
)

// NewTransactionRequest carries everything a guided flow collected.
type NewTransactionRequest struct {
	Kind            string
	Company         string
	WalletNumber    string
	Amount          decimal.Decimal
	ExchangeAddress string
	AdminNote       string
}

// CreateTransaction persists a pending transaction for the given user.
// Banned users are refused; limits come from Settings.
func (r *Repository) CreateTransaction(ctx context.Context, user User, req NewTransactionRequest) (Transaction, error) {
	if user.IsBanned {
		return Transaction{}, ErrBanned
	}
	if req.Kind != KindDeposit && req.Kind != KindWithdraw {
		return Transaction{}, validationf("unknown transaction kind %q", req.Kind)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, validationf("amount must be positive")
	}
	if err := r.checkLimits(ctx, req.Kind, req.Amount); err != nil {
		return Transaction{}, err
	}

	stamp := r.stamps.next()
	txn := Transaction{
		ID:              transactionID(req.Kind, stamp),
		CustomerID:      user.CustomerID,
		TelegramID:      user.TelegramID,
		Name:            user.Name,
		Kind:            req.Kind,
		Company:         req.Company,
		WalletNumber:    req.WalletNumber,
		Amount:          req.Amount,
		ExchangeAddress: req.ExchangeAddress,
		Status:          StatusPending,
		CreatedAt:       stamp,
		AdminNote:       req.AdminNote,
	}
	if err := r.store.Append(ctx, transactionsCollection, txn.record()); err != nil {
		return Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return txn, nil
}

func (r *Repository) checkLimits(ctx context.Context, kind string, amount decimal.Decimal) error {
	switch kind {
	case KindDeposit:
		min := r.SettingDecimal(ctx, SettingMinDeposit, decimal.NewFromInt(50))
		if amount.LessThan(min) {
			return validationf("minimum deposit is %s", min)
		}
	case KindWithdraw:
		min := r.SettingDecimal(ctx, SettingMinWithdrawal, decimal.NewFromInt(100))
		max := r.SettingDecimal(ctx, SettingMaxDailyWithdrawal, decimal.NewFromInt(10000))
		if amount.LessThan(min) {
			return validationf("minimum withdrawal is %s", min)
		}
		if amount.GreaterThan(max) {
			return validationf("maximum daily withdrawal is %s", max)
		}
	}
	return nil
}

// TransactionByID fetches one transaction.
func (r *Repository) TransactionByID(ctx context.Context, id string) (Transaction, error) {
	rec, err := store.FindOne(ctx, r.store, transactionsCollection, func(rec store.Record) bool {
		return rec["id"] == id
	})
	if errors.Is(err, store.ErrNoRecord) {
		return Transaction{}, ErrNotFound
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("find transaction: %w", err)
	}
	return transactionFromRecord(rec), nil
}

// TransactionsByCustomer lists a customer's transactions in creation order.
func (r *Repository) TransactionsByCustomer(ctx context.Context, customerID string) ([]Transaction, error) {
	return r.findTransactions(ctx, func(rec store.Record) bool {
		return rec["customer_id"] == customerID
	})
}

// TransactionsByStatus lists transactions in the given status.
func (r *Repository) TransactionsByStatus(ctx context.Context, status string) ([]Transaction, error) {
	return r.findTransactions(ctx, func(rec store.Record) bool {
		return rec["status"] == status
	})
}

func (r *Repository) findTransactions(ctx context.Context, pred store.Predicate) ([]Transaction, error) {
	records, err := store.FindAll(ctx, r.store, transactionsCollection, pred)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txns := make([]Transaction, 0, len(records))
	for _, rec := range records {
		txns = append(txns, transactionFromRecord(rec))
	}
	return txns, nil
}

// DecideTransaction resolves a pending transaction exactly once. A second
// decision returns ErrAlreadyProcessed; pending is the only mutable state.
func (r *Repository) DecideTransaction(ctx context.Context, id, status, note, adminID string) (Transaction, error) {
	if status != StatusApproved && status != StatusRejected {
		return Transaction{}, validationf("unknown decision %q", status)
	}

	current, err := r.TransactionByID(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	if current.Status != StatusPending {
		return Transaction{}, ErrAlreadyProcessed
	}

	// Re-check the status inside the predicate: the read above and this
	// rewrite are separate store operations, and another admin may have
	// decided in between.
	n, err := r.store.UpdateWhere(ctx, transactionsCollection,
		func(rec store.Record) bool {
			return rec["id"] == id && rec["status"] == StatusPending
		},
		func(rec store.Record) {
			rec["status"] = status
			if note != "" {
				rec["admin_note"] = note
			}
			rec["processed_by"] = adminID
		})
	if err != nil {
		return Transaction{}, fmt.Errorf("decide transaction: %w", err)
	}
	if n == 0 {
		return Transaction{}, ErrAlreadyProcessed
	}
	return r.TransactionByID(ctx, id)
}

// TransactionStats summarises the ledger for the admin dashboard.
type TransactionStats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

// Stats counts transactions per status.
func (r *Repository) Stats(ctx context.Context) (TransactionStats, error) {
	records, err := r.store.List(ctx, transactionsCollection)
	if err != nil {
		return TransactionStats{}, fmt.Errorf("transaction stats: %w", err)
	}
	var st TransactionStats
	st.Total = len(records)
	for _, rec := range records {
		switch rec["status"] {
		case StatusPending:
			st.Pending++
		case StatusApproved:
			st.Approved++
		case StatusRejected:
			st.Rejected++
		}
	}
	return st, nil
}
