package repo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"langsense-bot/internal/store"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r, err := New(context.Background(), store.NewMemory(), nil, logger)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	if err := r.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return r
}

func registerTestUser(t *testing.T, r *Repository, telegramID int64) User {
	t.Helper()
	u, err := r.RegisterUser(context.Background(), telegramID, "Test User", "+10000000001", "ar")
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	return u
}

func TestRegisterUserAssignsUniqueCustomerIDs(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := int64(1); i <= 50; i++ {
		u, err := r.RegisterUser(ctx, i, "User Name", "+1000000000", "ar")
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if u.IsBanned {
			t.Fatal("new user must not be banned")
		}
		if seen[u.CustomerID] {
			t.Fatalf("duplicate customer id %s", u.CustomerID)
		}
		seen[u.CustomerID] = true
	}
}

func TestRegisterUserDuplicateTelegramID(t *testing.T) {
	r := newTestRepo(t)
	registerTestUser(t, r, 7)

	_, err := r.RegisterUser(context.Background(), 7, "Again", "+1000000000", "ar")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCustomerSeqSurvivesRestart(t *testing.T) {
	s := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	r1, err := New(ctx, s, nil, logger)
	if err != nil {
		t.Fatal(err)
	}
	u1, err := r1.RegisterUser(ctx, 1, "First User", "+1000000000", "ar")
	if err != nil {
		t.Fatal(err)
	}

	r2, err := New(ctx, s, nil, logger)
	if err != nil {
		t.Fatal(err)
	}
	u2, err := r2.RegisterUser(ctx, 2, "Second User", "+1000000000", "ar")
	if err != nil {
		t.Fatal(err)
	}
	if u2.CustomerID == u1.CustomerID {
		t.Fatalf("customer id %s reused after restart", u2.CustomerID)
	}
}

func TestTransactionIDsUniqueWithinSameSecond(t *testing.T) {
	r := newTestRepo(t)
	user := registerTestUser(t, r, 1)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		txn, err := r.CreateTransaction(ctx, user, NewTransactionRequest{
			Kind:         KindDeposit,
			Company:      "STC Pay",
			WalletNumber: "0501234567",
			Amount:       decimal.NewFromInt(100),
		})
		if err != nil {
			t.Fatalf("create transaction %d: %v", i, err)
		}
		if seen[txn.ID] {
			t.Fatalf("duplicate transaction id %s", txn.ID)
		}
		seen[txn.ID] = true
	}
}

func TestDecideTransactionIsTerminal(t *testing.T) {
	r := newTestRepo(t)
	user := registerTestUser(t, r, 1)
	ctx := context.Background()

	txn, err := r.CreateTransaction(ctx, user, NewTransactionRequest{
		Kind:         KindWithdraw,
		Company:      "STC Pay",
		WalletNumber: "0501234567",
		Amount:       decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatal(err)
	}
	if txn.Status != StatusPending {
		t.Fatalf("expected pending, got %s", txn.Status)
	}

	decided, err := r.DecideTransaction(ctx, txn.ID, StatusApproved, "", "42")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != StatusApproved || decided.ProcessedBy != "42" {
		t.Fatalf("unexpected decision result: %+v", decided)
	}

	_, err = r.DecideTransaction(ctx, txn.ID, StatusRejected, "late", "43")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	reread, err := r.TransactionByID(ctx, txn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reread.Status != StatusApproved {
		t.Fatalf("terminal status changed to %s", reread.Status)
	}
}

func TestBannedUserCannotTransactOrComplain(t *testing.T) {
	r := newTestRepo(t)
	user := registerTestUser(t, r, 1)
	ctx := context.Background()

	banned, err := r.BanUser(ctx, user.CustomerID, "violation")
	if err != nil {
		t.Fatalf("ban: %v", err)
	}
	if !banned.IsBanned || banned.BanReason != "violation" {
		t.Fatalf("ban not recorded: %+v", banned)
	}

	_, err = r.CreateTransaction(ctx, banned, NewTransactionRequest{
		Kind:         KindDeposit,
		Company:      "STC Pay",
		WalletNumber: "0501234567",
		Amount:       decimal.NewFromInt(100),
	})
	if !errors.Is(err, ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}
	_, err = r.CreateComplaint(ctx, banned, "let me back in")
	if !errors.Is(err, ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}

	txns, err := r.TransactionsByCustomer(ctx, user.CustomerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 0 {
		t.Fatalf("banned user created %d transactions", len(txns))
	}

	unbanned, err := r.UnbanUser(ctx, user.CustomerID)
	if err != nil {
		t.Fatalf("unban: %v", err)
	}
	if unbanned.IsBanned {
		t.Fatal("user still banned after unban")
	}
}

func TestCreateTransactionEnforcesLimits(t *testing.T) {
	r := newTestRepo(t)
	user := registerTestUser(t, r, 1)
	ctx := context.Background()

	_, err := r.CreateTransaction(ctx, user, NewTransactionRequest{
		Kind:         KindWithdraw,
		Company:      "STC Pay",
		WalletNumber: "0501234567",
		Amount:       decimal.NewFromInt(50),
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error below minimum, got %v", err)
	}

	_, err = r.CreateTransaction(ctx, user, NewTransactionRequest{
		Kind:         KindWithdraw,
		Company:      "STC Pay",
		WalletNumber: "0501234567",
		Amount:       decimal.NewFromInt(20000),
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error above maximum, got %v", err)
	}
}

func TestSettingsSeedGetSet(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	min := r.SettingDecimal(ctx, SettingMinDeposit, decimal.NewFromInt(-1))
	if !min.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("seeded min_deposit = %s", min)
	}

	if err := r.SetSetting(ctx, SettingMinDeposit, "75"); err != nil {
		t.Fatalf("set setting: %v", err)
	}
	min = r.SettingDecimal(ctx, SettingMinDeposit, decimal.NewFromInt(-1))
	if !min.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("updated min_deposit = %s", min)
	}

	err := r.SetSetting(ctx, "no_such_key", "1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown key, got %v", err)
	}
}

func TestDeleteCompanyCascadesPaymentMethods(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	company, err := r.AddCompany(ctx, "Test Bank", ServiceBoth, "test")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := r.AddPaymentMethod(ctx, company.ID, "IBAN", "bank", "SA000000", ""); err != nil {
			t.Fatalf("add method: %v", err)
		}
	}

	deleted, methodsRemoved, err := r.DeleteCompany(ctx, company.ID)
	if err != nil {
		t.Fatalf("delete company: %v", err)
	}
	if deleted.ID != company.ID {
		t.Fatalf("wrong company deleted: %+v", deleted)
	}
	if methodsRemoved != 2 {
		t.Fatalf("expected 2 cascaded methods, got %d", methodsRemoved)
	}

	methods, err := r.ListPaymentMethods(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range methods {
		if m.CompanyID == company.ID {
			t.Fatalf("orphaned payment method %s", m.ID)
		}
	}
	if _, err := r.CompanyByID(ctx, company.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("company still present: %v", err)
	}
}

func TestAnswerComplaintOnce(t *testing.T) {
	r := newTestRepo(t)
	user := registerTestUser(t, r, 1)
	ctx := context.Background()

	complaint, err := r.CreateComplaint(ctx, user, "payment stuck")
	if err != nil {
		t.Fatal(err)
	}
	if complaint.Status != StatusPending {
		t.Fatalf("expected pending, got %s", complaint.Status)
	}

	answered, err := r.AnswerComplaint(ctx, complaint.ID, "resolved")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answered.Status != StatusAnswered || answered.AdminResponse != "resolved" {
		t.Fatalf("unexpected answer result: %+v", answered)
	}

	_, err = r.AnswerComplaint(ctx, complaint.ID, "again")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
}

func TestSearchUsers(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	alice, err := r.RegisterUser(ctx, 1, "Alice Smith", "+10000000001", "ar")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.RegisterUser(ctx, 2, "Bob Jones", "+20000000002", "ar"); err != nil {
		t.Fatal(err)
	}

	byName, err := r.SearchUsers(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(byName) != 1 || byName[0].CustomerID != alice.CustomerID {
		t.Fatalf("search by name: %+v", byName)
	}

	byCustomer, err := r.SearchUsers(ctx, alice.CustomerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(byCustomer) != 1 {
		t.Fatalf("search by customer id: %+v", byCustomer)
	}

	byPhone, err := r.SearchUsers(ctx, "2000000000")
	if err != nil {
		t.Fatal(err)
	}
	if len(byPhone) != 1 || byPhone[0].Name != "Bob Jones" {
		t.Fatalf("search by phone: %+v", byPhone)
	}
}
