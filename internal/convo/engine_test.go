package convo

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"langsense-bot/internal/gateway"
	"langsense-bot/internal/metrics"
	"langsense-bot/internal/repo"
	"langsense-bot/internal/store"
)

type sentMessage struct {
	chat int64
	text string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeSender) Send(ctx context.Context, chatID int64, text string, kb *gateway.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chat: chatID, text: text})
	return nil
}

func (f *fakeSender) to(chat int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, m := range f.sent {
		if m.chat == chat {
			texts = append(texts, m.text)
		}
	}
	return texts
}

const adminChat = int64(999)

type testEnv struct {
	repo   *repo.Repository
	engine *Engine
	sender *fakeSender
	states *Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.Registry("convotest")

	r, err := repo.New(context.Background(), store.NewMemory(), nil, logger)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	if err := r.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sender := &fakeSender{}
	notifier := gateway.NewNotifier(sender, []int64{adminChat}, 2, logger, m)
	states := NewManager(time.Hour, m)
	engine := NewEngine(r, sender, notifier, states, logger, m)
	return &testEnv{repo: r, engine: engine, sender: sender, states: states}
}

func (env *testEnv) register(t *testing.T, telegramID int64) repo.User {
	t.Helper()
	u, err := env.repo.RegisterUser(context.Background(), telegramID, "Test User", "+10000000001", "ar")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u
}

func (env *testEnv) step(t *testing.T, user repo.User, text string) {
	t.Helper()
	env.engine.Handle(context.Background(), gateway.Inbound{
		ChatID:   user.TelegramID,
		SenderID: user.TelegramID,
		Text:     text,
	}, &user)
}

func TestWithdrawalHappyPath(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 100)
	ctx := context.Background()

	env.engine.StartWithdrawal(ctx, user.TelegramID, user)
	env.step(t, user, "🏢 STC Pay")
	env.step(t, user, "0501234567")
	env.step(t, user, "500")
	env.step(t, user, "123")
	env.step(t, user, "تأكيد")

	txns, err := env.repo.TransactionsByCustomer(ctx, user.CustomerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(txns))
	}
	txn := txns[0]
	if txn.Kind != repo.KindWithdraw || txn.Status != repo.StatusPending {
		t.Fatalf("unexpected transaction: %+v", txn)
	}
	if txn.Amount.String() != "500" {
		t.Fatalf("amount = %s, want 500", txn.Amount)
	}
	if txn.Company != "STC Pay" || txn.WalletNumber != "0501234567" {
		t.Fatalf("collected params wrong: %+v", txn)
	}
	if txn.ExchangeAddress == "" {
		t.Fatal("payout address not attached")
	}

	adminMsgs := env.sender.to(adminChat)
	if len(adminMsgs) != 1 {
		t.Fatalf("expected exactly one admin notification, got %d", len(adminMsgs))
	}
	if !strings.Contains(adminMsgs[0], txn.ID) {
		t.Fatalf("admin notification missing id: %s", adminMsgs[0])
	}

	if env.states.Active(user.TelegramID) {
		t.Fatal("state not cleared after terminal step")
	}
}

func TestWithdrawalAmountBelowMinStays(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 100)
	ctx := context.Background()

	env.engine.StartWithdrawal(ctx, user.TelegramID, user)
	env.step(t, user, "🏢 STC Pay")
	env.step(t, user, "0501234567")
	env.step(t, user, "50")

	st, ok := env.states.Get(user.TelegramID)
	if !ok {
		t.Fatal("state cleared on invalid amount")
	}
	if st.Step != StepWithdrawAmount {
		t.Fatalf("expected to stay in amount step, got %s", st.Step)
	}

	txns, err := env.repo.TransactionsByCustomer(ctx, user.CustomerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 0 {
		t.Fatalf("transaction created for invalid amount: %+v", txns)
	}

	// Retrying with a valid amount continues the flow.
	env.step(t, user, "500")
	st, _ = env.states.Get(user.TelegramID)
	if st.Step != StepWithdrawCode {
		t.Fatalf("expected code step after valid amount, got %s", st.Step)
	}
}

func TestWithdrawalFinalConfirmReprompts(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 100)
	ctx := context.Background()

	env.engine.StartWithdrawal(ctx, user.TelegramID, user)
	env.step(t, user, "🏢 STC Pay")
	env.step(t, user, "0501234567")
	env.step(t, user, "500")
	env.step(t, user, "123")
	env.step(t, user, "ربما")

	st, ok := env.states.Get(user.TelegramID)
	if !ok || st.Step != StepWithdrawConfirm {
		t.Fatalf("ambiguous input must re-prompt, state=%v ok=%v", st.Step, ok)
	}

	env.step(t, user, "لا")
	if env.states.Active(user.TelegramID) {
		t.Fatal("cancel word did not clear state")
	}
	txns, _ := env.repo.TransactionsByCustomer(ctx, user.CustomerID)
	if len(txns) != 0 {
		t.Fatal("cancelled withdrawal still created a transaction")
	}
}

func TestCancelTokenClearsAnyStep(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 100)
	ctx := context.Background()

	env.engine.StartDeposit(ctx, user.TelegramID, user)
	env.step(t, user, "🏢 STC Pay")
	env.step(t, user, "إلغاء")

	if env.states.Active(user.TelegramID) {
		t.Fatal("cancel token did not clear state")
	}
	txns, _ := env.repo.TransactionsByCustomer(ctx, user.CustomerID)
	if len(txns) != 0 {
		t.Fatal("cancelled deposit still created a transaction")
	}
}

func TestConversationsAreIsolatedPerUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, 100)
	bob, err := env.repo.RegisterUser(context.Background(), 200, "Bob", "+20000000002", "ar")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	env.engine.StartWithdrawal(ctx, alice.TelegramID, alice)
	env.engine.StartWithdrawal(ctx, bob.TelegramID, bob)

	env.step(t, alice, "🏢 STC Pay")
	env.step(t, bob, "🏢 Vodafone Cash")
	env.step(t, alice, "1111111111")
	env.step(t, bob, "2222222222")
	env.step(t, alice, "500")
	env.step(t, bob, "900")
	env.step(t, alice, "aaa")
	env.step(t, bob, "bbb")
	env.step(t, alice, "تأكيد")
	env.step(t, bob, "تأكيد")

	aliceTxns, _ := env.repo.TransactionsByCustomer(ctx, alice.CustomerID)
	bobTxns, _ := env.repo.TransactionsByCustomer(ctx, bob.CustomerID)
	if len(aliceTxns) != 1 || len(bobTxns) != 1 {
		t.Fatalf("expected one transaction each, got %d and %d", len(aliceTxns), len(bobTxns))
	}
	if aliceTxns[0].Amount.String() != "500" || aliceTxns[0].WalletNumber != "1111111111" {
		t.Fatalf("alice params contaminated: %+v", aliceTxns[0])
	}
	if bobTxns[0].Amount.String() != "900" || bobTxns[0].WalletNumber != "2222222222" {
		t.Fatalf("bob params contaminated: %+v", bobTxns[0])
	}
}

func TestRegistrationFlowWithContact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.engine.StartRegistration(ctx, 300, 300, "ar")
	env.engine.Handle(ctx, gateway.Inbound{ChatID: 300, SenderID: 300, Text: "New Person"}, nil)
	env.engine.Handle(ctx, gateway.Inbound{
		ChatID:   300,
		SenderID: 300,
		Contact:  &gateway.Contact{PhoneNumber: "+10000000001", FirstName: "New"},
	}, nil)

	user, err := env.repo.UserByTelegramID(ctx, 300)
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Name != "New Person" || user.Phone != "+10000000001" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.IsBanned {
		t.Fatal("new user must not be banned")
	}
	if user.CustomerID == "" {
		t.Fatal("customer id not assigned")
	}
	if env.states.Active(300) {
		t.Fatal("registration state not cleared")
	}
}

func TestConfirmSynonyms(t *testing.T) {
	for _, text := range []string{"تأكيد", "موافق", "نعم", "YES", "ok", "Confirm please"} {
		if !IsConfirm(text) {
			t.Fatalf("expected %q to read as confirmation", text)
		}
	}
	for _, text := range []string{"إلغاء", "cancel", "NO"} {
		if !IsCancelWord(text) {
			t.Fatalf("expected %q to read as cancellation", text)
		}
	}
	if IsConfirm("ربما لاحقا") {
		t.Fatal("ambiguous text must not confirm")
	}
}

func TestManagerEvictsStaleStates(t *testing.T) {
	m := NewManager(10*time.Millisecond, metrics.Registry("convotest"))
	m.Set(1, StepDepositCompany, nil)
	if !m.Active(1) {
		t.Fatal("fresh state missing")
	}
	time.Sleep(25 * time.Millisecond)
	if m.Active(1) {
		t.Fatal("stale state not evicted")
	}
}
