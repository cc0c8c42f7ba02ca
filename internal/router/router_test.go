package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"langsense-bot/internal/config"
	"langsense-bot/internal/convo"
	"langsense-bot/internal/gateway"
	"langsense-bot/internal/menus"
	"langsense-bot/internal/metrics"
	"langsense-bot/internal/repo"
	"langsense-bot/internal/store"
)

const adminID = int64(99)

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

type testEnv struct {
	repo   *repo.Repository
	router *Router
	sender *fakeSender
	states *convo.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.Registry("routertest")

	r, err := repo.New(context.Background(), store.NewMemory(), nil, logger)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	if err := r.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sender := &fakeSender{}
	notifier := gateway.NewNotifier(sender, []int64{adminID}, 2, logger, m)
	states := convo.NewManager(time.Hour, m)
	engine := convo.NewEngine(r, sender, notifier, states, logger, m)
	cfg := &config.Config{AdminIDs: []int64{adminID}}
	rt := New(cfg, r, engine, sender, logger, m)
	return &testEnv{repo: r, router: rt, sender: sender, states: states}
}

func (env *testEnv) register(t *testing.T, telegramID int64, phone string) repo.User {
	t.Helper()
	u, err := env.repo.RegisterUser(context.Background(), telegramID, "Test User", phone, "ar")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u
}

func (env *testEnv) message(chat int64, text string) {
	env.router.Handle(context.Background(), gateway.Inbound{ChatID: chat, SenderID: chat, Text: text})
}

func (env *testEnv) pendingDeposit(t *testing.T, user repo.User) repo.Transaction {
	t.Helper()
	txn, err := env.repo.CreateTransaction(context.Background(), user, repo.NewTransactionRequest{
		Kind:         repo.KindDeposit,
		Company:      "STC Pay",
		WalletNumber: "0501234567",
		Amount:       decimal.NewFromInt(250),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return txn
}

func TestBannedUserGetsOnlyBanNotice(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 100, "+10000000001")
	if _, err := env.repo.BanUser(context.Background(), user.CustomerID, "abuse"); err != nil {
		t.Fatal(err)
	}

	env.message(100, menus.LabelDepositAr)

	msgs := env.sender.to(100)
	if len(msgs) != 1 {
		t.Fatalf("expected exactly the ban notice, got %d messages", len(msgs))
	}
	if env.states.Active(100) {
		t.Fatal("banned user must not start a conversation")
	}
	txns, _ := env.repo.TransactionsByCustomer(context.Background(), user.CustomerID)
	if len(txns) != 0 {
		t.Fatal("banned user created a transaction")
	}

	// The short-circuit also applies to free text and commands.
	env.message(100, "/start")
	env.message(100, "hello")
	if got := len(env.sender.to(100)); got != 3 {
		t.Fatalf("every event must yield a single ban notice, got %d messages", got)
	}
}

func TestAdminApproveFreeText(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 100, "+10000000001")
	txn := env.pendingDeposit(t, user)

	env.message(adminID, "تمت الموافقة على الطلب "+txn.ID+" شكرا")

	got, err := env.repo.TransactionByID(context.Background(), txn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != repo.StatusApproved {
		t.Fatalf("status = %s, want approved", got.Status)
	}
	if got.ProcessedBy != "99" {
		t.Fatalf("processed_by = %q, want admin id", got.ProcessedBy)
	}

	customerMsgs := env.sender.to(100)
	if len(customerMsgs) != 1 || !strings.Contains(customerMsgs[0], txn.ID) {
		t.Fatalf("customer not notified of the decision: %v", customerMsgs)
	}
	adminMsgs := env.sender.to(adminID)
	if len(adminMsgs) != 1 || !strings.Contains(adminMsgs[0], txn.ID) {
		t.Fatalf("admin confirmation missing: %v", adminMsgs)
	}
}

func TestAdminApproveIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 100, "+10000000001")
	txn := env.pendingDeposit(t, user)

	env.message(adminID, "موافقة "+txn.ID)
	env.message(adminID, "رفض "+txn.ID+" متأخر")

	got, err := env.repo.TransactionByID(context.Background(), txn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != repo.StatusApproved {
		t.Fatalf("second decision changed status to %s", got.Status)
	}
	if got := env.sender.to(100); len(got) != 1 {
		t.Fatalf("customer must be notified exactly once, got %d", len(got))
	}
}

func TestAdminRejectCollectsReason(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 100, "+10000000001")
	txn := env.pendingDeposit(t, user)

	env.message(adminID, "رفض "+txn.ID+" مستندات ناقصة")

	got, err := env.repo.TransactionByID(context.Background(), txn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != repo.StatusRejected {
		t.Fatalf("status = %s, want rejected", got.Status)
	}
	if !strings.Contains(got.AdminNote, "مستندات ناقصة") {
		t.Fatalf("reason not recorded: %q", got.AdminNote)
	}
}

func TestAdminApproveWithoutIDAsksForIt(t *testing.T) {
	env := newTestEnv(t)

	env.message(adminID, "موافقة على الطلب")

	msgs := env.sender.to(adminID)
	if len(msgs) != 1 {
		t.Fatalf("expected a single prompt, got %d", len(msgs))
	}
}

func TestAdminBanCommand(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 100, "+10000000001")

	env.message(adminID, "حظر "+user.CustomerID+" spam")

	got, err := env.repo.UserByTelegramID(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsBanned {
		t.Fatal("user not banned")
	}

	env.message(adminID, "الغاء_حظر "+user.CustomerID)
	got, _ = env.repo.UserByTelegramID(context.Background(), 100)
	if got.IsBanned {
		t.Fatal("user still banned after unban")
	}
}

func TestAdminIsExemptFromConversationlessFallback(t *testing.T) {
	env := newTestEnv(t)

	env.message(adminID, "/admin")

	msgs := env.sender.to(adminID)
	if len(msgs) != 1 {
		t.Fatalf("expected the admin menu, got %d messages", len(msgs))
	}
}

func TestUnregisteredUserIsSentToRegistration(t *testing.T) {
	env := newTestEnv(t)

	env.message(500, "hello")

	st, ok := env.states.Get(500)
	if !ok {
		t.Fatal("registration conversation not started")
	}
	if st.Step != convo.StepRegisterName {
		t.Fatalf("expected name step, got %s", st.Step)
	}
}

func TestUnknownTextFallsBackToMenu(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 100, "+10000000001")

	env.message(100, "random gibberish")

	msgs := env.sender.to(100)
	if len(msgs) != 1 {
		t.Fatalf("expected a single fallback message, got %d", len(msgs))
	}
	if env.states.Active(100) {
		t.Fatal("fallback must not start a conversation")
	}
}

func TestMenuLabelStartsDeposit(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 100, "+10000000001")

	env.message(100, menus.LabelDepositAr)

	st, ok := env.states.Get(100)
	if !ok || st.Step != convo.StepDepositCompany {
		t.Fatalf("deposit flow not started, state=%v ok=%v", st.Step, ok)
	}
}

func TestAdminReplyComplaintNotifiesCustomer(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 100, "+10000000001")
	complaint, err := env.repo.CreateComplaint(context.Background(), user, "الخدمة بطيئة")
	if err != nil {
		t.Fatal(err)
	}

	// The reply body deliberately contains a confirm word; the prefix
	// command must win over the approve matcher.
	env.message(adminID, "رد_شكوى "+complaint.ID+" نعم تم حل المشكلة")

	got, err := env.repo.ComplaintByID(context.Background(), complaint.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != repo.StatusAnswered {
		t.Fatalf("status = %s, want answered", got.Status)
	}
	if got.AdminResponse != "نعم تم حل المشكلة" {
		t.Fatalf("response not recorded: %q", got.AdminResponse)
	}

	customerMsgs := env.sender.to(100)
	if len(customerMsgs) != 1 || !strings.Contains(customerMsgs[0], "نعم تم حل المشكلة") {
		t.Fatalf("customer not notified of the answer: %v", customerMsgs)
	}
	adminMsgs := env.sender.to(adminID)
	if len(adminMsgs) != 1 || !strings.Contains(adminMsgs[0], complaint.ID) {
		t.Fatalf("admin confirmation missing: %v", adminMsgs)
	}

	// A complaint is answered exactly once.
	env.message(adminID, "رد_شكوى "+complaint.ID+" رد آخر")
	got, _ = env.repo.ComplaintByID(context.Background(), complaint.ID)
	if got.AdminResponse != "نعم تم حل المشكلة" {
		t.Fatalf("second reply overwrote the answer: %q", got.AdminResponse)
	}
	if len(env.sender.to(100)) != 1 {
		t.Fatal("customer notified again for an already answered complaint")
	}
}

func TestAdminEditCompanyCommand(t *testing.T) {
	env := newTestEnv(t)

	env.message(adminID, "تعديل_شركة 1 - withdraw")

	company, err := env.repo.CompanyByID(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	if company.Name != "STC Pay" {
		t.Fatalf("placeholder must keep the name, got %q", company.Name)
	}
	if company.ServiceType != repo.ServiceWithdraw {
		t.Fatalf("service type = %q, want withdraw", company.ServiceType)
	}

	env.message(adminID, "تعديل_شركة 999 Ghost")
	msgs := env.sender.to(adminID)
	if len(msgs) != 2 || msgs[1] != menus.AdminNotFound() {
		t.Fatalf("unknown company id must report not found: %v", msgs)
	}
}

func TestAdminEditAndDeletePaymentMethod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	method, err := env.repo.AddPaymentMethod(ctx, "1", "Bank Transfer", "bank", "SA0001", "")
	if err != nil {
		t.Fatal(err)
	}

	env.message(adminID, "تعديل_وسيلة "+method.ID+" - | - | SA9999")

	got, err := env.repo.PaymentMethodByID(ctx, method.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccountData != "SA9999" {
		t.Fatalf("account data = %q, want SA9999", got.AccountData)
	}
	if got.MethodName != "Bank Transfer" || got.MethodType != "bank" {
		t.Fatalf("placeholders must keep existing fields: %+v", got)
	}

	env.message(adminID, "حذف_وسيلة "+method.ID)
	if _, err := env.repo.PaymentMethodByID(ctx, method.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("method still present after delete: %v", err)
	}
}

func TestAdminBareCancelShowsMenu(t *testing.T) {
	env := newTestEnv(t)

	env.message(adminID, "إلغاء")

	msgs := env.sender.to(adminID)
	if len(msgs) != 1 {
		t.Fatalf("expected a single message, got %d", len(msgs))
	}
	if msgs[0] == menus.AdminMissingTxnID() {
		t.Fatal("bare cancel token fell through to the reject matcher")
	}
	if msgs[0] != menus.AdminWelcome() {
		t.Fatalf("expected the admin menu, got %q", msgs[0])
	}
}

func TestLanguageToggle(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 100, "+10000000001")

	env.message(100, menus.LabelSwitchToEn)

	got, err := env.repo.UserByTelegramID(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if got.Language != "en" {
		t.Fatalf("language = %q, want en", got.Language)
	}
	// English menu labels route once the preference is stored.
	env.message(100, menus.LabelWithdrawEn)
	st, ok := env.states.Get(100)
	if !ok || st.Step != convo.StepWithdrawCompany {
		t.Fatalf("withdrawal flow not started after toggle, state=%v ok=%v", st.Step, ok)
	}
}
