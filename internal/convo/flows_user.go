package convo

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"langsense-bot/internal/gateway"
	"langsense-bot/internal/menus"
	"langsense-bot/internal/repo"
)

// StartRegistration opens the registration dialogue for an unknown
// telegram id.
func (e *Engine) StartRegistration(ctx context.Context, chatID, userID int64, lang string) {
	e.states.Set(userID, StepRegisterName, map[string]string{"lang": lang})
	e.send(ctx, chatID, menus.AskName(lang), &gateway.Keyboard{Remove: true})
}

func (e *Engine) stepRegisterName(ctx context.Context, in gateway.Inbound, st State, lang string) {
	name := strings.TrimSpace(in.Text)
	if utf8.RuneCountInString(name) < 2 {
		e.send(ctx, in.ChatID, menus.NameTooShort(lang), nil)
		return
	}
	st.Params["name"] = name
	e.advance(in.SenderID, st, StepRegisterPhone)
	e.send(ctx, in.ChatID, menus.AskPhone(lang), menus.ContactKeyboard(lang))
}

func (e *Engine) stepRegisterPhone(ctx context.Context, in gateway.Inbound, st State, lang string) {
	phone := strings.TrimSpace(in.Text)
	if in.Contact != nil {
		phone = in.Contact.PhoneNumber
	}

	user, err := e.repo.RegisterUser(ctx, in.SenderID, st.Params["name"], phone, lang)
	if err != nil {
		if repo.IsValidation(err) {
			e.send(ctx, in.ChatID, menus.PhoneInvalid(lang), nil)
			return
		}
		e.logger.Error("register user", "user", in.SenderID, "error", err)
		e.states.Clear(in.SenderID)
		e.send(ctx, in.ChatID, menus.FallbackMenu(lang), menus.MainKeyboard(lang))
		return
	}

	e.states.Clear(in.SenderID)
	e.send(ctx, in.ChatID, menus.Registered(lang, user.Name, user.CustomerID), menus.MainKeyboard(lang))
	e.notifier.NotifyAdmins(ctx, menus.AdminNewUser(user))
}

// StartDeposit opens the deposit dialogue.
func (e *Engine) StartDeposit(ctx context.Context, chatID int64, user repo.User) {
	e.startTransaction(ctx, chatID, user, repo.KindDeposit, StepDepositCompany)
}

// StartWithdrawal opens the withdrawal dialogue.
func (e *Engine) StartWithdrawal(ctx context.Context, chatID int64, user repo.User) {
	e.startTransaction(ctx, chatID, user, repo.KindWithdraw, StepWithdrawCompany)
}

func (e *Engine) startTransaction(ctx context.Context, chatID int64, user repo.User, kind string, first Step) {
	companies, err := e.repo.ActiveCompanies(ctx, kind)
	if err != nil {
		e.logger.Error("list companies", "error", err)
		e.send(ctx, chatID, menus.FallbackMenu(user.Language), menus.MainKeyboard(user.Language))
		return
	}
	if len(companies) == 0 {
		e.send(ctx, chatID, menus.NoCompanies(user.Language, kind), menus.MainKeyboard(user.Language))
		return
	}
	labels := make([]string, 0, len(companies))
	for _, c := range companies {
		labels = append(labels, "🏢 "+c.Name)
	}
	e.states.Set(user.TelegramID, first, map[string]string{"kind": kind})
	e.send(ctx, chatID, menus.ChooseCompany(user.Language, kind), menus.ListKeyboard(labels, user.Language))
}

func (e *Engine) stepSelectCompany(ctx context.Context, in gateway.Inbound, st State, user repo.User, kind string) {
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(in.Text), "🏢"))
	company, err := e.repo.CompanyByName(ctx, name)
	if err != nil || !company.IsActive {
		e.send(ctx, in.ChatID, menus.UnknownCompany(user.Language), nil)
		return
	}
	st.Params["company"] = company.Name
	st.Params["company_id"] = company.ID

	if kind == repo.KindWithdraw {
		e.advance(in.SenderID, st, StepWithdrawWallet)
		e.send(ctx, in.ChatID, menus.AskWallet(user.Language), &gateway.Keyboard{Remove: true})
		return
	}

	methods, err := e.repo.ActiveMethodsByCompany(ctx, company.ID)
	if err != nil {
		e.logger.Error("list payment methods", "company", company.ID, "error", err)
		methods = nil
	}
	if len(methods) == 0 {
		e.advance(in.SenderID, st, StepDepositWallet)
		e.send(ctx, in.ChatID, menus.AskWallet(user.Language), &gateway.Keyboard{Remove: true})
		return
	}
	labels := make([]string, 0, len(methods))
	for _, m := range methods {
		labels = append(labels, "💳 "+m.MethodName)
	}
	e.advance(in.SenderID, st, StepDepositMethod)
	e.send(ctx, in.ChatID, menus.ChooseMethod(user.Language, company.Name), menus.ListKeyboard(labels, user.Language))
}

func (e *Engine) stepDepositMethod(ctx context.Context, in gateway.Inbound, st State, user repo.User) {
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(in.Text), "💳"))
	methods, err := e.repo.ActiveMethodsByCompany(ctx, st.Params["company_id"])
	if err != nil {
		e.logger.Error("list payment methods", "error", err)
	}
	for _, m := range methods {
		if strings.EqualFold(m.MethodName, name) {
			st.Params["method"] = m.MethodName
			e.advance(in.SenderID, st, StepDepositWallet)
			e.send(ctx, in.ChatID, menus.MethodInfo(user.Language, m), nil)
			e.send(ctx, in.ChatID, menus.AskWallet(user.Language), &gateway.Keyboard{Remove: true})
			return
		}
	}
	e.send(ctx, in.ChatID, menus.UnknownMethod(user.Language), nil)
}

func (e *Engine) stepWallet(ctx context.Context, in gateway.Inbound, st State, user repo.User, next Step) {
	wallet := strings.TrimSpace(in.Text)
	if utf8.RuneCountInString(wallet) < 5 {
		e.send(ctx, in.ChatID, menus.WalletTooShort(user.Language), nil)
		return
	}
	st.Params["wallet"] = wallet
	e.advance(in.SenderID, st, next)

	kind := st.Params["kind"]
	min := e.repo.SettingDecimal(ctx, repo.SettingMinDeposit, decimal.NewFromInt(50))
	if kind == repo.KindWithdraw {
		min = e.repo.SettingDecimal(ctx, repo.SettingMinWithdrawal, decimal.NewFromInt(100))
	}
	e.send(ctx, in.ChatID, menus.AskAmount(user.Language, kind, min.String()), nil)
}

func (e *Engine) stepDepositAmount(ctx context.Context, in gateway.Inbound, st State, user repo.User) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Text))
	if err != nil {
		e.send(ctx, in.ChatID, menus.AmountInvalid(user.Language), nil)
		return
	}
	min := e.repo.SettingDecimal(ctx, repo.SettingMinDeposit, decimal.NewFromInt(50))
	if amount.LessThan(min) {
		e.send(ctx, in.ChatID, menus.AmountBelowMin(user.Language, min.String()), nil)
		return
	}

	txn, err := e.repo.CreateTransaction(ctx, user, repo.NewTransactionRequest{
		Kind:         repo.KindDeposit,
		Company:      st.Params["company"],
		WalletNumber: st.Params["wallet"],
		Amount:       amount,
		AdminNote:    st.Params["method"],
	})
	if err != nil {
		e.logger.Error("create deposit", "user", user.CustomerID, "error", err)
		e.states.Clear(in.SenderID)
		e.send(ctx, in.ChatID, menus.FallbackMenu(user.Language), menus.MainKeyboard(user.Language))
		return
	}

	e.states.Clear(in.SenderID)
	e.metrics.Transactions.WithLabelValues(repo.KindDeposit, repo.StatusPending).Inc()
	e.send(ctx, in.ChatID, menus.DepositCreated(user.Language, txn.ID, txn.Amount.String(), txn.Company), menus.MainKeyboard(user.Language))
	e.notifier.NotifyAdmins(ctx, menus.AdminNewTransaction(txn))
}

func (e *Engine) stepWithdrawAmount(ctx context.Context, in gateway.Inbound, st State, user repo.User) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Text))
	if err != nil {
		e.send(ctx, in.ChatID, menus.AmountInvalid(user.Language), nil)
		return
	}
	min := e.repo.SettingDecimal(ctx, repo.SettingMinWithdrawal, decimal.NewFromInt(100))
	max := e.repo.SettingDecimal(ctx, repo.SettingMaxDailyWithdrawal, decimal.NewFromInt(10000))
	if amount.LessThan(min) {
		e.send(ctx, in.ChatID, menus.AmountBelowMin(user.Language, min.String()), nil)
		return
	}
	if amount.GreaterThan(max) {
		e.send(ctx, in.ChatID, menus.AmountAboveMax(user.Language, max.String()), nil)
		return
	}

	address, err := e.repo.ActiveExchangeAddress(ctx)
	if err != nil {
		e.logger.Error("exchange address", "error", err)
		address = ""
	}
	st.Params["amount"] = amount.String()
	st.Params["address"] = address
	e.advance(in.SenderID, st, StepWithdrawCode)
	e.send(ctx, in.ChatID, menus.AskCode(user.Language, amount.String(), address), nil)
}

func (e *Engine) stepWithdrawCode(ctx context.Context, in gateway.Inbound, st State, user repo.User) {
	code := strings.TrimSpace(in.Text)
	if utf8.RuneCountInString(code) < 3 {
		e.send(ctx, in.ChatID, menus.CodeTooShort(user.Language), nil)
		return
	}
	st.Params["code"] = code
	e.advance(in.SenderID, st, StepWithdrawConfirm)
	e.send(ctx, in.ChatID, menus.FinalConfirm(user.Language,
		st.Params["company"], st.Params["wallet"], st.Params["amount"], st.Params["address"], code),
		menus.ConfirmKeyboard(user.Language))
}

func (e *Engine) stepWithdrawConfirm(ctx context.Context, in gateway.Inbound, st State, user repo.User) {
	switch {
	case IsConfirm(in.Text):
	case IsCancelWord(in.Text):
		e.states.Clear(in.SenderID)
		e.send(ctx, in.ChatID, menus.Cancelled(user.Language), menus.MainKeyboard(user.Language))
		return
	default:
		e.send(ctx, in.ChatID, menus.ConfirmReprompt(user.Language), nil)
		return
	}

	amount, _ := decimal.NewFromString(st.Params["amount"])
	txn, err := e.repo.CreateTransaction(ctx, user, repo.NewTransactionRequest{
		Kind:            repo.KindWithdraw,
		Company:         st.Params["company"],
		WalletNumber:    st.Params["wallet"],
		Amount:          amount,
		ExchangeAddress: st.Params["address"],
		AdminNote:       "code:" + st.Params["code"],
	})
	if err != nil {
		e.logger.Error("create withdrawal", "user", user.CustomerID, "error", err)
		e.states.Clear(in.SenderID)
		e.send(ctx, in.ChatID, menus.FallbackMenu(user.Language), menus.MainKeyboard(user.Language))
		return
	}

	e.states.Clear(in.SenderID)
	e.metrics.Transactions.WithLabelValues(repo.KindWithdraw, repo.StatusPending).Inc()
	e.send(ctx, in.ChatID, menus.WithdrawCreated(user.Language, txn.ID, txn.Amount.String(), txn.ExchangeAddress), menus.MainKeyboard(user.Language))
	e.notifier.NotifyAdmins(ctx, menus.AdminNewTransaction(txn))
}

// StartComplaint opens the complaint dialogue.
func (e *Engine) StartComplaint(ctx context.Context, chatID int64, user repo.User) {
	e.states.Set(user.TelegramID, StepComplaintText, nil)
	e.send(ctx, chatID, menus.AskComplaint(user.Language), &gateway.Keyboard{Remove: true})
}

func (e *Engine) stepComplaintText(ctx context.Context, in gateway.Inbound, _ State, user repo.User) {
	complaint, err := e.repo.CreateComplaint(ctx, user, in.Text)
	if err != nil {
		if repo.IsValidation(err) {
			e.send(ctx, in.ChatID, menus.AskComplaint(user.Language), nil)
			return
		}
		e.logger.Error("create complaint", "user", user.CustomerID, "error", err)
		e.states.Clear(in.SenderID)
		e.send(ctx, in.ChatID, menus.FallbackMenu(user.Language), menus.MainKeyboard(user.Language))
		return
	}
	e.states.Clear(in.SenderID)
	e.send(ctx, in.ChatID, menus.ComplaintCreated(user.Language, complaint.ID), menus.MainKeyboard(user.Language))
	e.notifier.NotifyAdmins(ctx, menus.AdminNewComplaint(complaint))
}
