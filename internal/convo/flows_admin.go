package convo

import (
	"context"
	"errors"
	"strings"

	"langsense-bot/internal/gateway"
	"langsense-bot/internal/menus"
	"langsense-bot/internal/repo"
)

// Admin wizards run in Arabic, like the rest of the admin panel.

// StartBroadcast asks the admin for the broadcast text.
func (e *Engine) StartBroadcast(ctx context.Context, chatID, adminID int64) {
	e.states.Set(adminID, StepBroadcastText, nil)
	e.send(ctx, chatID, menus.AdminAskBroadcast(), &gateway.Keyboard{Remove: true})
}

func (e *Engine) stepBroadcastText(ctx context.Context, in gateway.Inbound) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		e.send(ctx, in.ChatID, menus.AdminAskBroadcast(), nil)
		return
	}
	e.states.Clear(in.SenderID)

	users, err := e.repo.ListUsers(ctx)
	if err != nil {
		e.logger.Error("list users for broadcast", "error", err)
		e.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	recipients := make([]int64, 0, len(users))
	for _, u := range users {
		if !u.IsBanned {
			recipients = append(recipients, u.TelegramID)
		}
	}
	sent, failed := e.notifier.Broadcast(ctx, recipients, text)
	e.send(ctx, in.ChatID, menus.AdminBroadcastSummary(sent, failed), menus.AdminKeyboard())
}

// StartCompanyWizard walks the admin through creating a company.
func (e *Engine) StartCompanyWizard(ctx context.Context, chatID, adminID int64) {
	e.states.Set(adminID, StepCompanyName, nil)
	e.send(ctx, chatID, menus.AdminAskCompanyName(), &gateway.Keyboard{Remove: true})
}

func (e *Engine) stepCompanyName(ctx context.Context, in gateway.Inbound, st State) {
	name := strings.TrimSpace(in.Text)
	if name == "" {
		e.send(ctx, in.ChatID, menus.AdminAskCompanyName(), nil)
		return
	}
	st.Params["name"] = name
	e.advance(in.SenderID, st, StepCompanyType)
	e.send(ctx, in.ChatID, menus.AdminAskCompanyType(), nil)
}

func (e *Engine) stepCompanyType(ctx context.Context, in gateway.Inbound, st State) {
	serviceType, ok := normalizeServiceType(in.Text)
	if !ok {
		e.send(ctx, in.ChatID, menus.AdminAskCompanyType(), nil)
		return
	}
	st.Params["service_type"] = serviceType
	e.advance(in.SenderID, st, StepCompanyDetails)
	e.send(ctx, in.ChatID, menus.AdminAskCompanyDetails(), nil)
}

func (e *Engine) stepCompanyDetails(ctx context.Context, in gateway.Inbound, st State) {
	st.Params["details"] = strings.TrimSpace(in.Text)
	e.advance(in.SenderID, st, StepCompanyConfirm)
	e.send(ctx, in.ChatID,
		menus.AdminCompanyConfirm(st.Params["name"], st.Params["service_type"], st.Params["details"]),
		menus.ConfirmKeyboard("ar"))
}

func (e *Engine) stepCompanyConfirm(ctx context.Context, in gateway.Inbound, st State) {
	switch {
	case IsConfirm(in.Text):
	case IsCancelWord(in.Text):
		e.states.Clear(in.SenderID)
		e.send(ctx, in.ChatID, menus.Cancelled("ar"), menus.AdminKeyboard())
		return
	default:
		e.send(ctx, in.ChatID, menus.ConfirmReprompt("ar"), nil)
		return
	}

	e.states.Clear(in.SenderID)
	company, err := e.repo.AddCompany(ctx, st.Params["name"], st.Params["service_type"], st.Params["details"])
	if err != nil {
		e.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	e.send(ctx, in.ChatID, menus.AdminCompanyCreated(company), menus.AdminKeyboard())
}

// StartDeleteCompany asks which company to remove.
func (e *Engine) StartDeleteCompany(ctx context.Context, chatID, adminID int64) {
	e.states.Set(adminID, StepCompanyDelete, nil)
	e.send(ctx, chatID, menus.AdminAskDeleteCompany(), &gateway.Keyboard{Remove: true})
}

func (e *Engine) stepCompanyDelete(ctx context.Context, in gateway.Inbound) {
	e.states.Clear(in.SenderID)
	company, methodsRemoved, err := e.repo.DeleteCompany(ctx, strings.TrimSpace(in.Text))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			e.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
			return
		}
		e.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	e.send(ctx, in.ChatID, menus.AdminCompanyDeleted(company, methodsRemoved), menus.AdminKeyboard())
}

// StartMethodWizard creates a payment method in two steps.
func (e *Engine) StartMethodWizard(ctx context.Context, chatID, adminID int64) {
	e.states.Set(adminID, StepMethodCompany, nil)
	e.send(ctx, chatID, menus.AdminAskMethodCompany(), &gateway.Keyboard{Remove: true})
}

func (e *Engine) stepMethodCompany(ctx context.Context, in gateway.Inbound, st State) {
	id := strings.TrimSpace(in.Text)
	company, err := e.repo.CompanyByID(ctx, id)
	if err != nil {
		e.send(ctx, in.ChatID, menus.AdminNotFound(), nil)
		return
	}
	st.Params["company_id"] = company.ID
	e.advance(in.SenderID, st, StepMethodDetails)
	e.send(ctx, in.ChatID, menus.AdminAskMethodDetails(), nil)
}

func (e *Engine) stepMethodDetails(ctx context.Context, in gateway.Inbound, st State) {
	parts := strings.Split(in.Text, "|")
	if len(parts) < 3 {
		e.send(ctx, in.ChatID, menus.AdminMethodFormatError(), nil)
		return
	}
	name := strings.TrimSpace(parts[0])
	methodType := strings.TrimSpace(parts[1])
	accountData := strings.TrimSpace(parts[2])
	info := ""
	if len(parts) > 3 {
		info = strings.TrimSpace(parts[3])
	}

	method, err := e.repo.AddPaymentMethod(ctx, st.Params["company_id"], name, methodType, accountData, info)
	if err != nil {
		if repo.IsValidation(err) {
			e.send(ctx, in.ChatID, menus.AdminMethodFormatError(), nil)
			return
		}
		e.states.Clear(in.SenderID)
		e.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	e.states.Clear(in.SenderID)
	e.send(ctx, in.ChatID, menus.AdminMethodCreated(method), menus.AdminKeyboard())
}

// StartSearch prompts for a search query.
func (e *Engine) StartSearch(ctx context.Context, chatID, adminID int64) {
	e.states.Set(adminID, StepSearchQuery, nil)
	e.send(ctx, chatID, menus.AdminAskSearch(), &gateway.Keyboard{Remove: true})
}

func (e *Engine) stepSearchQuery(ctx context.Context, in gateway.Inbound) {
	e.states.Clear(in.SenderID)
	users, err := e.repo.SearchUsers(ctx, in.Text)
	if err != nil {
		e.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	e.send(ctx, in.ChatID, menus.AdminSearchResults(users), menus.AdminKeyboard())
}

// StartBan prompts for a customer id and reason.
func (e *Engine) StartBan(ctx context.Context, chatID, adminID int64) {
	e.states.Set(adminID, StepBanTarget, nil)
	e.send(ctx, chatID, menus.AdminAskBan(), &gateway.Keyboard{Remove: true})
}

func (e *Engine) stepBanTarget(ctx context.Context, in gateway.Inbound) {
	e.states.Clear(in.SenderID)
	fields := strings.Fields(in.Text)
	if len(fields) == 0 {
		e.send(ctx, in.ChatID, menus.AdminAskBan(), menus.AdminKeyboard())
		return
	}
	reason := strings.Join(fields[1:], " ")
	user, err := e.repo.BanUser(ctx, fields[0], reason)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			e.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
			return
		}
		e.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	e.metrics.AdminCommands.WithLabelValues("ban").Inc()
	e.send(ctx, in.ChatID, menus.AdminBanned(user), menus.AdminKeyboard())
}

// StartUnban prompts for a customer id.
func (e *Engine) StartUnban(ctx context.Context, chatID, adminID int64) {
	e.states.Set(adminID, StepUnbanTarget, nil)
	e.send(ctx, chatID, menus.AdminAskUnban(), &gateway.Keyboard{Remove: true})
}

func (e *Engine) stepUnbanTarget(ctx context.Context, in gateway.Inbound) {
	e.states.Clear(in.SenderID)
	user, err := e.repo.UnbanUser(ctx, strings.TrimSpace(in.Text))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			e.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
			return
		}
		e.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	e.metrics.AdminCommands.WithLabelValues("unban").Inc()
	e.send(ctx, in.ChatID, menus.AdminUnbanned(user), menus.AdminKeyboard())
}

// StartDirectMessage sends an ad-hoc message to one customer.
func (e *Engine) StartDirectMessage(ctx context.Context, chatID, adminID int64) {
	e.states.Set(adminID, StepMessageTarget, nil)
	e.send(ctx, chatID, menus.AdminAskMessageTarget(), &gateway.Keyboard{Remove: true})
}

func (e *Engine) stepMessageTarget(ctx context.Context, in gateway.Inbound, st State) {
	user, err := e.repo.UserByCustomerID(ctx, strings.TrimSpace(in.Text))
	if err != nil {
		e.send(ctx, in.ChatID, menus.AdminNotFound(), nil)
		return
	}
	st.Params["target"] = user.CustomerID
	e.advance(in.SenderID, st, StepMessageText)
	e.send(ctx, in.ChatID, menus.AdminAskMessageText(user), nil)
}

func (e *Engine) stepMessageText(ctx context.Context, in gateway.Inbound, st State) {
	e.states.Clear(in.SenderID)
	user, err := e.repo.UserByCustomerID(ctx, st.Params["target"])
	if err != nil {
		e.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
		return
	}
	e.send(ctx, user.TelegramID, menus.AdminUserMessage(in.Text), nil)
	e.send(ctx, in.ChatID, menus.AdminUserMessageSent(user), menus.AdminKeyboard())
}

func normalizeServiceType(text string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case repo.ServiceDeposit, "إيداع", "ايداع":
		return repo.ServiceDeposit, true
	case repo.ServiceWithdraw, "سحب":
		return repo.ServiceWithdraw, true
	case repo.ServiceBoth, "كلاهما", "الاثنين":
		return repo.ServiceBoth, true
	}
	return "", false
}
