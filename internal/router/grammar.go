package router

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"langsense-bot/internal/gateway"
	"langsense-bot/internal/menus"
	"langsense-bot/internal/repo"
)

// The free-text admin grammar is a declarative table: synonym sets as
// data, evaluated in order. Approve is checked before reject because
// several Arabic confirm words are substrings of longer refusals.

type adminCommand struct {
	name   string
	match  func(text string) (args string, ok bool)
	handle func(rt *Router, ctx context.Context, in gateway.Inbound, args string)
}

var approveWords = []string{"موافقة", "موافق", "اوافق", "أوافق", "قبول", "مقبول", "تأكيد", "تاكيد", "نعم", "approve", "accept"}

var rejectWords = []string{"رفض", "رافض", "مرفوض", "إلغاء", "الغاء", "منع", "reject", "decline"}

var adminGrammar = []adminCommand{
	// Prefix commands come before the decision synonyms so a free-text
	// body (a complaint reply, a ban reason) containing one of those
	// words does not trip the approve/reject matchers.
	{name: "reply_complaint", match: hasPrefix("رد_شكوى ", "reply_complaint "), handle: (*Router).cmdReplyComplaint},
	{name: "edit_company", match: hasPrefix("تعديل_شركة ", "edit_company "), handle: (*Router).cmdEditCompany},
	{name: "edit_method", match: hasPrefix("تعديل_وسيلة ", "edit_method "), handle: (*Router).cmdEditMethod},
	{name: "delete_method", match: hasPrefix("حذف_وسيلة ", "delete_method "), handle: (*Router).cmdDeleteMethod},
	{name: "approve", match: containsAny(approveWords), handle: (*Router).cmdApprove},
	{name: "reject", match: containsAny(rejectWords), handle: (*Router).cmdReject},
	{name: "search", match: hasPrefix("بحث ", "search ", "find "), handle: (*Router).cmdSearch},
	{name: "ban", match: hasPrefix("حظر ", "ban "), handle: (*Router).cmdBan},
	{name: "unban", match: hasPrefix("الغاء_حظر ", "unban "), handle: (*Router).cmdUnban},
	{name: "add_company", match: hasPrefix("اضافة_شركة ", "add_company "), handle: (*Router).cmdAddCompany},
	{name: "delete_company", match: hasPrefix("حذف_شركة ", "delete_company "), handle: (*Router).cmdDeleteCompany},
	{name: "new_address", match: hasPrefix("عنوان_جديد ", "new_address "), handle: (*Router).cmdNewAddress},
	{name: "set_setting", match: hasPrefix("تعديل_اعداد ", "set_setting "), handle: (*Router).cmdSetSetting},
	{name: "broadcast", match: exactly("اذاعة", "broadcast"), handle: (*Router).cmdBroadcast},
}

func containsAny(words []string) func(string) (string, bool) {
	return func(text string) (string, bool) {
		lower := strings.ToLower(text)
		for _, w := range words {
			if strings.Contains(lower, w) {
				return text, true
			}
		}
		return "", false
	}
}

func hasPrefix(prefixes ...string) func(string) (string, bool) {
	return func(text string) (string, bool) {
		lower := strings.ToLower(text)
		for _, p := range prefixes {
			if strings.HasPrefix(lower, p) {
				return strings.TrimSpace(text[len(p):]), true
			}
		}
		return "", false
	}
}

func exactly(words ...string) func(string) (string, bool) {
	return func(text string) (string, bool) {
		lower := strings.ToLower(strings.TrimSpace(text))
		for _, w := range words {
			if lower == w {
				return "", true
			}
		}
		return "", false
	}
}

// extractTxnID finds a DEP or WTH token anywhere in the text.
func extractTxnID(text string) (string, bool) {
	for _, word := range strings.Fields(text) {
		upper := strings.ToUpper(word)
		if strings.HasPrefix(upper, "DEP") || strings.HasPrefix(upper, "WTH") {
			return upper, true
		}
	}
	return "", false
}

func (rt *Router) dispatchAdminCommand(ctx context.Context, in gateway.Inbound, text string) bool {
	for _, cmd := range adminGrammar {
		args, ok := cmd.match(text)
		if !ok {
			continue
		}
		rt.metrics.AdminCommands.WithLabelValues(cmd.name).Inc()
		cmd.handle(rt, ctx, in, args)
		return true
	}
	return false
}

func (rt *Router) cmdApprove(ctx context.Context, in gateway.Inbound, args string) {
	id, ok := extractTxnID(args)
	if !ok {
		rt.send(ctx, in.ChatID, menus.AdminMissingTxnID(), menus.AdminKeyboard())
		return
	}
	rt.decide(ctx, in, id, repo.StatusApproved, "")
}

func (rt *Router) cmdReject(ctx context.Context, in gateway.Inbound, args string) {
	id, ok := extractTxnID(args)
	if !ok {
		rt.send(ctx, in.ChatID, menus.AdminMissingTxnID(), menus.AdminKeyboard())
		return
	}
	var reason []string
	fields := strings.Fields(args)
	for i, f := range fields {
		if i == 0 || strings.EqualFold(f, id) {
			continue
		}
		reason = append(reason, f)
	}
	rt.decide(ctx, in, id, repo.StatusRejected, strings.Join(reason, " "))
}

func (rt *Router) decide(ctx context.Context, in gateway.Inbound, id, status, note string) {
	txn, err := rt.repo.DecideTransaction(ctx, id, status, note, strconv.FormatInt(in.SenderID, 10))
	switch {
	case errors.Is(err, repo.ErrNotFound):
		rt.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
		return
	case errors.Is(err, repo.ErrAlreadyProcessed):
		rt.send(ctx, in.ChatID, menus.AdminAlreadyProcessed(id), menus.AdminKeyboard())
		return
	case err != nil:
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.metrics.Transactions.WithLabelValues(txn.Kind, txn.Status).Inc()

	lang := "ar"
	if customer, err := rt.repo.UserByCustomerID(ctx, txn.CustomerID); err == nil {
		lang = customer.Language
	}
	rt.send(ctx, txn.TelegramID, menus.DecisionNotice(lang, txn), nil)

	if status == repo.StatusApproved {
		rt.send(ctx, in.ChatID, menus.AdminApprovedMsg(txn.ID), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminRejectedMsg(txn.ID, note), menus.AdminKeyboard())
}

func (rt *Router) cmdSearch(ctx context.Context, in gateway.Inbound, args string) {
	users, err := rt.repo.SearchUsers(ctx, args)
	if err != nil {
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminSearchResults(users), menus.AdminKeyboard())
}

func (rt *Router) cmdBan(ctx context.Context, in gateway.Inbound, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		rt.send(ctx, in.ChatID, menus.AdminAskBan(), menus.AdminKeyboard())
		return
	}
	user, err := rt.repo.BanUser(ctx, fields[0], strings.Join(fields[1:], " "))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			rt.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminBanned(user), menus.AdminKeyboard())
}

func (rt *Router) cmdUnban(ctx context.Context, in gateway.Inbound, args string) {
	user, err := rt.repo.UnbanUser(ctx, strings.TrimSpace(args))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			rt.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminUnbanned(user), menus.AdminKeyboard())
}

func (rt *Router) cmdAddCompany(ctx context.Context, in gateway.Inbound, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		rt.send(ctx, in.ChatID, menus.AdminAskCompanyType(), menus.AdminKeyboard())
		return
	}
	details := strings.Join(fields[2:], " ")
	company, err := rt.repo.AddCompany(ctx, fields[0], strings.ToLower(fields[1]), details)
	if err != nil {
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminCompanyCreated(company), menus.AdminKeyboard())
}

func (rt *Router) cmdDeleteCompany(ctx context.Context, in gateway.Inbound, args string) {
	company, methodsRemoved, err := rt.repo.DeleteCompany(ctx, strings.TrimSpace(args))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			rt.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminCompanyDeleted(company, methodsRemoved), menus.AdminKeyboard())
}

func (rt *Router) cmdNewAddress(ctx context.Context, in gateway.Inbound, args string) {
	if err := rt.repo.UpdateExchangeAddress(ctx, args); err != nil {
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminAddressUpdated(args), menus.AdminKeyboard())
}

func (rt *Router) cmdSetSetting(ctx context.Context, in gateway.Inbound, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(errors.New("usage: set_setting <key> <value>")), menus.AdminKeyboard())
		return
	}
	key := fields[0]
	value := strings.Join(fields[1:], " ")
	if err := rt.repo.SetSetting(ctx, key, value); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			rt.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminSettingUpdated(key, value), menus.AdminKeyboard())
}

func (rt *Router) cmdBroadcast(ctx context.Context, in gateway.Inbound, _ string) {
	rt.engine.StartBroadcast(ctx, in.ChatID, in.SenderID)
}

func (rt *Router) cmdReplyComplaint(ctx context.Context, in gateway.Inbound, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(errors.New("usage: رد_شكوى <الرقم> <نص الرد>")), menus.AdminKeyboard())
		return
	}
	id := strings.ToUpper(fields[0])
	complaint, err := rt.repo.AnswerComplaint(ctx, id, strings.Join(fields[1:], " "))
	switch {
	case errors.Is(err, repo.ErrNotFound):
		rt.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
		return
	case errors.Is(err, repo.ErrAlreadyProcessed):
		rt.send(ctx, in.ChatID, menus.AdminAlreadyProcessed(id), menus.AdminKeyboard())
		return
	case err != nil:
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	if customer, err := rt.repo.UserByCustomerID(ctx, complaint.CustomerID); err == nil {
		rt.send(ctx, customer.TelegramID, menus.ComplaintAnswered(customer.Language, complaint), nil)
	}
	rt.send(ctx, in.ChatID, menus.AdminComplaintAnswered(complaint), menus.AdminKeyboard())
}

// orKeep turns the "-" placeholder into the empty string so the entity
// services keep the current value of that field.
func orKeep(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func (rt *Router) cmdEditCompany(ctx context.Context, in gateway.Inbound, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(errors.New("usage: تعديل_شركة <الرقم> <الاسم> [النوع] [التفاصيل] ('-' يبقي القيمة)")), menus.AdminKeyboard())
		return
	}
	id := fields[0]
	name := orKeep(fields[1])
	var serviceType, details string
	if len(fields) > 2 {
		serviceType = strings.ToLower(orKeep(fields[2]))
	}
	if len(fields) > 3 {
		details = orKeep(strings.Join(fields[3:], " "))
	}
	company, err := rt.repo.UpdateCompany(ctx, id, name, serviceType, details)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			rt.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminCompanyUpdated(company), menus.AdminKeyboard())
}

func (rt *Router) cmdEditMethod(ctx context.Context, in gateway.Inbound, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		rt.send(ctx, in.ChatID, menus.AdminMethodFormatError(), menus.AdminKeyboard())
		return
	}
	id := fields[0]
	parts := strings.Split(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args), id)), "|")
	var edit [4]string
	for i := 0; i < len(parts) && i < len(edit); i++ {
		edit[i] = orKeep(strings.TrimSpace(parts[i]))
	}
	method, err := rt.repo.UpdatePaymentMethod(ctx, id, edit[0], edit[1], edit[2], edit[3])
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			rt.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminMethodUpdated(method), menus.AdminKeyboard())
}

func (rt *Router) cmdDeleteMethod(ctx context.Context, in gateway.Inbound, args string) {
	id := strings.TrimSpace(args)
	if err := rt.repo.DeletePaymentMethod(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			rt.send(ctx, in.ChatID, menus.AdminNotFound(), menus.AdminKeyboard())
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), menus.AdminKeyboard())
		return
	}
	rt.send(ctx, in.ChatID, menus.AdminMethodDeleted(id), menus.AdminKeyboard())
}
