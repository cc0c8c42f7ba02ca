// Package router classifies every inbound event: banned short-circuit,
// active dialogue, admin commands, user menu, then fallback. No event is
// dropped silently.
package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"langsense-bot/internal/config"
	"langsense-bot/internal/convo"
	"langsense-bot/internal/gateway"
	"langsense-bot/internal/menus"
	"langsense-bot/internal/metrics"
	"langsense-bot/internal/repo"
)

type Router struct {
	cfg     *config.Config
	repo    *repo.Repository
	engine  *convo.Engine
	sender  gateway.Sender
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(cfg *config.Config, r *repo.Repository, engine *convo.Engine, sender gateway.Sender, logger *slog.Logger, m *metrics.Metrics) *Router {
	return &Router{
		cfg:     cfg,
		repo:    r,
		engine:  engine,
		sender:  sender,
		logger:  logger.With("component", "router"),
		metrics: m,
	}
}

// Handle is the gateway event handler.
func (rt *Router) Handle(ctx context.Context, in gateway.Inbound) {
	user, err := rt.repo.UserByTelegramID(ctx, in.SenderID)
	known := err == nil
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		rt.logger.Error("lookup user", "sender", in.SenderID, "error", err)
		rt.metrics.Errors.WithLabelValues("router").Inc()
		return
	}
	isAdmin := rt.cfg.IsAdmin(in.SenderID)

	if known && user.IsBanned && !isAdmin {
		rt.send(ctx, in.ChatID, menus.BanNotice(user.Language, user.BanReason), nil)
		return
	}

	if rt.engine.Active(in.SenderID) {
		var u *repo.User
		if known {
			u = &user
		}
		rt.engine.Handle(ctx, in, u)
		return
	}

	text := strings.TrimSpace(in.Text)

	if text == "/start" {
		if known {
			rt.send(ctx, in.ChatID, menus.Welcome(user.Language, user.Name, user.CustomerID), menus.MainKeyboard(user.Language))
		} else {
			rt.engine.StartRegistration(ctx, in.ChatID, in.SenderID, "ar")
		}
		return
	}

	if isAdmin {
		if text == "/admin" {
			rt.send(ctx, in.ChatID, menus.AdminWelcome(), menus.AdminKeyboard())
			return
		}
		if action, ok := menus.AdminAction(text); ok {
			rt.adminAction(ctx, in, action, user, known)
			return
		}
		// A stale cancel button tapped outside any dialogue should land
		// on the menu, not in the reject matcher.
		if menus.IsCancel(text) {
			rt.send(ctx, in.ChatID, menus.AdminWelcome(), menus.AdminKeyboard())
			return
		}
		if rt.dispatchAdminCommand(ctx, in, text) {
			return
		}
	}

	if !known {
		rt.engine.StartRegistration(ctx, in.ChatID, in.SenderID, "ar")
		return
	}

	if action, ok := menus.UserAction(text); ok {
		rt.userAction(ctx, in, user, action)
		return
	}

	rt.send(ctx, in.ChatID, menus.FallbackMenu(user.Language), menus.MainKeyboard(user.Language))
}

func (rt *Router) userAction(ctx context.Context, in gateway.Inbound, user repo.User, action menus.Action) {
	switch action {
	case menus.ActionDeposit:
		rt.engine.StartDeposit(ctx, in.ChatID, user)
	case menus.ActionWithdraw:
		rt.engine.StartWithdrawal(ctx, in.ChatID, user)
	case menus.ActionComplaint:
		rt.engine.StartComplaint(ctx, in.ChatID, user)
	case menus.ActionMyRequests:
		txns, err := rt.repo.TransactionsByCustomer(ctx, user.CustomerID)
		if err != nil {
			rt.logger.Error("list transactions", "customer", user.CustomerID, "error", err)
			rt.send(ctx, in.ChatID, menus.FallbackMenu(user.Language), nil)
			return
		}
		if len(txns) == 0 {
			rt.send(ctx, in.ChatID, menus.NoRequests(user.Language), nil)
			return
		}
		rt.send(ctx, in.ChatID, menus.RequestsList(user.Language, txns), nil)
	case menus.ActionProfile:
		rt.send(ctx, in.ChatID, menus.Profile(user.Language, user), nil)
	case menus.ActionSupport:
		phone := rt.repo.Setting(ctx, repo.SettingSupportPhone, "+966501234567")
		rt.send(ctx, in.ChatID, menus.Support(user.Language, phone), nil)
	case menus.ActionLanguage:
		next := "en"
		if user.Language == "en" {
			next = "ar"
		}
		if err := rt.repo.SetLanguage(ctx, user.TelegramID, next); err != nil {
			rt.logger.Error("set language", "user", user.CustomerID, "error", err)
			return
		}
		rt.send(ctx, in.ChatID, menus.LanguageChanged(next), menus.MainKeyboard(next))
	}
}

func (rt *Router) adminAction(ctx context.Context, in gateway.Inbound, action menus.Action, user repo.User, known bool) {
	switch action {
	case menus.ActionAdminPending:
		txns, err := rt.repo.TransactionsByStatus(ctx, repo.StatusPending)
		if err != nil {
			rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), nil)
			return
		}
		if len(txns) == 0 {
			rt.send(ctx, in.ChatID, menus.AdminNoPending(), menus.AdminKeyboard())
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminPendingList(txns), menus.AdminKeyboard())
	case menus.ActionAdminApproved:
		txns, err := rt.repo.TransactionsByStatus(ctx, repo.StatusApproved)
		if err != nil {
			rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), nil)
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminApprovedList(txns), menus.AdminKeyboard())
	case menus.ActionAdminStats:
		rt.sendStats(ctx, in.ChatID)
	case menus.ActionAdminSearch:
		rt.engine.StartSearch(ctx, in.ChatID, in.SenderID)
	case menus.ActionAdminBroadcast:
		rt.engine.StartBroadcast(ctx, in.ChatID, in.SenderID)
	case menus.ActionAdminBan:
		rt.engine.StartBan(ctx, in.ChatID, in.SenderID)
	case menus.ActionAdminUnban:
		rt.engine.StartUnban(ctx, in.ChatID, in.SenderID)
	case menus.ActionAdminAddCompany:
		rt.engine.StartCompanyWizard(ctx, in.ChatID, in.SenderID)
	case menus.ActionAdminDelCompany:
		rt.engine.StartDeleteCompany(ctx, in.ChatID, in.SenderID)
	case menus.ActionAdminAddMethod:
		rt.engine.StartMethodWizard(ctx, in.ChatID, in.SenderID)
	case menus.ActionAdminMethods:
		methods, err := rt.repo.ListPaymentMethods(ctx)
		if err != nil {
			rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), nil)
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminMethodsList(methods), menus.AdminKeyboard())
	case menus.ActionAdminSettings:
		settings, err := rt.repo.ListSettings(ctx)
		if err != nil {
			rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), nil)
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminSettingsList(settings), menus.AdminKeyboard())
	case menus.ActionAdminComplaints:
		complaints, err := rt.repo.PendingComplaints(ctx)
		if err != nil {
			rt.send(ctx, in.ChatID, menus.AdminActionFailed(err), nil)
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminComplaintsList(complaints), menus.AdminKeyboard())
	case menus.ActionAdminMessageUser:
		rt.engine.StartDirectMessage(ctx, in.ChatID, in.SenderID)
	case menus.ActionAdminMainMenu:
		if known {
			rt.send(ctx, in.ChatID, menus.Welcome(user.Language, user.Name, user.CustomerID), menus.MainKeyboard(user.Language))
			return
		}
		rt.send(ctx, in.ChatID, menus.AdminWelcome(), menus.AdminKeyboard())
	}
}

func (rt *Router) sendStats(ctx context.Context, chatID int64) {
	st, err := rt.repo.Stats(ctx)
	if err != nil {
		rt.send(ctx, chatID, menus.AdminActionFailed(err), nil)
		return
	}
	users, err := rt.repo.ListUsers(ctx)
	if err != nil {
		rt.send(ctx, chatID, menus.AdminActionFailed(err), nil)
		return
	}
	banned := 0
	for _, u := range users {
		if u.IsBanned {
			banned++
		}
	}
	rt.send(ctx, chatID, menus.AdminStats(st, len(users), banned), menus.AdminKeyboard())
}

func (rt *Router) send(ctx context.Context, chatID int64, text string, kb *gateway.Keyboard) {
	if err := rt.sender.Send(ctx, chatID, text, kb); err != nil {
		rt.logger.Warn("send failed", "chat", chatID, "error", err)
		rt.metrics.Errors.WithLabelValues("router").Inc()
	}
}
