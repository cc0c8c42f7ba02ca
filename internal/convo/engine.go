package convo

import (
	"context"
	"log/slog"

	"langsense-bot/internal/gateway"
	"langsense-bot/internal/menus"
	"langsense-bot/internal/metrics"
	"langsense-bot/internal/repo"
)

// Engine owns the dialogue logic. The router hands it every event from
// a user with an active state; Start* methods open new dialogues.
type Engine struct {
	repo     *repo.Repository
	sender   gateway.Sender
	notifier *gateway.Notifier
	states   *Manager
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewEngine(r *repo.Repository, sender gateway.Sender, notifier *gateway.Notifier, states *Manager, logger *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		repo:     r,
		sender:   sender,
		notifier: notifier,
		states:   states,
		logger:   logger.With("component", "convo"),
		metrics:  m,
	}
}

// Active reports whether the user is mid-dialogue.
func (e *Engine) Active(userID int64) bool {
	return e.states.Active(userID)
}

// Handle advances the user's active dialogue with one input. user is
// nil while registration is still in progress.
func (e *Engine) Handle(ctx context.Context, in gateway.Inbound, user *repo.User) {
	st, ok := e.states.Get(in.SenderID)
	if !ok {
		return
	}
	lang := st.Params["lang"]
	if user != nil {
		lang = user.Language
	}

	if menus.IsCancel(in.Text) && in.Contact == nil {
		e.states.Clear(in.SenderID)
		e.send(ctx, in.ChatID, menus.Cancelled(lang), menus.MainKeyboard(lang))
		return
	}

	if user == nil && st.Step != StepRegisterName && st.Step != StepRegisterPhone && !isAdminStep(st.Step) {
		e.states.Clear(in.SenderID)
		return
	}

	switch st.Step {
	case StepRegisterName:
		e.stepRegisterName(ctx, in, st, lang)
	case StepRegisterPhone:
		e.stepRegisterPhone(ctx, in, st, lang)
	case StepDepositCompany:
		e.stepSelectCompany(ctx, in, st, *user, repo.KindDeposit)
	case StepDepositMethod:
		e.stepDepositMethod(ctx, in, st, *user)
	case StepDepositWallet:
		e.stepWallet(ctx, in, st, *user, StepDepositAmount)
	case StepDepositAmount:
		e.stepDepositAmount(ctx, in, st, *user)
	case StepWithdrawCompany:
		e.stepSelectCompany(ctx, in, st, *user, repo.KindWithdraw)
	case StepWithdrawWallet:
		e.stepWallet(ctx, in, st, *user, StepWithdrawAmount)
	case StepWithdrawAmount:
		e.stepWithdrawAmount(ctx, in, st, *user)
	case StepWithdrawCode:
		e.stepWithdrawCode(ctx, in, st, *user)
	case StepWithdrawConfirm:
		e.stepWithdrawConfirm(ctx, in, st, *user)
	case StepComplaintText:
		e.stepComplaintText(ctx, in, st, *user)
	case StepBroadcastText:
		e.stepBroadcastText(ctx, in)
	case StepCompanyName:
		e.stepCompanyName(ctx, in, st)
	case StepCompanyType:
		e.stepCompanyType(ctx, in, st)
	case StepCompanyDetails:
		e.stepCompanyDetails(ctx, in, st)
	case StepCompanyConfirm:
		e.stepCompanyConfirm(ctx, in, st)
	case StepCompanyDelete:
		e.stepCompanyDelete(ctx, in)
	case StepMethodCompany:
		e.stepMethodCompany(ctx, in, st)
	case StepMethodDetails:
		e.stepMethodDetails(ctx, in, st)
	case StepSearchQuery:
		e.stepSearchQuery(ctx, in)
	case StepBanTarget:
		e.stepBanTarget(ctx, in)
	case StepUnbanTarget:
		e.stepUnbanTarget(ctx, in)
	case StepMessageTarget:
		e.stepMessageTarget(ctx, in, st)
	case StepMessageText:
		e.stepMessageText(ctx, in, st)
	default:
		e.logger.Warn("unknown dialogue step", "step", st.Step, "user", in.SenderID)
		e.states.Clear(in.SenderID)
	}
}

func (e *Engine) send(ctx context.Context, chatID int64, text string, kb *gateway.Keyboard) {
	if err := e.sender.Send(ctx, chatID, text, kb); err != nil {
		e.logger.Warn("send failed", "chat", chatID, "error", err)
		e.metrics.Errors.WithLabelValues("convo").Inc()
	}
}

func isAdminStep(step Step) bool {
	switch step {
	case StepBroadcastText, StepCompanyName, StepCompanyType, StepCompanyDetails,
		StepCompanyConfirm, StepCompanyDelete, StepMethodCompany, StepMethodDetails,
		StepSearchQuery, StepBanTarget, StepUnbanTarget, StepMessageTarget, StepMessageText:
		return true
	}
	return false
}

// advance keeps the collected params and moves the dialogue forward.
func (e *Engine) advance(userID int64, st State, step Step) {
	e.states.Set(userID, step, st.Params)
}
