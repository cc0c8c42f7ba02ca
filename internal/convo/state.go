// Package convo drives the guided multi-step dialogues: registration,
// deposit, withdrawal, complaints, and the admin wizards. Each user has
// at most one active dialogue, tracked as an explicit step plus the
// parameters collected so far.
package convo

import (
	"maps"
	"sync"
	"time"

	"langsense-bot/internal/metrics"
)

// Step identifies where in a dialogue a user currently is.
type Step string

const (
	StepRegisterName  Step = "register_name"
	StepRegisterPhone Step = "register_phone"

	StepDepositCompany Step = "deposit_company"
	StepDepositMethod  Step = "deposit_method"
	StepDepositWallet  Step = "deposit_wallet"
	StepDepositAmount  Step = "deposit_amount"

	StepWithdrawCompany Step = "withdraw_company"
	StepWithdrawWallet  Step = "withdraw_wallet"
	StepWithdrawAmount  Step = "withdraw_amount"
	StepWithdrawCode    Step = "withdraw_code"
	StepWithdrawConfirm Step = "withdraw_confirm"

	StepComplaintText Step = "complaint_text"

	StepBroadcastText Step = "broadcast_text"

	StepCompanyName    Step = "company_name"
	StepCompanyType    Step = "company_type"
	StepCompanyDetails Step = "company_details"
	StepCompanyConfirm Step = "company_confirm"
	StepCompanyDelete  Step = "company_delete"

	StepMethodCompany Step = "method_company"
	StepMethodDetails Step = "method_details"

	StepSearchQuery Step = "search_query"
	StepBanTarget   Step = "ban_target"
	StepUnbanTarget Step = "unban_target"

	StepMessageTarget Step = "message_target"
	StepMessageText   Step = "message_text"
)

// State is one in-progress dialogue.
type State struct {
	Step      Step
	Params    map[string]string
	UpdatedAt time.Time
}

// Manager keeps per-user dialogue state. Stale states are evicted
// lazily whenever the table is touched.
type Manager struct {
	mu      sync.RWMutex
	states  map[int64]*State
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewManager(ttl time.Duration, m *metrics.Metrics) *Manager {
	return &Manager{
		states:  make(map[int64]*State),
		ttl:     ttl,
		metrics: m,
	}
}

// Get returns a copy of the user's state, if an unexpired one exists.
func (m *Manager) Get(userID int64) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	st, ok := m.states[userID]
	if !ok {
		return State{}, false
	}
	return State{Step: st.Step, Params: maps.Clone(st.Params), UpdatedAt: st.UpdatedAt}, true
}

// Active reports whether the user has an unexpired dialogue.
func (m *Manager) Active(userID int64) bool {
	_, ok := m.Get(userID)
	return ok
}

// Set replaces the user's state with the given step and params.
func (m *Manager) Set(userID int64, step Step, params map[string]string) {
	if params == nil {
		params = make(map[string]string)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = &State{Step: step, Params: params, UpdatedAt: time.Now()}
	m.metrics.ActiveConversations.Set(float64(len(m.states)))
}

// Clear drops a user's dialogue.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	m.metrics.ActiveConversations.Set(float64(len(m.states)))
}

func (m *Manager) sweepLocked() {
	if m.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.ttl)
	for id, st := range m.states {
		if st.UpdatedAt.Before(cutoff) {
			delete(m.states, id)
		}
	}
	m.metrics.ActiveConversations.Set(float64(len(m.states)))
}
