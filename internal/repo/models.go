package repo

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"langsense-bot/internal/store"
)

// Collection definitions. Column order is the on-disk layout and must not
// change between releases.
var (
	usersCollection = store.Collection{
		Name:    "users",
		Columns: []string{"telegram_id", "name", "phone", "customer_id", "language", "registered_at", "is_banned", "ban_reason"},
	}
	transactionsCollection = store.Collection{
		Name:    "transactions",
		Columns: []string{"id", "customer_id", "telegram_id", "name", "kind", "company", "wallet_number", "amount", "exchange_address", "status", "created_at", "admin_note", "processed_by"},
	}
	companiesCollection = store.Collection{
		Name:    "companies",
		Columns: []string{"id", "name", "service_type", "details", "is_active"},
	}
	paymentMethodsCollection = store.Collection{
		Name:    "payment_methods",
		Columns: []string{"id", "company_id", "method_name", "method_type", "account_data", "additional_info", "is_active", "created_at"},
	}
	complaintsCollection = store.Collection{
		Name:    "complaints",
		Columns: []string{"id", "customer_id", "message", "status", "created_at", "admin_response"},
	}
	settingsCollection = store.Collection{
		Name:    "system_settings",
		Columns: []string{"setting_key", "setting_value", "description"},
	}
	addressesCollection = store.Collection{
		Name:    "exchange_addresses",
		Columns: []string{"id", "address", "is_active"},
	}
)

// Transaction kinds.
const (
	KindDeposit  = "deposit"
	KindWithdraw = "withdraw"
)

// Transaction and complaint statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusAnswered = "answered"
)

// Company service types.
const (
	ServiceDeposit  = "deposit"
	ServiceWithdraw = "withdraw"
	ServiceBoth     = "both"
)

const timeLayout = "2006-01-02 15:04"

// User is a registered customer.
type User struct {
	TelegramID   int64
	Name         string
	Phone        string
	CustomerID   string
	Language     string
	RegisteredAt time.Time
	IsBanned     bool
	BanReason    string
}

func userFromRecord(rec store.Record) User {
	tid, _ := strconv.ParseInt(rec["telegram_id"], 10, 64)
	registered, _ := time.Parse(timeLayout, rec["registered_at"])
	return User{
		TelegramID:   tid,
		Name:         rec["name"],
		Phone:        rec["phone"],
		CustomerID:   rec["customer_id"],
		Language:     rec["language"],
		RegisteredAt: registered,
		IsBanned:     rec["is_banned"] == "yes",
		BanReason:    rec["ban_reason"],
	}
}

func (u User) record() store.Record {
	banned := "no"
	if u.IsBanned {
		banned = "yes"
	}
	return store.Record{
		"telegram_id":   strconv.FormatInt(u.TelegramID, 10),
		"name":          u.Name,
		"phone":         u.Phone,
		"customer_id":   u.CustomerID,
		"language":      u.Language,
		"registered_at": u.RegisteredAt.Format(timeLayout),
		"is_banned":     banned,
		"ban_reason":    u.BanReason,
	}
}

// Transaction is one deposit or withdrawal request.
type Transaction struct {
	ID              string
	CustomerID      string
	TelegramID      int64
	Name            string
	Kind            string
	Company         string
	WalletNumber    string
	Amount          decimal.Decimal
	ExchangeAddress string
	Status          string
	CreatedAt       time.Time
	AdminNote       string
	ProcessedBy     string
}

func transactionFromRecord(rec store.Record) Transaction {
	tid, _ := strconv.ParseInt(rec["telegram_id"], 10, 64)
	created, _ := time.Parse(timeLayout, rec["created_at"])
	amount, _ := decimal.NewFromString(rec["amount"])
	return Transaction{
		ID:              rec["id"],
		CustomerID:      rec["customer_id"],
		TelegramID:      tid,
		Name:            rec["name"],
		Kind:            rec["kind"],
		Company:         rec["company"],
		WalletNumber:    rec["wallet_number"],
		Amount:          amount,
		ExchangeAddress: rec["exchange_address"],
		Status:          rec["status"],
		CreatedAt:       created,
		AdminNote:       rec["admin_note"],
		ProcessedBy:     rec["processed_by"],
	}
}

func (t Transaction) record() store.Record {
	return store.Record{
		"id":               t.ID,
		"customer_id":      t.CustomerID,
		"telegram_id":      strconv.FormatInt(t.TelegramID, 10),
		"name":             t.Name,
		"kind":             t.Kind,
		"company":          t.Company,
		"wallet_number":    t.WalletNumber,
		"amount":           t.Amount.String(),
		"exchange_address": t.ExchangeAddress,
		"status":           t.Status,
		"created_at":       t.CreatedAt.Format(timeLayout),
		"admin_note":       t.AdminNote,
		"processed_by":     t.ProcessedBy,
	}
}

// Company offers deposit and/or withdrawal service.
type Company struct {
	ID          string
	Name        string
	ServiceType string
	Details     string
	IsActive    bool
}

func companyFromRecord(rec store.Record) Company {
	return Company{
		ID:          rec["id"],
		Name:        rec["name"],
		ServiceType: rec["service_type"],
		Details:     rec["details"],
		IsActive:    isActiveValue(rec["is_active"]),
	}
}

func (c Company) record() store.Record {
	return store.Record{
		"id":           c.ID,
		"name":         c.Name,
		"service_type": c.ServiceType,
		"details":      c.Details,
		"is_active":    activeValue(c.IsActive),
	}
}

// PaymentMethod belongs to a company.
type PaymentMethod struct {
	ID             string
	CompanyID      string
	MethodName     string
	MethodType     string
	AccountData    string
	AdditionalInfo string
	IsActive       bool
	CreatedAt      time.Time
}

func paymentMethodFromRecord(rec store.Record) PaymentMethod {
	created, _ := time.Parse(timeLayout, rec["created_at"])
	return PaymentMethod{
		ID:             rec["id"],
		CompanyID:      rec["company_id"],
		MethodName:     rec["method_name"],
		MethodType:     rec["method_type"],
		AccountData:    rec["account_data"],
		AdditionalInfo: rec["additional_info"],
		IsActive:       isActiveValue(rec["is_active"]),
		CreatedAt:      created,
	}
}

func (m PaymentMethod) record() store.Record {
	return store.Record{
		"id":              m.ID,
		"company_id":      m.CompanyID,
		"method_name":     m.MethodName,
		"method_type":     m.MethodType,
		"account_data":    m.AccountData,
		"additional_info": m.AdditionalInfo,
		"is_active":       activeValue(m.IsActive),
		"created_at":      m.CreatedAt.Format(timeLayout),
	}
}

// Complaint is a user-filed message answered once by an admin.
type Complaint struct {
	ID            string
	CustomerID    string
	Message       string
	Status        string
	CreatedAt     time.Time
	AdminResponse string
}

func complaintFromRecord(rec store.Record) Complaint {
	created, _ := time.Parse(timeLayout, rec["created_at"])
	return Complaint{
		ID:            rec["id"],
		CustomerID:    rec["customer_id"],
		Message:       rec["message"],
		Status:        rec["status"],
		CreatedAt:     created,
		AdminResponse: rec["admin_response"],
	}
}

func (c Complaint) record() store.Record {
	return store.Record{
		"id":             c.ID,
		"customer_id":    c.CustomerID,
		"message":        c.Message,
		"status":         c.Status,
		"created_at":     c.CreatedAt.Format(timeLayout),
		"admin_response": c.AdminResponse,
	}
}

// Setting is one configurable key of the system.
type Setting struct {
	Key         string
	Value       string
	Description string
}

func settingFromRecord(rec store.Record) Setting {
	return Setting{
		Key:         rec["setting_key"],
		Value:       rec["setting_value"],
		Description: rec["description"],
	}
}

func (s Setting) record() store.Record {
	return store.Record{
		"setting_key":   s.Key,
		"setting_value": s.Value,
		"description":   s.Description,
	}
}

// ExchangeAddress is a payout office address shown during withdrawals.
type ExchangeAddress struct {
	ID       string
	Address  string
	IsActive bool
}

func addressFromRecord(rec store.Record) ExchangeAddress {
	return ExchangeAddress{
		ID:       rec["id"],
		Address:  rec["address"],
		IsActive: isActiveValue(rec["is_active"]),
	}
}

func (a ExchangeAddress) record() store.Record {
	return store.Record{
		"id":        a.ID,
		"address":   a.Address,
		"is_active": activeValue(a.IsActive),
	}
}

// The original data files mixed several truthy spellings; accept them all
// but always write "yes"/"no".
func isActiveValue(v string) bool {
	switch v {
	case "yes", "active", "1", "true":
		return true
	}
	return false
}

func activeValue(active bool) string {
	if active {
		return "yes"
	}
	return "no"
}
