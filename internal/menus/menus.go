// Package menus holds the chat surface: menu labels in Arabic and
// English, reply keyboards, and user-facing message text. The labels
// double as routing keys, so changing one changes what the router
// matches against.
package menus

import (
	"strings"

	"langsense-bot/internal/gateway"
)

// Action identifies what a tapped menu label means.
type Action string

const (
	ActionDeposit    Action = "deposit"
	ActionWithdraw   Action = "withdraw"
	ActionMyRequests Action = "my_requests"
	ActionProfile    Action = "profile"
	ActionComplaint  Action = "complaint"
	ActionSupport    Action = "support"
	ActionLanguage   Action = "language"

	ActionAdminPending     Action = "admin_pending"
	ActionAdminApproved    Action = "admin_approved"
	ActionAdminSearch      Action = "admin_search"
	ActionAdminStats       Action = "admin_stats"
	ActionAdminBroadcast   Action = "admin_broadcast"
	ActionAdminBan         Action = "admin_ban"
	ActionAdminUnban       Action = "admin_unban"
	ActionAdminAddCompany  Action = "admin_add_company"
	ActionAdminDelCompany  Action = "admin_delete_company"
	ActionAdminAddMethod   Action = "admin_add_method"
	ActionAdminMethods     Action = "admin_methods"
	ActionAdminSettings    Action = "admin_settings"
	ActionAdminComplaints  Action = "admin_complaints"
	ActionAdminMessageUser Action = "admin_message_user"
	ActionAdminMainMenu    Action = "admin_main_menu"
)

// User menu labels, Arabic first, matching the production keyboards.
const (
	LabelDepositAr    = "💰 طلب إيداع"
	LabelDepositEn    = "💰 Deposit Request"
	LabelWithdrawAr   = "💸 طلب سحب"
	LabelWithdrawEn   = "💸 Withdrawal Request"
	LabelMyRequestsAr = "📋 طلباتي"
	LabelMyRequestsEn = "📋 My Requests"
	LabelProfileAr    = "👤 حسابي"
	LabelProfileEn    = "👤 Profile"
	LabelComplaintAr  = "📨 شكوى"
	LabelComplaintEn  = "📨 Complaint"
	LabelSupportAr    = "🆘 دعم"
	LabelSupportEn    = "🆘 Support"
	LabelSwitchToEn   = "🇺🇸 English"
	LabelSwitchToAr   = "🇸🇦 العربية"
)

// Admin menu labels.
const (
	LabelAdminPending     = "📋 الطلبات المعلقة"
	LabelAdminApproved    = "✅ طلبات مُوافقة"
	LabelAdminSearch      = "🔍 البحث"
	LabelAdminStats       = "📊 الإحصائيات"
	LabelAdminBroadcast   = "📢 إرسال جماعي"
	LabelAdminBan         = "🚫 حظر مستخدم"
	LabelAdminUnban       = "✅ إلغاء حظر"
	LabelAdminAddCompany  = "📝 إضافة شركة"
	LabelAdminDelCompany  = "🗑️ حذف شركة"
	LabelAdminAddMethod   = "➕ إضافة وسيلة دفع"
	LabelAdminMethods     = "💳 وسائل الدفع"
	LabelAdminSettings    = "⚙️ إعدادات النظام"
	LabelAdminComplaints  = "📨 الشكاوى"
	LabelAdminMessageUser = "📧 إرسال رسالة لعميل"
	LabelAdminMainMenu    = "🏠 القائمة الرئيسية"
)

var userActions = map[string]Action{
	LabelDepositAr:    ActionDeposit,
	LabelDepositEn:    ActionDeposit,
	LabelWithdrawAr:   ActionWithdraw,
	LabelWithdrawEn:   ActionWithdraw,
	LabelMyRequestsAr: ActionMyRequests,
	LabelMyRequestsEn: ActionMyRequests,
	LabelProfileAr:    ActionProfile,
	LabelProfileEn:    ActionProfile,
	LabelComplaintAr:  ActionComplaint,
	LabelComplaintEn:  ActionComplaint,
	LabelSupportAr:    ActionSupport,
	LabelSupportEn:    ActionSupport,
	LabelSwitchToEn:   ActionLanguage,
	LabelSwitchToAr:   ActionLanguage,
}

var adminActions = map[string]Action{
	LabelAdminPending:     ActionAdminPending,
	LabelAdminApproved:    ActionAdminApproved,
	LabelAdminSearch:      ActionAdminSearch,
	LabelAdminStats:       ActionAdminStats,
	LabelAdminBroadcast:   ActionAdminBroadcast,
	LabelAdminBan:         ActionAdminBan,
	LabelAdminUnban:       ActionAdminUnban,
	LabelAdminAddCompany:  ActionAdminAddCompany,
	LabelAdminDelCompany:  ActionAdminDelCompany,
	LabelAdminAddMethod:   ActionAdminAddMethod,
	LabelAdminMethods:     ActionAdminMethods,
	LabelAdminSettings:    ActionAdminSettings,
	LabelAdminComplaints:  ActionAdminComplaints,
	LabelAdminMessageUser: ActionAdminMessageUser,
	LabelAdminMainMenu:    ActionAdminMainMenu,
}

// UserAction resolves an end-user menu label.
func UserAction(text string) (Action, bool) {
	a, ok := userActions[strings.TrimSpace(text)]
	return a, ok
}

// AdminAction resolves an admin menu label.
func AdminAction(text string) (Action, bool) {
	a, ok := adminActions[strings.TrimSpace(text)]
	return a, ok
}

var cancelTokens = map[string]struct{}{
	"إلغاء":   {},
	"الغاء":   {},
	"cancel":  {},
	"/cancel": {},
	"🔙 العودة للقائمة الرئيسية": {},
}

// IsCancel reports whether text is an explicit abort of the current
// dialogue.
func IsCancel(text string) bool {
	_, ok := cancelTokens[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// MainKeyboard is the end-user menu for the given language.
func MainKeyboard(lang string) *gateway.Keyboard {
	if lang == "en" {
		return &gateway.Keyboard{Rows: [][]gateway.Button{
			gateway.Row(LabelDepositEn, LabelWithdrawEn),
			gateway.Row(LabelMyRequestsEn, LabelProfileEn),
			gateway.Row(LabelComplaintEn, LabelSupportEn),
			gateway.Row(LabelSwitchToAr),
		}}
	}
	return &gateway.Keyboard{Rows: [][]gateway.Button{
		gateway.Row(LabelDepositAr, LabelWithdrawAr),
		gateway.Row(LabelMyRequestsAr, LabelProfileAr),
		gateway.Row(LabelComplaintAr, LabelSupportAr),
		gateway.Row(LabelSwitchToEn),
	}}
}

// AdminKeyboard is the admin control panel.
func AdminKeyboard() *gateway.Keyboard {
	return &gateway.Keyboard{Rows: [][]gateway.Button{
		gateway.Row(LabelAdminPending, LabelAdminApproved),
		gateway.Row(LabelAdminSearch, LabelAdminStats),
		gateway.Row(LabelAdminBroadcast, LabelAdminBan),
		gateway.Row(LabelAdminUnban, LabelAdminAddCompany),
		gateway.Row(LabelAdminDelCompany, LabelAdminAddMethod),
		gateway.Row(LabelAdminMethods, LabelAdminSettings),
		gateway.Row(LabelAdminComplaints, LabelAdminMessageUser),
		gateway.Row(LabelAdminMainMenu),
	}}
}

// ContactKeyboard offers the share-contact shortcut during
// registration.
func ContactKeyboard(lang string) *gateway.Keyboard {
	label := "📱 مشاركة رقم الهاتف"
	if lang == "en" {
		label = "📱 Share phone number"
	}
	return &gateway.Keyboard{Rows: [][]gateway.Button{
		{{Label: label, RequestContact: true}},
	}}
}

// ListKeyboard renders one button per item plus a cancel row.
func ListKeyboard(items []string, lang string) *gateway.Keyboard {
	kb := &gateway.Keyboard{}
	for _, item := range items {
		kb.Rows = append(kb.Rows, gateway.Row(item))
	}
	kb.Rows = append(kb.Rows, gateway.Row(cancelLabel(lang)))
	return kb
}

// ConfirmKeyboard offers the confirm/cancel choice.
func ConfirmKeyboard(lang string) *gateway.Keyboard {
	if lang == "en" {
		return &gateway.Keyboard{Rows: [][]gateway.Button{gateway.Row("confirm", "cancel")}}
	}
	return &gateway.Keyboard{Rows: [][]gateway.Button{gateway.Row("تأكيد", "إلغاء")}}
}

func cancelLabel(lang string) string {
	if lang == "en" {
		return "cancel"
	}
	return "إلغاء"
}
