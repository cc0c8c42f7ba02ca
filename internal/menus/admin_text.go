package menus

import (
	"fmt"
	"strings"

	"langsense-bot/internal/repo"
)

// Admin-facing text stays Arabic-only, matching the production panel.

func AdminWelcome() string {
	return "🔧 لوحة تحكم الأدمن\n\nمرحباً بك في لوحة التحكم الشاملة"
}

func AdminNewUser(u repo.User) string {
	return fmt.Sprintf("🔔 عضو جديد\n\n👤 الاسم: %s\n📱 الهاتف: %s\n🆔 رقم العميل: %s", u.Name, u.Phone, u.CustomerID)
}

func AdminNewTransaction(t repo.Transaction) string {
	kind := "إيداع"
	if t.Kind == repo.KindWithdraw {
		kind = "سحب"
	}
	msg := fmt.Sprintf("🔔 طلب %s جديد\n\n🔢 رقم الطلب: %s\n👤 العميل: %s (%s)\n🏢 الشركة: %s\n📱 المحفظة: %s\n💰 المبلغ: %s ريال",
		kind, t.ID, t.Name, t.CustomerID, t.Company, t.WalletNumber, t.Amount.String())
	if t.ExchangeAddress != "" {
		msg += "\n📍 عنوان السحب: " + t.ExchangeAddress
	}
	msg += fmt.Sprintf("\n\nلمراجعة الطلب: موافقة %s أو رفض %s [سبب]", t.ID, t.ID)
	return msg
}

func AdminNewComplaint(c repo.Complaint) string {
	return fmt.Sprintf("🔔 شكوى جديدة\n\n🔢 الرقم: %s\n👤 العميل: %s\n📨 النص: %s", c.ID, c.CustomerID, c.Message)
}

func AdminStats(st repo.TransactionStats, users, banned int) string {
	return fmt.Sprintf("📊 إحصائيات النظام\n\n👥 المستخدمون: %d\n🚫 المحظورون: %d\n\n💼 المعاملات: %d\n├ معلقة: %d\n├ مُوافق عليها: %d\n└ مرفوضة: %d",
		users, banned, st.Total, st.Pending, st.Approved, st.Rejected)
}

func AdminNoPending() string {
	return "📋 لا توجد طلبات معلقة"
}

func AdminPendingList(txns []repo.Transaction) string {
	var b strings.Builder
	b.WriteString("📋 الطلبات المعلقة:\n")
	for _, t := range txns {
		kind := "إيداع"
		if t.Kind == repo.KindWithdraw {
			kind = "سحب"
		}
		fmt.Fprintf(&b, "\n⏳ %s | %s | %s | %s ريال\n✅ موافقة %s\n❌ رفض %s السبب_هنا\n",
			t.ID, kind, t.Name, t.Amount.String(), t.ID, t.ID)
	}
	return b.String()
}

func AdminApprovedList(txns []repo.Transaction) string {
	if len(txns) == 0 {
		return "✅ لا توجد طلبات مُوافق عليها"
	}
	var b strings.Builder
	b.WriteString("✅ الطلبات المُوافق عليها:\n")
	for _, t := range txns {
		fmt.Fprintf(&b, "\n✅ %s | %s | %s ريال", t.ID, t.Name, t.Amount.String())
	}
	return b.String()
}

func AdminAskSearch() string {
	return "🔍 أدخل الاسم أو رقم العميل أو الهاتف للبحث:"
}

func AdminSearchResults(users []repo.User) string {
	if len(users) == 0 {
		return "❌ لا توجد نتائج"
	}
	var b strings.Builder
	b.WriteString("🔍 نتائج البحث:\n")
	for _, u := range users {
		status := "نشط"
		if u.IsBanned {
			status = "محظور"
		}
		fmt.Fprintf(&b, "\n👤 %s | %s | %s | %s", u.Name, u.CustomerID, u.Phone, status)
	}
	return b.String()
}

func AdminAskBroadcast() string {
	return "📢 اكتب الرسالة المراد إرسالها لجميع المستخدمين:"
}

func AdminBroadcastSummary(sent, failed int) string {
	return fmt.Sprintf("📢 اكتمل الإرسال الجماعي\n\n✅ تم الإرسال: %d\n❌ فشل: %d", sent, failed)
}

func AdminAskBan() string {
	return "🚫 أدخل رقم العميل والسبب\nمثال: C000042 مخالفة الشروط"
}

func AdminAskUnban() string {
	return "✅ أدخل رقم العميل لإلغاء الحظر:"
}

func AdminBanned(u repo.User) string {
	return fmt.Sprintf("🚫 تم حظر العميل %s (%s)", u.Name, u.CustomerID)
}

func AdminUnbanned(u repo.User) string {
	return fmt.Sprintf("✅ تم إلغاء حظر العميل %s (%s)", u.Name, u.CustomerID)
}

func AdminApprovedMsg(id string) string {
	return fmt.Sprintf("✅ تمت الموافقة على %s", id)
}

func AdminRejectedMsg(id, reason string) string {
	msg := fmt.Sprintf("✅ تم رفض %s", id)
	if reason != "" {
		msg += "\nالسبب: " + reason
	}
	return msg
}

func AdminAlreadyProcessed(id string) string {
	return fmt.Sprintf("⚠️ الطلب %s تمت معالجته مسبقاً", id)
}

func AdminNotFound() string {
	return "❌ لم يتم العثور على السجل المطلوب"
}

func AdminMissingTxnID() string {
	return "❌ لم يتم العثور على رقم المعاملة. مثال: رفض DEP20240101120000 سبب الرفض"
}

func AdminAskCompanyName() string {
	return "📝 إضافة شركة جديدة\n\nأدخل اسم الشركة:"
}

func AdminAskCompanyType() string {
	return "⚙️ أدخل نوع الخدمة:\n\n✅ الأنواع المقبولة: deposit / withdraw / both\n(أو: إيداع / سحب / كلاهما)"
}

func AdminAskCompanyDetails() string {
	return "📋 أدخل تفاصيل الشركة (تظهر للعملاء):"
}

func AdminCompanyConfirm(name, serviceType, details string) string {
	return fmt.Sprintf("📋 مراجعة الشركة الجديدة:\n\n🏢 الاسم: %s\n⚙️ النوع: %s\n📋 التفاصيل: %s\n\nأرسل \"تأكيد\" للحفظ أو \"إلغاء\" للتراجع", name, serviceType, details)
}

func AdminCompanyCreated(c repo.Company) string {
	return fmt.Sprintf("✅ تمت إضافة الشركة %s (رقم %s)", c.Name, c.ID)
}

func AdminCompanyUpdated(c repo.Company) string {
	return fmt.Sprintf("✅ تم تحديث الشركة %s (رقم %s)\n⚙️ النوع: %s\n📋 التفاصيل: %s", c.Name, c.ID, c.ServiceType, c.Details)
}

func AdminAskDeleteCompany() string {
	return "🗑️ أدخل رقم الشركة المراد حذفها:"
}

func AdminCompanyDeleted(c repo.Company, methodsRemoved int) string {
	return fmt.Sprintf("✅ تم حذف الشركة %s ومعها %d وسيلة دفع", c.Name, methodsRemoved)
}

func AdminAskMethodCompany() string {
	return "➕ إضافة وسيلة دفع\n\nأدخل رقم الشركة:"
}

func AdminAskMethodDetails() string {
	return "💳 أدخل بيانات الوسيلة بالشكل التالي:\n\nالاسم | النوع | بيانات الحساب | معلومات إضافية"
}

func AdminMethodFormatError() string {
	return "❌ صيغة غير صحيحة. استخدم: الاسم | النوع | بيانات الحساب | معلومات إضافية"
}

func AdminMethodCreated(m repo.PaymentMethod) string {
	return fmt.Sprintf("✅ تمت إضافة وسيلة الدفع %s (رقم %s)", m.MethodName, m.ID)
}

func AdminMethodUpdated(m repo.PaymentMethod) string {
	return fmt.Sprintf("✅ تم تحديث وسيلة الدفع %s (رقم %s)", m.MethodName, m.ID)
}

func AdminMethodDeleted(id string) string {
	return fmt.Sprintf("✅ تم حذف وسيلة الدفع رقم %s", id)
}

func AdminMethodsList(methods []repo.PaymentMethod) string {
	if len(methods) == 0 {
		return "💳 لا توجد وسائل دفع"
	}
	var b strings.Builder
	b.WriteString("💳 وسائل الدفع:\n")
	for _, m := range methods {
		status := "✅"
		if !m.IsActive {
			status = "❌"
		}
		fmt.Fprintf(&b, "\n%s %s | شركة %s | %s | %s", status, m.ID, m.CompanyID, m.MethodName, m.AccountData)
	}
	b.WriteString("\n\nللتعديل: تعديل_وسيلة <الرقم> الاسم | النوع | الحساب | معلومات\nللحذف: حذف_وسيلة <الرقم>")
	return b.String()
}

func AdminSettingsList(settings []repo.Setting) string {
	var b strings.Builder
	b.WriteString("⚙️ إعدادات النظام:\n")
	for _, s := range settings {
		fmt.Fprintf(&b, "\n• %s = %s (%s)", s.Key, s.Value, s.Description)
	}
	b.WriteString("\n\nللتعديل: تعديل_اعداد <المفتاح> <القيمة>")
	return b.String()
}

func AdminSettingUpdated(key, value string) string {
	return fmt.Sprintf("✅ تم تحديث الإعداد %s إلى %s", key, value)
}

func AdminAddressUpdated(address string) string {
	return fmt.Sprintf("✅ تم تحديث عنوان السحب:\n📍 %s", address)
}

func AdminComplaintsList(complaints []repo.Complaint) string {
	if len(complaints) == 0 {
		return "📨 لا توجد شكاوى معلقة"
	}
	var b strings.Builder
	b.WriteString("📨 الشكاوى المعلقة:\n")
	for _, c := range complaints {
		fmt.Fprintf(&b, "\n🔢 %s | عميل %s\n📝 %s\n", c.ID, c.CustomerID, c.Message)
	}
	b.WriteString("\nللرد: رد_شكوى <الرقم> <نص الرد>")
	return b.String()
}

func AdminComplaintAnswered(c repo.Complaint) string {
	return fmt.Sprintf("✅ تم الرد على الشكوى %s وإبلاغ العميل %s", c.ID, c.CustomerID)
}

func AdminAskMessageTarget() string {
	return "📧 أدخل رقم العميل المراد مراسلته:"
}

func AdminAskMessageText(u repo.User) string {
	return fmt.Sprintf("📧 اكتب الرسالة للعميل %s (%s):", u.Name, u.CustomerID)
}

func AdminUserMessageSent(u repo.User) string {
	return fmt.Sprintf("✅ تم إرسال الرسالة إلى %s (%s)", u.Name, u.CustomerID)
}

func AdminUserMessage(text string) string {
	return "📧 رسالة من الإدارة:\n\n" + text
}

func AdminActionFailed(err error) string {
	return "❌ فشل التنفيذ: " + err.Error()
}
