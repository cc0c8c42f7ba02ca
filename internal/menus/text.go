package menus

import (
	"fmt"
	"strings"

	"langsense-bot/internal/repo"
)

func pick(lang, ar, en string) string {
	if lang == "en" {
		return en
	}
	return ar
}

func Welcome(lang, name, customerID string) string {
	return pick(lang,
		fmt.Sprintf("🏠 مرحباً بك %s\n\n🆔 رقم العميل: %s\n\n🔹 خدمات الإيداع والسحب\nاختر الخدمة المطلوبة:", name, customerID),
		fmt.Sprintf("🏠 Welcome %s\n\n🆔 Customer ID: %s\n\nChoose a service:", name, customerID))
}

func AskName(lang string) string {
	return pick(lang, "👋 أهلاً بك!\n\nللتسجيل، يرجى إدخال اسمك الكامل:", "👋 Welcome!\n\nTo register, please enter your full name:")
}

func NameTooShort(lang string) string {
	return pick(lang, "❌ الاسم قصير جداً. يرجى إدخال اسمك الكامل:", "❌ Name is too short. Please enter your full name:")
}

func AskPhone(lang string) string {
	return pick(lang, "📱 الآن أرسل رقم هاتفك أو شارك جهة الاتصال:", "📱 Now send your phone number or share your contact:")
}

func PhoneInvalid(lang string) string {
	return pick(lang, "❌ رقم الهاتف غير صحيح. يرجى إدخال رقم صحيح:", "❌ Invalid phone number. Please enter a valid number:")
}

func Registered(lang, name, customerID string) string {
	return pick(lang,
		fmt.Sprintf("✅ تم التسجيل بنجاح!\n\n👤 الاسم: %s\n🆔 رقم العميل: %s\n\nيمكنك الآن استخدام جميع الخدمات.", name, customerID),
		fmt.Sprintf("✅ Registration complete!\n\n👤 Name: %s\n🆔 Customer ID: %s\n\nAll services are now available.", name, customerID))
}

func BanNotice(lang, reason string) string {
	msg := pick(lang, "🚫 تم حظرك من استخدام الخدمة.", "🚫 You are banned from using this service.")
	if reason != "" {
		msg += pick(lang, "\nالسبب: ", "\nReason: ") + reason
	}
	return msg
}

func NoCompanies(lang, kind string) string {
	if kind == repo.KindDeposit {
		return pick(lang, "❌ لا توجد شركات متاحة للإيداع حالياً", "❌ No companies currently accept deposits")
	}
	return pick(lang, "❌ لا توجد شركات متاحة للسحب حالياً", "❌ No companies currently accept withdrawals")
}

func ChooseCompany(lang, kind string) string {
	if kind == repo.KindDeposit {
		return pick(lang, "💰 طلب إيداع جديد\n\n🏢 اختر الشركة للإيداع:", "💰 New deposit request\n\n🏢 Choose a company:")
	}
	return pick(lang, "💸 طلب سحب جديد\n\n🏢 اختر الشركة للسحب:", "💸 New withdrawal request\n\n🏢 Choose a company:")
}

func UnknownCompany(lang string) string {
	return pick(lang, "❌ شركة غير معروفة. اختر شركة من القائمة:", "❌ Unknown company. Pick one from the list:")
}

func ChooseMethod(lang, company string) string {
	return pick(lang,
		fmt.Sprintf("💳 اختر وسيلة الدفع لشركة %s:", company),
		fmt.Sprintf("💳 Choose a payment method for %s:", company))
}

func UnknownMethod(lang string) string {
	return pick(lang, "❌ وسيلة دفع غير معروفة. اختر من القائمة:", "❌ Unknown payment method. Pick one from the list:")
}

func MethodInfo(lang string, m repo.PaymentMethod) string {
	msg := pick(lang,
		fmt.Sprintf("💳 %s (%s)\n📋 بيانات الحساب: %s", m.MethodName, m.MethodType, m.AccountData),
		fmt.Sprintf("💳 %s (%s)\n📋 Account data: %s", m.MethodName, m.MethodType, m.AccountData))
	if m.AdditionalInfo != "" {
		msg += "\nℹ️ " + m.AdditionalInfo
	}
	return msg
}

func AskWallet(lang string) string {
	return pick(lang, "📱 أدخل رقم المحفظة أو الحساب:", "📱 Enter your wallet or account number:")
}

func WalletTooShort(lang string) string {
	return pick(lang, "❌ الرقم قصير جداً. يرجى إدخال رقم صحيح:", "❌ Number is too short. Please enter a valid one:")
}

func AskAmount(lang, kind, min string) string {
	if kind == repo.KindDeposit {
		return pick(lang,
			fmt.Sprintf("💰 الآن أدخل المبلغ المطلوب إيداعه:\n\n📌 أقل مبلغ للإيداع: %s ريال", min),
			fmt.Sprintf("💰 Now enter the deposit amount:\n\n📌 Minimum deposit: %s SAR", min))
	}
	return pick(lang,
		fmt.Sprintf("💰 الآن أدخل المبلغ المطلوب سحبه:\n\n📌 أقل مبلغ للسحب: %s ريال", min),
		fmt.Sprintf("💰 Now enter the withdrawal amount:\n\n📌 Minimum withdrawal: %s SAR", min))
}

func AmountInvalid(lang string) string {
	return pick(lang, "❌ المبلغ غير صحيح. يرجى إدخال رقم:", "❌ Invalid amount. Please enter a number:")
}

func AmountBelowMin(lang, min string) string {
	return pick(lang,
		fmt.Sprintf("❌ أقل مبلغ مسموح به %s ريال. يرجى إدخال مبلغ أكبر:", min),
		fmt.Sprintf("❌ The minimum amount is %s SAR. Please enter a larger amount:", min))
}

func AmountAboveMax(lang, max string) string {
	return pick(lang,
		fmt.Sprintf("❌ أقصى مبلغ للسحب اليومي %s ريال. يرجى إدخال مبلغ أقل:", max),
		fmt.Sprintf("❌ The daily withdrawal limit is %s SAR. Please enter a smaller amount:", max))
}

func AskCode(lang, amount, address string) string {
	return pick(lang,
		fmt.Sprintf("✅ تم تأكيد المبلغ: %s ريال\n\n📍 عنوان السحب:\n%s\n\n🔐 يرجى إرسال كود التأكيد:", amount, address),
		fmt.Sprintf("✅ Amount confirmed: %s SAR\n\n📍 Payout address:\n%s\n\n🔐 Please send a confirmation code:", amount, address))
}

func CodeTooShort(lang string) string {
	return pick(lang, "❌ كود التأكيد قصير جداً. يرجى إدخال كود صحيح:", "❌ Confirmation code is too short. Please enter a valid code:")
}

func FinalConfirm(lang, company, wallet, amount, address, code string) string {
	return pick(lang,
		fmt.Sprintf("📋 مراجعة نهائية لطلب السحب:\n\n🏢 الشركة: %s\n📱 المحفظة: %s\n💰 المبلغ: %s ريال\n📍 عنوان السحب: %s\n🔐 كود التأكيد: %s\n\nأرسل \"تأكيد\" لإرسال الطلب أو \"إلغاء\" للعودة",
			company, wallet, amount, address, code),
		fmt.Sprintf("📋 Final review of the withdrawal:\n\n🏢 Company: %s\n📱 Wallet: %s\n💰 Amount: %s SAR\n📍 Payout address: %s\n🔐 Code: %s\n\nSend \"confirm\" to submit or \"cancel\" to abort",
			company, wallet, amount, address, code))
}

func ConfirmReprompt(lang string) string {
	return pick(lang,
		"يرجى الإجابة بكلمة تأكيد (تأكيد، موافق، نعم) أو إلغاء (إلغاء، لا، رفض):",
		"Please answer with a confirm word (confirm, yes, ok) or a cancel word (cancel, no):")
}

func Cancelled(lang string) string {
	return pick(lang, "تم إلغاء العملية", "Operation cancelled")
}

func DepositCreated(lang, id, amount, company string) string {
	return pick(lang,
		fmt.Sprintf("✅ تم إرسال طلب الإيداع بنجاح\n\n🔢 رقم الطلب: %s\n🏢 الشركة: %s\n💰 المبلغ: %s ريال\n\nسيتم إشعارك فور الموافقة على طلبك.", id, company, amount),
		fmt.Sprintf("✅ Deposit request submitted\n\n🔢 Request ID: %s\n🏢 Company: %s\n💰 Amount: %s SAR\n\nYou will be notified once it is reviewed.", id, company, amount))
}

func WithdrawCreated(lang, id, amount, address string) string {
	return pick(lang,
		fmt.Sprintf("✅ تم إرسال طلب السحب بنجاح\n\n🔢 رقم الطلب: %s\n💰 المبلغ: %s ريال\n📍 عنوان السحب: %s\n\nسيتم إشعارك فور الموافقة على طلبك.", id, amount, address),
		fmt.Sprintf("✅ Withdrawal request submitted\n\n🔢 Request ID: %s\n💰 Amount: %s SAR\n📍 Payout address: %s\n\nYou will be notified once it is reviewed.", id, amount, address))
}

func AskComplaint(lang string) string {
	return pick(lang, "📨 اكتب شكواك وسيتم الرد عليها في أقرب وقت:", "📨 Write your complaint and we will respond shortly:")
}

func ComplaintCreated(lang, id string) string {
	return pick(lang,
		fmt.Sprintf("✅ تم استلام شكواك برقم %s وسيتم الرد عليها قريباً.", id),
		fmt.Sprintf("✅ Your complaint %s was received and will be answered soon.", id))
}

func ComplaintAnswered(lang string, c repo.Complaint) string {
	return pick(lang,
		fmt.Sprintf("📨 تم الرد على شكواك %s:\n\n%s", c.ID, c.AdminResponse),
		fmt.Sprintf("📨 Your complaint %s was answered:\n\n%s", c.ID, c.AdminResponse))
}

func Support(lang, phone string) string {
	return pick(lang,
		fmt.Sprintf("🆘 الدعم الفني\n\n📞 للتواصل: %s\n\nيمكنك أيضاً إرسال شكوى من خلال النظام", phone),
		fmt.Sprintf("🆘 Support\n\n📞 Contact: %s\n\nYou can also file a complaint through the bot", phone))
}

func Profile(lang string, u repo.User) string {
	langName := pick(u.Language, "العربية", "English")
	return pick(lang,
		fmt.Sprintf("👤 ملفك الشخصي\n\n📛 الاسم: %s\n🆔 رقم العميل: %s\n📱 الهاتف: %s\n🌐 اللغة: %s\n📅 تاريخ التسجيل: %s",
			u.Name, u.CustomerID, u.Phone, langName, u.RegisteredAt.Format("2006-01-02")),
		fmt.Sprintf("👤 Your profile\n\n📛 Name: %s\n🆔 Customer ID: %s\n📱 Phone: %s\n🌐 Language: %s\n📅 Registered: %s",
			u.Name, u.CustomerID, u.Phone, langName, u.RegisteredAt.Format("2006-01-02")))
}

func NoRequests(lang string) string {
	return pick(lang, "📋 لا توجد طلبات سابقة", "📋 You have no requests yet")
}

func RequestsList(lang string, txns []repo.Transaction) string {
	var b strings.Builder
	b.WriteString(pick(lang, "📋 طلباتك:\n", "📋 Your requests:\n"))
	for _, t := range txns {
		emoji := "⏳"
		switch t.Status {
		case repo.StatusApproved:
			emoji = "✅"
		case repo.StatusRejected:
			emoji = "❌"
		}
		fmt.Fprintf(&b, "\n%s %s | %s | %s ريال | %s", emoji, t.ID, t.Company, t.Amount.String(), t.Status)
	}
	return b.String()
}

func LanguageChanged(lang string) string {
	return pick(lang, "✅ تم تغيير اللغة إلى العربية", "✅ Language switched to English")
}

func DecisionNotice(lang string, t repo.Transaction) string {
	kindAr := "الإيداع"
	kindEn := "deposit"
	if t.Kind == repo.KindWithdraw {
		kindAr = "السحب"
		kindEn = "withdrawal"
	}
	if t.Status == repo.StatusApproved {
		followAr := "شكراً لك! تم تأكيد إيداعك."
		if t.Kind == repo.KindWithdraw {
			followAr = "يرجى زيارة مكتب الصرافة لاستلام المبلغ."
		}
		return pick(lang,
			fmt.Sprintf("✅ تمت الموافقة على طلب %s\n\n🔢 رقم الطلب: %s\n💰 المبلغ: %s ريال\n\n%s", kindAr, t.ID, t.Amount.String(), followAr),
			fmt.Sprintf("✅ Your %s request %s for %s SAR was approved.", kindEn, t.ID, t.Amount.String()))
	}
	msg := pick(lang,
		fmt.Sprintf("❌ تم رفض طلب %s\n\n🔢 رقم الطلب: %s\n💰 المبلغ: %s ريال", kindAr, t.ID, t.Amount.String()),
		fmt.Sprintf("❌ Your %s request %s for %s SAR was rejected.", kindEn, t.ID, t.Amount.String()))
	if t.AdminNote != "" {
		msg += pick(lang, "\n📝 السبب: ", "\nReason: ") + t.AdminNote
	}
	msg += pick(lang, "\n\nيمكنك إنشاء طلب جديد أو التواصل مع الدعم.", "\n\nYou can create a new request or contact support.")
	return msg
}

func FallbackMenu(lang string) string {
	return pick(lang, "🤔 لم أفهم طلبك. اختر من القائمة:", "🤔 I did not understand. Pick an option from the menu:")
}
