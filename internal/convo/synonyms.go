package convo

import "strings"

// Free-text confirm/cancel matching: case-insensitive substring against
// a fixed synonym set. Input matching neither set re-prompts.

var confirmWords = []string{
	"تأكيد", "تاكيد", "تأكييد", "تاكييد",
	"موافق", "موافقة", "اوافق", "أوافق",
	"نعم", "اكيد", "أكيد",
	"ok", "yes", "confirm",
}

var cancelWords = []string{
	"إلغاء", "الغاء", "لا", "رفض", "توقف", "إيقاف",
	"no", "cancel",
}

func matchesAny(text string, words []string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// IsConfirm reports whether text reads as agreement.
func IsConfirm(text string) bool { return matchesAny(text, confirmWords) }

// IsCancelWord reports whether text reads as refusal.
func IsCancelWord(text string) bool { return matchesAny(text, cancelWords) }
