package identity

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrWrongPassword        = errors.New("wrong password")
	ErrEmailInUse           = errors.New("email already in use")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrWeakPassword         = errors.New("weak password")
	ErrTooManyRequests      = errors.New("too many failed attempts")
	ErrWrongAccountType     = errors.New("wrong account type")
	ErrNotRegisteredInStore = errors.New("not registered in this store")
	ErrMissingField         = errors.New("required field missing")
	ErrUnauthenticated      = errors.New("not signed in")
)

var messages = map[error]map[string]string{
	ErrUserNotFound: {
		"ar": "لا يوجد حساب مسجل بهذا البريد الإلكتروني",
		"en": "No account is registered with this email",
	},
	ErrWrongPassword: {
		"ar": "كلمة المرور غير صحيحة",
		"en": "Incorrect password",
	},
	ErrEmailInUse: {
		"ar": "البريد الإلكتروني مستخدم بالفعل",
		"en": "This email is already in use",
	},
	ErrInvalidEmail: {
		"ar": "البريد الإلكتروني غير صالح",
		"en": "Invalid email address",
	},
	ErrWeakPassword: {
		"ar": "كلمة المرور ضعيفة، يجب أن تكون 6 أحرف على الأقل",
		"en": "Password is too weak, use at least 6 characters",
	},
	ErrTooManyRequests: {
		"ar": "محاولات كثيرة، يرجى المحاولة لاحقاً",
		"en": "Too many attempts, please try again later",
	},
	ErrWrongAccountType: {
		"ar": "نوع الحساب غير صحيح",
		"en": "This account cannot sign in with the selected role",
	},
	ErrNotRegisteredInStore: {
		"ar": "هذا الحساب غير مسجل في هذا المتجر",
		"en": "This account is not registered in this store",
	},
	ErrMissingField: {
		"ar": "يرجى تعبئة جميع الحقول المطلوبة",
		"en": "Please fill in all required fields",
	},
	ErrUnauthenticated: {
		"ar": "يرجى تسجيل الدخول",
		"en": "Please sign in",
	},
}

// Message returns the user-facing text for err in lang, falling back to Arabic.
// ok is false when err is not an identity error.
func Message(err error, lang string) (msg string, ok bool) {
	for target, byLang := range messages {
		if errors.Is(err, target) {
			if m, found := byLang[primaryLanguage(lang)]; found {
				return m, true
			}
			return byLang["ar"], true
		}
	}
	return "", false
}

// primaryLanguage reduces an Accept-Language value such as "en-US,en;q=0.9" to "en".
func primaryLanguage(header string) string {
	tag := strings.TrimSpace(strings.Split(header, ",")[0])
	tag = strings.Split(tag, ";")[0]
	tag = strings.Split(tag, "-")[0]
	return strings.ToLower(tag)
}
