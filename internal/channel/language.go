package channel

import (
	"regexp"
	"strings"

	"github.com/qoldai/helpdesk/internal/domain"
)

// Kazakh-specific letters plus a few common Kazakh words that use only
// shared Cyrillic letters.
var kazakhPattern = regexp.MustCompile(`[әіңғүұқөһ]|сәлем|рахмет|қалай`)

var cyrillicPattern = regexp.MustCompile(`[а-яё]`)

// DetectLanguage guesses the language of inbound free text. Kazakh markers
// win over plain Cyrillic; anything without Cyrillic is treated as English.
func DetectLanguage(text string) domain.Language {
	lower := strings.ToLower(text)
	if kazakhPattern.MatchString(lower) {
		return domain.LanguageKZ
	}
	if cyrillicPattern.MatchString(lower) {
		return domain.LanguageRU
	}
	return domain.LanguageEN
}
