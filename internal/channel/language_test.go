package channel

import (
	"testing"

	"github.com/qoldai/helpdesk/internal/domain"
)

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want domain.Language
	}{
		{"Сәлем, менің сұрағым бар", domain.LanguageKZ},
		{"рахмет за помощь", domain.LanguageKZ},
		{"Қалай тіркелуге болады", domain.LanguageKZ},
		{"Здравствуйте, у меня проблема с оплатой", domain.LanguageRU},
		{"Не работает личный кабинет", domain.LanguageRU},
		{"Hello, I cannot log in", domain.LanguageEN},
		{"payment failed 402", domain.LanguageEN},
		{"", domain.LanguageEN},
	}
	for _, tc := range cases {
		if got := DetectLanguage(tc.text); got != tc.want {
			t.Fatalf("DetectLanguage(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}
