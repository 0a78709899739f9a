package faq

import "github.com/qoldai/helpdesk/internal/domain"

// Entry is one canned answer. Answers are keyed by language with Russian as
// the guaranteed fallback variant.
type Entry struct {
	Keywords []string
	Category string
	Answers  map[domain.Language]string
}

// DefaultEntries returns the built-in FAQ table. It is static configuration:
// loaded once at process start, immutable afterwards; changing it is a
// deploy, not a runtime operation.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Keywords: []string{"пароль", "сбросить", "забыл", "восстановить", "password", "reset"},
			Category: "account",
			Answers: map[domain.Language]string{
				domain.LanguageRU: "**Восстановление пароля**\n\nДля сброса пароля:\n1. Перейдите на страницу входа\n2. Нажмите \"Забыли пароль?\"\n3. Введите email и следуйте инструкциям\n\nЕсли письмо не приходит, проверьте папку \"Спам\".",
				domain.LanguageKZ: "**Құпия сөзді қалпына келтіру**\n\nҚұпия сөзді қалпына келтіру үшін:\n1. Кіру бетіне өтіңіз\n2. \"Құпия сөзді ұмыттыңыз ба?\" түймесін басыңыз\n3. Email енгізіп, нұсқауларды орындаңыз",
				domain.LanguageEN: "**Password Reset**\n\nTo reset your password:\n1. Go to the login page\n2. Click \"Forgot password?\"\n3. Enter your email and follow the instructions",
			},
		},
		{
			Keywords: []string{"оплата", "счёт", "invoice", "payment", "тариф", "подписка", "subscription"},
			Category: "billing",
			Answers: map[domain.Language]string{
				domain.LanguageRU: "**Вопросы по оплате**\n\nВы можете:\n- Посмотреть счета в разделе \"Биллинг\"\n- Изменить способ оплаты в настройках\n- Скачать счёт-фактуру в истории платежей\n\nПри проблемах с оплатой, тикет передан специалисту.",
				domain.LanguageKZ: "**Төлем сұрақтары**\n\nСіз:\n- \"Биллинг\" бөлімінде шоттарды көре аласыз\n- Параметрлерде төлем әдісін өзгерте аласыз\n- Төлем тарихынан шот-фактураны жүктей аласыз",
				domain.LanguageEN: "**Payment Questions**\n\nYou can:\n- View invoices in the \"Billing\" section\n- Change payment method in settings\n- Download invoice from payment history",
			},
		},
		{
			Keywords: []string{"не работает", "ошибка", "error", "bug", "баг", "сломалось", "проблема"},
			Category: "technical",
			Answers: map[domain.Language]string{
				domain.LanguageRU: "**Техническая проблема**\n\nПопробуйте:\n1. Обновить страницу (Ctrl+F5)\n2. Очистить кэш браузера\n3. Попробовать другой браузер\n\nЕсли не помогло - наш специалист скоро свяжется с вами!",
				domain.LanguageKZ: "**Техникалық мәселе**\n\nКөріңіз:\n1. Бетті жаңартыңыз (Ctrl+F5)\n2. Браузер кэшін тазалаңыз\n3. Басқа браузерді қолданып көріңіз",
				domain.LanguageEN: "**Technical Issue**\n\nTry:\n1. Refresh the page (Ctrl+F5)\n2. Clear browser cache\n3. Try a different browser",
			},
		},
		{
			Keywords: []string{"график работы", "время работы", "часы", "working hours", "support hours"},
			Category: "general",
			Answers: map[domain.Language]string{
				domain.LanguageRU: "**Часы работы поддержки**\n\nМы работаем:\n- Пн-Пт: 9:00 - 18:00 (Алматы)\n- Сб-Вс: только срочные запросы\n\nAI-ассистент доступен 24/7!",
				domain.LanguageKZ: "**Қолдау жұмыс уақыты**\n\nБіз жұмыс істейміз:\n- Дс-Жм: 9:00 - 18:00 (Алматы)\n- Сс-Жс: тек шұғыл сұраулар\n\nAI көмекшісі тәулік бойы қолжетімді!",
				domain.LanguageEN: "**Support Hours**\n\nWe work:\n- Mon-Fri: 9:00 AM - 6:00 PM (Almaty)\n- Sat-Sun: urgent requests only\n\nAI assistant available 24/7!",
			},
		},
		{
			Keywords: []string{"контакт", "связаться", "телефон", "email", "contact", "phone"},
			Category: "general",
			Answers: map[domain.Language]string{
				domain.LanguageRU: "**Контакты**\n\n- Email: support@qoldai.kz\n- Телефон: +7 (727) 123-45-67\n- Telegram: @qoldai_support\n\nИли создайте тикет - мы ответим в течение 24 часов!",
				domain.LanguageKZ: "**Байланыс**\n\n- Email: support@qoldai.kz\n- Телефон: +7 (727) 123-45-67\n- Telegram: @qoldai_support",
				domain.LanguageEN: "**Contact Us**\n\n- Email: support@qoldai.kz\n- Phone: +7 (727) 123-45-67\n- Telegram: @qoldai_support",
			},
		},
	}
}
