package booking

// Language tags used for per-message tagging, extraction prompts and reply
// templates.
const (
	LanguageHebrew  = "he"
	LanguageEnglish = "en"
)

// DetectLanguage tags a message as Hebrew when it contains any rune in the
// Hebrew Unicode block, otherwise English. The heuristic is re-applied every
// turn, so a session's language can flip on a mixed-language message; short
// numeric-only messages come out as English.
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0590 && r <= 0x05FF {
			return LanguageHebrew
		}
	}
	return LanguageEnglish
}
