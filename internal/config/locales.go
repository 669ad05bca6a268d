package config

const (
	LangEN = "en"
	LangES = "es"
)

// GetLocaleConfig maps a configured language onto a shipped locale. The
// second result is false when lang was not recognised and English is used.
func GetLocaleConfig(lang string) (string, bool) {
	switch lang {
	case LangEN, "":
		return LangEN, true
	case LangES:
		return LangES, true
	default:
		return LangEN, false
	}
}

// LanguageName is the English name used when asking the model to answer in lang.
func LanguageName(lang string) string {
	switch lang {
	case LangES:
		return "Spanish"
	default:
		return "English"
	}
}
