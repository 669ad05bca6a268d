package config

type AI string

const (
	AIAnthropic AI = "anthropic"
	AIGemini    AI = "gemini"
)

type Model string

const (
	ModelClaudeSonnet35 Model = "claude-3-5-sonnet-20241022"
	ModelClaudeHaiku35  Model = "claude-3-5-haiku-20241022"

	ModelGeminiV25Pro   Model = "gemini-2.5-pro"
	ModelGeminiV25Flash Model = "gemini-2.5-flash"
)

func SupportedAIs() []AI {
	return []AI{
		AIAnthropic,
		AIGemini,
	}
}

func IsSupportedAI(ai AI) bool {
	for _, s := range SupportedAIs() {
		if s == ai {
			return true
		}
	}
	return false
}

func ModelsForAI(ai AI) []Model {
	switch ai {
	case AIAnthropic:
		return []Model{
			ModelClaudeSonnet35,
			ModelClaudeHaiku35,
		}
	case AIGemini:
		return []Model{
			ModelGeminiV25Flash,
			ModelGeminiV25Pro,
		}
	default:
		return []Model{}
	}
}

func DefaultModelForAI(ai AI) Model {
	models := ModelsForAI(ai)
	if len(models) == 0 {
		return ""
	}
	return models[0]
}
