package interpret

import "strings"

// Marker vocabularies for scoring the Hindi/English mix of an utterance.
var (
	hindiMarkers = []string{
		"रुपये", "रुपया", "पैसे", "हजार", "सौ", "है", "का", "के", "में", "से",
		"ठीक", "अच्छा", "बताओ", "कितना",
		"rupaye", "bhai", "theek", "accha", "batao", "kitna", "haan", "nahi",
		"milega", "hoga", "sirf", "lagbhag", "wahi", "pehle",
	}

	englishMarkers = []string{
		"rupees", "rs", "price", "cost", "each", "per", "piece", "unit",
		"yes", "no", "okay", "repeat", "rate", "only", "around",
	}
)

// DetectLanguage classifies the Hindi/English mix of an utterance by counting
// marker words from both vocabularies.
func DetectLanguage(text string) Language {
	if strings.TrimSpace(text) == "" {
		return LangUnknown
	}

	lower := strings.ToLower(text)

	hindi := countMarkers(lower, hindiMarkers)
	english := countMarkers(lower, englishMarkers)

	switch {
	case hindi > english:
		return LangHindi
	case english > hindi:
		return LangEnglish
	case hindi > 0:
		return LangMixed
	default:
		return LangUnknown
	}
}

func countMarkers(lower string, markers []string) int {
	count := 0

	for _, m := range markers {
		if strings.Contains(lower, m) {
			count++
		}
	}

	return count
}
