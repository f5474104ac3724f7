package interpret

import (
	"strconv"
	"strings"
	"unicode"
)

// Spoken number vocabulary in English, Hindi (Devanagari) and romanized Hindi.
// Values 100 and 1000 act as multipliers when combining a run of number words.
var numberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	"hundred": 100, "thousand": 1000,

	"एक": 1, "दो": 2, "तीन": 3, "चार": 4, "पांच": 5, "पाँच": 5,
	"छह": 6, "सात": 7, "आठ": 8, "नौ": 9, "दस": 10,
	"बीस": 20, "तीस": 30, "चालीस": 40, "पचास": 50,
	"साठ": 60, "सत्तर": 70, "अस्सी": 80, "नब्बे": 90,
	"सौ": 100, "हजार": 1000,

	"paanch": 5, "das": 10, "bees": 20, "tees": 30,
	"chalis": 40, "chaalis": 40, "pachas": 50, "assi": 80, "nabbe": 90,
	"sau": 100, "hazaar": 1000, "hazar": 1000,
}

// normalizeNumbers lowercases the text, strips surrounding punctuation from
// tokens and collapses runs of spoken number words into digit tokens, so that
// "twenty five rupees" becomes "25 rupees" and "paanch sau pachas" becomes "550".
func normalizeNumbers(text string) string {
	tokens := tokenize(text)

	var out []string
	i := 0

	for i < len(tokens) {
		run, consumed := parseNumberRun(tokens[i:])
		if consumed > 0 {
			out = append(out, strconv.FormatFloat(run, 'f', -1, 64))
			i += consumed
			continue
		}

		out = append(out, tokens[i])
		i++
	}

	return strings.Join(out, " ")
}

// parseNumberRun combines a leading run of number tokens into one value.
// Tens and units add, hundred/thousand multiply the accumulated value.
func parseNumberRun(tokens []string) (float64, int) {
	value := 0.0
	consumed := 0

	for _, tok := range tokens {
		v, ok := numberTokenValue(tok)
		if !ok {
			break
		}

		switch {
		case v == 100 || v == 1000:
			if value == 0 {
				value = 1
			}
			value *= v
		default:
			value += v
		}

		consumed++
	}

	if consumed == 0 {
		return 0, 0
	}

	return value, consumed
}

func numberTokenValue(tok string) (float64, bool) {
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return v, true
	}

	v, ok := numberWords[tok]
	return v, ok
}

func tokenize(text string) []string {
	var tokens []string

	for _, field := range strings.Fields(strings.ToLower(text)) {
		tok := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) && r != '.' && r != '-'
		})
		tok = strings.TrimRight(tok, ".")

		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	return tokens
}
