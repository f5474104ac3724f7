package interpret

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"vendorline/app/client/llm"
	"vendorline/app/config"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

const (
	// Confidence assigned by each extraction path. Explicit numbers sit at or
	// above 0.8, reference resolutions in [0.5, 0.8), ranges in [0.5, 0.7).
	confMarkedPrice = 0.9
	confStatedPrice = 0.85
	confBareNumber  = 0.8
	confReference   = 0.7
	confRange       = 0.6

	// An advisory result can never outrank an explicit local extraction.
	advisoryConfidenceCap = 0.79
)

var (
	// Rupee/price patterns, applied to number-normalized text.
	markedPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:रुपये|रुपया|पैसे|rupees?|rupaye|rs)`),
		regexp.MustCompile(`(?:रुपये|रुपया|rupees?|rs)\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:ka|ke|ki)\s*(?:hai|hoga|milega)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hai|hoga|milega)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:each|per piece|per unit)`),
		regexp.MustCompile(`(?:sirf|only|bas)\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?:around|lagbhag)\s*(\d+(?:\.\d+)?)`),
	}

	statedPricePattern = regexp.MustCompile(`(?:price|cost|rate|daam)\s*(?:is|will be|hai)?\s*(\d+(?:\.\d+)?)`)

	bareNumberPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

	rangePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:to|se|-|–)\s*(\d+(?:\.\d+)?)`)

	referencePhrases = []string{
		"same as before", "same rate", "same price", "usual rate", "usual price",
		"wahi rate", "wahi daam", "pehle jaisa", "pehle wala", "same hi",
	}

	declinePhrases = []string{
		"not interested", "cannot supply", "can't supply", "no stock",
		"out of stock", "nahi milega", "nahi doonga", "nahi de sakta",
		"nahi de sakte", "not possible", "nahi hai", "don't have", "busy hun",
	}

	declineTokens = []string{"no", "nahi", "nahin", "nope"}

	clarifyPhrases = []string{
		"phir se", "once more", "come again", "samajh nahi", "samjha nahi",
		"sunai nahi", "dobara",
	}

	clarifyTokens = []string{"repeat", "pardon", "kya", "what", "hello"}

	agreementTokens = []string{
		"yes", "yeah", "yep", "sure", "okay", "ok", "definitely", "absolutely",
		"haan", "han", "ha", "bilkul", "jarur", "zaroor", "theek", "accha",
		"sahi", "done", "ji",
	}
)

type Service struct {
	cfg          *config.Config
	understander llm.Understander
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	var understander llm.Understander
	if !cfg.LLM.Disabled && cfg.LLM.Token != "" {
		understander = do.MustInvoke[*llm.Client](di)
	}

	return &Service{
		cfg:          cfg,
		understander: understander,
	}, nil
}

// NewWithUnderstander builds an interpreter with an explicit advisory delegate.
// A nil delegate keeps the interpreter fully rule-based.
func NewWithUnderstander(cfg *config.Config, understander llm.Understander) *Service {
	return &Service{cfg: cfg, understander: understander}
}

// Interpret never fails: unusable input degrades to UNINTELLIGIBLE with zero
// confidence rather than returning an error.
func (s *Service) Interpret(ctx context.Context, text string, ic Context) Result {
	result := s.classify(ctx, text, ic)
	result.Utterance = strings.TrimSpace(text)

	return result
}

func (s *Service) classify(ctx context.Context, text string, ic Context) Result {
	language := DetectLanguage(text)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Intent: IntentUnintelligible, Language: LangUnknown}
	}

	normalized := normalizeNumbers(trimmed)
	tokens := strings.Fields(normalized)

	if containsAnyPhrase(normalized, referencePhrases) {
		if ic.HasLastPrice {
			return Result{
				Intent:     IntentQuoteGiven,
				Price:      ic.LastPrice,
				HasPrice:   true,
				Confidence: confReference,
				Language:   language,
			}
		}

		// "Same as before" with nothing to refer back to
		return Result{Intent: IntentClarificationNeeded, Confidence: 0.4, Language: language}
	}

	if m := rangePattern.FindStringSubmatch(normalized); m != nil {
		low, errLow := strconv.ParseFloat(m[1], 64)
		high, errHigh := strconv.ParseFloat(m[2], 64)

		if errLow == nil && errHigh == nil && high >= low {
			return Result{
				Intent:     IntentQuoteGiven,
				Price:      (low + high) / 2,
				HasPrice:   true,
				Confidence: confRange,
				Language:   language,
			}
		}
	}

	if price, conf, ok := extractPrice(normalized); ok {
		return Result{
			Intent:     IntentQuoteGiven,
			Price:      price,
			HasPrice:   true,
			Confidence: conf,
			Language:   language,
		}
	}

	if containsAnyPhrase(normalized, declinePhrases) || containsAnyToken(tokens, declineTokens) {
		return Result{Intent: IntentDecline, Confidence: 0.8, Language: language}
	}

	if containsAnyPhrase(normalized, clarifyPhrases) || containsAnyToken(tokens, clarifyTokens) {
		return Result{Intent: IntentClarificationNeeded, Confidence: 0.7, Language: language}
	}

	if containsAnyToken(tokens, agreementTokens) {
		return Result{Intent: IntentAgreement, Confidence: 0.6, Language: language}
	}

	return s.consultAdvisory(ctx, trimmed, language, ic)
}

// consultAdvisory is the path of last resort: the rules recognized nothing, so
// ask the advisory model if one is configured. Any failure falls back to a
// deterministic clarification request.
func (s *Service) consultAdvisory(ctx context.Context, text string, language Language, ic Context) Result {
	if s.understander == nil {
		return Result{Intent: IntentUnintelligible, Language: language}
	}

	advisory, err := s.understander.Understand(ctx, llm.Request{
		Utterance:      text,
		ItemName:       ic.ItemName,
		Specification:  ic.Specification,
		Quantity:       ic.Quantity,
		Unit:           ic.Unit,
		HistoryExcerpt: ic.HistoryExcerpt,
	})
	if err != nil {
		slog.Warn("Advisory understanding failed, falling back",
			"item", ic.ItemName,
			"error", err)

		return Result{Intent: IntentClarificationNeeded, Language: language, Advisory: true}
	}

	result := Result{
		Intent:     advisoryIntent(advisory.Intent),
		Confidence: min(advisory.Confidence, advisoryConfidenceCap),
		Language:   language,
		Advisory:   true,
	}

	if advisory.Intent == llm.IntentQuoteGiven && advisory.Price != nil && *advisory.Price > 0 {
		result.Price = *advisory.Price
		result.HasPrice = true
	} else if result.Intent == IntentQuoteGiven {
		// A quote without a price is not a quote
		result.Intent = IntentClarificationNeeded
		result.Confidence = 0.4
	}

	return result
}

func advisoryIntent(intent string) Intent {
	switch intent {
	case llm.IntentQuoteGiven:
		return IntentQuoteGiven
	case llm.IntentClarificationNeeded:
		return IntentClarificationNeeded
	case llm.IntentAgreement:
		return IntentAgreement
	case llm.IntentDecline:
		return IntentDecline
	default:
		return IntentUnintelligible
	}
}

func extractPrice(normalized string) (float64, float64, bool) {
	for _, pattern := range markedPricePatterns {
		if m := pattern.FindStringSubmatch(normalized); m != nil {
			if price, err := strconv.ParseFloat(m[1], 64); err == nil && price > 0 {
				return price, confMarkedPrice, true
			}
		}
	}

	if m := statedPricePattern.FindStringSubmatch(normalized); m != nil {
		if price, err := strconv.ParseFloat(m[1], 64); err == nil && price > 0 {
			return price, confStatedPrice, true
		}
	}

	if m := bareNumberPattern.FindStringSubmatch(normalized); m != nil {
		if price, err := strconv.ParseFloat(m[1], 64); err == nil && price > 0 {
			return price, confBareNumber, true
		}
	}

	return 0, 0, false
}

func containsAnyPhrase(normalized string, phrases []string) bool {
	return pie.Any(phrases, func(p string) bool {
		return strings.Contains(normalized, p)
	})
}

func containsAnyToken(tokens []string, wanted []string) bool {
	return pie.Any(wanted, func(w string) bool {
		return pie.Contains(tokens, w)
	})
}
