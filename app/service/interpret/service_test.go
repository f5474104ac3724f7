package interpret

import (
	"context"
	"errors"
	"testing"
	"time"
	"vendorline/app/client/llm"
	"vendorline/app/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Call.CompanyName = "Bio Mac Lifesciences"
	cfg.LLM.Disabled = true
	return cfg
}

func TestInterpret_ExplicitPrices(t *testing.T) {
	svc := NewWithUnderstander(testConfig(), nil)

	cases := []struct {
		name  string
		text  string
		price float64
	}{
		{"english words with marker", "twenty five rupees", 25},
		{"digits with marker", "it will be 40 rupees each", 40},
		{"hindi devanagari", "पचास रुपये", 50},
		{"hinglish milega", "30 ka milega", 30},
		{"romanized hindi words", "pachas rupaye", 50},
		{"compound words", "two hundred fifty rupees", 250},
		{"stated rate", "rate is 12", 12},
		{"bare number", "15", 15},
		{"sirf prefix", "sirf 18 rupees", 18},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := svc.Interpret(context.Background(), tc.text, Context{ItemName: "Petri Dishes 100mm"})

			if res.Intent != IntentQuoteGiven {
				t.Fatalf("expected QUOTE_GIVEN, got %v", res.Intent)
			}
			if !res.HasPrice || res.Price != tc.price {
				t.Errorf("expected price %v, got %v (has=%v)", tc.price, res.Price, res.HasPrice)
			}
			if res.Confidence < 0.8 {
				t.Errorf("explicit price should have confidence >= 0.8, got %v", res.Confidence)
			}
		})
	}
}

func TestInterpret_Range(t *testing.T) {
	svc := NewWithUnderstander(testConfig(), nil)

	res := svc.Interpret(context.Background(), "20 to 25 rupees", Context{})

	if res.Intent != IntentQuoteGiven {
		t.Fatalf("expected QUOTE_GIVEN, got %v", res.Intent)
	}
	if res.Price != 22.5 {
		t.Errorf("expected midpoint 22.5, got %v", res.Price)
	}
	if res.Confidence < 0.5 || res.Confidence >= 0.7 {
		t.Errorf("range confidence must be in [0.5, 0.7), got %v", res.Confidence)
	}
}

func TestInterpret_Reference(t *testing.T) {
	svc := NewWithUnderstander(testConfig(), nil)

	res := svc.Interpret(context.Background(), "same rate", Context{LastPrice: 25, HasLastPrice: true})

	if res.Intent != IntentQuoteGiven {
		t.Fatalf("expected QUOTE_GIVEN, got %v", res.Intent)
	}
	if res.Price != 25 {
		t.Errorf("expected prior price 25, got %v", res.Price)
	}
	if res.Confidence < 0.5 || res.Confidence >= 0.8 {
		t.Errorf("reference confidence must be in [0.5, 0.8), got %v", res.Confidence)
	}
}

func TestInterpret_ReferenceWithoutPrior(t *testing.T) {
	svc := NewWithUnderstander(testConfig(), nil)

	res := svc.Interpret(context.Background(), "same as before", Context{})

	if res.Intent != IntentClarificationNeeded {
		t.Errorf("expected CLARIFICATION_NEEDED without a prior quote, got %v", res.Intent)
	}
}

func TestInterpret_EmptyInput(t *testing.T) {
	svc := NewWithUnderstander(testConfig(), nil)

	res := svc.Interpret(context.Background(), "   ", Context{})

	if res.Intent != IntentUnintelligible {
		t.Errorf("expected UNINTELLIGIBLE, got %v", res.Intent)
	}
	if res.Confidence != 0 {
		t.Errorf("expected zero confidence, got %v", res.Confidence)
	}
	if res.HasPrice {
		t.Error("empty input must not carry a price")
	}
}

func TestInterpret_Intents(t *testing.T) {
	svc := NewWithUnderstander(testConfig(), nil)

	cases := []struct {
		text string
		want Intent
	}{
		{"haan bilkul", IntentAgreement},
		{"yes sure", IntentAgreement},
		{"nahi milega", IntentDecline},
		{"not interested", IntentDecline},
		{"what", IntentClarificationNeeded},
		{"repeat please", IntentClarificationNeeded},
		{"phir se boliye", IntentClarificationNeeded},
		{"zzz qqq", IntentUnintelligible},
	}

	for _, tc := range cases {
		res := svc.Interpret(context.Background(), tc.text, Context{})
		if res.Intent != tc.want {
			t.Errorf("%q: expected %v, got %v", tc.text, tc.want, res.Intent)
		}
		if res.HasPrice {
			t.Errorf("%q: unexpected price %v", tc.text, res.Price)
		}
	}
}

type fakeUnderstander struct {
	advisory *llm.Advisory
	err      error
	calls    int
	delay    time.Duration
}

func (f *fakeUnderstander) Understand(ctx context.Context, _ llm.Request) (*llm.Advisory, error) {
	f.calls++

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}

	if f.err != nil {
		return nil, f.err
	}
	return f.advisory, nil
}

func TestInterpret_AdvisoryUsedWhenRulesInconclusive(t *testing.T) {
	price := 42.0
	fake := &fakeUnderstander{advisory: &llm.Advisory{
		Intent:     llm.IntentQuoteGiven,
		Price:      &price,
		Confidence: 0.95,
	}}
	svc := NewWithUnderstander(testConfig(), fake)

	res := svc.Interpret(context.Background(), "chaliye bhav bata deta hoon woh wala", Context{ItemName: "Gloves"})

	if fake.calls != 1 {
		t.Fatalf("expected one advisory call, got %d", fake.calls)
	}
	if res.Intent != IntentQuoteGiven || res.Price != 42 {
		t.Errorf("expected advisory quote of 42, got %v price=%v", res.Intent, res.Price)
	}
	if res.Confidence > 0.79 {
		t.Errorf("advisory confidence must be capped below 0.8, got %v", res.Confidence)
	}
	if !res.Advisory {
		t.Error("result should be flagged as advisory")
	}
}

func TestInterpret_AdvisoryNotConsultedWhenRulesMatch(t *testing.T) {
	fake := &fakeUnderstander{err: errors.New("should not be called")}
	svc := NewWithUnderstander(testConfig(), fake)

	res := svc.Interpret(context.Background(), "25 rupees each", Context{})

	if fake.calls != 0 {
		t.Errorf("advisory consulted despite conclusive rules (%d calls)", fake.calls)
	}
	if res.Intent != IntentQuoteGiven || res.Price != 25 {
		t.Errorf("unexpected result %v price=%v", res.Intent, res.Price)
	}
}

func TestInterpret_AdvisoryFailureFallsBack(t *testing.T) {
	fake := &fakeUnderstander{err: errors.New("upstream down")}
	svc := NewWithUnderstander(testConfig(), fake)

	res := svc.Interpret(context.Background(), "achha woh wala jo hai", Context{})

	if res.Intent != IntentClarificationNeeded {
		t.Errorf("expected CLARIFICATION_NEEDED fallback, got %v", res.Intent)
	}
	if res.HasPrice {
		t.Error("fallback must not carry a price")
	}
}

func TestInterpret_AdvisoryQuoteWithoutPrice(t *testing.T) {
	fake := &fakeUnderstander{advisory: &llm.Advisory{
		Intent:     llm.IntentQuoteGiven,
		Confidence: 0.9,
	}}
	svc := NewWithUnderstander(testConfig(), fake)

	res := svc.Interpret(context.Background(), "achha woh wala jo hai", Context{})

	if res.Intent != IntentClarificationNeeded {
		t.Errorf("quote intent without a price must degrade to clarification, got %v", res.Intent)
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want Language
	}{
		{"पचास रुपये है", LangHindi},
		{"price is 25 rupees each", LangEnglish},
		{"", LangUnknown},
		{"zzz", LangUnknown},
	}

	for _, tc := range cases {
		if got := DetectLanguage(tc.text); got != tc.want {
			t.Errorf("%q: expected %v, got %v", tc.text, tc.want, got)
		}
	}
}

func TestNormalizeNumbers(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"twenty five rupees", "25 rupees"},
		{"two hundred rupees", "200 rupees"},
		{"sau", "100"},
		{"plain words only", "plain words only"},
	}

	for _, tc := range cases {
		if got := normalizeNumbers(tc.in); got != tc.want {
			t.Errorf("normalizeNumbers(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
