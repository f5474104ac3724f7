package interpret

import "fmt"

type Intent int

const (
	IntentUnintelligible Intent = iota
	IntentQuoteGiven
	IntentClarificationNeeded
	IntentAgreement
	IntentDecline
)

func (i Intent) String() string {
	switch i {
	case IntentQuoteGiven:
		return "QUOTE_GIVEN"
	case IntentClarificationNeeded:
		return "CLARIFICATION_NEEDED"
	case IntentAgreement:
		return "AGREEMENT"
	case IntentDecline:
		return "DECLINE"
	case IntentUnintelligible:
		return "UNINTELLIGIBLE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(i))
	}
}

type Language string

const (
	LangHindi   Language = "Hindi"
	LangEnglish Language = "English"
	LangMixed   Language = "Mixed"
	LangUnknown Language = "Unknown"
)

// Result is the transient outcome of interpreting one utterance. It is consumed
// by the session tracker and never persisted.
type Result struct {
	Intent     Intent
	Price      float64
	HasPrice   bool
	Confidence float64
	Language   Language
	// Advisory is set when the result came from the advisory model rather than
	// the local rule engine.
	Advisory bool
	// Utterance is the trimmed transcript the result was derived from.
	Utterance string
}

// Context is what the interpreter knows about the conversation beyond the
// utterance itself: the item under discussion and the last accepted quote,
// used to resolve references like "same as before".
type Context struct {
	ItemName      string
	Specification string
	Quantity      int
	Unit          string
	LastPrice     float64
	HasLastPrice  bool
	// Most recent prompts/replies, oldest first
	HistoryExcerpt []string
}
