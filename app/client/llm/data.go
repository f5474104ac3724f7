package llm

import "context"

// Request carries one utterance plus the item context handed to the advisory model.
type Request struct {
	Utterance     string
	ItemName      string
	Specification string
	Quantity      int
	Unit          string
	// Most recent prompts/replies, oldest first
	HistoryExcerpt []string
}

type Advisory struct {
	Intent     string   `json:"intent"`
	Price      *float64 `json:"price"`
	Confidence float64  `json:"confidence"`
}

// Intent values the advisory model is allowed to return.
const (
	IntentQuoteGiven          = "QUOTE_GIVEN"
	IntentClarificationNeeded = "CLARIFICATION_NEEDED"
	IntentAgreement           = "AGREEMENT"
	IntentDecline             = "DECLINE"
	IntentUnintelligible      = "UNINTELLIGIBLE"
)

// Understander is the advisory text-understanding boundary. Implementations are
// advisory only: callers must survive any error or timeout with a local fallback.
type Understander interface {
	Understand(ctx context.Context, req Request) (*Advisory, error)
}
