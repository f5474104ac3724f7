package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Status is the lifecycle state of a call session.
//
//	GREETING → NEGOTIATING → CONCLUDING → CLOSED
//	              │
//	              └── budget exhausted ──→ TIMED_OUT
//
// CLOSED and TIMED_OUT are terminal: any further event is absorbed as a no-op
// so that late-arriving webhook events cannot resurrect a finished call.
type Status int

const (
	StatusGreeting Status = iota
	StatusNegotiating
	StatusConcluding
	StatusClosed
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusGreeting:
		return "GREETING"
	case StatusNegotiating:
		return "NEGOTIATING"
	case StatusConcluding:
		return "CONCLUDING"
	case StatusClosed:
		return "CLOSED"
	case StatusTimedOut:
		return "TIMED_OUT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusTimedOut
}

// Item is one procurement position discussed during a call.
type Item struct {
	Name          string
	Quantity      int
	Unit          string
	Category      string
	Specification string
}

// Quote is the first accepted price for one item in one session. Immutable
// once recorded.
type Quote struct {
	ID           string
	ItemName     string
	UnitPrice    float64
	Currency     string
	RawUtterance string
	Confidence   float64
	Language     string
	ExtractedAt  time.Time
}

type ActionKind int

const (
	ActionNoop ActionKind = iota
	ActionAskPrice
	ActionClarify
	ActionConclude
	ActionTimeoutClose
)

func (k ActionKind) String() string {
	switch k {
	case ActionAskPrice:
		return "ASK_PRICE"
	case ActionClarify:
		return "CLARIFY"
	case ActionConclude:
		return "CONCLUDE"
	case ActionTimeoutClose:
		return "TIMEOUT_CLOSE"
	case ActionNoop:
		return "NOOP"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

// Action is the effect instruction returned by a transition: what to say next
// plus any quote that was just accepted or item that was abandoned.
type Action struct {
	Kind ActionKind
	// Item to ask or re-ask about; nil when concluding
	Item *Item
	// Quote accepted on this turn, to be persisted by the caller
	Accepted *Quote
	// Item left unquoted by a forced advance or an explicit decline
	Skipped *Item
}

// Limits bound a session's length and parametrize quote recording.
type Limits struct {
	RetryCeiling   int
	TurnBudget     int
	DurationBudget time.Duration
	Currency       string
}

func newQuoteID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Now(), entropy).String()
}
