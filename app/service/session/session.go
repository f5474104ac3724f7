package session

import (
	"log/slog"
	"sync"
	"time"
	"vendorline/app/service/interpret"
)

const acceptFloor = 0.5

// Session owns all mutable per-call state. Advance and Terminate are the only
// mutation paths; both serialize on the session's own lock, so concurrent
// events for different calls never contend and duplicate events for the same
// call are processed one at a time.
type Session struct {
	CallID      string
	VendorName  string
	VendorPhone string
	StartedAt   time.Time

	limits Limits
	items  []Item

	mu             sync.Mutex
	status         Status
	currentIndex   int
	turnsOnCurrent int
	totalTurns     int
	quotes         map[string]*Quote
	declined       map[string]bool
	lastAccepted   *Quote
}

func New(callID, vendorName, vendorPhone string, items []Item, limits Limits) *Session {
	return &Session{
		CallID:      callID,
		VendorName:  vendorName,
		VendorPhone: vendorPhone,
		StartedAt:   time.Now(),
		limits:      limits,
		items:       append([]Item(nil), items...),
		status:      StatusGreeting,
		quotes:      make(map[string]*Quote),
		declined:    make(map[string]bool),
	}
}

// Advance consumes one interpreted utterance and moves the session forward.
// It never fails: events on a terminal session return a NOOP action.
func (s *Session) Advance(res interpret.Result) Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.IsTerminal() {
		slog.Warn("Event on terminal session ignored",
			"call_id", s.CallID,
			"status", s.status.String())

		return Action{Kind: ActionNoop}
	}

	s.totalTurns++

	if s.totalTurns > s.limits.TurnBudget || time.Since(s.StartedAt) > s.limits.DurationBudget {
		s.status = StatusTimedOut

		slog.Info("Session budget exhausted",
			"call_id", s.CallID,
			"turns", s.totalTurns,
			"quotes", len(s.quotes))

		return Action{Kind: ActionTimeoutClose}
	}

	switch s.status {
	case StatusGreeting:
		// Whatever the vendor opened with, move on to the first item.
		// Pleasantries never gate the flow.
		s.status = StatusNegotiating
		return s.askCurrentOrConclude(nil, nil)

	case StatusConcluding:
		s.status = StatusClosed
		return Action{Kind: ActionNoop}

	case StatusNegotiating:
		return s.negotiate(res)
	}

	return Action{Kind: ActionNoop}
}

func (s *Session) negotiate(res interpret.Result) Action {
	item := s.items[s.currentIndex]

	switch {
	case res.Intent == interpret.IntentQuoteGiven && res.HasPrice && res.Confidence >= acceptFloor:
		if existing, ok := s.quotes[item.Name]; ok {
			// First write wins; keep both prices visible for auditing
			slog.Info("Duplicate quote ignored",
				"call_id", s.CallID,
				"item", item.Name,
				"kept_price", existing.UnitPrice,
				"ignored_price", res.Price)

			s.advanceItem()
			return s.askCurrentOrConclude(nil, nil)
		}

		quote := &Quote{
			ID:           newQuoteID(),
			ItemName:     item.Name,
			UnitPrice:    res.Price,
			Currency:     s.limits.Currency,
			RawUtterance: res.Utterance,
			Confidence:   res.Confidence,
			Language:     string(res.Language),
			ExtractedAt:  time.Now(),
		}
		s.quotes[item.Name] = quote
		s.lastAccepted = quote

		s.advanceItem()
		return s.askCurrentOrConclude(quote, nil)

	case res.Intent == interpret.IntentDecline:
		s.declined[item.Name] = true
		s.advanceItem()

		skipped := item
		return s.askCurrentOrConclude(nil, &skipped)

	default:
		// Clarification, agreement without a number, noise, or a quote below
		// the confidence floor: all count against the retry ceiling so no
		// session can stall on one item.
		s.turnsOnCurrent++

		if s.turnsOnCurrent >= s.limits.RetryCeiling {
			slog.Info("Forcing advance past item",
				"call_id", s.CallID,
				"item", item.Name,
				"uninformative_turns", s.turnsOnCurrent)

			s.advanceItem()

			skipped := item
			return s.askCurrentOrConclude(nil, &skipped)
		}

		current := item
		return Action{Kind: ActionClarify, Item: &current}
	}
}

// advanceItem moves the cursor forward; currentIndex is monotonic and never
// exceeds len(items).
func (s *Session) advanceItem() {
	s.turnsOnCurrent = 0

	if s.currentIndex < len(s.items) {
		s.currentIndex++
	}
}

func (s *Session) askCurrentOrConclude(accepted *Quote, skipped *Item) Action {
	if s.currentIndex >= len(s.items) {
		s.status = StatusConcluding
		return Action{Kind: ActionConclude, Accepted: accepted, Skipped: skipped}
	}

	next := s.items[s.currentIndex]
	return Action{Kind: ActionAskPrice, Item: &next, Accepted: accepted, Skipped: skipped}
}

// Terminate closes the session from outside the turn flow, typically when the
// vendor hangs up. Quotes accumulated so far stay intact. Returns false if the
// session was already terminal.
func (s *Session) Terminate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.IsTerminal() {
		return false
	}

	s.status = StatusClosed

	slog.Info("Session terminated",
		"call_id", s.CallID,
		"quotes", len(s.quotes))

	return true
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

// CurrentItem returns the item under discussion, or false past the last item.
func (s *Session) CurrentItem() (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentIndex >= len(s.items) {
		return Item{}, false
	}

	return s.items[s.currentIndex], true
}

// LastAccepted returns the most recently accepted quote, used to resolve
// "same as before" references.
func (s *Session) LastAccepted() (*Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastAccepted == nil {
		return nil, false
	}

	return s.lastAccepted, true
}

// Quotes returns a snapshot of all accepted quotes.
func (s *Session) Quotes() []*Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*Quote, 0, len(s.quotes))
	seen := make(map[string]bool, len(s.quotes))

	for _, item := range s.items {
		if q, ok := s.quotes[item.Name]; ok && !seen[item.Name] {
			seen[item.Name] = true
			result = append(result, q)
		}
	}

	return result
}

func (s *Session) Declined(itemName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.declined[itemName]
}

func (s *Session) Items() []Item {
	return append([]Item(nil), s.items...)
}
