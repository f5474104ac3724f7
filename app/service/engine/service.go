package engine

import (
	"context"
	"log/slog"
	"time"
	"vendorline/app/config"
	"vendorline/app/service/compose"
	"vendorline/app/service/interpret"
	"vendorline/app/service/inventory"
	"vendorline/app/service/ledger"
	"vendorline/app/service/session"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
)

// Service wires one inbound turn through the pipeline: interpret the
// utterance, advance the session, persist any accepted quote, compose the
// reply. It is the only caller of the session tracker.
type Service struct {
	cfg          *config.Config
	registry     *session.Registry
	interpretSvc *interpret.Service
	composeSvc   *compose.Service
	ledgerSvc    *ledger.Service
	inventorySvc *inventory.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:          do.MustInvoke[*config.Config](di),
		registry:     session.NewRegistry(),
		interpretSvc: do.MustInvoke[*interpret.Service](di),
		composeSvc:   do.MustInvoke[*compose.Service](di),
		ledgerSvc:    do.MustInvoke[*ledger.Service](di),
		inventorySvc: do.MustInvoke[*inventory.Service](di),
	}, nil
}

type StartRequest struct {
	CallID      string
	VendorName  string
	VendorPhone string
	// Items overrides the shortage-derived list when non-empty
	Items []session.Item
}

type TurnReply struct {
	Prompt string `json:"prompt"`
	Status string `json:"status"`
}

// StartCall seeds a new session. With no explicit item list, the call covers
// the current inventory shortages, critical items first.
func (s *Service) StartCall(req StartRequest) (*TurnReply, error) {
	if req.CallID == "" {
		return nil, oops.Errorf("call_id is required")
	}

	items := req.Items
	if len(items) == 0 {
		items = pie.Map(s.inventorySvc.LowStock(), func(item inventory.Item) session.Item {
			return session.Item{
				Name:          item.Name,
				Quantity:      item.Shortage(),
				Unit:          item.Unit,
				Category:      item.Category,
				Specification: item.Specification,
			}
		})
	}

	sess := session.New(req.CallID, req.VendorName, req.VendorPhone, items, session.Limits{
		RetryCeiling:   s.cfg.Call.RetryCeiling,
		TurnBudget:     s.cfg.Call.TurnBudget,
		DurationBudget: s.cfg.Call.DurationBudget,
		Currency:       s.cfg.Call.Currency,
	})

	if err := s.registry.Add(sess); err != nil {
		return nil, err
	}

	slog.Info("Call session started",
		"call_id", req.CallID,
		"vendor", req.VendorName,
		"items", len(items))

	return &TurnReply{
		Prompt: s.composeSvc.Greeting(),
		Status: sess.Status().String(),
	}, nil
}

// HandleTurn processes one inbound utterance. Events for unknown call ids are
// absorbed with a warning rather than failing the webhook.
func (s *Service) HandleTurn(ctx context.Context, callID, utterance string) (*TurnReply, error) {
	sess, ok := s.registry.Get(callID)
	if !ok {
		slog.Warn("Turn event for unknown call", "call_id", callID)

		return &TurnReply{Status: "UNKNOWN"}, nil
	}

	ic := interpret.Context{}
	if item, open := sess.CurrentItem(); open {
		ic.ItemName = item.Name
		ic.Specification = item.Specification
		ic.Quantity = item.Quantity
		ic.Unit = item.Unit
	}
	if last, ok := sess.LastAccepted(); ok {
		ic.LastPrice = last.UnitPrice
		ic.HasLastPrice = true
	}

	start := time.Now()
	result := s.interpretSvc.Interpret(ctx, utterance, ic)
	action := sess.Advance(result)

	slog.Info("Processed turn",
		"call_id", callID,
		"intent", result.Intent.String(),
		"action", action.Kind.String(),
		"duration", time.Since(start))

	if action.Accepted != nil {
		if err := s.ledgerSvc.Record(s.rowFromQuote(sess, action.Accepted)); err != nil {
			// The session keeps going; the row is retried at close
			slog.Warn("Quote persistence failed, will retry at close",
				"call_id", callID,
				"item", action.Accepted.ItemName,
				"error", err)
		}
	}

	if sess.Status().IsTerminal() {
		s.repairLedger(sess)
	}

	return &TurnReply{
		Prompt: s.composeSvc.Render(action, result.Language),
		Status: sess.Status().String(),
	}, nil
}

// Terminate closes a session from outside the turn flow (hangup, failed
// call). No-op for unknown or already-terminal calls.
func (s *Service) Terminate(callID string) {
	sess, ok := s.registry.Get(callID)
	if !ok {
		slog.Warn("Terminate for unknown call", "call_id", callID)
		return
	}

	if sess.Terminate() {
		s.repairLedger(sess)
	}
}

// repairLedger re-records the session's full quote set (idempotent, so rows
// already on disk are untouched) and retries anything still pending.
func (s *Service) repairLedger(sess *session.Session) {
	for _, quote := range sess.Quotes() {
		if err := s.ledgerSvc.Record(s.rowFromQuote(sess, quote)); err != nil {
			slog.Error("Quote lost after close-time retry",
				"call_id", sess.CallID,
				"item", quote.ItemName,
				"error", err,
				"telegram", true)
		}
	}

	if err := s.ledgerSvc.FlushPending(); err != nil {
		slog.Warn("Pending ledger rows still failing", "error", err)
	}
}

func (s *Service) rowFromQuote(sess *session.Session, quote *session.Quote) ledger.Row {
	return ledger.Row{
		Timestamp:  quote.ExtractedAt,
		Vendor:     sess.VendorName,
		Item:       quote.ItemName,
		Price:      quote.UnitPrice,
		Currency:   quote.Currency,
		CallID:     sess.CallID,
		Speech:     quote.RawUtterance,
		Language:   quote.Language,
		Confidence: quote.Confidence,
	}
}
