package server

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"vendorline/app/config"
	"vendorline/app/service/analyze"
	"vendorline/app/service/engine"
	"vendorline/app/service/ledger"
	"vendorline/app/service/session"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

// Server is the webhook surface the voice/messaging relay posts into. Each
// handler maps one relay callback onto the engine and returns the next prompt.
type Server struct {
	cfg        *config.Config
	engineSvc  *engine.Service
	ledgerSvc  *ledger.Service
	analyzeSvc *analyze.Service

	app *fiber.App
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:        do.MustInvoke[*config.Config](di),
		engineSvc:  do.MustInvoke[*engine.Service](di),
		ledgerSvc:  do.MustInvoke[*ledger.Service](di),
		analyzeSvc: do.MustInvoke[*analyze.Service](di),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Post("/call", s.handleStartCall)
	app.Post("/webhook/turn", s.handleTurn)
	app.Post("/webhook/status", s.handleStatus)
	app.Get("/quotes", s.handleQuotes)
	app.Get("/quotes/analysis", s.handleAnalysis)
	app.Get("/health", s.handleHealth)

	s.app = app

	return s, nil
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.app.Listen(s.cfg.Server.Addr); err != nil {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		return s.app.ShutdownWithTimeout(5 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

type startCallRequest struct {
	CallID      string          `json:"call_id" form:"call_id"`
	VendorName  string          `json:"vendor_name" form:"vendor_name"`
	VendorPhone string          `json:"vendor_phone" form:"vendor_phone"`
	Items       []startCallItem `json:"items"`
}

type startCallItem struct {
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	Unit          string `json:"unit"`
	Category      string `json:"category"`
	Specification string `json:"specification"`
}

func (s *Server) handleStartCall(c *fiber.Ctx) error {
	var req startCallRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	items := make([]session.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, session.Item{
			Name:          item.Name,
			Quantity:      item.Quantity,
			Unit:          item.Unit,
			Category:      item.Category,
			Specification: item.Specification,
		})
	}

	reply, err := s.engineSvc.StartCall(engine.StartRequest{
		CallID:      req.CallID,
		VendorName:  req.VendorName,
		VendorPhone: req.VendorPhone,
		Items:       items,
	})
	if err != nil {
		slog.Warn("StartCall rejected", "call_id", req.CallID, "error", err)

		return fiber.NewError(fiber.StatusConflict, err.Error())
	}

	return c.JSON(reply)
}

type turnRequest struct {
	CallID    string `json:"call_id" form:"CallSid"`
	Utterance string `json:"utterance" form:"SpeechResult"`
	Language  string `json:"language_hint" form:"Language"`
}

func (s *Server) handleTurn(c *fiber.Ctx) error {
	var req turnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := s.engineSvc.HandleTurn(c.Context(), req.CallID, req.Utterance)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(reply)
}

type statusRequest struct {
	CallID   string `json:"call_id" form:"CallSid"`
	Status   string `json:"status" form:"CallStatus"`
	Duration string `json:"duration" form:"CallDuration"`
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	slog.Info("Call status update",
		"call_id", req.CallID,
		"status", req.Status,
		"duration", req.Duration)

	switch req.Status {
	case "completed", "failed", "busy", "no-answer", "canceled":
		s.engineSvc.Terminate(req.CallID)
	}

	return c.SendString("OK")
}

func (s *Server) handleQuotes(c *fiber.Ctx) error {
	rows, err := s.ledgerSvc.ReadAll()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count":  len(rows),
		"quotes": rows,
	})
}

func (s *Server) handleAnalysis(c *fiber.Ctx) error {
	summaries, err := s.analyzeSvc.ByItem()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"items": summaries,
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"currency":  s.cfg.Call.Currency,
		"languages": []string{"Hindi", "English", "Hinglish"},
	})
}
