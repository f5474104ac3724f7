package compose

import (
	"fmt"
	"strconv"
	"strings"
	"vendorline/app/config"
	"vendorline/app/service/interpret"
	"vendorline/app/service/session"

	_ "embed"

	"github.com/samber/do"
)

var (
	//go:embed templates/greeting.txt
	greetingTemplate string
	//go:embed templates/ask_price.txt
	askPriceTemplate string
	//go:embed templates/ack_hindi.txt
	ackHindiTemplate string
	//go:embed templates/ack_english.txt
	ackEnglishTemplate string
	//go:embed templates/clarify.txt
	clarifyTemplate string
	//go:embed templates/skip.txt
	skipTemplate string
	//go:embed templates/closing.txt
	closingTemplate string
	//go:embed templates/timeout_closing.txt
	timeoutClosingTemplate string
)

// Service turns tracker actions into the bilingual prompt spoken back to the
// vendor. Stateless and deterministic: template selection plus slot filling.
type Service struct {
	cfg *config.Config
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg: do.MustInvoke[*config.Config](di),
	}, nil
}

func (s *Service) Greeting() string {
	return fill(greetingTemplate, map[string]any{
		"company": s.cfg.Call.CompanyName,
	})
}

// Render produces the outgoing prompt for one action. The acknowledgment line
// follows the vendor's detected language mix; the business lines stay in a
// fixed Hinglish register.
func (s *Service) Render(action session.Action, language interpret.Language) string {
	var parts []string

	if action.Accepted != nil {
		parts = append(parts, s.acknowledgment(action, language))
	}
	if action.Skipped != nil {
		parts = append(parts, strings.TrimSpace(skipTemplate))
	}

	switch action.Kind {
	case session.ActionAskPrice:
		parts = append(parts, s.askPrice(action.Item))
	case session.ActionClarify:
		parts = append(parts, fill(clarifyTemplate, map[string]any{
			"item": action.Item.Name,
			"unit": unitOf(action.Item),
		}))
	case session.ActionConclude:
		parts = append(parts, strings.TrimSpace(closingTemplate))
	case session.ActionTimeoutClose:
		parts = append(parts, strings.TrimSpace(timeoutClosingTemplate))
	case session.ActionNoop:
	}

	return strings.Join(parts, " ")
}

func (s *Service) askPrice(item *session.Item) string {
	spec := ""
	if item.Specification != "" {
		spec = ", " + item.Specification
	}

	return fill(askPriceTemplate, map[string]any{
		"item":     item.Name,
		"spec":     spec,
		"quantity": item.Quantity,
		"unit":     unitOf(item),
	})
}

func (s *Service) acknowledgment(action session.Action, language interpret.Language) string {
	template := ackEnglishTemplate
	if language == interpret.LangHindi {
		template = ackHindiTemplate
	}

	unit := "piece"
	if action.Item != nil {
		// Accepted quote belongs to the previous item; its unit still applies
		// to the acknowledgment only when no better source exists.
		unit = unitOf(action.Item)
	}

	return fill(template, map[string]any{
		"item":     action.Accepted.ItemName,
		"price":    strconv.FormatFloat(action.Accepted.UnitPrice, 'f', -1, 64),
		"currency": action.Accepted.Currency,
		"unit":     unit,
	})
}

func unitOf(item *session.Item) string {
	if item == nil || item.Unit == "" {
		return "piece"
	}

	return item.Unit
}

func fill(template string, values map[string]any) string {
	result := strings.TrimSpace(template)

	for key, value := range values {
		result = strings.ReplaceAll(result, "{"+key+"}", fmt.Sprint(value))
	}

	return result
}
