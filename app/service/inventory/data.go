package inventory

// Urgency levels derived from the stock ratio against the minimum required.
const (
	UrgencyCritical = "critical"
	UrgencyUrgent   = "urgent"
	UrgencyNormal   = "normal"
)

type requirementsFile struct {
	Items []Item `yaml:"items"`
}

// Item is one tracked inventory position from the requirements file.
type Item struct {
	Name            string `yaml:"name"`
	Category        string `yaml:"category"`
	Specification   string `yaml:"specification"`
	Unit            string `yaml:"unit"`
	CurrentStock    int    `yaml:"current_stock"`
	MinimumRequired int    `yaml:"minimum_required"`
	Priority        string `yaml:"priority"`
}

func (i Item) IsLowStock() bool {
	return i.CurrentStock <= i.MinimumRequired
}

// Shortage is how many units are missing against the minimum.
func (i Item) Shortage() int {
	if i.CurrentStock >= i.MinimumRequired {
		return 0
	}

	return i.MinimumRequired - i.CurrentStock
}

// Urgency: critical below half the minimum, urgent at or below the minimum,
// normal otherwise.
func (i Item) Urgency() string {
	if float64(i.CurrentStock) < float64(i.MinimumRequired)*0.5 {
		return UrgencyCritical
	}
	if i.CurrentStock <= i.MinimumRequired {
		return UrgencyUrgent
	}

	return UrgencyNormal
}
