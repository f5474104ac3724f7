package inventory

import (
	"os"
	"vendorline/app/config"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Service struct {
	cfg   *config.Config
	items []Item
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	items, err := loadRequirements(cfg.Inventory.Path)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:   cfg,
		items: items,
	}, nil
}

func NewWithItems(cfg *config.Config, items []Item) *Service {
	return &Service{cfg: cfg, items: items}
}

func loadRequirements(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read requirements file: %w", err)
	}

	var file requirementsFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return nil, oops.Errorf("failed to parse requirements YAML: %w", err)
	}

	return file.Items, nil
}

func (s *Service) Items() []Item {
	return append([]Item(nil), s.items...)
}

// LowStock returns the items below minimum, critical shortages first.
func (s *Service) LowStock() []Item {
	low := pie.Filter(s.items, Item.IsLowStock)

	return pie.SortStableUsing(low, func(a, b Item) bool {
		return urgencyRank(a.Urgency()) < urgencyRank(b.Urgency())
	})
}

func urgencyRank(urgency string) int {
	switch urgency {
	case UrgencyCritical:
		return 0
	case UrgencyUrgent:
		return 1
	default:
		return 2
	}
}
