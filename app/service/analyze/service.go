package analyze

import (
	"vendorline/app/service/ledger"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// ItemSummary aggregates every quote collected for one item across calls.
type ItemSummary struct {
	Item             string  `json:"item"`
	QuoteCount       int     `json:"quote_count"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	AvgPrice         float64 `json:"avg_price"`
	CheapestVendor   string  `json:"cheapest_vendor"`
	CheapestPrice    float64 `json:"cheapest_price"`
	PotentialSavings float64 `json:"potential_savings"`
}

type Service struct {
	ledgerSvc *ledger.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		ledgerSvc: do.MustInvoke[*ledger.Service](di),
	}, nil
}

// ByItem groups the ledger by item and finds the cheapest vendor for each.
func (s *Service) ByItem() ([]ItemSummary, error) {
	rows, err := s.ledgerSvc.ReadAll()
	if err != nil {
		return nil, err
	}

	return Summarize(rows), nil
}

func Summarize(rows []ledger.Row) []ItemSummary {
	grouped := pie.GroupBy(rows, func(row ledger.Row) string {
		return row.Item
	})

	var result []ItemSummary

	for item, quotes := range grouped {
		prices := pie.Map(quotes, func(row ledger.Row) float64 {
			return row.Price
		})

		cheapest := quotes[0]
		for _, quote := range quotes[1:] {
			if quote.Price < cheapest.Price {
				cheapest = quote
			}
		}

		minPrice := pie.Min(prices)
		maxPrice := pie.Max(prices)

		result = append(result, ItemSummary{
			Item:             item,
			QuoteCount:       len(quotes),
			MinPrice:         minPrice,
			MaxPrice:         maxPrice,
			AvgPrice:         pie.Average(prices),
			CheapestVendor:   cheapest.Vendor,
			CheapestPrice:    cheapest.Price,
			PotentialSavings: maxPrice - minPrice,
		})
	}

	return pie.SortStableUsing(result, func(a, b ItemSummary) bool {
		return a.Item < b.Item
	})
}
