package inventory

import (
	"testing"
	"vendorline/app/config"
)

func TestItem_Shortage(t *testing.T) {
	cases := []struct {
		stock, min int
		want       int
	}{
		{5, 35, 30},
		{35, 35, 0},
		{50, 35, 0},
	}

	for _, tc := range cases {
		item := Item{CurrentStock: tc.stock, MinimumRequired: tc.min}
		if got := item.Shortage(); got != tc.want {
			t.Errorf("stock=%d min=%d: expected shortage %d, got %d", tc.stock, tc.min, tc.want, got)
		}
	}
}

func TestItem_Urgency(t *testing.T) {
	cases := []struct {
		stock, min int
		want       string
	}{
		{5, 35, UrgencyCritical},
		{17, 35, UrgencyCritical},
		{18, 35, UrgencyUrgent},
		{35, 35, UrgencyUrgent},
		{36, 35, UrgencyNormal},
	}

	for _, tc := range cases {
		item := Item{CurrentStock: tc.stock, MinimumRequired: tc.min}
		if got := item.Urgency(); got != tc.want {
			t.Errorf("stock=%d min=%d: expected %s, got %s", tc.stock, tc.min, tc.want, got)
		}
	}
}

func TestLowStock_CriticalFirst(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	svc := NewWithItems(cfg, []Item{
		{Name: "Gloves", CurrentStock: 30, MinimumRequired: 35},
		{Name: "Petri Dishes", CurrentStock: 5, MinimumRequired: 35},
		{Name: "Beakers", CurrentStock: 100, MinimumRequired: 35},
	})

	low := svc.LowStock()
	if len(low) != 2 {
		t.Fatalf("expected 2 low-stock items, got %d", len(low))
	}
	if low[0].Name != "Petri Dishes" {
		t.Errorf("critical shortage must come first, got %q", low[0].Name)
	}
	if low[1].Name != "Gloves" {
		t.Errorf("expected Gloves second, got %q", low[1].Name)
	}
}
