package ledger

import "time"

// Row is one persisted quote. Column order follows the live quotes CSV
// consumed by the dashboard.
type Row struct {
	Timestamp  time.Time `json:"timestamp"`
	Vendor     string    `json:"vendor"`
	Item       string    `json:"item"`
	Price      float64   `json:"price"`
	Currency   string    `json:"currency"`
	CallID     string    `json:"call_sid"`
	Speech     string    `json:"speech"`
	Language   string    `json:"language"`
	Confidence float64   `json:"confidence"`
}

var csvHeader = []string{
	"timestamp", "vendor", "item", "price", "currency",
	"call_sid", "speech", "language", "confidence",
}

func dedupeKey(callID, item string) string {
	return callID + "\x00" + item
}
