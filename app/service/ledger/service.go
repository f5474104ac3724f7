package ledger

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
	"vendorline/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
)

// Service is the append-only quote sink. Writing the same (call id, item)
// pair twice is a no-op after the first successful write; rows that fail to
// persist are kept pending and retried when the caller flushes at session
// close.
type Service struct {
	cfg *config.Config

	mu      sync.Mutex
	path    string
	written map[string]bool
	pending []Row
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return Open(cfg, cfg.Ledger.Path)
}

func Open(cfg *config.Config, path string) (*Service, error) {
	_ = os.MkdirAll(filepath.Dir(path), 0755)

	s := &Service{
		cfg:     cfg,
		path:    path,
		written: make(map[string]bool),
	}

	// Seed the dedupe index from rows already on disk, so a restart cannot
	// duplicate quotes for calls that are still in flight.
	rows, err := s.ReadAll()
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		s.written[dedupeKey(row.CallID, row.Item)] = true
	}

	return s, nil
}

// Record appends one quote row. Duplicate (call id, item) pairs are ignored.
// On write failure the row is kept pending and the error is returned; the
// in-memory session state is unaffected either way.
func (s *Service) Record(row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.record(row)
}

func (s *Service) record(row Row) error {
	key := dedupeKey(row.CallID, row.Item)
	if s.written[key] {
		slog.Info("Quote already recorded, skipping",
			"call_id", row.CallID,
			"item", row.Item)

		return nil
	}

	if err := s.appendRow(row); err != nil {
		s.pending = append(s.pending, row)

		return oops.Wrapf(err, "failed to persist quote for %s", row.Item)
	}

	s.written[key] = true

	slog.Info("Quote logged",
		"item", row.Item,
		"price", row.Price,
		"currency", row.Currency,
		"vendor", row.Vendor,
		"language", row.Language)

	return nil
}

// FlushPending retries every row that previously failed to persist. Called at
// session close as the repair path.
func (s *Service) FlushPending() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}

	retry := s.pending
	s.pending = nil

	var lastErr error
	for _, row := range retry {
		if err := s.record(row); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

func (s *Service) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Service) appendRow(row Row) error {
	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return oops.Errorf("failed to open ledger file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return oops.Errorf("failed to stat ledger file: %w", err)
	}

	writer := csv.NewWriter(file)

	if stat.Size() == 0 {
		if err = writer.Write(csvHeader); err != nil {
			return oops.Errorf("failed to write ledger header: %w", err)
		}
	}

	record := []string{
		row.Timestamp.Format(time.RFC3339),
		row.Vendor,
		row.Item,
		strconv.FormatFloat(row.Price, 'f', -1, 64),
		row.Currency,
		row.CallID,
		row.Speech,
		row.Language,
		strconv.FormatFloat(row.Confidence, 'f', -1, 64),
	}

	if err = writer.Write(record); err != nil {
		return oops.Errorf("failed to write ledger row: %w", err)
	}

	writer.Flush()

	if err = writer.Error(); err != nil {
		return oops.Errorf("failed to flush ledger row: %w", err)
	}

	return nil
}

// ReadAll parses every row currently on disk. A missing file is an empty
// ledger, not an error.
func (s *Service) ReadAll() ([]Row, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, oops.Errorf("failed to open ledger file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(csvHeader)

	var rows []Row
	first := true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, oops.Errorf("failed to read ledger row: %w", err)
		}

		if first {
			first = false
			if record[0] == csvHeader[0] {
				continue
			}
		}

		row, err := parseRow(record)
		if err != nil {
			return nil, err
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func parseRow(record []string) (Row, error) {
	timestamp, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return Row{}, oops.Errorf("failed to parse ledger timestamp: %w", err)
	}

	price, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return Row{}, oops.Errorf("failed to parse ledger price: %w", err)
	}

	confidence, err := strconv.ParseFloat(record[8], 64)
	if err != nil {
		return Row{}, oops.Errorf("failed to parse ledger confidence: %w", err)
	}

	return Row{
		Timestamp:  timestamp,
		Vendor:     record[1],
		Item:       record[2],
		Price:      price,
		Currency:   record[4],
		CallID:     record[5],
		Speech:     record[6],
		Language:   record[7],
		Confidence: confidence,
	}, nil
}
