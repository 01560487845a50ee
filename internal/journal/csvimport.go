package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

// ErrImportRow marks a CSV row that could not be turned into a trade
var ErrImportRow = errors.New("invalid import row")

// CSV columns understood by ParseCSV. Only id and status are required.
const (
	colID           = "id"
	colAccountID    = "account_id"
	colSymbol       = "symbol"
	colAssetClass   = "asset_class"
	colSide         = "side"
	colStatus       = "status"
	colEntryTime    = "entry_time"
	colExitTime     = "exit_time"
	colProfitOrLoss = "profit_or_loss"
	colCommission   = "commission"
	colRMultiple    = "r_multiple"
	colTags         = "tags"
	colNotes        = "notes"
)

// tagSeparator splits the tags column ("breakout;news")
const tagSeparator = ";"

// timestamp layouts accepted for entry/exit, tried in order
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseCSV reads a journal export into trades owned by userID.
// Timestamps without an offset are read in loc. Amounts are parsed as
// exact decimals before conversion, so "0.1" stays the closest float64.
func ParseCSV(r io.Reader, userID string, loc *time.Location) ([]contracts.Trade, error) {
	if loc == nil {
		loc = time.UTC
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []contracts.Trade{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colID, colStatus} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", required)
		}
	}

	trades := make([]contracts.Trade, 0)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrImportRow, line, err)
		}

		row := csvRow{columns: columns, record: record}
		trade, err := row.trade(userID, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrImportRow, line, err)
		}
		trades = append(trades, trade)
	}

	return trades, nil
}

type csvRow struct {
	columns map[string]int
	record  []string
}

func (r csvRow) get(column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r csvRow) trade(userID string, loc *time.Location) (contracts.Trade, error) {
	t := contracts.Trade{
		ID:         r.get(colID),
		UserID:     userID,
		AccountID:  r.get(colAccountID),
		Symbol:     r.get(colSymbol),
		AssetClass: r.get(colAssetClass),
		Side:       contracts.TradeSide(strings.ToUpper(r.get(colSide))),
		Status:     contracts.TradeStatus(strings.ToUpper(r.get(colStatus))),
		Notes:      r.get(colNotes),
	}

	if t.ID == "" {
		return t, fmt.Errorf("%s is empty", colID)
	}
	if !t.Status.IsValid() {
		return t, fmt.Errorf("%s %q is not one of OPEN, CLOSED, PENDING, CANCELLED", colStatus, r.get(colStatus))
	}
	if t.Side != "" && t.Side != contracts.SideLong && t.Side != contracts.SideShort {
		return t, fmt.Errorf("%s %q is not LONG or SHORT", colSide, r.get(colSide))
	}

	var err error
	if t.EntryTime, err = parseTime(r.get(colEntryTime), loc); err != nil {
		return t, fmt.Errorf("%s: %w", colEntryTime, err)
	}
	if t.ExitTime, err = parseTime(r.get(colExitTime), loc); err != nil {
		return t, fmt.Errorf("%s: %w", colExitTime, err)
	}
	if t.ProfitOrLoss, err = parseAmount(r.get(colProfitOrLoss)); err != nil {
		return t, fmt.Errorf("%s: %w", colProfitOrLoss, err)
	}
	if t.RMultiple, err = parseAmount(r.get(colRMultiple)); err != nil {
		return t, fmt.Errorf("%s: %w", colRMultiple, err)
	}

	commission, err := parseAmount(r.get(colCommission))
	if err != nil {
		return t, fmt.Errorf("%s: %w", colCommission, err)
	}
	if commission != nil {
		t.Commission = *commission
	}

	for _, name := range strings.Split(r.get(colTags), tagSeparator) {
		if name = strings.TrimSpace(name); name != "" {
			t.Tags = append(t.Tags, contracts.Tag{Name: name})
		}
	}

	return t, nil
}

// parseTime returns nil for an empty cell
func parseTime(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", value)
}

// parseAmount returns nil for an empty cell
func parseAmount(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	f := d.InexactFloat64()
	return &f, nil
}
