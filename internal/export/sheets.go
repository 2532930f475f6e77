package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expenses/internal/core"
	applog "expenses/internal/log"
)

// SheetsConfig selects the target spreadsheet and the service account used to reach it.
type SheetsConfig struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	ServiceAccountJSON string
	Timeout            time.Duration
}

// SheetsExporter mirrors the set into columns A:B of one sheet, replacing
// whatever was there.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	timeout       time.Duration
	logger        *applog.Logger
}

var _ Exporter = (*SheetsExporter)(nil)

func NewSheetsExporter(ctx context.Context, cfg SheetsConfig, logger *applog.Logger) (*SheetsExporter, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Expenses"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		timeout:       cfg.Timeout,
		logger:        logger.WithComponent(applog.ComponentExport),
	}, nil
}

// newSheetsService authenticates with service account credentials, inline JSON first.
func newSheetsService(ctx context.Context, cfg SheetsConfig) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		credentialsJSON = []byte(cfg.ServiceAccountJSON)
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (e *SheetsExporter) Export(ctx context.Context, s core.ExpenseSet) (string, error) {
	if e.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	clearRange := fmt.Sprintf("%s!A:B", e.sheetName)
	_, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	rows := sheetRows(s)
	dataRange := fmt.Sprintf("%s!A1:B%d", e.sheetName, len(rows))
	vr := &gsheet.ValueRange{Values: rows}
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, dataRange, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	dest := e.Destination()
	e.logger.InfoContext(ctx, "Exported expenses to Google Sheets",
		applog.FieldDestination, dest,
		applog.FieldCount, len(s))
	return dest, nil
}

// Destination names the target as sheets:<spreadsheet>/<sheet>.
func (e *SheetsExporter) Destination() string {
	return fmt.Sprintf("sheets:%s/%s", e.spreadsheetID, e.sheetName)
}

// sheetRows renders the header and one row per expense. Prices are sent as
// numbers so the sheet can sum them.
func sheetRows(s core.ExpenseSet) [][]any {
	rows := make([][]any, 0, len(s)+1)
	rows = append(rows, []any{csvHeader[0], csvHeader[1]})
	for _, e := range s.Sorted() {
		rows = append(rows, []any{e.Name, e.Price.InexactFloat64()})
	}
	return rows
}
