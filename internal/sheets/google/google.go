package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ports "tripledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client is a RowStore over a single Google spreadsheet. Worksheets are
// addressed by name on every call.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ ports.RowStore = (*Client)(nil)

// NewFromEnv creates a Sheets client using Service Account credentials.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Append adds a row after the last non-empty row of the sheet.
func (c *Client) Append(ctx context.Context, sheet string, values []string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	vr := &gsheet.ValueRange{Values: [][]any{toAnys(values)}}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, fmt.Sprintf("%s!A1", sheet), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", sheet, ports.Unavailable(err))
	}
	slog.DebugContext(ctx, "Row appended", "sheet", sheet, "columns", len(values))
	return nil
}

// ReadAll returns every row of the sheet, header included, tagged with its
// 1-based position.
func (c *Client) ReadAll(ctx context.Context, sheet string) ([]ports.Row, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, fmt.Sprintf("%s!A:Z", sheet)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, ports.Unavailable(err))
	}
	rows := make([]ports.Row, 0, len(resp.Values))
	for i, raw := range resp.Values {
		rows = append(rows, ports.Row{Index: i + 1, Values: toStrings(raw)})
	}
	return rows, nil
}

// Update overwrites the row at index starting from column A.
func (c *Client) Update(ctx context.Context, sheet string, index int, values []string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if index < 1 {
		return fmt.Errorf("invalid row index: %d", index)
	}
	rng := fmt.Sprintf("%s!A%d", sheet, index)
	vr := &gsheet.ValueRange{Values: [][]any{toAnys(values)}}
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, ports.Unavailable(err))
	}
	slog.DebugContext(ctx, "Row updated", "sheet", sheet, "row", index)
	return nil
}

// Delete removes the row at index, shifting subsequent rows up.
func (c *Client) Delete(ctx context.Context, sheet string, index int) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if index < 1 {
		return fmt.Errorf("invalid row index: %d", index)
	}
	sheetID, err := c.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(index - 1),
					EndIndex:   int64(index),
				},
			},
		}},
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete row %d from %s: %w", index, sheet, ports.Unavailable(err))
	}
	slog.DebugContext(ctx, "Row deleted", "sheet", sheet, "row", index)
	return nil
}

// sheetID resolves a worksheet title to its numeric ID; DeleteDimension
// addresses sheets by ID, not by name.
func (c *Client) sheetID(ctx context.Context, sheet string) (int64, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.sheetId", "sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", ports.Unavailable(err))
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && strings.EqualFold(s.Properties.Title, sheet) {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("worksheet %q not found", sheet)
}

func toAnys(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
