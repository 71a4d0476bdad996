// Package google mirrors transactions into a Google Sheets tab, one row per
// transaction with the id in column A.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ecobrain/internal/log"
	"ecobrain/internal/sheets"
)

const valueInput = "USER_ENTERED"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	// find-then-write must not interleave
	mu      sync.Mutex
	sheetID *int64
}

var _ sheets.Mirror = (*Client)(nil)

// New creates a client authenticated with a service-account key.
func New(ctx context.Context, spreadsheetID, sheetName string, credentialsJSON []byte) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if len(credentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		log.FieldComponent, log.ComponentSheets,
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newWithService(svc, spreadsheetID, sheetName), nil
}

func newWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if sheetName == "" {
		sheetName = "Transactions"
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// EnsureHeader writes the header row when the sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	values, err := c.ids(ctx)
	if err != nil {
		return err
	}
	if hasHeader(values) {
		return nil
	}
	if len(values) > 0 {
		slog.WarnContext(ctx, "Sheet has rows but no header, leaving it untouched",
			log.FieldComponent, log.ComponentSheets,
			"sheet", c.sheetName)
		return nil
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange(c.sheetName, 1),
		&gsheet.ValueRange{Values: [][]any{sheets.Header}}).
		ValueInputOption(valueInput).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header to %s: %w", c.sheetName, err)
	}
	return nil
}

// Upsert overwrites the row holding row.ID, or appends one.
func (c *Client) Upsert(ctx context.Context, row sheets.Row) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	values, err := c.ids(ctx)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{row.Values()}}

	if n, ok := findRow(values, row.ID); ok {
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange(c.sheetName, n), vr).
			ValueInputOption(valueInput).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update row %d in %s: %w", n, c.sheetName, err)
		}
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1(c.sheetName, "A:H"), vr).
		ValueInputOption(valueInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.sheetName, err)
	}
	return nil
}

// Remove deletes the row holding id. A missing row is a no-op.
func (c *Client) Remove(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	values, err := c.ids(ctx)
	if err != nil {
		return err
	}
	n, ok := findRow(values, id)
	if !ok {
		return nil
	}
	sheetID, err := c.resolveSheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(n - 1),
					EndIndex:        int64(n),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in %s: %w", n, c.sheetName, err)
	}
	return nil
}

func (c *Client) ids(ctx context.Context) ([][]any, error) {
	rng := a1(c.sheetName, "A:A")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// resolveSheetID maps the tab title to its numeric id, once.
func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	if c.sheetID != nil {
		return *c.sheetID, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet properties: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			id := sh.Properties.SheetId
			c.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}
