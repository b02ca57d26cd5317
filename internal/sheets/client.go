// Package sheets mirrors audit rows into a Google spreadsheet so the mess
// office keeps a browsable trail outside the database.
package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"
)

// Client appends rows to one spreadsheet using a service account.
type Client struct {
	srv           *sheetsapi.Service
	spreadsheetID string
}

func NewClient(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*Client, error) {
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}

	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// Append adds one row to the bottom of the named sheet tab.
func (c *Client) Append(ctx context.Context, sheet string, row []any) error {
	values := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	_, err := c.srv.Spreadsheets.Values.
		Append(c.spreadsheetID, fmt.Sprintf("%s!A:Z", sheet), values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", sheet, err)
	}
	return nil
}
