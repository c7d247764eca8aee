package google

import (
	"context"
	"fmt"
	"os"

	googleauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsAPI is the subset of the Sheets values API the sync uses.
type SheetsAPI interface {
	Read(ctx context.Context, rng string) ([][]any, error)
	Write(ctx context.Context, rng string, values [][]any) error
	Clear(ctx context.Context, rng string) error
}

// ValuesClient talks to one spreadsheet.
type ValuesClient struct {
	srv           *sheets.Service
	spreadsheetID string
}

// NewValuesClient authenticates with a service-account JSON file.
func NewValuesClient(ctx context.Context, credentialsFile, spreadsheetID string) (*ValuesClient, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := googleauth.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &ValuesClient{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// Read returns raw cell values. Dates come back as serial numbers.
func (c *ValuesClient) Read(ctx context.Context, rng string) ([][]any, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *ValuesClient) Write(ctx context.Context, rng string, values [][]any) error {
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}
	return nil
}

func (c *ValuesClient) Clear(ctx context.Context, rng string) error {
	_, err := c.srv.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}
