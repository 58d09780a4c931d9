package sheets

import (
	"context"
	"fmt"

	"chelmassage/utils"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// GoogleService talks to the Sheets v4 API.
type GoogleService struct {
	svc *gsheets.Service
}

func NewGoogleService(ctx context.Context) (*GoogleService, error) {
	opts, err := utils.GoogleClientOptions(utils.ScopeSpreadsheets)
	if err != nil {
		return nil, err
	}
	return NewGoogleServiceWithOptions(ctx, opts...)
}

func NewGoogleServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*GoogleService, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: building service: %w", err)
	}
	return &GoogleService{svc: svc}, nil
}

func (g *GoogleService) GetColumn(ctx context.Context, sheetID, rng string) ([]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(sheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: get %s: %w", rng, err)
	}
	var out []string
	for _, row := range resp.Values {
		for _, cell := range row {
			out = append(out, fmt.Sprint(cell))
		}
	}
	return out, nil
}

func (g *GoogleService) AppendRow(ctx context.Context, sheetID, rng string, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	_, err := g.svc.Spreadsheets.Values.Append(sheetID, rng, &gsheets.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", rng, err)
	}
	return nil
}
