package sheets

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("sheets: spreadsheet collaborator is not configured")

// Service reads and appends spreadsheet values in A1 notation.
type Service interface {
	// GetColumn returns every cell in rng, flattened row by row.
	GetColumn(ctx context.Context, sheetID, rng string) ([]string, error)
	AppendRow(ctx context.Context, sheetID, rng string, row []string) error
}
