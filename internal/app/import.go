package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"review_pipeline/internal/domain"
)

// ImportCSV loads a comma-separated file with a header row into sheet. A
// missing sheet is created with the file's header; otherwise the data rows are
// appended as-is.
func ImportCSV(ctx context.Context, store domain.SheetStore, sheet string, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return 0, errors.New("csv has no header row")
	}
	header := records[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	rows := records[1:]

	_, err = store.ReadAll(ctx, sheet)
	switch {
	case errors.Is(err, domain.ErrSheetNotFound):
		if err := store.CreateSheet(ctx, sheet, header); err != nil {
			return 0, fmt.Errorf("create %s: %w", sheet, err)
		}
		log.Info().Str("sheet", sheet).Int("columns", len(header)).Msg("sheet created from csv header")
	case err != nil:
		return 0, fmt.Errorf("read %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := store.AppendRows(ctx, sheet, rows); err != nil {
		return 0, fmt.Errorf("append to %s: %w", sheet, err)
	}
	return len(rows), nil
}
