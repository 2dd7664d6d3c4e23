package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"review_pipeline/internal/adapters/httpx"
	"review_pipeline/internal/adapters/observability"
	"review_pipeline/internal/domain"
)

var Scopes = []string{sheetsapi.SpreadsheetsScope, sheetsapi.DriveScope}

const maxAttempts = 4

// Client implements domain.SheetStore on one spreadsheet. Reads and range
// overwrites are retried on 429/5xx; appends and sheet creation are sent once.
type Client struct {
	svc *sheetsapi.Service
	id  string
	rl  *rate.Limiter
}

func New(ctx context.Context, spreadsheetID string, rps int, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if rps <= 0 {
		rps = 1
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, id: spreadsheetID, rl: rate.NewLimiter(rate.Limit(rps), rps)}, nil
}

// NewWithCredentials authorizes with a service-account JSON blob. A non-empty
// endpoint overrides the API base URL.
func NewWithCredentials(ctx context.Context, endpoint, spreadsheetID string, credJSON []byte, rps int) (*Client, error) {
	creds, err := google.CredentialsFromJSON(ctx, credJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	opts := []option.ClientOption{option.WithCredentials(creds)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return New(ctx, spreadsheetID, rps, opts...)
}

func (c *Client) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	var vr *sheetsapi.ValueRange
	err := c.call(ctx, "values.get", true, func() (err error) {
		vr, err = c.svc.Spreadsheets.Values.Get(c.id, quoteSheet(sheet)).
			MajorDimension("ROWS").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, mapErr(err, sheet)
	}
	rows := make([][]string, len(vr.Values))
	for i, r := range vr.Values {
		rows[i] = make([]string, len(r))
		for j, v := range r {
			rows[i][j] = cellString(v)
		}
	}
	return rows, nil
}

// WriteRows overwrites from A1; rows below the written range are untouched.
func (c *Client) WriteRows(ctx context.Context, sheet string, rows [][]string) error {
	rng := quoteSheet(sheet) + "!A1"
	vr := &sheetsapi.ValueRange{Range: rng, MajorDimension: "ROWS", Values: toCells(rows)}
	err := c.call(ctx, "values.update", true, func() error {
		_, err := c.svc.Spreadsheets.Values.Update(c.id, rng, vr).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		return err
	})
	return mapErr(err, sheet)
}

func (c *Client) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	rng := quoteSheet(sheet) + "!A1"
	vr := &sheetsapi.ValueRange{MajorDimension: "ROWS", Values: toCells(rows)}
	// a failed append may still have landed, so it is never replayed
	err := c.call(ctx, "values.append", false, func() error {
		_, err := c.svc.Spreadsheets.Values.Append(c.id, rng, vr).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
	return mapErr(err, sheet)
}

func (c *Client) CreateSheet(ctx context.Context, name string, header []string) error {
	cols := int64(len(header))
	if cols < 20 {
		cols = 20
	}
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{
					Title:          name,
					GridProperties: &sheetsapi.GridProperties{RowCount: 1000, ColumnCount: cols},
				},
			},
		}},
	}
	err := c.call(ctx, "batchUpdate", false, func() error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.id, req).Context(ctx).Do()
		return err
	})
	var ge *googleapi.Error
	if errors.As(err, &ge) && ge.Code == http.StatusBadRequest && strings.Contains(ge.Message, "already exists") {
		return fmt.Errorf("%s: %w", name, domain.ErrSheetExists)
	}
	if err != nil {
		return err
	}
	return c.WriteRows(ctx, name, [][]string{header})
}

// call runs fn under the rate limiter and records it. Idempotent calls are
// retried on transport errors, 429 and 5xx.
func (c *Client) call(ctx context.Context, endpoint string, idempotent bool, fn func() error) error {
	attempts := 1
	if idempotent {
		attempts = maxAttempts
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = c.rl.Wait(ctx); err != nil {
			return err
		}
		start := time.Now()
		err = fn()
		observability.ObserveExternal("sheets", endpoint, statusOf(err), time.Since(start))
		if err == nil || ctx.Err() != nil || !retryable(err) || i == attempts-1 {
			break
		}
		if !httpx.SleepCtx(ctx, httpx.Backoff(i)) {
			return ctx.Err()
		}
	}
	return err
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return 0
}

func retryable(err error) bool {
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return httpx.Retryable(ge.Code)
	}
	return true // transport error
}

// mapErr turns the API's "Unable to parse range" into ErrSheetNotFound; it is
// how Sheets reports a range on a missing tab.
func mapErr(err error, sheet string) error {
	var ge *googleapi.Error
	if errors.As(err, &ge) && ge.Code == http.StatusBadRequest && strings.Contains(ge.Message, "Unable to parse range") {
		return fmt.Errorf("%s: %w", sheet, domain.ErrSheetNotFound)
	}
	return err
}

// quoteSheet renders a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func toCells(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = make([]any, len(r))
		for j, v := range r {
			out[i][j] = v
		}
	}
	return out
}
