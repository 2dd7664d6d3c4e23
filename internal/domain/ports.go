package domain

import "context"

// SheetStore is the spreadsheet-like persistence both jobs share. Rows are
// raw cell values; the first row of a sheet is its header.
type SheetStore interface {
	// ReadAll returns every row including the header, or ErrSheetNotFound.
	ReadAll(ctx context.Context, sheet string) ([][]string, error)
	// WriteRows overwrites the sheet starting at the first row.
	WriteRows(ctx context.Context, sheet string, rows [][]string) error
	// AppendRows adds rows after the last non-empty row.
	AppendRows(ctx context.Context, sheet string, rows [][]string) error
	// CreateSheet adds a new worksheet holding only header.
	CreateSheet(ctx context.Context, name string, header []string) error
}

// Classifier labels one text; implementations are stateless per call.
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
	// Name identifies the backend and model, used to scope cached labels.
	Name() string
}

type LabelCache interface {
	Get(ctx context.Context, key string) (Label, bool, error)
	Set(ctx context.Context, key string, l Label) error
}

// Read models for the query API.
type ReviewFilter struct {
	Apps      string
	Sentiment string // "", "0", "1" or "unlabeled"
	Limit     int
}

type ReviewsPage struct {
	Items []ReviewRecord `json:"items"`
	Total int            `json:"total"`
}

type Summary struct {
	Total     int                       `json:"total"`
	ByApps    map[string]int            `json:"byApps"`
	ByLabel   map[string]int            `json:"byLabel"`
	Breakdown map[string]map[string]int `json:"breakdown"`
}
