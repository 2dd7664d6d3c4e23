package app_test

import (
	"context"
	"errors"

	"review_pipeline/internal/domain"
)

// ---- fakes ----

// fakeStore mimics spreadsheet semantics: WriteRows overwrites from the top,
// AppendRows adds after the last row.
type fakeStore struct {
	sheets  map[string][][]string
	readErr map[string]error

	appends, writes, creates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sheets: map[string][][]string{}, readErr: map[string]error{}}
}

func (f *fakeStore) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	if err := f.readErr[sheet]; err != nil {
		return nil, err
	}
	rows, ok := f.sheets[sheet]
	if !ok {
		return nil, domain.ErrSheetNotFound
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (f *fakeStore) WriteRows(ctx context.Context, sheet string, rows [][]string) error {
	cur, ok := f.sheets[sheet]
	if !ok {
		return domain.ErrSheetNotFound
	}
	f.writes++
	for i, r := range rows {
		if i < len(cur) {
			cur[i] = append([]string(nil), r...)
		} else {
			cur = append(cur, append([]string(nil), r...))
		}
	}
	f.sheets[sheet] = cur
	return nil
}

func (f *fakeStore) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	if _, ok := f.sheets[sheet]; !ok {
		return domain.ErrSheetNotFound
	}
	f.appends++
	for _, r := range rows {
		f.sheets[sheet] = append(f.sheets[sheet], append([]string(nil), r...))
	}
	return nil
}

func (f *fakeStore) CreateSheet(ctx context.Context, name string, header []string) error {
	if _, ok := f.sheets[name]; ok {
		return domain.ErrSheetExists
	}
	f.creates++
	f.sheets[name] = [][]string{append([]string(nil), header...)}
	return nil
}

type fakeClassifier struct {
	labels map[string]domain.Label
	fail   map[string]bool
	calls  []string
}

func (c *fakeClassifier) Classify(ctx context.Context, text string) (domain.Label, error) {
	c.calls = append(c.calls, text)
	if c.fail[text] {
		return 0, errors.New("model exploded")
	}
	return c.labels[text], nil
}

func (c *fakeClassifier) Name() string { return "fake" }

type fakeCache struct {
	store map[string]domain.Label
}

func (c *fakeCache) Get(ctx context.Context, key string) (domain.Label, bool, error) {
	l, ok := c.store[key]
	return l, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, l domain.Label) error {
	if c.store == nil {
		c.store = map[string]domain.Label{}
	}
	c.store[key] = l
	return nil
}

func keysOf(rows [][]string) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r[0])
	}
	return out
}
