package app

import (
	"context"
	"errors"
	"strings"

	"review_pipeline/internal/domain"
)

// QueryService answers read-only queries over the persisted sheet.
type QueryService struct {
	store domain.SheetStore
	sheet string
}

func NewQueryService(s domain.SheetStore, sheet string) *QueryService {
	return &QueryService{store: s, sheet: sheet}
}

func (s *QueryService) load(ctx context.Context) ([]domain.ReviewRecord, error) {
	values, err := s.store.ReadAll(ctx, s.sheet)
	if errors.Is(err, domain.ErrSheetNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, nil
	}
	out := make([]domain.ReviewRecord, 0, len(values)-1)
	for _, row := range values[1:] {
		out = append(out, domain.RecordFromRow(values[0], row))
	}
	return out, nil
}

// ListReviews returns persisted reviews in table order. Total counts every
// match, Items is capped at f.Limit.
func (s *QueryService) ListReviews(ctx context.Context, f domain.ReviewFilter) (domain.ReviewsPage, error) {
	recs, err := s.load(ctx)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	page := domain.ReviewsPage{Items: []domain.ReviewRecord{}}
	for _, r := range recs {
		if f.Apps != "" && !strings.EqualFold(r.Apps, f.Apps) {
			continue
		}
		if !matchSentiment(r.Sentiment, f.Sentiment) {
			continue
		}
		page.Total++
		if f.Limit <= 0 || len(page.Items) < f.Limit {
			page.Items = append(page.Items, r)
		}
	}
	return page, nil
}

// Summary counts reviews per origin and per label; unlabeled rows are
// reported under "unlabeled".
func (s *QueryService) Summary(ctx context.Context) (domain.Summary, error) {
	recs, err := s.load(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	sum := domain.Summary{
		ByApps:    map[string]int{},
		ByLabel:   map[string]int{},
		Breakdown: map[string]map[string]int{},
	}
	for _, r := range recs {
		label := labelKey(r.Sentiment)
		sum.Total++
		sum.ByApps[r.Apps]++
		sum.ByLabel[label]++
		if sum.Breakdown[r.Apps] == nil {
			sum.Breakdown[r.Apps] = map[string]int{}
		}
		sum.Breakdown[r.Apps][label]++
	}
	return sum, nil
}

func labelKey(v string) string {
	if l, err := domain.ParseLabel(v); err == nil {
		return l.String()
	}
	return "unlabeled"
}

func matchSentiment(v, want string) bool {
	switch want {
	case "":
		return true
	case "unlabeled":
		return isMissingSentiment(v)
	default:
		return strings.TrimSpace(v) == want
	}
}
