package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"review_pipeline/internal/domain"
)

// LabelResult summarizes one labeling run.
type LabelResult struct {
	Selected int // rows lacking a label
	Labeled  int // rows that received 0 or 1
	Skipped  int // selected rows with empty Detail
	Failed   int // classifier errors, left unlabeled
	Cached   int // labels served from the cache
}

// LabelService fills in missing Sentiment values on the persisted sheet.
type LabelService struct {
	store domain.SheetStore
	clf   domain.Classifier
	cache domain.LabelCache // optional
	sheet string
}

func NewLabelService(s domain.SheetStore, clf domain.Classifier, cache domain.LabelCache, sheet string) *LabelService {
	return &LabelService{store: s, clf: clf, cache: cache, sheet: sheet}
}

// LabelMissing classifies every row whose Sentiment is missing, one row at a
// time in table order, then writes the whole table back in a single call.
// Nothing is written when no row needs a label.
func (s *LabelService) LabelMissing(ctx context.Context) (LabelResult, error) {
	var res LabelResult

	values, err := s.store.ReadAll(ctx, s.sheet)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", s.sheet, err)
	}
	if len(values) == 0 {
		return res, fmt.Errorf("%s is empty: %w", s.sheet, domain.ErrMissingColumn)
	}
	header := values[0]
	si := domain.ColumnIndex(header, domain.ColSentiment)
	if si < 0 {
		return res, fmt.Errorf("column %q not found in %s: %w", domain.ColSentiment, s.sheet, domain.ErrMissingColumn)
	}
	di := domain.ColumnIndex(header, domain.ColDetail)

	rows := values[1:]
	for i := range rows {
		rows[i] = padRow(rows[i], len(header))
	}

	var selected []int
	for i, row := range rows {
		if isMissingSentiment(row[si]) {
			selected = append(selected, i)
		}
	}
	res.Selected = len(selected)
	log.Info().Int("rows", res.Selected).Msg("rows needing a sentiment label")
	if res.Selected == 0 {
		return res, nil
	}

	for _, i := range selected {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		detail := ""
		if di >= 0 {
			detail = rows[i][di]
		}
		if strings.TrimSpace(detail) == "" {
			rows[i][si] = ""
			res.Skipped++
			continue
		}
		l, cached, err := s.classify(ctx, detail)
		if err != nil {
			log.Warn().Err(err).Int("row", i+2).Msg("classification failed, leaving unlabeled")
			rows[i][si] = ""
			res.Failed++
			continue
		}
		if cached {
			res.Cached++
		}
		rows[i][si] = l.String()
		res.Labeled++
	}

	out := make([][]string, 0, len(values))
	out = append(out, header)
	out = append(out, rows...)
	if err := s.store.WriteRows(ctx, s.sheet, out); err != nil {
		return res, fmt.Errorf("write %s: %w", s.sheet, err)
	}
	return res, nil
}

func (s *LabelService) classify(ctx context.Context, text string) (domain.Label, bool, error) {
	key := s.cacheKey(text)
	if s.cache != nil {
		if l, ok, err := s.cache.Get(ctx, key); err != nil {
			log.Debug().Err(err).Msg("label cache get failed")
		} else if ok {
			return l, true, nil
		}
	}
	l, err := s.clf.Classify(ctx, text)
	if err != nil {
		return 0, false, err
	}
	if !l.Valid() {
		return 0, false, fmt.Errorf("classifier returned %d: %w", int(l), domain.ErrInvalidLabel)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, l); err != nil {
			log.Debug().Err(err).Msg("label cache set failed")
		}
	}
	return l, false, nil
}

func (s *LabelService) cacheKey(text string) string {
	sum := sha1.Sum([]byte(s.clf.Name() + "\x00" + text))
	return "sentiment:" + hex.EncodeToString(sum[:])
}

// isMissingSentiment treats empty, "nan" and "none" (any case) as unlabeled.
func isMissingSentiment(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "nan", "none":
		return true
	}
	return false
}

func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
