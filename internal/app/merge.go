package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"review_pipeline/internal/domain"
)

// MergeOptions names the sheets a merge run reads from and appends to.
type MergeOptions struct {
	Sources    []string // source sheet names; each name doubles as the origin tag
	Target     string   // persisted sheet
	PlayOrigin string   // origin whose titles are dropped
}

// MergeResult counts rows per source, after merging, and actually appended.
type MergeResult struct {
	Sources  map[string]int
	Merged   int
	Inserted int
}

// MergeService cleans and merges the source sheets into the persisted one.
type MergeService struct {
	store   domain.SheetStore
	cleaner *Cleaner
	opts    MergeOptions
}

func NewMergeService(s domain.SheetStore, c *Cleaner, opts MergeOptions) *MergeService {
	return &MergeService{store: s, cleaner: c, opts: opts}
}

// Run merges every source and appends the rows the target does not have yet.
// All sources empty is a no-op, not an error.
func (s *MergeService) Run(ctx context.Context) (MergeResult, error) {
	recs, counts, err := s.Merge(ctx)
	res := MergeResult{Sources: counts, Merged: len(recs)}
	if err != nil {
		return res, err
	}
	if len(recs) == 0 {
		log.Info().Msg("no source data to merge")
		return res, nil
	}
	log.Info().Int("rows", len(recs)).Msg("merged sources")

	res.Inserted, err = s.AppendNew(ctx, recs)
	return res, err
}

// Merge reads and assembles all sources. A source that fails to read counts
// as empty.
func (s *MergeService) Merge(ctx context.Context) ([]domain.ReviewRecord, map[string]int, error) {
	counts := make(map[string]int, len(s.opts.Sources))
	batches := make([][]domain.ReviewRecord, 0, len(s.opts.Sources))
	for _, name := range s.opts.Sources {
		if err := ctx.Err(); err != nil {
			return nil, counts, err
		}
		recs, err := s.readSource(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("sheet", name).Msg("source read failed, treating as empty")
		} else {
			log.Info().Str("sheet", name).Int("rows", len(recs)).Msg("source read (cleaned & lowercased)")
		}
		counts[name] = len(recs)
		batches = append(batches, recs)
	}
	return s.assemble(batches), counts, nil
}

func (s *MergeService) readSource(ctx context.Context, sheet string) ([]domain.ReviewRecord, error) {
	rows, err := s.store.ReadAll(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}
	header := rows[0]
	out := make([]domain.ReviewRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r := domain.RecordFromRow(header, row)
		r.Sentiment = ""
		r.Apps = sheet
		r.Title = s.cleaner.Clean(r.Title)
		r.Detail = s.cleaner.Clean(r.Detail)
		out = append(out, r)
	}
	return out, nil
}

// assemble concatenates batches and applies the table-level rules: timestamp
// normalization, title suppression, missing-value normalization and sort.
func (s *MergeService) assemble(batches [][]domain.ReviewRecord) []domain.ReviewRecord {
	var all []domain.ReviewRecord
	for _, b := range batches {
		all = append(all, b...)
	}
	for i := range all {
		r := &all[i]
		r.Date = NormalizeTimestamp(r.Date)
		r.RepliedAt = NormalizeTimestamp(r.RepliedAt)
		if strings.EqualFold(r.Apps, s.opts.PlayOrigin) {
			r.Title = ""
		}
		r.Map(normalizeMissing)
	}
	sortByDateDesc(all)
	return all
}

// AppendNew appends records whose key is neither empty nor already persisted.
// The target is created with the persisted header when missing, and its
// header is rewritten when it holds no data rows.
func (s *MergeService) AppendNew(ctx context.Context, recs []domain.ReviewRecord) (int, error) {
	existing, err := s.existingKeys(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		key := r.ReviewID
		if key == "" {
			continue
		}
		if _, dup := existing[key]; dup {
			continue
		}
		existing[key] = struct{}{}
		rows = append(rows, r.Values())
	}
	if len(rows) == 0 {
		log.Info().Str("sheet", s.opts.Target).Msg("no new rows to append")
		return 0, nil
	}

	log.Info().Str("sheet", s.opts.Target).Int("rows", len(rows)).Msg("appending new rows")
	if err := s.store.AppendRows(ctx, s.opts.Target, rows); err != nil {
		return 0, fmt.Errorf("append to %s: %w", s.opts.Target, err)
	}
	return len(rows), nil
}

func (s *MergeService) existingKeys(ctx context.Context) (map[string]struct{}, error) {
	keys := map[string]struct{}{}
	values, err := s.store.ReadAll(ctx, s.opts.Target)
	switch {
	case errors.Is(err, domain.ErrSheetNotFound):
		if err := s.store.CreateSheet(ctx, s.opts.Target, domain.PersistedHeader()); err != nil {
			return nil, fmt.Errorf("create %s: %w", s.opts.Target, err)
		}
		log.Info().Str("sheet", s.opts.Target).Msg("created sheet with canonical header")
		return keys, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", s.opts.Target, err)
	}

	if len(values) <= 1 {
		if err := s.store.WriteRows(ctx, s.opts.Target, [][]string{domain.PersistedHeader()}); err != nil {
			return nil, fmt.Errorf("write header to %s: %w", s.opts.Target, err)
		}
		log.Info().Str("sheet", s.opts.Target).Msg("header rewritten")
		return keys, nil
	}

	ki := domain.ColumnIndex(values[0], domain.ColReviewID)
	if ki < 0 {
		return keys, nil
	}
	for _, row := range values[1:] {
		if ki < len(row) && row[ki] != "" {
			keys[row[ki]] = struct{}{}
		}
	}
	return keys, nil
}

var missingSentinels = map[string]struct{}{"nan": {}, "none": {}, "nat": {}}

// normalizeMissing maps the textual spellings of a missing value to "".
func normalizeMissing(v string) string {
	if _, ok := missingSentinels[strings.ToLower(v)]; ok {
		return ""
	}
	return v
}

// sortByDateDesc orders newest first; rows without a valid Date go last and
// keep their relative order.
func sortByDateDesc(recs []domain.ReviewRecord) {
	type keyed struct {
		t  int64
		ok bool
	}
	keys := make([]keyed, len(recs))
	for i, r := range recs {
		t, ok := parseNormalized(r.Date)
		keys[i] = keyed{t: t.Unix(), ok: ok}
	}
	idx := make([]int, len(recs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.ok != kb.ok {
			return ka.ok
		}
		return ka.ok && ka.t > kb.t
	})
	sorted := make([]domain.ReviewRecord, len(recs))
	for i, j := range idx {
		sorted[i] = recs[j]
	}
	copy(recs, sorted)
}
