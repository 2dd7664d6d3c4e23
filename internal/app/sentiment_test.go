package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"review_pipeline/internal/app"
	"review_pipeline/internal/domain"
)

func sentimentSheet() [][]string {
	return [][]string{
		{"reviewId", "Detail", " sentiment "},
		{"r1", "aplikasi bagus", ""},
		{"r2", "aplikasi jelek", "nan"},
		{"r3", "sudah dilabeli", "0"},
		{"r4", "", "None"},
		{"r5", "error terus", "1"},
		{"r6", "lemot sekali"},
	}
}

func TestLabelMissing_LabelsOnlyMissingRows(t *testing.T) {
	st := newFakeStore()
	st.sheets["Data Review"] = sentimentSheet()
	clf := &fakeClassifier{labels: map[string]domain.Label{
		"aplikasi bagus": domain.LabelNeutral,
		"aplikasi jelek": domain.LabelNegative,
		"lemot sekali":   domain.LabelNegative,
	}}

	res, err := app.NewLabelService(st, clf, nil, "Data Review").LabelMissing(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := app.LabelResult{Selected: 4, Labeled: 3, Skipped: 1}
	if res != want {
		t.Fatalf("result %+v, want %+v", res, want)
	}
	// r4 has no Detail: no classifier call.
	if diff := cmp.Diff([]string{"aplikasi bagus", "aplikasi jelek", "lemot sekali"}, clf.calls); diff != "" {
		t.Fatalf("calls (-want +got):\n%s", diff)
	}
	if st.writes != 1 {
		t.Fatalf("writes: %d", st.writes)
	}
	got := st.sheets["Data Review"]
	wantRows := [][]string{
		{"reviewId", "Detail", " sentiment "},
		{"r1", "aplikasi bagus", "0"},
		{"r2", "aplikasi jelek", "1"},
		{"r3", "sudah dilabeli", "0"},
		{"r4", "", ""},
		{"r5", "error terus", "1"},
		{"r6", "lemot sekali", "1"},
	}
	if diff := cmp.Diff(wantRows, got); diff != "" {
		t.Fatalf("sheet (-want +got):\n%s", diff)
	}
}

func TestLabelMissing_NothingSelectedWritesNothing(t *testing.T) {
	st := newFakeStore()
	st.sheets["Data Review"] = [][]string{{"Detail", "Sentiment"}, {"x", "0"}, {"y", "1"}}
	clf := &fakeClassifier{}

	res, err := app.NewLabelService(st, clf, nil, "Data Review").LabelMissing(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Selected != 0 || st.writes != 0 || len(clf.calls) != 0 {
		t.Fatalf("expected no-op, got %+v writes=%d calls=%d", res, st.writes, len(clf.calls))
	}
}

func TestLabelMissing_MissingSentimentColumnIsFatal(t *testing.T) {
	st := newFakeStore()
	st.sheets["Data Review"] = [][]string{{"reviewId", "Detail"}, {"r1", "x"}}

	_, err := app.NewLabelService(st, &fakeClassifier{}, nil, "Data Review").LabelMissing(context.Background())
	if !errors.Is(err, domain.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLabelMissing_ClassifierFailureIsolated(t *testing.T) {
	st := newFakeStore()
	st.sheets["Data Review"] = [][]string{{"Detail", "Sentiment"}, {"boom", ""}, {"fine", ""}, {"weird", ""}}
	clf := &fakeClassifier{
		labels: map[string]domain.Label{"fine": domain.LabelNegative, "weird": 7},
		fail:   map[string]bool{"boom": true},
	}

	res, err := app.NewLabelService(st, clf, nil, "Data Review").LabelMissing(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Failed != 2 || res.Labeled != 1 {
		t.Fatalf("result %+v", res)
	}
	got := st.sheets["Data Review"]
	if got[1][1] != "" || got[2][1] != "1" || got[3][1] != "" {
		t.Fatalf("labels: %v", got)
	}
}

func TestLabelMissing_UsesCache(t *testing.T) {
	st := newFakeStore()
	st.sheets["Data Review"] = [][]string{{"Detail", "Sentiment"}, {"sama", ""}, {"sama", ""}}
	clf := &fakeClassifier{labels: map[string]domain.Label{"sama": domain.LabelNegative}}
	cache := &fakeCache{}

	res, err := app.NewLabelService(st, clf, cache, "Data Review").LabelMissing(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(clf.calls) != 1 || res.Cached != 1 || res.Labeled != 2 {
		t.Fatalf("calls=%d result=%+v", len(clf.calls), res)
	}
}

func TestLabelMissing_SheetMissing(t *testing.T) {
	_, err := app.NewLabelService(newFakeStore(), &fakeClassifier{}, nil, "Data Review").LabelMissing(context.Background())
	if !errors.Is(err, domain.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}
