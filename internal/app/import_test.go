package app_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"review_pipeline/internal/app"
)

func TestImportCSV_CreatesThenAppends(t *testing.T) {
	st := newFakeStore()
	ctx := context.Background()

	n, err := app.ImportCSV(ctx, st, "Google Play", strings.NewReader("\ufeffreviewId,Detail\nr1,\"bagus, mantap\"\n"))
	if err != nil || n != 1 {
		t.Fatalf("first import: n=%d err=%v", n, err)
	}
	n, err = app.ImportCSV(ctx, st, "Google Play", strings.NewReader("reviewId,Detail\nr2,jelek\nr3,lemot\n"))
	if err != nil || n != 2 {
		t.Fatalf("second import: n=%d err=%v", n, err)
	}

	want := [][]string{
		{"reviewId", "Detail"},
		{"r1", "bagus, mantap"},
		{"r2", "jelek"},
		{"r3", "lemot"},
	}
	if diff := cmp.Diff(want, st.sheets["Google Play"]); diff != "" {
		t.Fatalf("sheet (-want +got):\n%s", diff)
	}
	if st.creates != 1 || st.appends != 2 {
		t.Fatalf("creates=%d appends=%d", st.creates, st.appends)
	}
}

func TestImportCSV_Empty(t *testing.T) {
	if _, err := app.ImportCSV(context.Background(), newFakeStore(), "x", strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty csv")
	}
}
