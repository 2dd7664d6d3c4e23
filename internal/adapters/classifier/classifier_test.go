package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"review_pipeline/internal/domain"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("  satu  dua\ttiga empat ", 3); got != "satu dua tiga" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("satu dua", 0); got != "satu dua" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeLabel(t *testing.T) {
	cases := []struct {
		in      string
		want    domain.Label
		wantErr bool
	}{
		{`{"label":1}`, domain.LabelNegative, false},
		{"Sure!\n{\"label\": 0}\n", domain.LabelNeutral, false},
		{`{"label":3}`, 0, true},
		{"", 0, true},
		{"no json here", 0, true},
	}
	for _, tc := range cases {
		got, err := decodeLabel(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("decodeLabel(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestLabelSchemaIsStrict(t *testing.T) {
	if labelSchema["additionalProperties"] != false {
		t.Fatalf("schema must forbid extra properties: %v", labelSchema)
	}
	req, _ := labelSchema["required"].([]string)
	if len(req) != 1 || req[0] != "label" {
		t.Fatalf("required: %v", labelSchema["required"])
	}
}

func TestHTTP_Classify(t *testing.T) {
	var gotText string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var in struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		gotText = in.Text
		label := 0
		if strings.Contains(in.Text, "jelek") {
			label = 1
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"label": label, "score": 0.9})
	}))
	defer ts.Close()

	c := NewHTTP(ts.URL+"/", 2*time.Second, 3)
	l, err := c.Classify(context.Background(), "aplikasi jelek sekali tidak bisa login")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if l != domain.LabelNegative {
		t.Fatalf("label %v", l)
	}
	if gotText != "aplikasi jelek sekali" {
		t.Fatalf("text not truncated: %q", gotText)
	}
	if c.Name() != "http:"+ts.URL {
		t.Fatalf("name %q", c.Name())
	}
}

func TestHTTP_InvalidLabel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"label": 2}`))
	}))
	defer ts.Close()

	_, err := NewHTTP(ts.URL, time.Second, 256).Classify(context.Background(), "x")
	if !errors.Is(err, domain.ErrInvalidLabel) {
		t.Fatalf("expected ErrInvalidLabel, got %v", err)
	}
}
