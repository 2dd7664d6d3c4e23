package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SOURCE_SHEETS", " Google Play , ,Apps Store")
	c := Load()
	if c.TargetSheet != "Data Review" || c.PlayOrigin != "Google Play" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if len(c.SourceSheets) != 2 || c.SourceSheets[1] != "Apps Store" {
		t.Fatalf("unexpected sources: %q", c.SourceSheets)
	}
	if c.MaxTokens != 256 {
		t.Fatalf("max tokens: %d", c.MaxTokens)
	}
}

func TestValidate(t *testing.T) {
	c := Config{StoreBackend: "sheets", TargetSheet: "Data Review"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error without spreadsheet id")
	}
	c.SpreadsheetID = "abc"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c.StoreBackend = "excel"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestResolveCredentials_EnvFirst(t *testing.T) {
	c := Config{CredJSON: `{"type":"service_account"}`, CredFiles: []string{"/does/not/exist"}}
	b, err := c.ResolveCredentials()
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Fatalf("got %q, %v", b, err)
	}
}

func TestResolveCredentials_FileFallback(t *testing.T) {
	p := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(p, []byte(`{"k":1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	c := Config{CredFiles: []string{"/does/not/exist", p}}
	b, err := c.ResolveCredentials()
	if err != nil || string(b) != `{"k":1}` {
		t.Fatalf("got %q, %v", b, err)
	}
}

func TestResolveCredentials_Failures(t *testing.T) {
	if _, err := (Config{CredFiles: []string{"/does/not/exist"}}).ResolveCredentials(); err == nil {
		t.Fatalf("expected error when nothing resolves")
	}
	if _, err := (Config{CredJSON: "{not json"}).ResolveCredentials(); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}
