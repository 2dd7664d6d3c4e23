package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	PushGateway string

	StoreBackend  string // sheets|mysql|sqlite
	SpreadsheetID string
	SheetsBase    string // endpoint override, e.g. a local emulator
	SheetsRPS     int
	CredJSON      string
	CredFiles     []string
	MySQLDSN      string
	SQLitePath    string

	SourceSheets []string
	TargetSheet  string
	PlayOrigin   string
	TypoFiles    []string

	ClassifierBackend string // http|openai|gemini
	ClassifierURL     string
	ClassifierTimeout time.Duration
	MaxTokens         int
	OpenAIKey         string
	OpenAIModel       string
	GeminiKey         string
	GeminiModel       string

	RedisAddr     string
	RedisDB       int
	RedisPass     string
	LabelCacheTTL time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		PushGateway: env("PUSHGATEWAY_URL", ""),

		StoreBackend:  strings.ToLower(env("STORE_BACKEND", "sheets")),
		SpreadsheetID: env("SPREADSHEET_ID", ""),
		SheetsBase:    env("SHEETS_BASE_URL", ""), // empty: library default endpoint
		SheetsRPS:     atoi("SHEETS_RPS", 1),
		CredJSON:      env("GDRIVE_CREDENTIAL_JSON", ""),
		CredFiles:     nonEmpty(os.Getenv("CREDENTIALS_FILE"), "ifg-credentials.json", "/content/ifg-credentials.json"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?charset=utf8mb4&loc=UTC"),
		SQLitePath:    env("SQLITE_PATH", "reviews.db"),

		SourceSheets: splitList(env("SOURCE_SHEETS", "Google Play,Apps Store")),
		TargetSheet:  env("TARGET_SHEET", "Data Review"),
		PlayOrigin:   env("PLAY_ORIGIN", "Google Play"),
		TypoFiles:    nonEmpty(os.Getenv("TYPO_FILE"), "typo_cleaning.csv", "/content/typo_cleaning.csv"),

		ClassifierBackend: strings.ToLower(env("CLASSIFIER_BACKEND", "http")),
		ClassifierURL:     env("CLASSIFIER_URL", "http://localhost:8000"),
		ClassifierTimeout: time.Duration(atoi("CLASSIFIER_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxTokens:         atoi("CLASSIFIER_MAX_TOKENS", 256),
		OpenAIKey:         env("OPENAI_API_KEY", ""),
		OpenAIModel:       env("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiKey:         env("GEMINI_API_KEY", ""),
		GeminiModel:       env("GEMINI_MODEL", "gemini-2.0-flash"),

		RedisAddr:     env("REDIS_ADDR", ""),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		LabelCacheTTL: time.Duration(atoi("LABEL_CACHE_TTL_SECONDS", 30*24*3600)) * time.Second,
	}
	if c.RedisAddr == "" {
		log.Debug().Msg("REDIS_ADDR is empty, label cache disabled")
	}
	return c
}

// Validate checks the settings every command needs before touching the store.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case "sheets":
		if c.SpreadsheetID == "" {
			return errors.New("SPREADSHEET_ID is required for the sheets backend")
		}
	case "mysql":
		if c.MySQLDSN == "" {
			return errors.New("MYSQL_DSN is required for the mysql backend")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.TargetSheet == "" {
		return errors.New("TARGET_SHEET must not be empty")
	}
	return nil
}

// ValidateClassifier checks the sentiment job's extra settings.
func (c Config) ValidateClassifier() error {
	switch c.ClassifierBackend {
	case "http":
		if c.ClassifierURL == "" {
			return errors.New("CLASSIFIER_URL is required for the http classifier")
		}
	case "openai":
		if c.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai classifier")
		}
	case "gemini":
		if c.GeminiKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini classifier")
		}
	default:
		return fmt.Errorf("unknown CLASSIFIER_BACKEND %q", c.ClassifierBackend)
	}
	if c.MaxTokens <= 0 {
		return errors.New("CLASSIFIER_MAX_TOKENS must be > 0")
	}
	return nil
}

// ResolveCredentials returns the service-account blob: the environment value
// first, then the first candidate file that exists. The blob must be JSON.
func (c Config) ResolveCredentials() ([]byte, error) {
	blob := []byte(c.CredJSON)
	if len(blob) == 0 {
		for _, p := range c.CredFiles {
			b, err := os.ReadFile(p)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read credentials %s: %w", p, err)
			}
			log.Info().Str("path", p).Msg("loaded credentials from local file")
			blob = b
			break
		}
	}
	if len(blob) == 0 {
		return nil, errors.New("GDRIVE_CREDENTIAL_JSON not set and no credentials file found")
	}
	if !json.Valid(blob) {
		return nil, errors.New("GDRIVE_CREDENTIAL_JSON is not valid JSON")
	}
	return blob, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
