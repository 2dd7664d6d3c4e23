package app

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// LoadTypoDictionary reads the first existing file among paths. The file is
// ';'-separated with a header carrying "word" and "clean" columns. A missing
// file is not an error: the dictionary is simply empty. It returns the path
// that was used ("" when none existed).
func LoadTypoDictionary(paths ...string) (map[string]string, string, error) {
	for _, p := range paths {
		f, err := os.Open(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return map[string]string{}, p, fmt.Errorf("open typo dictionary %s: %w", p, err)
		}
		defer f.Close()
		dict, err := ParseTypoDictionary(f)
		return dict, p, err
	}
	return map[string]string{}, "", nil
}

// ParseTypoDictionary decodes the typo resource. Rows that fail to parse, are
// too short, or carry an empty word are skipped.
func ParseTypoDictionary(r io.Reader) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	dict := map[string]string{}
	header, err := cr.Read()
	if err == io.EOF {
		return dict, nil
	}
	if err != nil {
		return dict, fmt.Errorf("read typo header: %w", err)
	}
	wi, ci := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "word":
			wi = i
		case "clean":
			ci = i
		}
	}
	if wi < 0 || ci < 0 {
		return dict, fmt.Errorf("typo header %q lacks word/clean columns", header)
	}

	skipped := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			skipped++
			continue
		}
		if err != nil {
			return dict, fmt.Errorf("read typo row %d: %w", line, err)
		}
		if wi >= len(rec) || ci >= len(rec) {
			skipped++
			continue
		}
		word := strings.ToLower(strings.TrimSpace(rec[wi]))
		if word == "" {
			skipped++
			continue
		}
		dict[word] = strings.ToLower(strings.TrimSpace(rec[ci]))
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("typo dictionary: malformed rows skipped")
	}
	return dict, nil
}
