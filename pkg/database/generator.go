// Package database serializes a model's record instances into the database
// definition and startup script consumed by the soft IOC server, and manages
// the per-model cache directory both files live in.
package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-softioc/internal/templates"
	"github.com/goliatone/go-softioc/pkg/records"
)

// CacheDirName is the directory, created on demand under the base directory,
// that holds the generated database and script files.
const CacheDirName = "__dbcache__"

// scriptTemplate is the startup script consumed by the server: load the
// database with macro substitutions, initialize, then list loaded records.
const scriptTemplate = `
## Load record instances
dbLoadRecords("{{ db_name }}.db", "{{ macros }}")
iocInit()
dbl
`

// Macro is one named textual substitution applied when the server loads the
// generated database. Macro order is significant: the substitution string
// joins pairs in declaration order.
type Macro struct {
	Key   string
	Value string
}

// Output holds the two generated texts for one model.
type Output struct {
	Database string
	Script   string
}

var engine = templates.New()

// Generate renders the ordered record instances and macro map into the
// database and script texts. It is a pure function of its inputs: identical
// declarations and macros produce byte-identical output.
func Generate(model string, recs []*records.Record, macros []Macro) (Output, error) {
	if strings.TrimSpace(model) == "" {
		return Output{}, errors.New("database: model name is required")
	}

	var db strings.Builder
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		block, err := rec.Render()
		if err != nil {
			return Output{}, fmt.Errorf("database: %w", err)
		}
		db.WriteString(block)
	}

	pairs := make([]string, 0, len(macros))
	for _, m := range macros {
		pairs = append(pairs, m.Key+"="+m.Value)
	}
	script, err := engine.RenderStrict(scriptTemplate, map[string]any{
		"db_name": model,
		"macros":  strings.Join(pairs, ","),
	})
	if err != nil {
		return Output{}, fmt.Errorf("database: render script: %w", err)
	}

	return Output{Database: db.String(), Script: script}, nil
}

// CacheDir returns the cache directory path for a base directory.
func CacheDir(base string) string {
	return filepath.Join(base, CacheDirName)
}

// WriteFiles writes <model>.db and <model>.cmd into the cache directory
// under base, creating the directory when absent, and returns the cache
// directory path.
func WriteFiles(base, model string, out Output) (string, error) {
	dir := CacheDir(base)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("database: create cache dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, model+".db"), []byte(out.Database), 0o644); err != nil {
		return "", fmt.Errorf("database: write database: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, model+".cmd"), []byte(out.Script), 0o644); err != nil {
		return "", fmt.Errorf("database: write script: %w", err)
	}
	return dir, nil
}
