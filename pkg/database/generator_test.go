package database_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-softioc/pkg/database"
	"github.com/goliatone/go-softioc/pkg/records"
	"github.com/goliatone/go-softioc/pkg/testsupport"
)

func declare(t *testing.T) []*records.Record {
	t.Helper()

	enum, err := records.NewEnum("enum",
		records.Choices("ZERO", "ONE", "TWO"), records.Default(0), records.Desc("Enum Test"))
	if err != nil {
		t.Fatalf("declare enum: %v", err)
	}
	intval, err := records.NewInteger("intval",
		records.Min(-1000), records.Max(1000), records.Default(0), records.Desc("Int Test"))
	if err != nil {
		t.Fatalf("declare integer: %v", err)
	}
	return []*records.Record{enum, intval}
}

func TestGenerate_Script(t *testing.T) {
	recs := declare(t)
	out, err := database.Generate("TestIOC", recs, []database.Macro{
		{Key: "device", Value: "TEST001"},
		{Key: "prefix", Value: "BL01"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	wantScript := strings.Join([]string{
		"",
		"## Load record instances",
		`dbLoadRecords("TestIOC.db", "device=TEST001,prefix=BL01")`,
		"iocInit()",
		"dbl",
		"",
	}, "\n")
	if diff := testsupport.Diff(wantScript, out.Script); diff != "" {
		t.Fatalf("script mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_DatabaseBlocks(t *testing.T) {
	recs := declare(t)
	out, err := database.Generate("TestIOC", recs, []database.Macro{{Key: "device", Value: "TEST001"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, want := range []string{
		`record(mbbo, "$(device):enum") {`,
		`field(ZRST, "ZERO")`,
		`field(ZRVL, "0")`,
		`field(ONST, "ONE")`,
		`field(ONVL, "1")`,
		`field(TWST, "TWO")`,
		`field(TWVL, "2")`,
		`record(longout, "$(device):intval") {`,
		`field(HOPR, "1000")`,
		`field(DRVL, "-1000")`,
	} {
		if !strings.Contains(out.Database, want) {
			t.Fatalf("database text missing %q:\n%s", want, out.Database)
		}
	}

	if !strings.HasPrefix(out.Database, `record(mbbo, "$(device):enum") {`) {
		t.Fatal("blocks not emitted in declaration order")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	macros := []database.Macro{{Key: "device", Value: "TEST001"}, {Key: "prefix", Value: "BL01"}}

	first, err := database.Generate("TestIOC", declare(t), macros)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := database.Generate("TestIOC", declare(t), macros)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if first.Database != second.Database {
		t.Fatal("database texts differ across identical declarations")
	}
	if first.Script != second.Script {
		t.Fatal("script texts differ across identical declarations")
	}
}

func TestGenerate_RequiresModelName(t *testing.T) {
	if _, err := database.Generate("  ", nil, nil); err == nil {
		t.Fatal("expected error for empty model name")
	}
}

func TestWriteFiles(t *testing.T) {
	base := t.TempDir()
	out, err := database.Generate("TestIOC", declare(t), []database.Macro{{Key: "device", Value: "TEST001"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	dir, err := database.WriteFiles(base, "TestIOC", out)
	if err != nil {
		t.Fatalf("write files: %v", err)
	}
	if dir != filepath.Join(base, database.CacheDirName) {
		t.Fatalf("unexpected cache dir %q", dir)
	}

	db, err := os.ReadFile(filepath.Join(dir, "TestIOC.db"))
	if err != nil {
		t.Fatalf("read database: %v", err)
	}
	if string(db) != out.Database {
		t.Fatal("written database differs from generated text")
	}
	script, err := os.ReadFile(filepath.Join(dir, "TestIOC.cmd"))
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if string(script) != out.Script {
		t.Fatal("written script differs from generated text")
	}
}
