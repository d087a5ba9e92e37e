// Package testsupport holds shared fixtures and helpers for the package
// tests: a representative schema exercising every record kind, fixture file
// helpers, and diffing.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-softioc/pkg/ioc"
	"github.com/goliatone/go-softioc/pkg/records"
)

// Diff returns a human-readable diff between want and got, empty when equal.
func Diff(want, got any) string {
	return cmp.Diff(want, got)
}

// SampleSchema builds a schema covering every record kind, mirroring the
// shape of a real instrument model. Fails the test on declaration errors.
func SampleSchema(t *testing.T, name string) *ioc.Schema {
	t.Helper()

	mustRecord := func(rec *records.Record, err error) *records.Record {
		t.Helper()
		if err != nil {
			t.Fatalf("declare record: %v", err)
		}
		return rec
	}

	return ioc.MustSchema(name,
		ioc.Field("enum", mustRecord(records.NewEnum("enum",
			records.Choices("ZERO", "ONE", "TWO"), records.Default(0), records.Desc("Enum Test")))),
		ioc.Field("toggle", mustRecord(records.NewToggle("toggle",
			records.ZeroName("ON"), records.OneName("OFF"), records.Desc("Toggle Test")))),
		ioc.Field("target", mustRecord(records.NewInteger("target",
			records.Default(0), records.Desc("Target Test")))),
		ioc.Field("sstring", mustRecord(records.NewString("sstring",
			records.MaxLength(20), records.Desc("Short String Test")))),
		ioc.Field("lstring", mustRecord(records.NewString("lstring",
			records.MaxLength(512), records.Desc("Long String Test")))),
		ioc.Field("intval", mustRecord(records.NewInteger("intval",
			records.Min(-54321), records.Max(12345), records.Default(0), records.Desc("Int Test")))),
		ioc.Field("floatval", mustRecord(records.NewFloat("floatval",
			records.Min(-54321), records.Max(12345), records.Default(0.0), records.Desc("Float Test")))),
		ioc.Field("intarray", mustRecord(records.NewArray("intarray",
			records.Elements(records.ElementInt), records.Length(16), records.Desc("Int Array Test")))),
		ioc.Field("calc", mustRecord(records.NewCalc("calc",
			records.Expression("A+B"),
			records.Input('A', "$(device):intval CP NMS"),
			records.Input('B', "$(device):floatval CP NMS"),
			records.Desc("Calc Test")))),
		ioc.Field("calcout", mustRecord(records.NewCalcOut("calcout",
			records.Expression("A+B"),
			records.Input('A', "$(device):intval CP NMS"),
			records.Input('B', "$(device):floatval CP NMS"),
			records.Out("$(device):floatval NP"),
			records.Desc("CalcOut Test")))),
	)
}

// WriteFile writes a fixture file under dir, failing the test on error.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir fixture dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
