package ioc_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-softioc/pkg/ioc"
	"github.com/goliatone/go-softioc/pkg/pv"
	"github.com/goliatone/go-softioc/pkg/testsupport"
)

// newModel builds a live model over the simulator and a harmless stand-in
// server command, shutting it down with the test.
func newModel(t *testing.T, sim *pv.Simulator, opts ...ioc.Option) *ioc.Model {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX child process handling")
	}

	schema := testsupport.SampleSchema(t, "SimIOC")
	base := []ioc.Option{
		ioc.WithClient(sim),
		ioc.WithCommand("cat"),
		ioc.WithoutConsole(),
		ioc.WithBaseDir(t.TempDir()),
	}
	model, err := ioc.New(context.Background(), schema, "SIM001", append(base, opts...)...)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := model.Shutdown(ctx); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})
	return model
}

func TestNew_EndToEnd(t *testing.T) {
	sim := pv.NewSimulator()
	defer sim.Close()

	model := newModel(t, sim)

	if !model.Ready() {
		t.Fatal("model not ready after construction")
	}
	if model.Device() != "SIM001" {
		t.Fatalf("device = %q", model.Device())
	}
	if got := model.Unconnected(); len(got) != 0 {
		t.Fatalf("unconnected fields after startup: %v", got)
	}

	db := model.Output().Database
	for _, want := range []string{
		`record(mbbo, "$(device):enum") {`,
		`field(ZRST, "ZERO")`,
		`field(ZRVL, "0")`,
		`field(ONST, "ONE")`,
		`field(ONVL, "1")`,
		`field(TWST, "TWO")`,
		`field(TWVL, "2")`,
		`record(longout, "$(device):intval") {`,
		`field(HOPR, "12345")`,
		`field(DRVH, "12345")`,
		`field(LOPR, "-54321")`,
		`field(DRVL, "-54321")`,
	} {
		if !strings.Contains(db, want) {
			t.Fatalf("generated database missing %q:\n%s", want, db)
		}
	}
	if !strings.Contains(model.Output().Script, `dbLoadRecords("SimIOC.db", "device=SIM001")`) {
		t.Fatalf("generated script missing load line:\n%s", model.Output().Script)
	}

	conn, ok := model.PV("toggle")
	if !ok {
		t.Fatal("no handle for declared field")
	}
	if conn.Name() != "SIM001:toggle" {
		t.Fatalf("handle address = %q", conn.Name())
	}
	if !model.Connected("toggle") {
		t.Fatal("toggle handle not connected")
	}
}

func TestNew_ValidatesArguments(t *testing.T) {
	sim := pv.NewSimulator()
	defer sim.Close()

	schema := testsupport.SampleSchema(t, "SimIOC")
	ctx := context.Background()

	if _, err := ioc.New(ctx, nil, "SIM001", ioc.WithClient(sim)); err == nil {
		t.Fatal("expected error for nil schema")
	}
	if _, err := ioc.New(ctx, schema, "  ", ioc.WithClient(sim)); err == nil {
		t.Fatal("expected error for empty device")
	}
	if _, err := ioc.New(ctx, schema, "SIM001"); err == nil {
		t.Fatal("expected error for missing client")
	}
}

func TestNew_MissingServerCommand(t *testing.T) {
	sim := pv.NewSimulator()
	defer sim.Close()

	schema := testsupport.SampleSchema(t, "SimIOC")
	_, err := ioc.New(context.Background(), schema, "SIM001",
		ioc.WithClient(sim),
		ioc.WithCommand("definitely-not-a-binary-xyz"),
		ioc.WithoutConsole(),
		ioc.WithBaseDir(t.TempDir()))
	if err == nil {
		t.Fatal("expected error for unlaunchable server")
	}
}

func TestNew_BestEffortConnect(t *testing.T) {
	sim := pv.NewSimulator(pv.WithNeverConnect("SIM001:toggle"))
	defer sim.Close()

	started := time.Now()
	model := newModel(t, sim,
		ioc.WithConnectTimeout(150*time.Millisecond),
		ioc.WithPollInterval(20*time.Millisecond))
	elapsed := time.Since(started)

	if elapsed > 3*time.Second {
		t.Fatalf("connection wait not bounded, took %v", elapsed)
	}
	if !model.Ready() {
		t.Fatal("best-effort startup should still produce a ready model")
	}
	if got := model.Unconnected(); len(got) != 1 || got[0] != "toggle" {
		t.Fatalf("unconnected = %v, want [toggle]", got)
	}
	if model.Connected("toggle") {
		t.Fatal("stuck handle reported connected")
	}
}

func TestNew_StrictConnect(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX child process handling")
	}

	sim := pv.NewSimulator(pv.WithNeverConnect("SIM001:toggle"))
	defer sim.Close()

	schema := testsupport.SampleSchema(t, "SimIOC")
	_, err := ioc.New(context.Background(), schema, "SIM001",
		ioc.WithClient(sim),
		ioc.WithCommand("cat"),
		ioc.WithoutConsole(),
		ioc.WithBaseDir(t.TempDir()),
		ioc.WithConnectTimeout(150*time.Millisecond),
		ioc.WithPollInterval(20*time.Millisecond),
		ioc.WithStrictConnect())
	if !errors.Is(err, ioc.ErrConnectTimeout) {
		t.Fatalf("expected ErrConnectTimeout, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "toggle") {
		t.Fatalf("error %q does not name the stuck field", err)
	}
}

func TestShutdown_RemovesCache(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX child process handling")
	}

	sim := pv.NewSimulator()
	defer sim.Close()

	base := t.TempDir()
	schema := testsupport.SampleSchema(t, "SimIOC")
	model, err := ioc.New(context.Background(), schema, "SIM001",
		ioc.WithClient(sim),
		ioc.WithCommand("cat"),
		ioc.WithoutConsole(),
		ioc.WithBaseDir(base))
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatalf("read base dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "__dbcache__" {
		t.Fatalf("unexpected base dir contents: %v", entries)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := model.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	entries, err = os.ReadDir(base)
	if err != nil {
		t.Fatalf("read base dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("cache survived shutdown: %v", entries)
	}
}

func TestMacros_OrderedAfterDevice(t *testing.T) {
	sim := pv.NewSimulator()
	defer sim.Close()

	model := newModel(t, sim,
		ioc.WithMacro("prefix", "BL01"),
		ioc.WithMacro("sector", "7"))

	if !strings.Contains(model.Output().Script, `"device=SIM001,prefix=BL01,sector=7"`) {
		t.Fatalf("macros not rendered in declaration order:\n%s", model.Output().Script)
	}
}
