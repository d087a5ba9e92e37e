package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/goliatone/go-softioc/pkg/process"
)

func TestStart_MissingBinary(t *testing.T) {
	_, err := process.Start("definitely-not-a-binary-xyz", "start.cmd", t.TempDir(),
		process.WithoutConsole())
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestStartStop(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX child process handling")
	}

	base := t.TempDir()
	dir := filepath.Join(base, "cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	script := filepath.Join(dir, "start.cmd")
	if err := os.WriteFile(script, []byte("iocInit()\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	sup, err := process.Start("cat", "start.cmd", dir, process.WithoutConsole())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sup.Pid() == 0 {
		t.Fatal("expected a live child pid")
	}
	if sup.Dir() != dir {
		t.Fatalf("dir = %q, want %q", sup.Dir(), dir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sup.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("cache directory survived shutdown: %v", err)
	}
}

func TestStop_NilSupervisorIsNoop(t *testing.T) {
	var sup *process.Supervisor
	if err := sup.Stop(context.Background()); err != nil {
		t.Fatalf("stop on nil supervisor: %v", err)
	}
}
