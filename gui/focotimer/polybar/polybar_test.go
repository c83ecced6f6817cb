package polybar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pomodoro "github.com/d093w1z/pomodoro/api"
	"github.com/jonboulle/clockwork"
)

// Test helpers
func newManager(t *testing.T, total time.Duration) *pomodoro.TimerManager {
	t.Helper()
	tm := pomodoro.NewTimerManager(total, pomodoro.WithClock(clockwork.NewFakeClock()))
	t.Cleanup(tm.Close)
	return tm
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func writeToFifo(t *testing.T, path, data string) {
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("Failed to open FIFO for writing: %v", err)
	}
	defer file.Close()

	if _, err := io.WriteString(file, data); err != nil {
		t.Fatalf("Failed to write to FIFO: %v", err)
	}
}

// ================= Setup Tests =================

func TestInit(t *testing.T) {
	fifoPipePath = ""
	basePipe := filepath.Join(t.TempDir(), "test.pipe")

	if err := Init(basePipe); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer os.Remove(fifoPipePath)

	// Should contain PID to make it unique
	expectedPattern := fmt.Sprintf("%s.%d", basePipe, os.Getpid())
	if !strings.HasPrefix(fifoPipePath, expectedPattern) {
		t.Errorf("Expected FIFO path to start with %s, got %s", expectedPattern, fifoPipePath)
	}

	fi, err := os.Stat(fifoPipePath)
	if err != nil {
		t.Fatalf("Failed to stat FIFO: %v", err)
	}
	if fi.Mode()&os.ModeNamedPipe == 0 {
		t.Error("Created file is not a named pipe")
	}
	if FifoPath() != fifoPipePath {
		t.Errorf("Expected FifoPath to return %q, got %q", fifoPipePath, FifoPath())
	}
}

func TestMkfifoUnique_ReusesIdlePipe(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), "unique.pipe")

	path1, err := mkfifoUnique(basePath, 0666)
	if err != nil {
		t.Fatalf("First mkfifoUnique call failed: %v", err)
	}

	// nobody reads path1, so it is handed out again
	path2, err := mkfifoUnique(basePath, 0666)
	if err != nil {
		t.Fatalf("Second mkfifoUnique call failed: %v", err)
	}
	if path1 != path2 {
		t.Errorf("Expected idle FIFO %s to be reused, got %s", path1, path2)
	}
}

func TestMkfifoUnique_SkipsBusyPipe(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), "busy.pipe")

	path1, err := mkfifoUnique(basePath, 0666)
	if err != nil {
		t.Fatalf("mkfifoUnique failed: %v", err)
	}

	reader, err := os.OpenFile(path1, os.O_RDWR, os.ModeNamedPipe)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer reader.Close()

	if canUseFifo(path1) {
		t.Error("Expected FIFO with a reader to be busy")
	}

	path2, err := mkfifoUnique(basePath, 0666)
	if err != nil {
		t.Fatalf("mkfifoUnique failed: %v", err)
	}
	if path2 == path1 {
		t.Error("Expected a fresh FIFO when the first one is in use")
	}
}

func TestMkfifoUnique_MissingDir(t *testing.T) {
	_, err := mkfifoUnique(filepath.Join(t.TempDir(), "missing", "x.pipe"), 0666)
	if err == nil {
		t.Error("Expected error for a FIFO in a missing directory")
	}
}

// ================= Handler Tests =================

func TestAddHandler(t *testing.T) {
	called := false
	AddHandler(func() { called = true })
	defer AddHandler(nil)

	dispatch("gui")
	if !called {
		t.Error("Expected gui command to call the handler")
	}
}

// ================= TimerManager Integration Tests =================

func TestSetTimerManager(t *testing.T) {
	tm := newManager(t, 5*time.Second)
	SetTimerManager(tm)
	defer SetTimerManager(nil)

	if getTimerManager() != tm {
		t.Error("Expected retrieved TimerManager to match the one set")
	}
}

func TestDispatch(t *testing.T) {
	tm := newManager(t, 5*time.Second)
	SetTimerManager(tm)
	defer SetTimerManager(nil)

	dispatch("toggle")
	if s := tm.Timer.Snapshot(); s.Status != pomodoro.Running {
		t.Errorf("Expected Running after toggle, got %v", s.Status)
	}

	dispatch("toggle")
	if s := tm.Timer.Snapshot(); s.Status != pomodoro.Paused {
		t.Errorf("Expected Paused after second toggle, got %v", s.Status)
	}

	dispatch("reset")
	if s := tm.Timer.Snapshot(); s.Status != pomodoro.Idle || s.Remaining != 5 {
		t.Errorf("Expected idle full timer after reset, got %+v", s)
	}

	dispatch("bogus") // logged and ignored
}

func TestTimerWrappers_WithoutManager(t *testing.T) {
	SetTimerManager(nil)

	// All functions should handle nil manager gracefully
	TimerToggle()
	TimerReset()

	if s := Snapshot(); s != (pomodoro.Snapshot{}) {
		t.Errorf("Expected zero Snapshot with nil manager, got %+v", s)
	}
}

// ================= Output Tests =================

func TestPolybarActionButton(t *testing.T) {
	result := polybarActionButton("Test Button\n", "test_action")
	expected := "%{A:test_action:} Test Button %{A}"

	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestPipeCommand(t *testing.T) {
	fifoPipePath = "/tmp/test.pipe"

	result := pipeCommand("toggle")
	expected := "echo 'toggle' > /tmp/test.pipe"

	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestOutput(t *testing.T) {
	tm := newManager(t, 300*time.Second)
	SetTimerManager(tm)
	defer SetTimerManager(nil)
	fifoPipePath = "/tmp/test.pipe"

	out := output()
	if !strings.Contains(out, "%{A:echo 'toggle' > /tmp/test.pipe:} 🍅 05:00 %{A}") {
		t.Errorf("Expected idle toggle button in output, got %q", out)
	}
	if !strings.Contains(out, "echo 'reset' > /tmp/test.pipe") {
		t.Errorf("Expected reset action in output, got %q", out)
	}

	tm.Toggle()
	if out := output(); !strings.Contains(out, "⏰ 05:00") {
		t.Errorf("Expected running icon, got %q", out)
	}
}

func TestOutput_FinishedDisablesToggle(t *testing.T) {
	tm := newManager(t, 0)
	SetTimerManager(tm)
	defer SetTimerManager(nil)
	fifoPipePath = "/tmp/test.pipe"

	out := output()
	if strings.Contains(out, "'toggle'") {
		t.Errorf("Expected no toggle action when finished, got %q", out)
	}
	if !strings.Contains(out, "🎉 00:00") {
		t.Errorf("Expected finished label, got %q", out)
	}
}

// ================= Command Loop Tests =================

// Runs last: Shutdown closes the package-wide stopping channel.
func TestHandleCmds_FifoRoundTrip(t *testing.T) {
	tm := newManager(t, 5*time.Second)
	SetTimerManager(tm)
	defer SetTimerManager(nil)

	fifoPipePath = ""
	if _, err := InitWithBase(filepath.Join(t.TempDir(), "cmd.pipe")); err != nil {
		t.Fatalf("InitWithBase failed: %v", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		handleCmds()
	}()

	writeToFifo(t, fifoPipePath, "toggle\n")
	waitFor(t, "toggle via FIFO", func() bool {
		return tm.Timer.Snapshot().Status == pomodoro.Running
	})

	writeToFifo(t, fifoPipePath, "reset\n")
	waitFor(t, "reset via FIFO", func() bool {
		return tm.Timer.Snapshot().Status == pomodoro.Idle
	})

	done := make(chan struct{})
	go func() {
		Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Shutdown to stop the command handler")
	}

	if _, err := os.Stat(fifoPipePath); !os.IsNotExist(err) {
		t.Errorf("Expected FIFO to be removed, got %v", err)
	}
	Shutdown() // second call is harmless
}
