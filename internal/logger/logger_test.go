package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupTestLogger initializes the logger on a temp file and returns its path.
func setupTestLogger(t *testing.T) string {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	logPath := filepath.Join(t.TempDir(), "irsim-test.log")
	if err := Init(logPath); err != nil {
		t.Fatalf("Failed to init logger: %v", err)
	}
	return logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestComponentLogger(t *testing.T) {
	logPath := setupTestLogger(t)

	ComponentLogger("client").Info("request failed", "status", 500)

	content := readLog(t, logPath)
	for _, want := range []string{"component=client", "request failed", "status=500"} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestWithSession(t *testing.T) {
	logPath := setupTestLogger(t)

	WithSession("abc-123").Info("started")

	if content := readLog(t, logPath); !strings.Contains(content, "sessionID=abc-123") {
		t.Errorf("log missing session id:\n%s", content)
	}
}

func TestSetDebug(t *testing.T) {
	logPath := setupTestLogger(t)

	Logger().Debug("hidden-debug-line")
	SetDebug(true)
	Logger().Debug("visible-debug-line")

	content := readLog(t, logPath)
	if strings.Contains(content, "hidden-debug-line") {
		t.Error("debug line written while debug was off")
	}
	if !strings.Contains(content, "visible-debug-line") {
		t.Error("debug line missing after SetDebug(true)")
	}
}

func TestUninitializedDiscards(t *testing.T) {
	Reset()
	// Must not panic or create files.
	ComponentLogger("app").Error("nowhere")
	if Path() != "" {
		t.Errorf("Path() = %q before Init", Path())
	}
}

func TestInitBadPath(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	if err := Init(filepath.Join(t.TempDir(), "missing", "dir", "x.log")); err == nil {
		t.Fatal("Init should fail for an unwritable path")
	}
}
