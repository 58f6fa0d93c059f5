package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/molscope-cli/internal/utils"
)

func TestSafeWriteFileReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := utils.SafeWriteFile(path, []byte("one")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := utils.SafeWriteFile(path, []byte("two")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "two" {
		t.Fatalf("unexpected content %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := utils.ExpandHome("~/.molscope/runs")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, ".molscope", "runs") {
		t.Fatalf("unexpected path %q", got)
	}
	plain, _ := utils.ExpandHome("/tmp/x/../y")
	if plain != "/tmp/y" {
		t.Fatalf("expected cleaned path, got %q", plain)
	}
}

func TestTruncateCell(t *testing.T) {
	long := strings.Repeat("C", 40)
	out := utils.TruncateCell(long, 10)
	if !strings.HasSuffix(out, "…") {
		t.Fatalf("expected ellipsis, got %q", out)
	}
	if len([]rune(out)) != 10 {
		t.Fatalf("expected 10 cells, got %d (%q)", len([]rune(out)), out)
	}
	if utils.TruncateCell("CCO", 10) != "CCO" {
		t.Fatalf("short text should be unchanged")
	}
	if utils.TruncateCell("CCO", 0) != "" {
		t.Fatalf("zero width should be empty")
	}
}
