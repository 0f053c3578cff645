package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/utils"
)

func TestCountTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"short", "hi", 1},
		{"simple", "hello world", 2},
		{"long", strings.Repeat("a", 4000), 1000},
	}
	for _, c := range cases {
		if got := utils.CountTokens(c.in); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestTokenBreakdown(t *testing.T) {
	got := utils.TokenBreakdown(map[string]string{"system": strings.Repeat("x", 40), "question": ""})
	if got["system"] != 10 || got["question"] != 0 {
		t.Fatalf("breakdown = %#v", got)
	}
}

func TestSafeWriteFileCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "out.html")
	if err := utils.SafeWriteFile(path, []byte("<html></html>")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "<html></html>" {
		t.Fatalf("read back = %q, %v", b, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}
