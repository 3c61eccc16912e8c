package banner

import (
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		AppName: "Phantom Core Studio",
		Version: "2.4.1",
		Mode:    "production",
		URL:     "http://0.0.0.0:8080",
		Modules: 11,
		Auth:    true,
	}
}

func TestPrintWidthBoxed(t *testing.T) {
	var buf strings.Builder
	printWidth(&buf, testConfig(), 100)

	out := buf.String()
	if !strings.Contains(out, "╔") || !strings.Contains(out, "╝") {
		t.Error("Expected boxed banner at full width")
	}
	if !strings.Contains(out, "Phantom Core Studio 2.4.1") {
		t.Errorf("Expected app name and version, got:\n%s", out)
	}
	if !strings.Contains(out, "Core modules: 11") {
		t.Errorf("Expected module count, got:\n%s", out)
	}
	if !strings.Contains(out, "Admin auth:   enabled") {
		t.Errorf("Expected auth status, got:\n%s", out)
	}

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if got := len([]rune(line)); got != boxWidth {
			t.Errorf("Expected every row %d runes wide, got %d: %q", boxWidth, got, line)
		}
	}
}

func TestPrintWidthNarrow(t *testing.T) {
	var buf strings.Builder
	printWidth(&buf, testConfig(), 40)

	out := buf.String()
	if strings.Contains(out, "╔") {
		t.Error("Expected single-line banner for narrow terminal")
	}
	if !strings.Contains(out, "11 core modules") {
		t.Errorf("Expected module count in single-line form, got: %s", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("Expected exactly one line, got: %q", out)
	}
}

func TestBoxRowTruncatesLongText(t *testing.T) {
	var buf strings.Builder
	boxRow(&buf, strings.Repeat("x", 200))

	line := strings.TrimRight(buf.String(), "\n")
	if got := len([]rune(line)); got != boxWidth {
		t.Errorf("Expected %d runes, got %d", boxWidth, got)
	}
	if !strings.Contains(line, "...") {
		t.Error("Expected truncation marker")
	}
}
