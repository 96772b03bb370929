package logger

import (
	"bytes"
	"os"
	"testing"
)

// capture redirects stdout for the duration of fn and returns what was printed.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestLevels_NoPanic(t *testing.T) {
	capture(t, func() {
		Info("TAG", "message")
		Success("TAG", "message")
		Warn("TAG", "message")
		Error("TAG", "message")
	})
	// Output is environment-dependent (colors); just ensure no panic.
}

func TestBanner_NoPanic(t *testing.T) {
	capture(t, func() {
		Banner("v1.0.0")
		Banner("")
	})
}

func TestSectionStatsServer_NoPanic(t *testing.T) {
	capture(t, func() {
		Section("Catalog")
		Stats("Items", 42)
		Server("127.0.0.1:8080")
	})
}
