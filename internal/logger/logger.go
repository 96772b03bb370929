// Package logger is a small tagged console logger.
// Lines look like "  [TAG] message" with a colored level marker; no
// timestamps since the process is typically watched interactively and
// anything durable goes to the database anyway.
package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

var colored = isatty.IsTerminal(os.Stdout.Fd())

func paint(color, s string) string {
	if !colored {
		return s
	}
	return color + s + colorReset
}

func line(marker, color, tag, msg string) {
	fmt.Printf("%s [%s] %s\n", paint(color, marker), tag, msg)
}

// Info logs a neutral progress message.
func Info(tag, msg string) {
	line("·", colorCyan, tag, msg)
}

// Success logs a completed step.
func Success(tag, msg string) {
	line("✓", colorGreen, tag, msg)
}

// Warn logs a recoverable problem.
func Warn(tag, msg string) {
	line("!", colorYellow, tag, msg)
}

// Error logs a failure.
func Error(tag, msg string) {
	line("✗", colorRed, tag, msg)
}

// Banner prints the startup header with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println(paint(colorBold, "albion-profit-calculator "+version))
}

// Section prints a header for a block of Stats lines.
func Section(title string) {
	fmt.Println(paint(colorBold, "── "+title))
}

// Stats prints one key/value line under a Section.
func Stats(key string, value interface{}) {
	fmt.Printf("   %-14s %v\n", key, value)
}

// Server logs the listen address once the HTTP server is up.
func Server(addr string) {
	Success("Server", fmt.Sprintf("Listening on http://%s", addr))
}
