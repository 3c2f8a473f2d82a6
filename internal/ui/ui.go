package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

// Output is where every helper writes. Tests swap it for a buffer.
var Output io.Writer = os.Stderr

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(Output, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(Output, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(Output, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(Output, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(Output, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(Output, "  "+format+"\n", a...)
}

// Step prints the outcome of one pipeline step.
func Step(name string, d time.Duration, err error) {
	elapsed := d.Round(time.Millisecond)
	if err != nil {
		Error("✗ %-9s %v (%s)", name, err, elapsed)
		return
	}
	Success("✓ %-9s %s", name, elapsed)
}

// Summary prints the files a run touched.
func Summary(written []string) {
	Header("\n--- Sync Summary ---")
	if len(written) == 0 {
		Info("No files were updated.")
		return
	}
	Success("Updated %d file(s):", len(written))
	for _, f := range written {
		fmt.Fprintf(Output, "  - %s\n", f)
	}
}
