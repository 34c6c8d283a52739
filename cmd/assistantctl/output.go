package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	noColor bool
	out     io.Writer = os.Stdout
	errOut  io.Writer = os.Stderr
)

func paint(attr color.Attribute, text string) string {
	if noColor {
		return text
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(text)
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(errOut, paint(color.FgGreen, "✓ "+fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Fprintln(errOut, paint(color.FgRed, "✗ "+fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(errOut, paint(color.FgYellow, "⚠ "+fmt.Sprintf(format, args...)))
}

func printField(label string, format string, args ...any) {
	fmt.Fprintf(out, "  %-18s %s\n", paint(color.FgCyan, label+":"), fmt.Sprintf(format, args...))
}

func printHeading(text string) {
	fmt.Fprintln(out, paint(color.Bold, text))
}
