package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	runewidth "github.com/mattn/go-runewidth"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.Bold)
)

// columnGap separates table columns
const columnGap = "  "

// JSON writes data as indented JSON on stdout
func JSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Table prints rows under headers. Columns are padded to the widest cell
// by display width, so internationalized names still line up. Cells past
// the last header are dropped.
func Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	separator := make([]string, len(widths))
	for i, w := range widths {
		separator[i] = strings.Repeat("-", w)
	}

	tableRow(headers, widths)
	tableRow(separator, widths)
	for _, row := range rows {
		tableRow(row, widths)
	}
}

func tableRow(cells []string, widths []int) {
	padded := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded[i] = runewidth.FillRight(cell, w)
	}
	fmt.Println(strings.Join(padded, columnGap))
}

// message prints one symbol-prefixed line in c
func message(c *color.Color, symbol, format string, args ...interface{}) {
	_, _ = c.Printf(symbol+" "+format+"\n", args...)
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	message(successColor, "✓", format, args...)
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	message(errorColor, "✗", format, args...)
}

// Warn prints a warning message
func Warn(format string, args ...interface{}) {
	message(warnColor, "!", format, args...)
}

// Info prints an informational message
func Info(format string, args ...interface{}) {
	message(infoColor, "→", format, args...)
}

// Print prints a plain line
func Print(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Step prints pipeline progress as "[n/total] message"
func Step(n, total int, format string, args ...interface{}) {
	_, _ = infoColor.Printf("[%d/%d] ", n, total)
	fmt.Printf(format+"\n", args...)
}

// Preview prints a titled block of text, such as a rendered config
func Preview(title, content string) {
	_, _ = headerColor.Printf("--- %s ---\n", title)
	fmt.Print(content)
	if !strings.HasSuffix(content, "\n") {
		fmt.Println()
	}
}
