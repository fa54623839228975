package printer

import (
	"github.com/fatih/color"
)

type ColorPrinter struct {
	Success   func(format string, a ...interface{}) string
	Error     func(format string, a ...interface{}) string
	Warning   func(format string, a ...interface{}) string
	Info      func(format string, a ...interface{}) string
	Debug     func(format string, a ...interface{}) string
	Highlight func(format string, a ...interface{}) string
	Muted     func(format string, a ...interface{}) string
}

func NewColorPrinter() *ColorPrinter {
	return &ColorPrinter{
		Success:   color.New(color.FgGreen).SprintfFunc(),
		Error:     color.New(color.FgRed).SprintfFunc(),
		Warning:   color.New(color.FgYellow).SprintfFunc(),
		Info:      color.New(color.FgBlue).SprintfFunc(),
		Debug:     color.New(color.FgCyan).SprintfFunc(),
		Highlight: color.New(color.Bold).SprintfFunc(),
		Muted:     color.New(color.Faint).SprintfFunc(),
	}
}

// DisableColor turns ANSI output off for every printer, e.g. when logs go to JSON.
// Color detection on a terminal is left to fatih/color.
func DisableColor() {
	color.NoColor = true
}
