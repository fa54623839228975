package logger

import (
	"io"
	"os"
)

var (
	FlagVerboseCount int  // -V, -VV
	FlagQuiet        bool // --quiet/-q
	FlagSilent       bool // --silent/-s
	FlagJSON         bool // --json
)

func ConfigureLoggerFromFlags() {
	var out io.Writer = os.Stdout
	level := "info"
	switch {
	case FlagSilent:
		level = "error"
		out = io.Discard
	case FlagQuiet:
		level = "error"
	case FlagVerboseCount > 0:
		level = "debug"
	}

	Configure(Options{
		Level: level,
		JSON:  FlagJSON,
		Color: !FlagJSON,
		Out:   out,
	})
}
