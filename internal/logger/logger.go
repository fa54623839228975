package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/olekukonko/tablewriter"
	"github.com/timvideos/fwfetch/internal/printer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string    // "debug","info","warn","error"
	JSON  bool      // JSON output (CI)
	Color bool      // colorize (console)
	Out   io.Writer // default os.Stdout
}

var (
	mu    sync.RWMutex
	zlog  *zap.SugaredLogger
	out   io.Writer = os.Stdout
	p     *printer.ColorPrinter
	ready atomic.Bool
)

// Configure sets up the global logger.
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	if opts.Out != nil {
		out = opts.Out
	}

	var enc zapcore.Encoder
	if opts.JSON {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = ""
		encCfg.CallerKey = ""
		encCfg.MessageKey = "msg"
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{MessageKey: "msg"})
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(writerAdapter{out}), parseLevel(opts.Level))
	zlog = zap.New(core).Sugar()

	if !opts.Color {
		printer.DisableColor()
	}
	p = printer.NewColorPrinter()

	ready.Store(true)
}

// SetOutput replaces the logger writer (use io.Discard in tests).
func SetOutput(w io.Writer, level string) {
	if w == nil {
		w = os.Stdout
	}
	Configure(Options{Level: level, Out: w})
}

// UseTestMode silences logs during tests.
func UseTestMode() {
	Configure(Options{
		Level: "error",
		Out:   io.Discard,
	})
}

// Out returns the current output writer (for tables).
func Out() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

// ---- Public logging API ----

func Info(msg string, args ...interface{}) {
	if !ensureReady() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	zlog.Info(p.Info("%s", "✨ "+fmt.Sprintf(msg, args...)))
}

func Success(msg string, args ...interface{}) {
	if !ensureReady() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	zlog.Info(p.Success("%s", "✅ "+fmt.Sprintf(msg, args...)))
}

func LogError(msg string, args ...interface{}) {
	if !ensureReady() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	zlog.Error(p.Error("%s", "❌ "+fmt.Sprintf(msg, args...)))
}

func Warn(msg string, args ...interface{}) {
	if !ensureReady() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	zlog.Warn(p.Warning("%s", "⚠️ "+fmt.Sprintf(msg, args...)))
}

func Debug(msg string, args ...interface{}) {
	if !ensureReady() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	zlog.Debug(p.Debug("%s", "🛠️ "+fmt.Sprintf(msg, args...)))
}

// ---- Tables ----

func CreateTable(headers []string) *tablewriter.Table {
	mu.RLock()
	defer mu.RUnlock()
	t := tablewriter.NewTable(out)
	t.Header(headers)
	return t
}

// ---- internals ----

type writerAdapter struct{ w io.Writer }

func (wa writerAdapter) Write(p []byte) (int, error) { return wa.w.Write(p) }

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func ensureReady() bool {
	return ready.Load() && p != nil && zlog != nil
}
