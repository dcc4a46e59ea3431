package log

import (
	"io"
	"strings"
)

// NewSubLogger registers a new sub logger with all levels enabled writing to
// the default output. Registering an existing name returns the existing one.
func NewSubLogger(name string) *SubLogger {
	mu.Lock()
	defer mu.Unlock()
	return registerNewSubLogger(name)
}

// Name returns the sub logger name
func (sl *SubLogger) Name() string {
	if sl == nil {
		return ""
	}
	return sl.name
}

// SetOutput sets the writer for the sub logger
func (sl *SubLogger) SetOutput(w io.Writer) {
	mu.Lock()
	sl.output = w
	mu.Unlock()
}

// SetLevels sets the enabled levels from a pipe separated string such as
// "INFO|WARN"
func (sl *SubLogger) SetLevels(levels string) {
	mu.Lock()
	sl.levels = splitLevel(levels)
	mu.Unlock()
}

// getFields returns a snapshot of the sub logger settings, must be called
// under the read lock
func (sl *SubLogger) getFields() *logFields {
	if sl == nil || (globalLogConfig.Enabled != nil && !*globalLogConfig.Enabled) {
		return nil
	}
	return &logFields{
		info:   sl.levels.Info,
		warn:   sl.levels.Warn,
		debug:  sl.levels.Debug,
		error:  sl.levels.Error,
		name:   sl.name,
		output: sl.output,
		logger: logger,
	}
}

func registerNewSubLogger(name string) *SubLogger {
	key := strings.ToUpper(name)
	if sl, ok := subLoggers[key]; ok {
		return sl
	}
	sl := &SubLogger{
		name:   key,
		output: defaultOutput,
		levels: splitLevel("INFO|WARN|DEBUG|ERROR"),
	}
	subLoggers[key] = sl
	return sl
}
