package log

import (
	"fmt"
	"log"
	"time"
)

// Info takes a pointer subLogger struct and string sends to StageLogEvent
func Info(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(infoLevel), func() string { return data })
}

// Infoln takes a pointer subLogger struct and interface sends to StageLogEvent
func Infoln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(infoLevel), func() string { return fmt.Sprint(v...) })
}

// Infof takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Infof(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(infoLevel), func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string sends to StageLogEvent
func Debug(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(debugLevel), func() string { return data })
}

// Debugf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Debugf(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(debugLevel), func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct & string and sends to StageLogEvent
func Warn(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(warnLevel), func() string { return data })
}

// Warnf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Warnf(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(warnLevel), func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct & interface formats and sends to StageLogEvent
func Error(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(errorLevel), func() string { return data })
}

// Errorf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Errorf(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(errorLevel), func() string { return fmt.Sprintf(data, v...) })
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}

type level int

const (
	infoLevel level = iota
	warnLevel
	debugLevel
	errorLevel
)

// header returns the configured header when the level is enabled, or an
// empty string when it is not
func (l *logFields) header(lvl level) string {
	if l == nil {
		return ""
	}
	switch lvl {
	case infoLevel:
		if l.info {
			return l.logger.InfoHeader
		}
	case warnLevel:
		if l.warn {
			return l.logger.WarnHeader
		}
	case debugLevel:
		if l.debug {
			return l.logger.DebugHeader
		}
	case errorLevel:
		if l.error {
			return l.logger.ErrorHeader
		}
	}
	return ""
}

// stage writes a log event when the header is set. The message is only
// formatted once it is known to be needed.
func (l *logFields) stage(header string, data func() string) {
	if l == nil || header == "" {
		return
	}
	msg := data()
	if customLogHook != nil && customLogHook(header, l.name, msg) {
		return
	}
	if l.output == nil {
		return
	}
	_, err := l.output.Write([]byte(l.logger.newLogEvent(msg, header, l.name, time.Now())))
	displayError(err)
}
