package log

import (
	"strings"
	"time"
)

func newLogger(c Config) Logger {
	l := Logger{
		TimestampFormat: c.AdvancedSettings.TimeStampFormat,
		Spacer:          c.AdvancedSettings.Spacer,
		InfoHeader:      c.AdvancedSettings.Headers.Info,
		WarnHeader:      c.AdvancedSettings.Headers.Warn,
		DebugHeader:     c.AdvancedSettings.Headers.Debug,
		ErrorHeader:     c.AdvancedSettings.Headers.Error,
	}
	if c.AdvancedSettings.ShowLogSystemName != nil {
		l.ShowLogSystemName = *c.AdvancedSettings.ShowLogSystemName
	}
	return l
}

// newLogEvent renders a single line
func (l *Logger) newLogEvent(data, header, slName string, t time.Time) string {
	var sb strings.Builder
	sb.WriteString(header)
	if l.ShowLogSystemName {
		sb.WriteString(l.Spacer)
		sb.WriteString(slName)
	}
	sb.WriteString(l.Spacer)
	if l.TimestampFormat != "" {
		sb.WriteString(t.Format(l.TimestampFormat))
	}
	sb.WriteString(l.Spacer)
	sb.WriteString(data)
	if !strings.HasSuffix(data, "\n") {
		sb.WriteByte('\n')
	}
	return sb.String()
}
