package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var zeroTime time.Time

func TestSetCustomLogHook(t *testing.T) {
	sl := NewSubLogger("hook-test")
	var buf bytes.Buffer
	sl.SetOutput(&buf)
	sl.SetLevels("INFO")

	var captured []string
	SetCustomLogHook(func(header, name string, a ...any) bool {
		captured = append(captured, name)
		return true
	})
	defer SetCustomLogHook(nil)

	Info(sl, "intercepted")
	assert.Equal(t, []string{"HOOK-TEST"}, captured)
	assert.Empty(t, buf.String())
}
