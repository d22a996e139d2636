package poller

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// every is a cron.Schedule firing at a constant interval. Unlike
// cron.Every it keeps sub-second precision.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

var _ cron.Schedule = every(0)

// cronLogger adapts zap to cron's logging interface.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
