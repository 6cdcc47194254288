package labeltool

import "github.com/cyclopcam/logs"

// prefixLogger writes to the underlying log, but all messages are prefixed with a string of your choice
type prefixLogger struct {
	logs.Log
	prefix string
}

func newPrefixLogger(log logs.Log, prefix string) logs.Log {
	return &prefixLogger{
		Log:    log,
		prefix: prefix + " ",
	}
}

func (l *prefixLogger) Debugf(format string, a ...interface{}) {
	l.Log.Debugf(l.prefix+format, a...)
}

func (l *prefixLogger) Infof(format string, a ...interface{}) {
	l.Log.Infof(l.prefix+format, a...)
}

func (l *prefixLogger) Warnf(format string, a ...interface{}) {
	l.Log.Warnf(l.prefix+format, a...)
}

func (l *prefixLogger) Errorf(format string, a ...interface{}) {
	l.Log.Errorf(l.prefix+format, a...)
}

func (l *prefixLogger) Criticalf(format string, a ...interface{}) {
	l.Log.Criticalf(l.prefix+format, a...)
}
