package logger

var defLogger = NewSlog(InfoLevel, false)

// Debug logs a message at DebugLevel on the default logger.
func Debug(msg string, keysAndValues ...any) {
	defLogger.Debug(msg, keysAndValues...)
}

// Info logs a message at InfoLevel on the default logger.
func Info(msg string, keysAndValues ...any) {
	defLogger.Info(msg, keysAndValues...)
}

// Warn logs a message at WarnLevel on the default logger.
func Warn(msg string, keysAndValues ...any) {
	defLogger.Warn(msg, keysAndValues...)
}

// Error logs a message at ErrorLevel on the default logger.
func Error(msg string, keysAndValues ...any) {
	defLogger.Error(msg, keysAndValues...)
}

// Fatal logs a message on the default logger and exits the process.
func Fatal(msg string, keysAndValues ...any) {
	defLogger.Fatal(msg, keysAndValues...)
}

// SetLevel sets the minimum level of the default logger.
func SetLevel(level Level) {
	defLogger.SetLevel(level)
}

// GetLogger returns the default logger.
func GetLogger() Logger {
	return defLogger
}

// With returns a child of the default logger carrying the given key-values.
func With(keyValues ...any) Logger {
	return defLogger.With(keyValues...)
}

// SetLogger replaces the default logger. Call it during startup, before other
// goroutines log through the package functions.
func SetLogger(l Logger) {
	if l != nil {
		defLogger = l
	}
}
