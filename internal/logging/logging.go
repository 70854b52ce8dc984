// Package logging is the process-wide logging facade. The CLI disables
// it for clean command output; debug logging for the translation engine
// is gated separately by HANLENS_DEBUG_AI.
package logging

import (
	"log"
	"os"
)

var (
	disabled = false
	debugAI  = os.Getenv("HANLENS_DEBUG_AI") != ""
	logger   = log.New(os.Stderr, "", log.LstdFlags)
)

// Disable turns off all logging
func Disable() {
	disabled = true
}

// Enable turns logging back on
func Enable() {
	disabled = false
}

// Infof logs a formatted info message
func Infof(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Errorf logs a formatted error message
func Errorf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Debugf logs verbose engine traffic; only emitted when HANLENS_DEBUG_AI
// is set.
func Debugf(format string, v ...any) {
	if debugAI && !disabled {
		logger.Printf(format, v...)
	}
}
