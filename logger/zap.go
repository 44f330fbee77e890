// Package logger provides adapters from common logging libraries to
// the keytree.Logger interface.
package logger

import (
	"go.uber.org/zap"

	"keytree"
)

// Zap wraps a zap.Logger to implement keytree.Logger.
type Zap struct {
	logger *zap.Logger
}

// NewZap creates a keytree.Logger from a zap.Logger.
func NewZap(logger *zap.Logger) keytree.Logger {
	return &Zap{logger: logger}
}

// Error logs an error message with key-value pairs.
func (z *Zap) Error(msg string, args ...any) {
	z.logger.Sugar().Errorw(msg, args...)
}

// Warn logs a warning message with key-value pairs.
func (z *Zap) Warn(msg string, args ...any) {
	z.logger.Sugar().Warnw(msg, args...)
}

// Info logs an info message with key-value pairs.
func (z *Zap) Info(msg string, args ...any) {
	z.logger.Sugar().Infow(msg, args...)
}
