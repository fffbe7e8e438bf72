// Package logger provides adapters for popular logger libraries to work with pantry's Logger interface.
//
// The adapters allow you to use your existing logger with pantry without writing boilerplate.
// Note that the standard library's slog.Logger already implements pantry.Logger directly.
//
// Example with zap:
//
//	import (
//	    "pantry"
//	    "pantry/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    pf := pantry.NewPrefetcher(
//	        pantry.WithLogger(logger.NewZap(zapLogger)),
//	    )
//	    defer pf.Clear()
//	}
package logger
