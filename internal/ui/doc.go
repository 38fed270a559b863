// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate subprocess lifecycle events into concise messages so
// that audit progress remains readable for operators while detailed telemetry
// continues to flow through structured loggers.
package ui
