// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and hard timeouts via ShellExecutor, exposes
// OSCommandRunner for default process execution, and defines the abstractions
// depaudit uses to run php and composer in a testable manner.
package execshell
