package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	commandPHPStringConstant               = "php"
	commandComposerStringConstant          = "composer"
	loggerNotConfiguredMessageConstant     = "logger not configured"
	runnerNotConfiguredMessageConstant     = "command runner not configured"
	commandFailedTemplateConstant          = "%s exited with code %d"
	commandExecutionFailedTemplateConstant = "%s execution failed: %v"
	commandLabelSeparatorConstant          = " "
)

// CommandName identifies an executable invoked through the shell executor.
type CommandName string

// Well-known executables.
const (
	CommandPHP CommandName = CommandName(commandPHPStringConstant)
)

// CommandDetails describes arguments and process settings for an invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	// Timeout bounds the invocation; zero means no limit beyond the caller context.
	Timeout time.Duration
}

// ShellCommand pairs an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// Label renders the executable followed by its arguments.
func (command ShellCommand) Label() string {
	parts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(parts, commandLabelSeparatorConstant)
}

// ExecutionResult captures the observable results of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates a ShellExecutor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates a ShellExecutor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a process that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedTemplateConstant, failure.Command.Label(), failure.Result.ExitCode)
}

// CommandExecutionError reports a process that could not be started or did not finish, such as a timeout.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, failure.Command.Label(), failure.Cause)
}

// Unwrap exposes the underlying cause so callers can test for context.DeadlineExceeded.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// TimedOut reports whether the command was terminated because its deadline elapsed.
func (failure CommandExecutionError) TimedOut() bool {
	return errors.Is(failure.Cause, context.DeadlineExceeded)
}
