package execshell

import (
	"context"

	"go.uber.org/zap"
)

const (
	logMessageCommandStartedConstant   = "executing command"
	logMessageCommandCompletedConstant = "command completed"
	logMessageCommandFailedConstant    = "command exited with non-zero status"
	logMessageCommandErroredConstant   = "command execution failed"
	logFieldCommandConstant            = "command"
	logFieldArgumentsConstant          = "arguments"
	logFieldWorkingDirectoryConstant   = "working_directory"
	logFieldTimeoutConstant            = "timeout"
	logFieldExitCodeConstant           = "exit_code"
	logFieldDescriptionConstant        = "description"
)

// ShellExecutor runs commands through a CommandRunner while emitting structured logs and lifecycle events.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor. Observers are optional; the first non-nil observer is used.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	var observer CommandEventObserver = noopCommandEventObserver{}
	for _, candidate := range observers {
		if candidate != nil {
			observer = candidate
			break
		}
	}

	return &ShellExecutor{
		logger:    logger,
		runner:    runner,
		observer:  observer,
		formatter: CommandMessageFormatter{},
	}, nil
}

// Execute runs the command. A non-zero exit yields CommandFailedError carrying the result;
// a process that could not run to completion yields CommandExecutionError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(
		logMessageCommandStartedConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		zap.Duration(logFieldTimeoutConstant, command.Details.Timeout),
	)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(
			logMessageCommandErroredConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.String(logFieldDescriptionConstant, executor.formatter.BuildExecutionFailureMessage(command, runError)),
			zap.Error(runError),
		)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Debug(
			logMessageCommandFailedConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldDescriptionConstant, executor.formatter.BuildFailureMessage(command, executionResult)),
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(
		logMessageCommandCompletedConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.String(logFieldDescriptionConstant, executor.formatter.BuildSuccessMessage(command)),
	)
	return executionResult, nil
}
