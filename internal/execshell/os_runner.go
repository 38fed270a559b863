package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
	defaultWaitDelayConstant               = 5 * time.Second
	commandTimeoutTemplateConstant         = "timed out after %s: %w"
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	// WaitDelay bounds how long Run waits for inherited output pipes after the process is killed.
	WaitDelay time.Duration
}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{WaitDelay: defaultWaitDelayConstant}
}

// Run executes the supplied command using os/exec. The process is killed once the
// command timeout or the parent context expires, and the deadline is reported as an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	commandContext := executionContext
	if command.Details.Timeout > 0 {
		var cancel context.CancelFunc
		commandContext, cancel = context.WithTimeout(executionContext, command.Details.Timeout)
		defer cancel()
	}

	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(commandContext, string(command.Name), commandArguments...)
	executable.WaitDelay = runner.WaitDelay
	terminateProcessGroupOnCancel(executable)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		mergedEnvironment := append([]string{}, os.Environ()...)
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
		}
		executable.Env = mergedEnvironment
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	runError := executable.Run()

	// A killed process reports an ExitError, so the context is consulted first.
	if contextError := commandContext.Err(); contextError != nil && runError != nil {
		if errors.Is(contextError, context.DeadlineExceeded) && command.Details.Timeout > 0 {
			return ExecutionResult{}, fmt.Errorf(commandTimeoutTemplateConstant, command.Details.Timeout, contextError)
		}
		return ExecutionResult{}, contextError
	}

	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       0,
	}, nil
}
