package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/depaudit/cmd/cli"
	"github.com/temirov/depaudit/internal/audit"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the depaudit command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	var statusError audit.ExitStatusError
	if errors.As(executionError, &statusError) {
		os.Exit(statusError.Status.Code())
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	os.Exit(audit.ExitStatusFailure.Code())
}
