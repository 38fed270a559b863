package audit

import (
	"context"

	"github.com/temirov/depaudit/internal/execshell"
)

// AuditExecutor runs the composer audit subprocess.
type AuditExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// ReportMessage is the plain-text report handed to a ReportMailer.
type ReportMessage struct {
	Recipient string
	Subject   string
	Body      string
}

// ReportMailer delivers the finished report.
type ReportMailer interface {
	Send(executionContext context.Context, message ReportMessage) error
}
