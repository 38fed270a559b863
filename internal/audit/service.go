package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/depaudit/internal/execshell"
)

const (
	composerAuditSubcommandConstant       = "audit"
	composerJSONFormatArgumentConstant    = "--format=json"
	auditTimedOutTemplateConstant         = "composer audit timed out after %s"
	composerNoInteractionVariableConstant = "COMPOSER_NO_INTERACTION"
	composerNoInteractionValueConstant    = "1"
	auditNotExecutedTemplateConstant      = "composer audit could not be executed: %v"
	logMessageNoProjectsConstant          = "No projects configured. Add absolute paths under audit.projects."
	logMessageStartingConstant            = "Starting audits"
	logMessageAuditingProjectConstant     = "Auditing project"
	logMessageFoundAdvisoriesConstant     = "Found advisories"
	logMessageNoIssuesConstant            = "No issues found"
	logMessageUnexpectedOutputConstant    = "Unexpected output (not JSON)"
	logMessageAuditNotCompletedConstant   = "composer audit did not complete"
	logMessageNoRecipientConstant         = "No recipient configured (mail.to). Skipping email."
	logMessageNoMailerConstant            = "Mail transport not configured. Skipping email."
	logMessageReportEmailedConstant       = "Report emailed"
	logMessageReportEmailFailedConstant   = "Report email failed"
	logMessageMailSuppressedConstant      = "Email suppressed by --no-mail option."
	logMessageCycloneDXWrittenConstant    = "CycloneDX report written"
	logFieldProjectConstant               = "project"
	logFieldCountConstant                 = "count"
	logFieldRecipientConstant             = "recipient"
	logFieldPathConstant                  = "path"
	logFieldStatusConstant                = "status"
	logMessageAuditFinishedConstant       = "Audit finished"
	writeReportErrorTemplateConstant      = "write report: %w"
	createCycloneDXErrorTemplateConstant  = "create CycloneDX output %s: %w"
	closeCycloneDXErrorTemplateConstant   = "close CycloneDX output %s: %w"
	executorNotConfiguredMessageConstant  = "audit executor not configured"
	reportFileCreatePermissionsConstant   = 0o644
)

// ErrExecutorNotConfigured indicates a Service was constructed without an AuditExecutor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// FileSystem creates files for report exports.
type FileSystem interface {
	Create(path string) (io.WriteCloser, error)
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

// Create opens path for writing, truncating existing content.
func (OSFileSystem) Create(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportFileCreatePermissionsConstant)
}

// ServiceDependencies groups the collaborators a Service needs. Only Executor is required.
type ServiceDependencies struct {
	Executor     AuditExecutor
	Mailer       ReportMailer
	Logger       *zap.Logger
	OutputWriter io.Writer
	Clock        Clock
	FileSystem   FileSystem
}

// Service audits the configured projects and reports the results.
type Service struct {
	configuration Configuration
	executor      AuditExecutor
	mailer        ReportMailer
	logger        *zap.Logger
	outputWriter  io.Writer
	clock         Clock
	fileSystem    FileSystem
}

// NewService constructs a Service from explicit configuration and collaborators.
func NewService(configuration Configuration, dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	service := &Service{
		configuration: configuration.sanitize(),
		executor:      dependencies.Executor,
		mailer:        dependencies.Mailer,
		logger:        dependencies.Logger,
		outputWriter:  dependencies.OutputWriter,
		clock:         dependencies.Clock,
		fileSystem:    dependencies.FileSystem,
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	if service.outputWriter == nil {
		service.outputWriter = io.Discard
	}
	if service.clock == nil {
		service.clock = SystemClock{}
	}
	if service.fileSystem == nil {
		service.fileSystem = OSFileSystem{}
	}
	return service, nil
}

// Run audits every project in order, prints the text report and optionally mails and exports it.
// Per-project problems are recorded in the report; the returned error covers report output only.
func (service *Service) Run(executionContext context.Context, options RunOptions) (RunOutcome, error) {
	projects := service.configuration.Projects
	if len(projects) == 0 {
		service.logger.Warn(logMessageNoProjectsConstant)
		return RunOutcome{Status: ExitStatusInvalid}, nil
	}

	service.logger.Info(logMessageStartingConstant, zap.Int(logFieldCountConstant, len(projects)))

	results := make([]ProjectResult, 0, len(projects))
	for _, projectPath := range projects {
		results = append(results, service.auditProject(executionContext, projectPath))
	}

	report := AuditReport{GeneratedAt: service.clock.Now(), Results: results}
	reportText := BuildTextReport(report)
	if _, writeError := fmt.Fprintln(service.outputWriter, reportText); writeError != nil {
		return RunOutcome{}, fmt.Errorf(writeReportErrorTemplateConstant, writeError)
	}

	service.deliverReport(executionContext, options, reportText)

	if exportError := service.exportCycloneDX(report); exportError != nil {
		return RunOutcome{}, exportError
	}

	status := DetermineExitStatus(results)
	service.logger.Info(logMessageAuditFinishedConstant, zap.Stringer(logFieldStatusConstant, status))

	return RunOutcome{Status: status, Report: report, ReportText: reportText}, nil
}

func (service *Service) auditProject(executionContext context.Context, projectPath string) ProjectResult {
	service.logger.Info(logMessageAuditingProjectConstant, zap.String(logFieldProjectConstant, projectPath))

	executionResult, executionError := service.executor.Execute(executionContext, service.buildAuditCommand(projectPath))
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if !errors.As(executionError, &commandFailure) {
			failureMessage := service.describeExecutionFailure(executionError)
			service.logger.Error(logMessageAuditNotCompletedConstant, zap.String(logFieldProjectConstant, projectPath), zap.Error(executionError))
			return ProjectResult{ProjectPath: projectPath, Failure: &ProjectFailure{ErrorMessage: failureMessage}}
		}
		executionResult = commandFailure.Result
	}

	rawOutput := executionResult.StandardOutput
	if len(rawOutput) == 0 {
		rawOutput = executionResult.StandardError
	}

	advisories, parseError := ParseAuditOutput(rawOutput)
	if parseError != nil {
		failureMessage := parseError.Error()
		if errors.Is(parseError, ErrUnparseableOutput) {
			failureMessage = ErrUnparseableOutput.Error()
		}
		service.logger.Error(logMessageUnexpectedOutputConstant, zap.String(logFieldProjectConstant, projectPath), zap.Error(parseError))
		return ProjectResult{
			ProjectPath: projectPath,
			Failure:     &ProjectFailure{ErrorMessage: failureMessage, RawOutput: TruncateRawOutput(rawOutput)},
		}
	}

	if len(advisories) > 0 {
		service.logger.Warn(logMessageFoundAdvisoriesConstant, zap.String(logFieldProjectConstant, projectPath), zap.Int(logFieldCountConstant, len(advisories)))
	} else {
		service.logger.Info(logMessageNoIssuesConstant, zap.String(logFieldProjectConstant, projectPath))
	}

	return ProjectResult{ProjectPath: projectPath, Advisories: advisories}
}

func (service *Service) buildAuditCommand(projectPath string) execshell.ShellCommand {
	details := execshell.CommandDetails{
		Arguments:        []string{composerAuditSubcommandConstant, composerJSONFormatArgumentConstant},
		WorkingDirectory: projectPath,
		Timeout:          service.configuration.Timeout(),
		EnvironmentVariables: map[string]string{
			composerNoInteractionVariableConstant: composerNoInteractionValueConstant,
		},
	}

	if !service.configuration.UsesPHAR() {
		return execshell.ShellCommand{Name: execshell.CommandName(service.configuration.ComposerBinary), Details: details}
	}

	details.Arguments = append([]string{service.configuration.ComposerBinary}, details.Arguments...)
	return execshell.ShellCommand{Name: execshell.CommandName(service.configuration.PHPBinary), Details: details}
}

func (service *Service) describeExecutionFailure(executionError error) string {
	var executionFailure execshell.CommandExecutionError
	if !errors.As(executionError, &executionFailure) || executionFailure.Cause == nil {
		return fmt.Sprintf(auditNotExecutedTemplateConstant, executionError)
	}
	if executionFailure.TimedOut() {
		return fmt.Sprintf(auditTimedOutTemplateConstant, service.configuration.Timeout())
	}
	return fmt.Sprintf(auditNotExecutedTemplateConstant, executionFailure.Cause)
}

func (service *Service) deliverReport(executionContext context.Context, options RunOptions, reportText string) {
	if !options.SendReport {
		service.logger.Info(logMessageMailSuppressedConstant)
		return
	}

	recipient := service.configuration.Recipient
	if len(recipient) == 0 {
		service.logger.Warn(logMessageNoRecipientConstant)
		return
	}
	if service.mailer == nil {
		service.logger.Warn(logMessageNoMailerConstant)
		return
	}

	message := ReportMessage{Recipient: recipient, Subject: service.configuration.Subject, Body: reportText}
	if sendError := service.mailer.Send(executionContext, message); sendError != nil {
		service.logger.Error(logMessageReportEmailFailedConstant, zap.String(logFieldRecipientConstant, recipient), zap.Error(sendError))
		return
	}

	service.logger.Info(logMessageReportEmailedConstant, zap.String(logFieldRecipientConstant, recipient))
}

func (service *Service) exportCycloneDX(report AuditReport) error {
	outputPath := service.configuration.CycloneDXOutput
	if len(outputPath) == 0 {
		return nil
	}

	outputFile, createError := service.fileSystem.Create(outputPath)
	if createError != nil {
		return fmt.Errorf(createCycloneDXErrorTemplateConstant, outputPath, createError)
	}

	if writeError := WriteCycloneDX(report, outputFile); writeError != nil {
		outputFile.Close()
		return writeError
	}
	if closeError := outputFile.Close(); closeError != nil {
		return fmt.Errorf(closeCycloneDXErrorTemplateConstant, outputPath, closeError)
	}

	service.logger.Info(logMessageCycloneDXWrittenConstant, zap.String(logFieldPathConstant, outputPath))
	return nil
}
