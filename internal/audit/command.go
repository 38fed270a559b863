package audit

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/depaudit/internal/execshell"
	"github.com/temirov/depaudit/internal/ui"
	"github.com/temirov/depaudit/internal/utils/flags"
	pathutils "github.com/temirov/depaudit/internal/utils/path"
)

const (
	commandUseConstant              = "audit"
	commandShortDescriptionConstant = "Run composer audit across the configured projects"
	commandLongDescriptionConstant  = "audit runs composer audit --format=json in every configured project, prints one aggregated report and emails it to mail.to unless --no-mail is given. The exit status is 0 when every project was audited, 1 when any project could not be audited and 2 when no projects are configured."
	noMailFlagNameConstant          = "no-mail"
	noMailFlagUsageConstant         = "Print the report without emailing it."
	cycloneDXFlagNameConstant       = "cyclonedx-output"
	cycloneDXFlagUsageConstant      = "Also write the findings as a CycloneDX JSON document to this path."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded audit configuration.
type ConfigurationProvider func() Configuration

// MailerProvider supplies the report mailer once configuration is loaded.
type MailerProvider func() ReportMailer

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	MailerProvider               MailerProvider
	Executor                     AuditExecutor
	Clock                        Clock
	FileSystem                   FileSystem
	HomeExpander                 *pathutils.HomeExpander
}

// Build constructs the cobra command for project audits.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	var suppressMail bool
	flags.AddToggleFlag(command.Flags(), &suppressMail, noMailFlagNameConstant, false, noMailFlagUsageConstant)
	command.Flags().String(cycloneDXFlagNameConstant, "", cycloneDXFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration(command)
	suppressMail, _ := command.Flags().GetBool(noMailFlagNameConstant)

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	service, serviceError := NewService(configuration, ServiceDependencies{
		Executor:     executor,
		Mailer:       builder.resolveMailer(suppressMail),
		Logger:       logger,
		OutputWriter: command.OutOrStdout(),
		Clock:        builder.Clock,
		FileSystem:   builder.FileSystem,
	})
	if serviceError != nil {
		return serviceError
	}

	outcome, runError := service.Run(command.Context(), RunOptions{SendReport: !suppressMail})
	if runError != nil {
		return runError
	}
	if outcome.Status != ExitStatusSuccess {
		return ExitStatusError{Status: outcome.Status}
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command.Flags().Changed(cycloneDXFlagNameConstant) {
		configuration.CycloneDXOutput, _ = command.Flags().GetString(cycloneDXFlagNameConstant)
	}

	configuration = configuration.sanitize()

	expander := builder.HomeExpander
	if expander == nil {
		expander = pathutils.NewHomeExpander()
	}
	configuration.Projects = expander.ExpandAll(configuration.Projects)
	configuration.ComposerBinary = expander.Expand(configuration.ComposerBinary)
	configuration.PHPBinary = expander.Expand(configuration.PHPBinary)
	configuration.CycloneDXOutput = expander.Expand(strings.TrimSpace(configuration.CycloneDXOutput))

	return configuration
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (AuditExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	observers := make([]execshell.CommandEventObserver, 0, 1)
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveMailer(suppressMail bool) ReportMailer {
	if suppressMail || builder.MailerProvider == nil {
		return nil
	}
	return builder.MailerProvider()
}
