package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/depaudit/internal/utils/flags"
	pathutils "github.com/temirov/depaudit/internal/utils/path"
)

const (
	initCommandUseConstant              = "init [PATH]"
	initCommandShortDescriptionConstant = "Write the default configuration file"
	initCommandLongDescriptionConstant  = "init writes the built-in default configuration to PATH (config.yaml in the current directory when omitted) so it can be edited. Existing files are kept unless --force is given."
	initForceFlagNameConstant           = "force"
	initForceFlagUsageConstant          = "Overwrite an existing configuration file."
	initDefaultFileNameConstant         = configurationNameConstant + "." + configurationTypeConstant
	initDirectoryPermissionsConstant    = 0o755
	initFilePermissionsConstant         = 0o600
	initFileExistsTemplateConstant      = "%w: %s (use --force to overwrite)"
	initCreateDirectoryTemplateConstant = "create configuration directory %s: %w"
	initWriteFileTemplateConstant       = "write configuration file %s: %w"
	initWrittenMessageTemplateConstant  = "Wrote default configuration to %s\n"
	initLogMessageConstant              = "default configuration written"
	initLogFieldPathConstant            = "path"
)

// ErrConfigurationFileExists indicates init refused to overwrite an existing file.
var ErrConfigurationFileExists = errors.New("configuration file already exists")

// InitCommandBuilder assembles the init cobra command.
type InitCommandBuilder struct {
	LoggerProvider func() *zap.Logger
	HomeExpander   *pathutils.HomeExpander
}

// Build constructs the init command.
func (builder *InitCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   initCommandUseConstant,
		Short: initCommandShortDescriptionConstant,
		Long:  initCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	var overwrite bool
	flags.AddToggleFlag(command.Flags(), &overwrite, initForceFlagNameConstant, false, initForceFlagUsageConstant)

	return command, nil
}

func (builder *InitCommandBuilder) run(command *cobra.Command, arguments []string) error {
	overwrite, _ := command.Flags().GetBool(initForceFlagNameConstant)

	targetPath := initDefaultFileNameConstant
	if len(arguments) > 0 && len(strings.TrimSpace(arguments[0])) > 0 {
		targetPath = strings.TrimSpace(arguments[0])
	}
	expander := builder.HomeExpander
	if expander == nil {
		expander = pathutils.NewHomeExpander()
	}
	targetPath = expander.Expand(targetPath)

	content, _ := EmbeddedDefaultConfiguration()
	if validationError := ValidateConfigurationContent(content); validationError != nil {
		return validationError
	}

	if !overwrite {
		if _, statError := os.Stat(targetPath); statError == nil {
			return fmt.Errorf(initFileExistsTemplateConstant, ErrConfigurationFileExists, targetPath)
		}
	}

	if directoryError := os.MkdirAll(filepath.Dir(targetPath), initDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(initCreateDirectoryTemplateConstant, filepath.Dir(targetPath), directoryError)
	}
	if writeError := os.WriteFile(targetPath, content, initFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(initWriteFileTemplateConstant, targetPath, writeError)
	}

	builder.resolveLogger().Info(initLogMessageConstant, zap.String(initLogFieldPathConstant, targetPath))
	fmt.Fprintf(command.OutOrStdout(), initWrittenMessageTemplateConstant, targetPath)
	return nil
}

func (builder *InitCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	if logger := builder.LoggerProvider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}
