package audit

import (
	"strings"
	"time"

	"github.com/temirov/depaudit/internal/execshell"
)

const (
	defaultComposerBinaryConstant = "~/composer.phar"
	defaultTimeoutSecondsConstant = 120
	defaultMailSubjectConstant    = "Composer Security Audit Report"
	pharExtensionConstant         = ".phar"
)

// Configuration captures the settings a run depends on.
// Recipient and Subject come from the mail section and are filled in by the caller.
type Configuration struct {
	Projects        []string `mapstructure:"projects"`
	PHPBinary       string   `mapstructure:"php_binary"`
	ComposerBinary  string   `mapstructure:"composer_binary"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds"`
	CycloneDXOutput string   `mapstructure:"cyclonedx_output"`
	Recipient       string   `mapstructure:"-"`
	Subject         string   `mapstructure:"-"`
}

// DefaultConfiguration returns baseline configuration values.
func DefaultConfiguration() Configuration {
	return Configuration{
		Projects:       nil,
		PHPBinary:      string(execshell.CommandPHP),
		ComposerBinary: defaultComposerBinaryConstant,
		TimeoutSeconds: defaultTimeoutSecondsConstant,
		Subject:        defaultMailSubjectConstant,
	}
}

// DefaultConfigurationValues returns viper defaults keyed below the provided section prefix.
func DefaultConfigurationValues(sectionKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		sectionKey + ".projects":         []string{},
		sectionKey + ".php_binary":       defaults.PHPBinary,
		sectionKey + ".composer_binary":  defaults.ComposerBinary,
		sectionKey + ".timeout_seconds":  defaults.TimeoutSeconds,
		sectionKey + ".cyclonedx_output": defaults.CycloneDXOutput,
	}
}

// DefaultMailSubject is the report subject used when none is configured.
func DefaultMailSubject() string {
	return defaultMailSubjectConstant
}

// Timeout converts TimeoutSeconds into a duration.
func (configuration Configuration) Timeout() time.Duration {
	return time.Duration(configuration.TimeoutSeconds) * time.Second
}

// UsesPHAR reports whether the composer binary is a PHAR archive that must be run through PHP.
func (configuration Configuration) UsesPHAR() bool {
	return strings.HasSuffix(strings.ToLower(configuration.ComposerBinary), pharExtensionConstant)
}

// sanitize trims whitespace, drops blank and repeated project paths and applies defaults to unset values.
func (configuration Configuration) sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Projects = sanitizeProjects(configuration.Projects)
	sanitized.PHPBinary = valueOrDefault(configuration.PHPBinary, defaults.PHPBinary)
	sanitized.ComposerBinary = valueOrDefault(configuration.ComposerBinary, defaults.ComposerBinary)
	sanitized.Subject = valueOrDefault(configuration.Subject, defaults.Subject)
	sanitized.Recipient = strings.TrimSpace(configuration.Recipient)
	sanitized.CycloneDXOutput = strings.TrimSpace(configuration.CycloneDXOutput)
	if sanitized.TimeoutSeconds <= 0 {
		sanitized.TimeoutSeconds = defaults.TimeoutSeconds
	}

	return sanitized
}

func sanitizeProjects(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for index := range raw {
		trimmed := strings.TrimSpace(raw[index])
		if len(trimmed) == 0 {
			continue
		}
		if _, duplicate := seen[trimmed]; duplicate {
			continue
		}
		seen[trimmed] = struct{}{}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}

func valueOrDefault(value string, defaultValue string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return defaultValue
	}
	return trimmed
}
