package cli

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

const configurationContentInvalidTemplateConstant = "configuration content is not a YAML mapping: %w"

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded default configuration and its type identifier.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	duplicatedContent := make([]byte, len(embeddedDefaultConfigurationContent))
	copy(duplicatedContent, embeddedDefaultConfigurationContent)
	return duplicatedContent, configurationTypeConstant
}

// ValidateConfigurationContent checks that content parses as a YAML mapping.
func ValidateConfigurationContent(content []byte) error {
	var document map[string]any
	if unmarshalError := yaml.Unmarshal(content, &document); unmarshalError != nil {
		return fmt.Errorf(configurationContentInvalidTemplateConstant, unmarshalError)
	}
	return nil
}
