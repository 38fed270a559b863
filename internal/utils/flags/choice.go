package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderTemplateConstant = "<%s>"
	choiceSeparatorConstant           = "|"
	usageWithoutDescriptionTemplate   = "`%s`"
	usageWithDescriptionTemplate      = "`%s` %s"
)

// FormatChoiceUsage renders "`<a|DEFAULT|c>` description" for flags that accept a fixed set of values.
// pflag shows the back-quoted placeholder as the flag's value name.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	displayedChoices := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, seen := seenChoices[normalizedChoice]; seen || len(trimmedChoice) == 0 {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		displayedChoices = append(displayedChoices, trimmedChoice)
	}

	placeholder := fmt.Sprintf(choicePlaceholderTemplateConstant, strings.Join(displayedChoices, choiceSeparatorConstant))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(usageWithoutDescriptionTemplate, placeholder)
	}
	return fmt.Sprintf(usageWithDescriptionTemplate, placeholder, trimmedDescription)
}
