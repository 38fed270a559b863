package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleTrueValueConstant           = "true"
	toggleFalseValueConstant          = "false"
	toggleTypeNameConstant            = "bool"
	toggleParseErrorTemplateConstant  = "invalid toggle value %q"
	toggleEnabledPlaceholderConstant  = "<YES|no>"
	toggleDisabledPlaceholderConstant = "<yes|NO>"
	longFlagPrefixConstant            = "--"
	flagValueSeparatorConstant        = "="
	argumentTerminatorConstant        = "--"
)

var toggleLiteralValues = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"t":     true,
	"y":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
	"f":     false,
	"n":     false,
}

// AddToggleFlag registers a boolean flag that also accepts yes/no, on/off and 1/0 values.
// A bare flag enables the toggle.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || len(strings.TrimSpace(name)) == 0 {
		return
	}

	flagSet.Var(newToggleValue(defaultValue, target), name, formatToggleUsage(usage, defaultValue))
	registeredFlag := flagSet.Lookup(name)
	registeredFlag.NoOptDefVal = toggleTrueValueConstant
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for every toggle flag declared
// anywhere in the command tree, so pflag does not treat the value as a positional argument.
// The result is never nil; cobra falls back to os.Args when given nil arguments.
func NormalizeToggleArguments(rootCommand *cobra.Command, arguments []string) []string {
	if len(arguments) == 0 {
		return []string{}
	}

	toggleNames := collectToggleNames(rootCommand)
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == argumentTerminatorConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		name, isLongFlag := strings.CutPrefix(current, longFlagPrefixConstant)
		_, isToggle := toggleNames[name]
		if !isLongFlag || !isToggle || index+1 >= len(arguments) {
			normalized = append(normalized, current)
			continue
		}

		nextArgument := arguments[index+1]
		if _, isLiteral := toggleLiteralValues[strings.ToLower(nextArgument)]; !isLiteral {
			normalized = append(normalized, current)
			continue
		}

		normalized = append(normalized, current+flagValueSeparatorConstant+nextArgument)
		index++
	}

	return normalized
}

func collectToggleNames(rootCommand *cobra.Command) map[string]struct{} {
	names := map[string]struct{}{}
	if rootCommand == nil {
		return names
	}

	visit := func(flag *pflag.Flag) {
		if _, isToggle := flag.Value.(*toggleValue); isToggle {
			names[flag.Name] = struct{}{}
		}
	}

	pending := []*cobra.Command{rootCommand}
	for len(pending) > 0 {
		command := pending[0]
		pending = pending[1:]
		command.Flags().VisitAll(visit)
		command.PersistentFlags().VisitAll(visit)
		pending = append(pending, command.Commands()...)
	}

	return names
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleDisabledPlaceholderConstant
	if defaultValue {
		placeholder = toggleEnabledPlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmedDescription)
}

type toggleValue struct {
	enabled bool
	target  *bool
}

func newToggleValue(defaultValue bool, target *bool) *toggleValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleValue{enabled: defaultValue, target: target}
}

func (value *toggleValue) Set(rawValue string) error {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		normalizedValue = toggleTrueValueConstant
	}

	parsedValue, known := toggleLiteralValues[normalizedValue]
	if !known {
		return fmt.Errorf(toggleParseErrorTemplateConstant, rawValue)
	}

	value.enabled = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.enabled {
		return toggleTrueValueConstant
	}
	return toggleFalseValueConstant
}

func (value *toggleValue) Type() string {
	return toggleTypeNameConstant
}
