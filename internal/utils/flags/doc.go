// Package flags holds pflag helpers shared by depaudit commands: yes/no toggles and choice usage strings.
package flags
