// Package cli constructs the depaudit command-line interface: the cobra command hierarchy,
// the viper configuration loader with embedded defaults and the zap logger shared by all commands.
package cli
