package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	defaultSMTPPortConstant           = 25
	defaultSMTPTimeoutSecondsConstant = 30
	defaultSenderConstant             = "depaudit@localhost"
	tlsPolicyOpportunisticConstant    = "opportunistic"
	tlsPolicyMandatoryConstant        = "mandatory"
	tlsPolicyNoneConstant             = "none"
	unknownTLSPolicyTemplateConstant  = "unknown SMTP TLS policy %q (expected opportunistic, mandatory or none)"
)

// Configuration describes report delivery settings under the mail configuration section.
type Configuration struct {
	To      string            `mapstructure:"to"`
	Subject string            `mapstructure:"subject"`
	From    string            `mapstructure:"from"`
	SMTP    SMTPConfiguration `mapstructure:"smtp"`
}

// SMTPConfiguration describes the outgoing mail server.
type SMTPConfiguration struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	TLSPolicy      string `mapstructure:"tls_policy"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DefaultConfiguration returns baseline mail settings. No recipient is configured by default.
func DefaultConfiguration() Configuration {
	return Configuration{
		From: defaultSenderConstant,
		SMTP: SMTPConfiguration{
			Port:           defaultSMTPPortConstant,
			TLSPolicy:      tlsPolicyOpportunisticConstant,
			TimeoutSeconds: defaultSMTPTimeoutSecondsConstant,
		},
	}
}

// DefaultConfigurationValues returns viper defaults keyed below the provided section prefix.
func DefaultConfigurationValues(sectionKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		sectionKey + ".to":                   defaults.To,
		sectionKey + ".from":                 defaults.From,
		sectionKey + ".smtp.host":            defaults.SMTP.Host,
		sectionKey + ".smtp.port":            defaults.SMTP.Port,
		sectionKey + ".smtp.username":        defaults.SMTP.Username,
		sectionKey + ".smtp.password":        defaults.SMTP.Password,
		sectionKey + ".smtp.tls_policy":      defaults.SMTP.TLSPolicy,
		sectionKey + ".smtp.timeout_seconds": defaults.SMTP.TimeoutSeconds,
	}
}

func (configuration Configuration) sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration
	sanitized.To = strings.TrimSpace(configuration.To)
	sanitized.Subject = strings.TrimSpace(configuration.Subject)
	sanitized.From = strings.TrimSpace(configuration.From)
	if len(sanitized.From) == 0 {
		sanitized.From = defaults.From
	}
	sanitized.SMTP.Host = strings.TrimSpace(configuration.SMTP.Host)
	sanitized.SMTP.Username = strings.TrimSpace(configuration.SMTP.Username)
	sanitized.SMTP.TLSPolicy = strings.ToLower(strings.TrimSpace(configuration.SMTP.TLSPolicy))
	if len(sanitized.SMTP.TLSPolicy) == 0 {
		sanitized.SMTP.TLSPolicy = defaults.SMTP.TLSPolicy
	}
	if sanitized.SMTP.Port <= 0 {
		sanitized.SMTP.Port = defaults.SMTP.Port
	}
	if sanitized.SMTP.TimeoutSeconds <= 0 {
		sanitized.SMTP.TimeoutSeconds = defaults.SMTP.TimeoutSeconds
	}
	return sanitized
}

func (configuration SMTPConfiguration) timeout() time.Duration {
	return time.Duration(configuration.TimeoutSeconds) * time.Second
}

func (configuration SMTPConfiguration) tlsPolicy() (mail.TLSPolicy, error) {
	switch configuration.TLSPolicy {
	case tlsPolicyOpportunisticConstant:
		return mail.TLSOpportunistic, nil
	case tlsPolicyMandatoryConstant:
		return mail.TLSMandatory, nil
	case tlsPolicyNoneConstant:
		return mail.NoTLS, nil
	default:
		return mail.TLSOpportunistic, fmt.Errorf(unknownTLSPolicyTemplateConstant, configuration.TLSPolicy)
	}
}
