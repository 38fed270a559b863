package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/temirov/depaudit/internal/audit"
)

const (
	missingSMTPHostMessageConstant  = "SMTP host not configured (mail.smtp.host)"
	missingRecipientMessageConstant = "report recipient not provided"
	senderErrorTemplateConstant     = "invalid sender %q: %w"
	recipientErrorTemplateConstant  = "invalid recipient %q: %w"
	clientErrorTemplateConstant     = "configure SMTP client: %w"
	deliveryErrorTemplateConstant   = "deliver report to %s: %w"
	logMessageSendingReportConstant = "sending report"
	logFieldRecipientConstant       = "recipient"
	logFieldSMTPHostConstant        = "smtp_host"
	logFieldSMTPPortConstant        = "smtp_port"
)

var (
	// ErrMissingSMTPHost indicates delivery was requested without an SMTP host.
	ErrMissingSMTPHost = errors.New(missingSMTPHostMessageConstant)
	// ErrMissingRecipient indicates a message without a recipient.
	ErrMissingRecipient = errors.New(missingRecipientMessageConstant)
)

// MessageSender delivers prepared messages.
type MessageSender interface {
	DialAndSendWithContext(executionContext context.Context, messages ...*mail.Msg) error
}

// SenderFactory builds a MessageSender for the configured SMTP server.
type SenderFactory func(configuration SMTPConfiguration) (MessageSender, error)

// SMTPMailer implements audit.ReportMailer over SMTP.
type SMTPMailer struct {
	configuration Configuration
	senderFactory SenderFactory
	logger        *zap.Logger
}

// NewSMTPMailer constructs a mailer that dials the configured SMTP server for each report.
func NewSMTPMailer(configuration Configuration, logger *zap.Logger) *SMTPMailer {
	return NewSMTPMailerWithSenderFactory(configuration, logger, NewSMTPSender)
}

// NewSMTPMailerWithSenderFactory constructs a mailer with a custom transport.
func NewSMTPMailerWithSenderFactory(configuration Configuration, logger *zap.Logger, factory SenderFactory) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if factory == nil {
		factory = NewSMTPSender
	}
	return &SMTPMailer{configuration: configuration.sanitize(), senderFactory: factory, logger: logger}
}

// Send delivers the report as a plain-text message.
func (mailer *SMTPMailer) Send(executionContext context.Context, report audit.ReportMessage) error {
	if len(mailer.configuration.SMTP.Host) == 0 {
		return ErrMissingSMTPHost
	}

	message, messageError := BuildMessage(mailer.configuration.From, report)
	if messageError != nil {
		return messageError
	}

	sender, senderError := mailer.senderFactory(mailer.configuration.SMTP)
	if senderError != nil {
		return fmt.Errorf(clientErrorTemplateConstant, senderError)
	}

	mailer.logger.Debug(
		logMessageSendingReportConstant,
		zap.String(logFieldRecipientConstant, report.Recipient),
		zap.String(logFieldSMTPHostConstant, mailer.configuration.SMTP.Host),
		zap.Int(logFieldSMTPPortConstant, mailer.configuration.SMTP.Port),
	)

	if sendError := sender.DialAndSendWithContext(executionContext, message); sendError != nil {
		return fmt.Errorf(deliveryErrorTemplateConstant, report.Recipient, sendError)
	}
	return nil
}

// BuildMessage prepares a plain-text message carrying the report body.
func BuildMessage(sender string, report audit.ReportMessage) (*mail.Msg, error) {
	if len(report.Recipient) == 0 {
		return nil, ErrMissingRecipient
	}

	message := mail.NewMsg()
	if fromError := message.From(sender); fromError != nil {
		return nil, fmt.Errorf(senderErrorTemplateConstant, sender, fromError)
	}
	if toError := message.To(report.Recipient); toError != nil {
		return nil, fmt.Errorf(recipientErrorTemplateConstant, report.Recipient, toError)
	}
	message.Subject(report.Subject)
	message.SetDate()
	message.SetBodyString(mail.TypeTextPlain, report.Body)
	return message, nil
}

// NewSMTPSender builds a go-mail client for the SMTP configuration. Authentication is enabled
// only when a username is configured.
func NewSMTPSender(configuration SMTPConfiguration) (MessageSender, error) {
	tlsPolicy, policyError := configuration.tlsPolicy()
	if policyError != nil {
		return nil, policyError
	}

	options := []mail.Option{
		mail.WithPort(configuration.Port),
		mail.WithTLSPolicy(tlsPolicy),
		mail.WithTimeout(configuration.timeout()),
	}
	if len(configuration.Username) > 0 {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(configuration.Username),
			mail.WithPassword(configuration.Password),
		)
	}

	client, clientError := mail.NewClient(configuration.Host, options...)
	if clientError != nil {
		return nil, clientError
	}
	return client, nil
}
