// Package mailer delivers depaudit reports over SMTP using github.com/wneessen/go-mail.
package mailer
