package mailing

import (
	"errors"
	"strconv"

	"gopkg.in/gomail.v2"

	"glucolog/internal/utils"
)

var ErrMailNotConfigured = errors.New("smtp is not configured")

type MailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
}

func LoadMailConfig(cfg *utils.Config) MailConfig {
	return MailConfig{
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPSender:   cfg.SMTPSenderName,
		SMTPEmail:    cfg.SMTPAuthEmail,
		SMTPPassword: cfg.SMTPAuthPassword,
	}
}

type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	config MailConfig
	sender Sender
}

func NewMailer(config MailConfig) *Mailer {
	m := &Mailer{config: config}
	if port, err := strconv.Atoi(config.SMTPPort); err == nil && config.SMTPHost != "" {
		m.sender = gomail.NewDialer(config.SMTPHost, port, config.SMTPEmail, config.SMTPPassword)
	}
	return m
}

// NewMailerWithSender is used when the transport is provided by the caller.
func NewMailerWithSender(config MailConfig, sender Sender) *Mailer {
	return &Mailer{config: config, sender: sender}
}

func (m *Mailer) SendMail(toEmail string, subject string, body string) error {
	if m.sender == nil {
		return ErrMailNotConfigured
	}

	message := gomail.NewMessage()
	if m.config.SMTPSender != "" {
		message.SetAddressHeader("From", m.config.SMTPEmail, m.config.SMTPSender)
	} else {
		message.SetHeader("From", m.config.SMTPEmail)
	}
	message.SetHeader("To", toEmail)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	return m.sender.DialAndSend(message)
}
