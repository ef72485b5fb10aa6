package mailing

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestMailer_SendMail(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailerWithSender(MailConfig{SMTPEmail: "alerts@glucolog.test", SMTPSender: "GlucoLog"}, sender)

	require.NoError(t, m.SendMail("ops@glucolog.test", "storage degraded", "switched to memory"))
	require.Len(t, sender.sent, 1)

	var buf bytes.Buffer
	_, err := sender.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: storage degraded")
	assert.Contains(t, buf.String(), "To: ops@glucolog.test")
	assert.Contains(t, buf.String(), "switched to memory")
}

func TestMailer_NotConfigured(t *testing.T) {
	m := NewMailer(MailConfig{})

	err := m.SendMail("ops@glucolog.test", "x", "y")
	assert.ErrorIs(t, err, ErrMailNotConfigured)
}

func TestMailer_TransportError(t *testing.T) {
	m := NewMailerWithSender(MailConfig{SMTPEmail: "a@b.test"}, &fakeSender{err: errors.New("535 auth failed")})

	assert.Error(t, m.SendMail("ops@glucolog.test", "x", "y"))
}
